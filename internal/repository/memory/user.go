package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(_ context.Context, user model.User) (model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[user.ID]; ok {
		return model.User{}, fmt.Errorf("failed to create user: %s already exists", user.ID)
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	now := r.db.timestamp()
	user.CreatedAt, user.UpdatedAt = now, now
	user = cloneUser(user)
	for _, set := range model.UserSets {
		if user.Set(set) == nil {
			*setField(&user, set) = []uuid.UUID{}
		}
	}
	r.db.users[user.ID] = user

	return cloneUser(user), nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	user, ok := r.db.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *UserRepository) List(_ context.Context) ([]model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	users := make([]model.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		users = append(users, cloneUser(u))
	}
	slices.SortFunc(users, func(a, b model.User) int {
		if c := strings.Compare(a.DisplayName, b.DisplayName); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	return users, nil
}

func (r *UserRepository) AddToSet(_ context.Context, id uuid.UUID, set model.UserSet, member uuid.UUID) error {
	return r.update(id, func(u *model.User) error {
		field := setField(u, set)
		if field == nil {
			return fmt.Errorf("%w: unknown set %q", model.ErrInvalidArgument, set)
		}
		if !slices.Contains(*field, member) {
			*field = append(*field, member)
		}
		return nil
	})
}

func (r *UserRepository) RemoveFromSet(_ context.Context, id uuid.UUID, set model.UserSet, member uuid.UUID) error {
	return r.update(id, func(u *model.User) error {
		field := setField(u, set)
		if field == nil {
			return fmt.Errorf("%w: unknown set %q", model.ErrInvalidArgument, set)
		}
		*field = slices.DeleteFunc(*field, func(v uuid.UUID) bool { return v == member })
		return nil
	})
}

func (r *UserRepository) SetAllowChat(_ context.Context, id uuid.UUID, allow bool) error {
	return r.update(id, func(u *model.User) error {
		u.AllowChat = allow
		return nil
	})
}

func (r *UserRepository) SetOnline(_ context.Context, id uuid.UUID, online bool) error {
	return r.update(id, func(u *model.User) error {
		u.Online = online
		return nil
	})
}

func (r *UserRepository) update(id uuid.UUID, fn func(u *model.User) error) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	user, ok := r.db.users[id]
	if !ok {
		return model.ErrNotFound
	}
	user = cloneUser(user)
	if err := fn(&user); err != nil {
		return err
	}
	user.UpdatedAt = r.db.timestamp()
	r.db.users[id] = user

	return nil
}

func setField(u *model.User, set model.UserSet) *[]uuid.UUID {
	switch set {
	case model.SetBlocked:
		return &u.Blocked
	case model.SetFollowing:
		return &u.Following
	case model.SetFollowers:
		return &u.Followers
	case model.SetChatWhitelist:
		return &u.ChatWhitelist
	default:
		return nil
	}
}
