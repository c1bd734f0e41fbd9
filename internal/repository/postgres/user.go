package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/campuschat-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, display_name, email, role, online, blocked, following, followers,
	allow_chat, chat_whitelist, is_banned, filter_enabled, created_at, updated_at`

// setColumns maps relationship sets to their uuid[] columns.
var setColumns = map[model.UserSet]string{
	model.SetBlocked:       "blocked",
	model.SetFollowing:     "following",
	model.SetFollowers:     "followers",
	model.SetChatWhitelist: "chat_whitelist",
}

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	query := `INSERT INTO users (id, display_name, email, role, online, blocked, following, followers,
				allow_chat, chat_whitelist, is_banned, filter_enabled)
			  VALUES ($1, $2, $3, $4, $5, $6::uuid[], $7::uuid[], $8::uuid[], $9, $10::uuid[], $11, $12)
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.DisplayName, user.Email, string(user.Role), user.Online,
		uuidStrings(user.Blocked), uuidStrings(user.Following), uuidStrings(user.Followers),
		user.AllowChat, uuidStrings(user.ChatWhitelist), user.IsBanned, user.FilterEnabled,
	))
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY display_name, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

func (r *UserRepository) AddToSet(ctx context.Context, id uuid.UUID, set model.UserSet, member uuid.UUID) error {
	column, ok := setColumns[set]
	if !ok {
		return fmt.Errorf("%w: unknown set %q", model.ErrInvalidArgument, set)
	}

	query := fmt.Sprintf(`UPDATE users
			  SET %[1]s = CASE WHEN $2::uuid = ANY(%[1]s) THEN %[1]s ELSE array_append(%[1]s, $2::uuid) END,
			      updated_at = NOW()
			  WHERE id = $1`, column)

	return r.exec(ctx, "add to "+column, query, id, member)
}

func (r *UserRepository) RemoveFromSet(ctx context.Context, id uuid.UUID, set model.UserSet, member uuid.UUID) error {
	column, ok := setColumns[set]
	if !ok {
		return fmt.Errorf("%w: unknown set %q", model.ErrInvalidArgument, set)
	}

	query := fmt.Sprintf(`UPDATE users SET %[1]s = array_remove(%[1]s, $2::uuid), updated_at = NOW() WHERE id = $1`, column)

	return r.exec(ctx, "remove from "+column, query, id, member)
}

func (r *UserRepository) SetAllowChat(ctx context.Context, id uuid.UUID, allow bool) error {
	query := `UPDATE users SET allow_chat = $2, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, "set allow chat", query, id, allow)
}

func (r *UserRepository) SetOnline(ctx context.Context, id uuid.UUID, online bool) error {
	query := `UPDATE users SET online = $2, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, "set online", query, id, online)
}

func (r *UserRepository) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	var role string
	var blocked, following, followers, whitelist []string

	err := row.Scan(
		&user.ID, &user.DisplayName, &user.Email, &role, &user.Online,
		&blocked, &following, &followers,
		&user.AllowChat, &whitelist, &user.IsBanned, &user.FilterEnabled,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}

	user.Role = model.Role(role)
	if user.Blocked, err = parseUUIDs(blocked); err != nil {
		return model.User{}, err
	}
	if user.Following, err = parseUUIDs(following); err != nil {
		return model.User{}, err
	}
	if user.Followers, err = parseUUIDs(followers); err != nil {
		return model.User{}, err
	}
	if user.ChatWhitelist, err = parseUUIDs(whitelist); err != nil {
		return model.User{}, err
	}

	return user, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse uuid %q: %w", v, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
