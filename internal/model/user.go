package model

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for directory entries.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	List(ctx context.Context) ([]User, error)
	AddToSet(ctx context.Context, id uuid.UUID, set UserSet, member uuid.UUID) error
	RemoveFromSet(ctx context.Context, id uuid.UUID, set UserSet, member uuid.UUID) error
	SetAllowChat(ctx context.Context, id uuid.UUID, allow bool) error
	SetOnline(ctx context.Context, id uuid.UUID, online bool) error
}

// Role is a directory role.
type Role string

const (
	// RoleUser is a regular portal member.
	RoleUser Role = "user"
	// RoleAdmin may override chat verdicts and erase accounts.
	RoleAdmin Role = "admin"
)

// UserSet names one of the relationship sets kept on a user record.
type UserSet string

const (
	SetBlocked       UserSet = "blocked"
	SetFollowing     UserSet = "following"
	SetFollowers     UserSet = "followers"
	SetChatWhitelist UserSet = "chat_whitelist"
)

// UserSets lists every relationship set, in storage column order.
var UserSets = []UserSet{SetBlocked, SetFollowing, SetFollowers, SetChatWhitelist}

// User is a directory entry together with its relationship fields.
type User struct {
	ID            uuid.UUID   `json:"id"`
	DisplayName   string      `json:"displayName"`
	Email         string      `json:"email,omitempty"`
	Role          Role        `json:"role"`
	Online        bool        `json:"online"`
	Blocked       []uuid.UUID `json:"blocked"`
	Following     []uuid.UUID `json:"following"`
	Followers     []uuid.UUID `json:"followers"`
	AllowChat     bool        `json:"allowChat"`
	ChatWhitelist []uuid.UUID `json:"chatWhitelist"`
	IsBanned      bool        `json:"isBanned"`
	FilterEnabled bool        `json:"filterEnabled"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// IsAdmin reports whether the user acts with admin privileges.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasBlocked reports whether id is in the user's blocked set.
func (u User) HasBlocked(id uuid.UUID) bool {
	return slices.Contains(u.Blocked, id)
}

// Whitelists reports whether id may message the user while chat is closed.
func (u User) Whitelists(id uuid.UUID) bool {
	return slices.Contains(u.ChatWhitelist, id)
}

// IsFollowing reports whether the user follows id.
func (u User) IsFollowing(id uuid.UUID) bool {
	return slices.Contains(u.Following, id)
}

// Set returns the members of the named relationship set.
func (u User) Set(set UserSet) []uuid.UUID {
	switch set {
	case SetBlocked:
		return u.Blocked
	case SetFollowing:
		return u.Following
	case SetFollowers:
		return u.Followers
	case SetChatWhitelist:
		return u.ChatWhitelist
	default:
		return nil
	}
}

// NewUser returns a user with the directory defaults applied.
func NewUser(id uuid.UUID, displayName string, role Role) User {
	return User{
		ID:            id,
		DisplayName:   displayName,
		Role:          role,
		AllowChat:     true,
		FilterEnabled: true,
	}
}
