package model

import (
	"context"
	"net"

	"github.com/google/uuid"
)

// ContextManager carries the authenticated caller of an API request.
type ContextManager interface {
	SetUserIDToContext(ctx context.Context, userID uuid.UUID) context.Context
	GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool)
}

// TokenManager issues the bearer tokens portal clients present and resolves
// them back to the directory entry they were issued for.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID) (string, error)
	ParseAccessToken(token string) (uuid.UUID, error)
}

// SecurityLayer opens the listener the chat API and its live streams are
// served on.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server serves the chat API until stopped.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
