package auth

import (
	"context"
	"time"
)

type TokenKind string

const (
	KindAccess  TokenKind = "ACCESS"
	KindRefresh TokenKind = "REFRESH"
)

// Claims is the decoded payload of a signed identity token.
type Claims struct {
	Subject   string // user email
	UserID    int64
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ExternalIdentity is the result of verifying a third-party identity
// assertion. It is produced per verification call and never stored.
type ExternalIdentity struct {
	Email         string
	Name          string
	PictureURL    string
	ExternalID    string
	EmailVerified bool
}

// Identity is the authenticated principal attached to a request context
// by the middleware.
type Identity struct {
	UserID int64
	Email  string
	Roles  []string
}

type ctxKey int

const identityKey ctxKey = 1

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
