package auth

import "context"

// RevocationStore marks token strings revoked until their natural expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, token string) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// IdentityVerifier validates a provider-issued identity assertion.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*ExternalIdentity, error)
}

// AuditPublisher emits authentication audit events. Implementations must
// not block request handling beyond their own timeout.
type AuditPublisher interface {
	Publish(ctx context.Context, e AuditEvent) error
}

type AuditEvent struct {
	Type   string `json:"type"`
	UserID int64  `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	At     int64  `json:"at"`
}
