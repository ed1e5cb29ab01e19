package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	tokens "github.com/finkeeper/finkeeper/internal/auth"
	domainauth "github.com/finkeeper/finkeeper/internal/domain/auth"
	"github.com/finkeeper/finkeeper/internal/domain/user"
	"github.com/finkeeper/finkeeper/internal/obs"
	pg "github.com/finkeeper/finkeeper/internal/repository/postgres"
)

var (
	ErrInvalidRequest   = errors.New("token is required")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrWrongTokenType   = errors.New("wrong token type")
	ErrTokenInvalid     = errors.New("invalid or expired token")
	ErrUserNotFound     = errors.New("user not found")
	ErrAccountInactive  = errors.New("user account is not active")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Session is what a successful login or refresh hands back to the client.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       int64  `json:"userId"`
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	AvatarURL    string `json:"avatarUrl,omitempty"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type Usecase struct {
	users    user.Repo
	codec    *tokens.Codec
	revoked  domainauth.RevocationStore
	verifier domainauth.IdentityVerifier
	audit    domainauth.AuditPublisher
	log      *zap.Logger
}

func NewUsecase(users user.Repo, codec *tokens.Codec, revoked domainauth.RevocationStore,
	verifier domainauth.IdentityVerifier, audit domainauth.AuditPublisher, log *zap.Logger) *Usecase {
	if audit == nil {
		audit = nopAudit{}
	}
	return &Usecase{
		users:    users,
		codec:    codec,
		revoked:  revoked,
		verifier: verifier,
		audit:    audit,
		log:      log,
	}
}

// LoginWithGoogle verifies a Google-issued ID token, finds or creates the
// user it names, and issues an access/refresh token pair.
func (u *Usecase) LoginWithGoogle(ctx context.Context, idToken string) (*Session, error) {
	if idToken == "" {
		return nil, ErrInvalidRequest
	}

	ident, err := u.verifier.Verify(ctx, idToken)
	if err != nil {
		obs.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	usr, err := u.users.GetByEmail(ctx, ident.Email)
	switch {
	case errors.Is(err, pg.ErrNotFound):
		usr = &user.User{
			Email:     ident.Email,
			FullName:  ident.Name,
			AvatarURL: ident.PictureURL,
			GoogleID:  ident.ExternalID,
			Provider:  user.ProviderGoogle,
			IsActive:  true,
		}
		if err := u.users.Create(ctx, usr); err != nil {
			// Lost a race with a concurrent first login for the same email.
			if errors.Is(err, pg.ErrConflict) {
				if usr, err = u.users.GetByEmail(ctx, ident.Email); err != nil {
					return nil, fmt.Errorf("reload user after conflict: %w", err)
				}
				break
			}
			return nil, fmt.Errorf("create user: %w", err)
		}
		u.log.Info("user created on first login", zap.Int64("user_id", usr.ID), zap.String("email", usr.Email))
	case err != nil:
		return nil, fmt.Errorf("find user: %w", err)
	}

	sess, err := u.issueSession(usr)
	if err != nil {
		return nil, err
	}

	obs.LoginsTotal.WithLabelValues("ok").Inc()
	u.publishAudit(ctx, "login", usr.ID, usr.Email)
	return sess, nil
}

// Refresh validates a refresh token and issues a fresh access token. The
// refresh token itself is returned unchanged: there is no rotation, a
// client keeps one refresh token for its whole lifetime.
func (u *Usecase) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRequest
	}

	// Revocation is checked before anything else so a logged-out token
	// reads as revoked, not as some lesser failure.
	if revoked, _ := u.revoked.IsRevoked(ctx, refreshToken); revoked {
		obs.RefreshesTotal.WithLabelValues("revoked").Inc()
		return nil, ErrTokenRevoked
	}

	cl, err := u.codec.Peek(refreshToken)
	if err != nil {
		obs.RefreshesTotal.WithLabelValues("invalid").Inc()
		return nil, ErrTokenInvalid
	}
	if cl.Kind != domainauth.KindRefresh {
		obs.RefreshesTotal.WithLabelValues("wrong_type").Inc()
		return nil, ErrWrongTokenType
	}
	if !u.codec.Validate(refreshToken, cl.Subject) {
		obs.RefreshesTotal.WithLabelValues("invalid").Inc()
		return nil, ErrTokenInvalid
	}

	usr, err := u.users.GetByEmail(ctx, cl.Subject)
	if errors.Is(err, pg.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !usr.IsActive {
		return nil, ErrAccountInactive
	}

	access, err := u.codec.IssueAccess(usr.Email, usr.ID)
	if err != nil {
		return nil, err
	}

	obs.RefreshesTotal.WithLabelValues("ok").Inc()
	u.publishAudit(ctx, "refresh", usr.ID, usr.Email)
	return &Session{
		AccessToken:  access,
		RefreshToken: refreshToken,
		UserID:       usr.ID,
		Email:        usr.Email,
		FullName:     usr.FullName,
		AvatarURL:    usr.AvatarURL,
		ExpiresIn:    int64(u.codec.AccessTTL().Seconds()),
	}, nil
}

// Logout revokes the presented access token and, when supplied, the
// accompanying refresh token. It is idempotent and never fails: a token
// that cannot be revoked still expires on its own.
func (u *Usecase) Logout(ctx context.Context, accessToken, refreshToken string) (email string) {
	if id, ok := domainauth.IdentityFromContext(ctx); ok {
		email = id.Email
	}

	if accessToken != "" {
		_ = u.revoked.Revoke(ctx, accessToken)
	}
	if refreshToken != "" {
		_ = u.revoked.Revoke(ctx, refreshToken)
	}

	obs.LogoutsTotal.Inc()
	u.publishAudit(ctx, "logout", 0, email)
	return email
}

// CurrentUser resolves the authenticated principal to its user record.
func (u *Usecase) CurrentUser(ctx context.Context) (*user.User, error) {
	id, ok := domainauth.IdentityFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}
	usr, err := u.users.GetByEmail(ctx, id.Email)
	if errors.Is(err, pg.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return usr, nil
}

func (u *Usecase) issueSession(usr *user.User) (*Session, error) {
	access, err := u.codec.IssueAccess(usr.Email, usr.ID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := u.codec.IssueRefresh(usr.Email, usr.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       usr.ID,
		Email:        usr.Email,
		FullName:     usr.FullName,
		AvatarURL:    usr.AvatarURL,
		ExpiresIn:    int64(u.codec.AccessTTL().Seconds()),
	}, nil
}

func (u *Usecase) publishAudit(ctx context.Context, typ string, userID int64, email string) {
	e := domainauth.AuditEvent{Type: typ, UserID: userID, Email: email, At: time.Now().Unix()}
	go func() {
		_ = u.audit.Publish(context.WithoutCancel(ctx), e)
	}()
}

type nopAudit struct{}

func (nopAudit) Publish(context.Context, domainauth.AuditEvent) error { return nil }
