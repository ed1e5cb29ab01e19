package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/finkeeper/finkeeper/internal/domain/auth"
)

var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
)

const minKeyBytes = 32

type tokenClaims struct {
	UserID int64  `json:"userId"`
	Kind   string `json:"tokenType"`
	jwt.RegisteredClaims
}

// Codec issues and decodes signed, expiring identity tokens. It is
// stateless and safe for concurrent use.
type Codec struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewCodec derives the HMAC key from a base64-encoded secret. It fails
// fast on a secret that does not decode or is shorter than 256 bits.
func NewCodec(secretB64 string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	key, err := base64.StdEncoding.DecodeString(secretB64)
	if err != nil {
		return nil, fmt.Errorf("decode jwt secret: %w", err)
	}
	if len(key) < minKeyBytes {
		return nil, fmt.Errorf("jwt secret is %d bytes, need at least %d", len(key), minKeyBytes)
	}
	return &Codec{
		key:        key,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithNow overrides the clock. Tests only.
func (c *Codec) WithNow(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

func (c *Codec) IssueAccess(subject string, userID int64) (string, error) {
	return c.Issue(subject, userID, domainauth.KindAccess, c.accessTTL)
}

func (c *Codec) IssueRefresh(subject string, userID int64) (string, error) {
	return c.Issue(subject, userID, domainauth.KindRefresh, c.refreshTTL)
}

func (c *Codec) Issue(subject string, userID int64, kind domainauth.TokenKind, ttl time.Duration) (string, error) {
	now := c.now()
	claims := tokenClaims{
		UserID: userID,
		Kind:   string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry and returns the claims.
func (c *Codec) Decode(token string) (*domainauth.Claims, error) {
	return c.parse(token, false)
}

// Peek verifies the signature but skips claim validation, so the claims
// of an already-expired token stay readable. The revocation store needs
// this to compute a remaining TTL and owner for any presented token.
func (c *Codec) Peek(token string) (*domainauth.Claims, error) {
	return c.parse(token, true)
}

func (c *Codec) parse(token string, skipValidation bool) (*domainauth.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	}
	if skipValidation {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	}, opts...)
	if err != nil {
		return nil, mapParseError(err)
	}
	out := &domainauth.Claims{
		Subject: claims.Subject,
		UserID:  claims.UserID,
		Kind:    domainauth.TokenKind(claims.Kind),
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	default:
		return ErrMalformedToken
	}
}

// Subject returns the token's subject (email), failing the same way
// Decode does on an invalid token.
func (c *Codec) Subject(token string) (string, error) {
	cl, err := c.Decode(token)
	if err != nil {
		return "", err
	}
	return cl.Subject, nil
}

func (c *Codec) UserID(token string) (int64, error) {
	cl, err := c.Decode(token)
	if err != nil {
		return 0, err
	}
	return cl.UserID, nil
}

func (c *Codec) Kind(token string) (domainauth.TokenKind, error) {
	cl, err := c.Decode(token)
	if err != nil {
		return "", err
	}
	return cl.Kind, nil
}

// IsExpired reports whether a signature-valid token has expired.
func (c *Codec) IsExpired(token string) (bool, error) {
	_, err := c.Decode(token)
	if errors.Is(err, ErrExpired) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// Validate reports whether the token decodes, is not expired, and was
// issued for the expected subject. It never returns an error: any decode
// failure is treated as "not valid" so callers on the request path can
// fail closed without branching on error kinds.
func (c *Codec) Validate(token, expectedSubject string) bool {
	cl, err := c.Decode(token)
	if err != nil {
		return false
	}
	return cl.Subject == expectedSubject
}
