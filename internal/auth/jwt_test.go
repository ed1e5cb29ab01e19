package auth

import (
	"bytes"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/finkeeper/finkeeper/internal/domain/auth"
)

func testSecret() string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("k"), 32))
}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret(), 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return c
}

func TestNewCodec_RejectsBadSecret(t *testing.T) {
	_, err := NewCodec("not-base64!!!", time.Minute, time.Hour)
	require.Error(t, err)

	short := base64.StdEncoding.EncodeToString([]byte("too short"))
	_, err = NewCodec(short, time.Minute, time.Hour)
	require.Error(t, err)
}

func TestCodec_RoundTrip(t *testing.T) {
	c := newTestCodec(t)

	tok, err := c.IssueAccess("alice@example.com", 42)
	require.NoError(t, err)

	cl, err := c.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", cl.Subject)
	assert.Equal(t, int64(42), cl.UserID)
	assert.Equal(t, domainauth.KindAccess, cl.Kind)

	sub, err := c.Subject(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sub)

	uid, err := c.UserID(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), uid)

	refresh, err := c.IssueRefresh("alice@example.com", 42)
	require.NoError(t, err)
	kind, err := c.Kind(refresh)
	require.NoError(t, err)
	assert.Equal(t, domainauth.KindRefresh, kind)
}

func TestCodec_Expired(t *testing.T) {
	base := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	c := newTestCodec(t).WithNow(func() time.Time { return base })

	tok, err := c.IssueAccess("bob@example.com", 1)
	require.NoError(t, err)

	later := c.WithNow(func() time.Time { return base.Add(16 * time.Minute) })
	_, err = later.Decode(tok)
	assert.ErrorIs(t, err, ErrExpired)

	expired, err := later.IsExpired(tok)
	require.NoError(t, err)
	assert.True(t, expired)

	// Peek stays readable after expiry.
	cl, err := later.Peek(tok)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", cl.Subject)
	assert.Equal(t, base.Add(15*time.Minute), cl.ExpiresAt)
}

func TestCodec_ZeroTTLExpiresImmediately(t *testing.T) {
	base := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	c := newTestCodec(t).WithNow(func() time.Time { return base })

	tok, err := c.Issue("bob@example.com", 1, domainauth.KindAccess, 0)
	require.NoError(t, err)

	later := c.WithNow(func() time.Time { return base.Add(time.Second) })
	_, err = later.Decode(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestCodec_WrongKey(t *testing.T) {
	c := newTestCodec(t)
	other, err := NewCodec(base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("x"), 32)), time.Minute, time.Hour)
	require.NoError(t, err)

	tok, err := c.IssueAccess("alice@example.com", 1)
	require.NoError(t, err)

	_, err = other.Decode(tok)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_Malformed(t *testing.T) {
	c := newTestCodec(t)
	_, err := c.Decode("garbage")
	assert.ErrorIs(t, err, ErrMalformedToken)

	_, err = c.Peek("")
	assert.Error(t, err)
}

func TestCodec_Validate(t *testing.T) {
	base := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	c := newTestCodec(t).WithNow(func() time.Time { return base })

	tok, err := c.IssueAccess("alice@example.com", 1)
	require.NoError(t, err)

	assert.True(t, c.Validate(tok, "alice@example.com"))
	assert.False(t, c.Validate(tok, "mallory@example.com"))
	assert.False(t, c.Validate("garbage", "alice@example.com"))

	later := c.WithNow(func() time.Time { return base.Add(time.Hour) })
	assert.False(t, later.Validate(tok, "alice@example.com"))
}
