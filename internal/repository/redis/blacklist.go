package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domainauth "github.com/finkeeper/finkeeper/internal/domain/auth"
)

const blacklistPrefix = "blacklist:token:"

var _ domainauth.RevocationStore = (*Blacklist)(nil)

type tokenPeeker interface {
	Peek(token string) (*domainauth.Claims, error)
}

// Blacklist marks token strings revoked until their natural expiry.
// Entries carry a TTL equal to the token's remaining lifetime, so they
// disappear exactly when the token would stop being replayable anyway.
//
// Failure policy (deliberate, availability over strictness): writes log
// and continue — an unrevoked token still expires naturally; reads fail
// open — a store outage must not lock anonymous access out of public
// routes.
type Blacklist struct {
	rdb       *goredis.Client
	tokens    tokenPeeker
	opTimeout time.Duration
	log       *zap.Logger
	now       func() time.Time
}

type Options struct {
	Addr      string
	Password  string
	DB        int
	OpTimeout time.Duration
}

func NewBlacklist(opts Options, tokens tokenPeeker, log *zap.Logger) *Blacklist {
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 500 * time.Millisecond
	}
	return &Blacklist{
		rdb: goredis.NewClient(&goredis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		tokens:    tokens,
		opTimeout: opts.OpTimeout,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClient swaps the underlying client. Tests only.
func (b *Blacklist) WithClient(rdb *goredis.Client) *Blacklist {
	cp := *b
	cp.rdb = rdb
	return &cp
}

// WithNow overrides the clock. Tests only.
func (b *Blacklist) WithNow(now func() time.Time) *Blacklist {
	cp := *b
	cp.now = now
	return &cp
}

func (b *Blacklist) Close() error { return b.rdb.Close() }

func (b *Blacklist) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

// Revoke stores the token with a TTL of its remaining lifetime. A token
// that is already expired (or does not even parse) needs no entry.
func (b *Blacklist) Revoke(ctx context.Context, token string) error {
	cl, err := b.tokens.Peek(token)
	if err != nil {
		b.log.Debug("revoke: token unreadable, skipping", zap.Error(err))
		return nil
	}
	ttl := cl.ExpiresAt.Sub(b.now())
	if ttl <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, b.opTimeout)
	defer cancel()

	if err := b.rdb.Set(ctx, blacklistPrefix+token, cl.Subject, ttl).Err(); err != nil {
		b.log.Warn("revoke: store write failed, token will expire naturally",
			zap.String("email", cl.Subject), zap.Error(err))
	}
	return nil
}

func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opTimeout)
	defer cancel()

	n, err := b.rdb.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		b.log.Warn("revocation check failed, failing open", zap.Error(err))
		return false, nil
	}
	return n > 0, nil
}

// Count is approximate and serves observability only.
func (b *Blacklist) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opTimeout)
	defer cancel()

	var (
		cursor uint64
		total  int64
	)
	for {
		keys, next, err := b.rdb.Scan(ctx, cursor, blacklistPrefix+"*", 1000).Result()
		if err != nil {
			return 0, err
		}
		total += int64(len(keys))
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}
