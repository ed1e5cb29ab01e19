package obs

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finkeeper_auth_logins_total",
		Help: "Google logins, by outcome.",
	}, []string{"outcome"})

	RefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finkeeper_auth_refreshes_total",
		Help: "Access-token refreshes, by outcome.",
	}, []string{"outcome"})

	LogoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finkeeper_auth_logouts_total",
		Help: "Logout requests.",
	})

	MiddlewareRevocationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finkeeper_auth_middleware_revocations_total",
		Help: "Tokens revoked by the request middleware (missing or inactive user).",
	})

	revokedTokens = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "finkeeper_auth_revoked_tokens",
		Help: "Approximate number of live revocation entries.",
	})
)

// ObserveRevokedTokens polls counter every interval until ctx is done.
// The count is approximate and used for dashboards only.
func ObserveRevokedTokens(ctx context.Context, interval time.Duration, counter func(context.Context) (int64, error)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n, err := counter(ctx); err == nil {
				revokedTokens.Set(float64(n))
			}
		}
	}
}
