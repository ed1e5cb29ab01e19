package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	tokens "github.com/finkeeper/finkeeper/internal/auth"
	"github.com/finkeeper/finkeeper/internal/config"
	domainauth "github.com/finkeeper/finkeeper/internal/domain/auth"
	pg "github.com/finkeeper/finkeeper/internal/repository/postgres"
	accountsvc "github.com/finkeeper/finkeeper/internal/services/account"
	authsvc "github.com/finkeeper/finkeeper/internal/services/auth"
	categorysvc "github.com/finkeeper/finkeeper/internal/services/category"
	transactionsvc "github.com/finkeeper/finkeeper/internal/services/transaction"
	usersvc "github.com/finkeeper/finkeeper/internal/services/user"
)

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, db *pg.DB,
	codec *tokens.Codec, revoked domainauth.RevocationStore, audit domainauth.AuditPublisher) *http.Server {

	users := pg.NewUserRepo(db)
	accounts := pg.NewAccountRepo(db)
	categories := pg.NewCategoryRepo(db)
	txs := pg.NewTransactionRepo(db)
	transactor := pg.NewTransactor(db, logger)

	verifier := tokens.NewGoogleVerifier(cfg.Auth.GoogleClientID)

	authH := authsvc.NewHandler(authsvc.NewUsecase(users, codec, revoked, verifier, audit, logger), logger)
	accountH := accountsvc.NewHandler(accountsvc.NewUsecase(accounts), logger)
	categoryH := categorysvc.NewHandler(categorysvc.NewUsecase(categories), logger)
	transactionH := transactionsvc.NewHandler(transactionsvc.NewUsecase(txs, accounts, categories, transactor), logger)
	userH := usersvc.NewHandler(usersvc.NewUsecase(users, accounts, categories, txs), logger)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(authsvc.RequestAuth(codec, revoked, users, audit, logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		hctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		if err := db.Pool.Ping(hctx); err != nil {
			http.Error(w, "unhealthy: db", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", authH.Routes)

		r.Group(func(r chi.Router) {
			r.Use(authsvc.RequireIdentity)
			r.Route("/accounts", accountH.Routes)
			r.Route("/categories", categoryH.Routes)
			r.Route("/transactions", transactionH.Routes)
			r.Route("/users", userH.Routes)
		})
	})

	var handler http.Handler = r
	handler = cors(cfg.Server.CORSOrigins)(handler)
	handler = otelhttp.NewHandler(handler, "http.server")

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

func cors(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowed[origin] || allowed["*"]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				w.Header().Set("Access-Control-Max-Age", "300")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
