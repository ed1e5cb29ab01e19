package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	tokens "github.com/finkeeper/finkeeper/internal/auth"
	"github.com/finkeeper/finkeeper/internal/config"
	domainauth "github.com/finkeeper/finkeeper/internal/domain/auth"
	"github.com/finkeeper/finkeeper/internal/obs"
	"github.com/finkeeper/finkeeper/internal/repository/kafka"
	"github.com/finkeeper/finkeeper/internal/repository/redis"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/server.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting server", zap.String("env", cfg.App.Env), zap.String("ver", cfg.App.Version))

	otelShutdown, err := initOTel(rootCtx, cfg)
	if err != nil {
		logger.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelShutdown(rootCtx) }()

	db, err := initDB(rootCtx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	codec, err := tokens.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	if err != nil {
		logger.Fatal("token codec", zap.Error(err))
	}

	blacklist := redis.NewBlacklist(redis.Options{
		Addr:      cfg.Redis.Addr,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		OpTimeout: cfg.Redis.OpTimeout,
	}, codec, logger)
	defer func() { _ = blacklist.Close() }()
	if err := blacklist.Ping(rootCtx); err != nil {
		logger.Fatal("redis connect", zap.Error(err))
	}

	var audit domainauth.AuditPublisher = kafka.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewAuditProducer(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, logger)
		defer func() { _ = producer.Close() }()
		audit = producer
	}

	go obs.ObserveRevokedTokens(rootCtx, 30*time.Second, blacklist.Count)

	metricsSrv := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, db.Pool.Ping, logger)

	httpSrv := buildHTTPServer(cfg, logger, db, codec, blacklist, audit)

	httpErrCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.Server.HTTPAddr))
		httpErrCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal")
	case err := <-httpErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()

	_ = httpSrv.Shutdown(shCtx)
	_ = metricsSrv.Shutdown(shCtx)

	logger.Info("bye")
}
