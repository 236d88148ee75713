// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"previnet/internal/auth"
	"previnet/internal/certificate"
	"previnet/internal/platform/config"
	"previnet/internal/platform/httpserver"
	"previnet/internal/platform/logger"
	"previnet/internal/platform/metrics"
	"previnet/internal/platform/postgres"
	platformredis "previnet/internal/platform/redis"
	"previnet/internal/signable"
	"previnet/internal/signing"
	"previnet/internal/syncqueue"
	httptransport "previnet/internal/transport/http"
	"previnet/internal/verification"
	"previnet/internal/worker"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	var (
		entityStore signable.Store    = signable.NewInMemoryStore()
		workerStore worker.Store      = worker.NewInMemoryStore()
		certStore   certificate.Store = certificate.NewInMemoryStore()
	)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres unavailable", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("migrations failed", "error", err.Error())
			os.Exit(1)
		}
		entityStore = signable.NewPostgresStore(db)
		workerStore = worker.NewPostgresStore(db)
		certStore = certificate.NewPostgresStore(db)
	}

	var views verification.ViewTracker = verification.NewInMemoryViewTracker()
	if cfg.RedisAddr != "" {
		client, err := platformredis.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Error("redis unavailable", "error", err.Error())
			os.Exit(1)
		}
		defer client.Close()
		views = verification.NewRedisViewTracker(client)
	}

	queue := syncqueue.NewInMemoryQueue()
	var flusher *syncqueue.Flusher
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := syncqueue.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.SyncTopic)
		if err != nil {
			log.Error("kafka unavailable", "error", err.Error())
			os.Exit(1)
		}
		defer sink.Close()
		flusher = syncqueue.NewFlusher(queue, sink, log, 30*time.Second)
	}

	authSvc := auth.NewService(workerStore, []byte(cfg.JWTSigningKey), cfg.TokenTTL)
	signableSvc := signable.NewService(entityStore, queue, log)
	generator := certificate.NewGenerator(m, log)
	gate := verification.NewGate()
	signingSvc := signing.NewService(entityStore, workerStore, certStore,
		generator, gate, views, queue, m, log)
	workerSvc := worker.NewService(workerStore)

	handler := httptransport.NewHandler(authSvc, signableSvc, signingSvc,
		certStore, workerSvc, views, queue, flusher, log)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler, registry))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting previnet", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if flusher != nil {
		group.Go(func() error {
			return flusher.Run(groupCtx)
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("shutdown with error", "error", err.Error())
		os.Exit(1)
	}
	log.Info("stopped")
}
