package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bioassoc/memberhub/internal/botcheck"
	"github.com/bioassoc/memberhub/internal/config"
	"github.com/bioassoc/memberhub/internal/content"
	httpx "github.com/bioassoc/memberhub/internal/http"
	"github.com/bioassoc/memberhub/internal/memberapi"
	"github.com/bioassoc/memberhub/internal/observability"
	"github.com/bioassoc/memberhub/internal/queue"
	"github.com/bioassoc/memberhub/internal/queue/redisclient"
	redisrepo "github.com/bioassoc/memberhub/internal/repo/redis"
	"github.com/bioassoc/memberhub/internal/session"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env, "memberhub-api")
	slog.SetDefault(log)

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "memberhub-api", cfg.OTLPEndpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			sctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(sctx)
		}()
	}

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	redisCli := redisclient.New(redisclient.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisCli.Close()

	snapshots := redisrepo.NewSnapshotsRepo(redisCli.Raw(), cfg.SessionTTL())
	receiptQueue := queue.NewRedisQueue(redisCli.Raw())

	membersAPI := memberapi.New(cfg.MembersAPIBaseURL, prom)
	contentClient := content.NewClient(cfg.ContentAPIBaseURL, prom)
	catalog := content.NewCatalog(contentClient, cfg.ContentCacheTTL())

	verifier := botcheck.NewHTTPVerifier(botcheck.Config{
		VerifyURL: cfg.BotCheck.VerifyURL,
		Secret:    cfg.BotCheck.Secret,
		MinScore:  cfg.BotCheck.MinScore,
	})

	newStore := func(id string) *session.Store {
		return session.New(id, membersAPI, snapshots, session.Options{
			TokenTTL: cfg.SessionTTL(),
			Logger:   log,
		})
	}

	router := httpx.NewRouter(log, cfg, httpx.Deps{
		Prom:     prom,
		Registry: registry,
		NewStore: newStore,
		Catalog:  catalog,
		Verifier: verifier,
		Queue:    receiptQueue,
		Reset:    membersAPI,
		Ping:     redisCli.Ping,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
