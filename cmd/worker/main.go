package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bioassoc/memberhub/internal/config"
	"github.com/bioassoc/memberhub/internal/notifications"
	"github.com/bioassoc/memberhub/internal/observability"
	"github.com/bioassoc/memberhub/internal/queue"
	"github.com/bioassoc/memberhub/internal/queue/redisclient"
	"github.com/bioassoc/memberhub/internal/queue/worker"
	workerhttp "github.com/bioassoc/memberhub/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env, "memberhub-worker")
	slog.SetDefault(log)

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	redisCli := redisclient.New(redisclient.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisCli.Close()

	receiptQueue := queue.NewRedisQueue(redisCli.Raw())

	notifier := buildNotifier(cfg, log)

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	w := worker.New(worker.Config{
		PollInterval: time.Second,
		WorkerID:     workerID,
	}, receiptQueue, notifications.JobHandlers(notifier), prom, log)

	var shuttingDown atomic.Bool

	probeMux := http.NewServeMux()
	probeMux.Handle("/healthz", workerhttp.HealthHandler())
	probeMux.Handle("/readyz", workerhttp.ReadyHandler(redisCli, shuttingDown.Load))

	probeSrv := &http.Server{Addr: ":9091", Handler: probeMux}

	go func() {
		if err := probeSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("probe server failed", "err", err)
		}
	}()

	log.Info("worker started", "worker_id", workerID)

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		log.Error("worker stopped with error", "err", err)
	}

	shuttingDown.Store(true)

	sctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()
	_ = probeSrv.Shutdown(sctx)

	log.Info("worker shutdown complete")
}

// buildNotifier picks SMTP delivery when a host is configured and the
// log channel otherwise. Either way the circuit breaker wraps it.
func buildNotifier(cfg config.Config, log *slog.Logger) notifications.Notifier {
	var inner notifications.Notifier

	if cfg.SMTP.Host != "" {
		inner = notifications.NewEmailNotifier(notifications.EmailConfig{
			Host:       cfg.SMTP.Host,
			Port:       cfg.SMTP.Port,
			User:       cfg.SMTP.User,
			Pass:       cfg.SMTP.Pass,
			From:       cfg.SMTP.From,
			StaffInbox: cfg.SMTP.StaffInbox,
		})
		log.Info("notifier: smtp", "host", cfg.SMTP.Host)
	} else {
		inner = notifications.NewLogNotifier(log)
		log.Info("notifier: log only")
	}

	return notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{})
}
