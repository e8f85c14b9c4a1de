package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/authmail/config"
	"github.com/ErlanBelekov/authmail/internal/email"
	"github.com/ErlanBelekov/authmail/internal/health"
	"github.com/ErlanBelekov/authmail/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/authmail/internal/log"
	"github.com/ErlanBelekov/authmail/internal/metrics"
	"github.com/ErlanBelekov/authmail/internal/password"
	"github.com/ErlanBelekov/authmail/internal/token"
	httptransport "github.com/ErlanBelekov/authmail/internal/transport/http"
	"github.com/ErlanBelekov/authmail/internal/transport/http/handler"
	"github.com/ErlanBelekov/authmail/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		stop()
		log.Fatalf("migrate: %v", err)
	}
	logger.Info("db ready")

	metrics.Register()

	// Mail
	sender, err := email.NewSender(ctx, email.Config{
		Provider:       cfg.MailProvider,
		ResendAPIKey:   cfg.ResendAPIKey,
		AWSRegion:      cfg.AWSRegion,
		AWSAccessKeyID: cfg.AWSAccessKeyID,
		AWSSecretKey:   cfg.AWSSecretKey,
	}, logger)
	if err != nil {
		stop()
		log.Fatalf("mail: %v", err)
	}
	dispatcher := email.NewDispatcher(sender, cfg.MailFrom, cfg.MailSendTimeout, logger)

	// Auth
	secret := []byte(cfg.JWTSecret)
	issuer := token.NewIssuer(secret)
	verifier := token.NewVerifier(secret)

	userRepo := postgres.NewUserRepository(pool)
	authUsecase := usecase.NewAuthUsecase(userRepo, password.NewBcrypt(cfg.BcryptCost), issuer, dispatcher, logger)
	mailUsecase := usecase.NewMailUsecase(userRepo, dispatcher)

	authHandler := handler.NewAuthHandler(authUsecase, logger)
	mailHandler := handler.NewMailHandler(mailUsecase, logger)

	checker := health.NewChecker(logger, prometheus.DefaultRegisterer, health.Dependency{Name: "postgres", Pinger: pool})
	monitor, err := health.NewMonitor(checker, cfg.HealthProbeSpec, logger)
	if err != nil {
		stop()
		log.Fatalf("health monitor: %v", err)
	}

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewRouter(logger, authHandler, mailHandler, verifier),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		monitor.Start(ctx)
	}()

	go func() {
		logger.Info("server started", "port", cfg.Port, "mail_provider", cfg.MailProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	// closes the dispatcher; mail from handlers still running after a timed-out
	// Shutdown is dropped
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logger.Warn("mail still in flight at shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
	<-monitorDone
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
