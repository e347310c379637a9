package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetmanage/fleetmanage/internal/common/logtrace"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/activity"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/apis"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/auth"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/billing"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/config"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dbmanager"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/migrations"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/postgresql"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/gate"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/metrics"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/server"
	"github.com/rs/zerolog/log"
)

func init() {
	logtrace.InitLogger()
}

type cmdoptions struct {
	configFile *string
}

func main() {
	slog := log.With().Str("state", "init").Logger()
	opt := parseFlags()

	slog.Info().Str("config_file", *opt.configFile).Msg("loading config file")
	if err := config.LoadConfig(*opt.configFile); err != nil {
		slog.Error().Str("config_file", *opt.configFile).Err(err).Msg("unable to load config file")
		os.Exit(1)
	}
	cfg := config.Config()
	logtrace.InitLogger(cfg.LogLevel)
	if cfg.ServerPort == "" {
		slog.Error().Msg("server port not defined")
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func run(cfg *config.ConfigParam) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.Logger.WithContext(ctx)

	pool, err := dbmanager.Open(ctx, cfg.DB.DSN(), dbmanager.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		ConnectAttempts: cfg.DB.ConnectAttempts,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		applied, err := migrations.Apply(ctx, pool.DB())
		if err != nil {
			return err
		}
		log.Info().Strs("applied", applied).Msg("database migrated")
	}

	store := postgresql.NewStore(pool)
	m := metrics.New()

	recorder := activity.New(store, activity.Options{
		QueueSize: cfg.Activity.QueueSize,
		Workers:   cfg.Activity.Workers,
		Timeout:   config.MustDuration(cfg.Activity.Timeout, 2*time.Second),
		Metrics:   m,
	})
	defer recorder.Stop()

	verifier, err := auth.NewVerifier(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience, time.Now)
	if err != nil {
		return err
	}
	validity, err := config.ParseTokenDuration(cfg.Auth.TokenValidity)
	if err != nil {
		return err
	}
	issuer, err := auth.NewTokenIssuer(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience, validity)
	if err != nil {
		return err
	}

	if cfg.Billing.WebhookSecret == "" {
		log.Warn().Msg("billing webhook secret not set, webhooks will be rejected")
	}
	billingHandler := billing.NewHandler(
		billing.NewProcessor(store, m),
		store,
		cfg.Billing.WebhookSecret,
		config.MustDuration(cfg.Billing.SignatureTolerance, 5*time.Minute),
	)

	s, err := server.CreateNewServer(server.Options{
		API: apis.New(apis.Deps{
			Sessions:  store,
			Tenants:   store,
			Users:     store,
			Reference: store,
			Tokens:    issuer,
			Billing:   billingHandler.Router(),
		}),
		Verifier: verifier,
		Gate:     gate.New(store, recorder, gate.WithMetrics(m)),
		Metrics:  m,
		Health:   store,
	})
	if err != nil {
		return err
	}
	s.MountHandlers()

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func parseFlags() cmdoptions {
	var opt cmdoptions
	opt.configFile = flag.String("config", "", "Path to the config file. Built in defaults apply when empty")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options]\n\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
	}
	flag.Parse()
	return opt
}
