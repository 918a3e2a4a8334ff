package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"consentd/internal/consent/adapters/authserver"
	"consentd/internal/consent/claims"
	"consentd/internal/consent/metrics"
	"consentd/internal/consent/service"
	jwttoken "consentd/internal/jwt_token"
	"consentd/internal/platform/config"
	"consentd/internal/platform/httpserver"
	httptransport "consentd/internal/transport/http"
	"consentd/pkg/platform/circuit"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the consent API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	rules, err := claims.LoadFile(cfg.ClaimRulesPath)
	if err != nil {
		return fmt.Errorf("load claim rules: %w", err)
	}
	builder := claims.NewBuilder(rules)

	memory, closeMemory, err := openMemoryStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeMemory()

	pub, closeAudit, err := openAuditPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	m := metrics.New()
	admin, err := authserver.New(cfg.AuthServer.AdminURL,
		authserver.WithTimeout(cfg.AuthServer.Timeout),
		authserver.WithBreaker(circuit.New("authserver-admin")),
		authserver.WithObserver(m),
		authserver.WithLogger(log),
	)
	if err != nil {
		return err
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithFetchAttempts(cfg.AuthServer.FetchAttempts),
		service.WithLocalRemember(cfg.Memory.LocalRemember),
	}
	resolver := service.NewResolver(admin, memory, builder, opts...)
	submitter := service.NewSubmitter(admin, memory, pub, opts...)
	engine := service.NewEngine(resolver, submitter, builder)
	memoryAdmin := service.NewMemoryAdmin(memory, pub, opts...)
	sweeper := service.NewSweeper(memory, opts...)

	jwtValidator := jwttoken.NewJWTServiceAdapter(
		jwttoken.NewJWTService(cfg.Admin.JWTSigningKey, cfg.Admin.JWTIssuer, cfg.Admin.JWTAudience),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Consent:   engine,
		Memory:    memoryAdmin,
		Health:    memoryAdmin,
		Validator: jwtValidator,
		Metrics:   promhttp.Handler(),
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting consentd",
			"addr", cfg.Addr,
			"env", cfg.Environment,
			"authserver", cfg.AuthServer.AdminURL,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Memory.SweepInterval > 0 {
		g.Go(func() error {
			if err := sweeper.StartCleanup(gctx, cfg.Memory.SweepInterval); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
