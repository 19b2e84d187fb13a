package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cacheadapter "github.com/viralforge/referral-rewards/internal/adapters/cache"
	eventadapter "github.com/viralforge/referral-rewards/internal/adapters/events"
	grpcadapter "github.com/viralforge/referral-rewards/internal/adapters/grpc"
	httpadapter "github.com/viralforge/referral-rewards/internal/adapters/http"
	"github.com/viralforge/referral-rewards/internal/adapters/memory"
	"github.com/viralforge/referral-rewards/internal/adapters/postgres"
	"github.com/viralforge/referral-rewards/internal/adapters/security"
	"github.com/viralforge/referral-rewards/internal/application"
	"github.com/viralforge/referral-rewards/internal/ports"
	"google.golang.org/grpc"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	worker     *eventadapter.OutboxWorker
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	var (
		campaigns   ports.CampaignRepository
		referrals   ports.ReferralRepository
		rewards     ports.RewardRepository
		idempotency ports.IdempotencyRepository
		outbox      ports.OutboxRepository
	)
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		db, err := postgres.Connect(ctx, cfg.DatabaseURL, int32(cfg.MaxDBConns))
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(ctx, db); err != nil {
			return nil, err
		}
		repos := postgres.NewRepositories(db)
		campaigns, referrals, rewards = repos.Campaigns, repos.Referrals, repos.Rewards
		idempotency, outbox = repos.Idempotency, repos.Outbox
	default:
		repos := memory.NewRepositories()
		campaigns, referrals, rewards = repos.Campaigns, repos.Referrals, repos.Rewards
		idempotency, outbox = repos.Idempotency, repos.Outbox
		logger.InfoContext(ctx, "using in-memory storage driver")
	}

	var widgetCache ports.WidgetConfigCache
	if cfg.RedisURL != "" {
		client, err := cacheadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		widgetCache = cacheadapter.NewRedisWidgetStore(client)
	} else {
		widgetCache = memory.NewWidgetConfigCache()
	}

	verifier := security.NewWebhookVerifier(cfg.WebhookSecret)
	if !verifier.Configured() {
		logger.WarnContext(ctx, "webhook secret not configured, webhook ingestion will reject all requests")
	}

	publisher := eventadapter.NewLoggingDomainPublisher(logger)
	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:          cfg.ServiceID,
			PublicBaseURL:        cfg.PublicBaseURL,
			WidgetPrimaryColor:   cfg.WidgetPrimaryColor,
			WidgetCacheTTL:       cfg.WidgetCacheTTL,
			IdempotencyTTL:       cfg.IdempotencyTTL,
			OutboxFlushBatchSize: cfg.OutboxFlushBatchSize,
			ReferralCodeLength:   cfg.ReferralCodeLength,
		},
		Campaigns:    campaigns,
		Referrals:    referrals,
		Rewards:      rewards,
		Idempotency:  idempotency,
		Outbox:       outbox,
		WidgetCache:  widgetCache,
		DomainEvents: publisher,
	})

	handler := httpadapter.NewHandler(svc, verifier)
	router := httpadapter.NewRouter(handler, logger)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	grpcadapter.Register(grpcServer, grpcadapter.NewRewardsInternalServer(svc))
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return nil, err
	}

	worker := eventadapter.NewOutboxWorker(logger, svc, cfg.OutboxPollInterval)
	return &Runtime{cfg: cfg, logger: logger, httpServer: httpServer, grpcServer: grpcServer, grpcLis: lis, worker: worker}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 2)
	go func() {
		r.logger.InfoContext(ctx, "http server listening", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		r.logger.InfoContext(ctx, "grpc server listening", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- err
		}
	}()
	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	return nil
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)
	go func() {
		if err := r.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
