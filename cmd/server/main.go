package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health"

	taskhubv1 "taskhub/api/taskhub/v1"
	"taskhub/internal/audit"
	"taskhub/internal/config"
	"taskhub/internal/db"
	"taskhub/internal/events"
	healthhandler "taskhub/internal/health/handler"
	identityservice "taskhub/internal/identity/service"
	"taskhub/internal/metrics"
	"taskhub/internal/platform/logger"
	"taskhub/internal/platform/rbac"
	platformredis "taskhub/internal/platform/redis"
	"taskhub/internal/policy/engine"
	"taskhub/internal/security"
	"taskhub/internal/server"
	"taskhub/internal/server/interceptors"
	"taskhub/internal/store"
	taskservice "taskhub/internal/task/service"
	telemetryotel "taskhub/internal/telemetry/otel"
	workspaceservice "taskhub/internal/workspace/service"
)

const (
	serviceName     = "taskhub"
	shutdownTimeout = 15 * time.Second
	healthInterval  = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure, log)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	providers.SetGlobal()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	var roleCache rbac.RoleCache
	if redisClient != nil {
		roleCache = rbac.NewRedisRoleCache(redisClient.Client, cfg.RoleCacheTTLDuration())
		log.Info("role cache enabled", zap.Duration("ttl", cfg.RoleCacheTTLDuration()))
	}

	evaluator, err := engine.New(ctx, cfg.PolicyEngine, log)
	if err != nil {
		return err
	}
	authz := rbac.NewAuthorizer(rbac.NewResolver(roleCache, log), evaluator, m)

	kafka, err := events.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.EventsKafkaTopic)
	if err != nil {
		return err
	}
	var emitters []events.Emitter
	if kafka != nil {
		emitters = append(emitters, kafka)
		log.Info("kafka events enabled", zap.String("topic", cfg.EventsKafkaTopic))
	}
	if cfg.OTLPEndpoint != "" {
		emitters = append(emitters, telemetryotel.NewEventEmitter(providers.LoggerProvider))
	}
	var dispatcher *events.Dispatcher
	if len(emitters) > 0 {
		dispatcher = events.NewDispatcher(events.Fanout(emitters...), log, m)
	}

	tokens, err := tokenProvider(cfg, log)
	if err != nil {
		return err
	}
	auditLogger := audit.NewLogger(st, interceptors.ClientIP, log)

	deps := server.Deps{
		Auth:       identityservice.NewAuthService(st, security.NewHasher(cfg.BcryptCost), tokens, auditLogger, log),
		Workspaces: workspaceservice.NewService(st, authz, auditLogger, dispatcher, log),
		Tasks:      taskservice.NewService(st, authz, auditLogger, dispatcher, m, log),
	}

	probes := []healthhandler.Probe{{Name: "store", Check: st.Ping}}
	if hc, ok := evaluator.(interface{ HealthCheck(context.Context) error }); ok {
		probes = append(probes, healthhandler.Probe{Name: "policy", Check: hc.HealthCheck})
	}
	if redisClient != nil {
		probes = append(probes, healthhandler.Probe{Name: "redis", Check: redisClient.Health})
	}
	checker := healthhandler.NewChecker(log, probes...)
	hs := health.NewServer()

	grpcServer := server.NewGRPCServer(deps, server.Options{
		Tokens:  tokens,
		Audit:   auditLogger,
		Metrics: m,
		Log:     log,
		Health:  hs,
	})
	httpServer := server.NewHTTPServer(cfg.HTTPAddr, server.NewHTTPHandler(checker, reg))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		checker.Watch(gctx, hs,
			healthInterval,
			taskhubv1.AuthService_ServiceDesc.ServiceName,
			taskhubv1.WorkspaceService_ServiceDesc.ServiceName,
			taskhubv1.ProjectService_ServiceDesc.ServiceName,
			taskhubv1.TaskService_ServiceDesc.ServiceName,
		)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		hs.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			grpcServer.Stop()
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", zap.Error(err))
		}
		if err := dispatcher.Wait(shutdownCtx); err != nil {
			log.Warn("events still in flight at shutdown", zap.Error(err))
		}
		if kafka != nil {
			_ = kafka.Close()
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
		_ = providers.Shutdown(shutdownCtx)
		return st.Close()
	})
	return g.Wait()
}

// openStore returns the Postgres store when DATABASE_URL is set and the in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Database, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set; using in-memory store")
		return store.NewMemoryStore(), nil
	}
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	return store.NewPostgresStore(conn), nil
}

// tokenProvider loads the configured key pair. Without keys it signs with a key generated at
// startup, so tokens do not survive a restart.
func tokenProvider(cfg *config.Config, log *zap.Logger) (*security.TokenProvider, error) {
	if cfg.JWTPrivateKey != "" {
		return security.NewTokenProviderFromPEM(cfg.JWTPrivateKey, cfg.JWTPublicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	}
	log.Warn("JWT keys not configured; using an ephemeral signing key")
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return security.NewTokenProvider(key, &key.PublicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL()), nil
}
