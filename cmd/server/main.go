package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/admin"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/admin/adapters"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit"
	auditkafka "github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit/kafka"
	ballothandler "github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/handler"
	ballotmetrics "github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/metrics"
	ballotservice "github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/service"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric/matcher"
	httpapi "github.com/bhumeshparihar/e-matdaan-voting-system/internal/http"
	identityhandler "github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/handler"
	identitymetrics "github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/metrics"
	identityservice "github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/service"
	jwttoken "github.com/bhumeshparihar/e-matdaan-voting-system/internal/jwt_token"
	otphandler "github.com/bhumeshparihar/e-matdaan-voting-system/internal/otp/handler"
	otpservice "github.com/bhumeshparihar/e-matdaan-voting-system/internal/otp/service"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/platform/config"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/platform/httpserver"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/platform/logger"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/platform/metrics"
	lockoutservice "github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/service/authlockout"
	ratelimitmetrics "github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/metrics"
	ratelimitmw "github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/middleware"
	ratelimitmodels "github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/models"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/store/bucket"
	registryhandler "github.com/bhumeshparihar/e-matdaan-voting-system/internal/registry/handler"
)

const auditQueueSize = 1024

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.SeedOnStartup {
		if err := seed(ctx, st, log); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	publisherOpts := []audit.Option{audit.WithLogger(log)}
	if len(cfg.Audit.KafkaBrokers) > 0 {
		sink, err := auditkafka.NewSink(cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic)
		if err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("could not ensure audit topic", "topic", cfg.Audit.KafkaTopic, "error", err)
		}
		inbox := make(chan audit.Event, auditQueueSize)
		publisherOpts = append(publisherOpts, audit.WithForwarding(inbox))
		worker := audit.NewWorker(sink, inbox, log)
		g.Go(func() error {
			if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		log.Info("audit events forwarded to kafka", "topic", cfg.Audit.KafkaTopic)
	}
	auditPublisher := audit.NewPublisher(st.audit, publisherOpts...)

	archive, err := buildArchive(cfg.Archive, log)
	if err != nil {
		return err
	}

	m, err := matcher.New(cfg.Biometric.Tolerance, cfg.Biometric.DescriptorLength)
	if err != nil {
		return err
	}
	tokens := jwttoken.NewJWTService(cfg.Session.SigningKey, cfg.Session.Issuer, cfg.Session.TTL)

	lockout, err := lockoutservice.New(st.lockouts,
		lockoutservice.WithLogger(log),
		lockoutservice.WithAuditPublisher(auditPublisher),
		lockoutservice.WithConfig(lockoutservice.Config{
			Attempts: cfg.Lockout.Attempts,
			Window:   cfg.Lockout.Window,
			Duration: cfg.Lockout.Duration,
		}),
	)
	if err != nil {
		return err
	}

	identitySvc, err := identityservice.New(st.identities, st.voters,
		biometric.NewHTTPExtractor(cfg.Biometric.ExtractorURL, cfg.Biometric.ExtractorTimeout), m,
		identityservice.WithLogger(log),
		identityservice.WithAuditPublisher(auditPublisher),
		identityservice.WithMetrics(identitymetrics.New(prometheus.DefaultRegisterer)),
		identityservice.WithCaptureArchive(archive),
		identityservice.WithLockout(lockout),
		identityservice.WithTokenIssuer(tokens),
	)
	if err != nil {
		return err
	}

	ballotSvc, err := ballotservice.New(st.ledger, st.identities,
		ballotservice.WithLogger(log),
		ballotservice.WithAuditPublisher(auditPublisher),
		ballotservice.WithMetrics(ballotmetrics.New(prometheus.DefaultRegisterer)),
	)
	if err != nil {
		return err
	}

	otpSvc, err := otpservice.New(st.otp, otpservice.Config{DemoCode: cfg.OTP.DemoCode, TTL: cfg.OTP.TTL},
		otpservice.WithLogger(log),
		otpservice.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		return err
	}

	exportSvc, err := admin.NewService(adapters.NewIdentityStoreAdapter(st.identities), st.voters, st.ledger,
		admin.WithLogger(log),
		admin.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		return err
	}

	health := httpserver.NewHealth(log)
	identityH := identityhandler.New(identitySvc, log)
	ballotH := ballothandler.New(ballotSvc, log)
	router := httpapi.NewRouter(httpapi.Dependencies{
		Logger:         log,
		Metrics:        metrics.New(prometheus.DefaultRegisterer),
		Health:         health,
		TokenValidator: jwttoken.NewJWTServiceAdapter(tokens),
		AdminTokenHash: cfg.Admin.TokenHash,
		RequestTimeout: cfg.Biometric.ExtractorTimeout + 5*time.Second,
		RateLimit:      buildRateLimit(cfg.RateLimit, st, log),
		Public: []httpapi.RouteRegistrar{
			identityH,
			ballotH,
			registryhandler.New(st.voters, log),
			otphandler.New(otpSvc, log),
		},
		Session: []httpapi.SessionRouteRegistrar{identityH, ballotH},
		Admin:   []httpapi.RouteRegistrar{admin.NewHandler(exportSvc, log)},
	})

	srv := httpserver.New(cfg.Addr, router)
	g.Go(func() error {
		log.Info("starting e-matdaan server", "addr", cfg.Addr, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		health.Drain()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildRateLimit(cfg config.RateLimitConfig, st *stores, log *slog.Logger) func(http.Handler) http.Handler {
	var store ratelimitmw.BucketStore = bucket.NewInMemoryBucketStore()
	if st.redis != nil {
		store = bucket.NewRedisBucketStore(st.redis.Client)
	}
	mw := ratelimitmw.New(store, map[ratelimitmodels.EndpointClass]ratelimitmodels.Policy{
		ratelimitmodels.ClassBiometric: {Requests: cfg.BiometricPerMin, Window: time.Minute},
		ratelimitmodels.ClassOTP:       {Requests: cfg.OTPPerMin, Window: time.Minute},
		ratelimitmodels.ClassDefault:   {Requests: cfg.DefaultPerMin, Window: time.Minute},
	}, log,
		ratelimitmw.WithDisabled(!cfg.Enabled),
		ratelimitmw.WithMetrics(ratelimitmetrics.New(prometheus.DefaultRegisterer)),
	)
	return mw.RateLimit(ratelimitmw.PathClassifier(httpapi.RateLimitClasses, ratelimitmodels.ClassDefault))
}

func buildArchive(cfg config.ArchiveConfig, log *slog.Logger) (biometric.CaptureArchive, error) {
	switch cfg.Driver {
	case config.ArchiveFile:
		return biometric.NewFileArchive(cfg.Dir)
	case config.ArchiveS3:
		return biometric.NewS3Archive(cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region, log)
	default:
		return biometric.NopArchive{}, nil
	}
}
