package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/enterprise-onboarding/internal/api/http"
	"github.com/spec-kit/enterprise-onboarding/internal/api/http/handlers"
	"github.com/spec-kit/enterprise-onboarding/internal/audit"
	"github.com/spec-kit/enterprise-onboarding/internal/auth"
	"github.com/spec-kit/enterprise-onboarding/internal/config"
	"github.com/spec-kit/enterprise-onboarding/internal/events"
	"github.com/spec-kit/enterprise-onboarding/internal/identity"
	"github.com/spec-kit/enterprise-onboarding/internal/mailer"
	"github.com/spec-kit/enterprise-onboarding/internal/observability"
	"github.com/spec-kit/enterprise-onboarding/internal/persistence"
	"github.com/spec-kit/enterprise-onboarding/internal/ratelimit"
	"github.com/spec-kit/enterprise-onboarding/internal/repository"
	"github.com/spec-kit/enterprise-onboarding/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	requestRepo := repository.NewRequestRepository(pool)
	reviewEventRepo := repository.NewReviewEventRepository(pool)
	codeRepo := repository.NewAccessCodeRepository(pool)
	orgRepo := repository.NewOrganizationRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	membershipRepo := repository.NewMembershipRepository(pool)
	auditRepo := repository.NewAuditLogRepository(pool)

	auditor := audit.NewRecorder(auditRepo, logger)
	dispatcher := events.NewInMemoryDispatcher()

	var mail mailer.Mailer
	if cfg.Mailer.WebhookURL != "" {
		mail = mailer.NewWebhookMailer(cfg.Mailer)
	} else {
		mail = mailer.NewLogMailer(logger, cfg.Mailer)
	}

	var identities identity.Provider
	if cfg.Identity.BaseURL != "" {
		identities = identity.NewHTTPProvider(cfg.Identity)
	} else {
		identities = identity.NewPostgresProvider(pool, cfg.Auth.BcryptCost)
	}

	limiter := ratelimit.NewRedisLimiter(redis.Client, logger,
		cfg.AccessCode.MaxValidateAttempts, cfg.AccessCode.AttemptWindow())

	codeService := service.NewCodeService(service.CodeDependencies{
		CodeRepo:    codeRepo,
		RequestRepo: requestRepo,
		Mailer:      mail,
		Dispatcher:  dispatcher,
		Auditor:     auditor,
		Logger:      logger,
		CodeTTL:     cfg.AccessCode.CodeTTL(),
	})
	registryService := service.NewRegistryService(service.RegistryDependencies{
		RequestRepo:     requestRepo,
		ReviewEventRepo: reviewEventRepo,
		CodeRepo:        codeRepo,
		Auditor:         auditor,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	reviewService := service.NewReviewService(service.ReviewDependencies{
		RequestRepo:     requestRepo,
		ReviewEventRepo: reviewEventRepo,
		Issuer:          codeService,
		Mailer:          mail,
		Dispatcher:      dispatcher,
		Auditor:         auditor,
		Logger:          logger,
	})
	validationService := service.NewValidationService(service.ValidationDependencies{
		CodeRepo:    codeRepo,
		OrgRepo:     orgRepo,
		ProfileRepo: profileRepo,
		Limiter:     limiter,
		Logger:      logger,
	})
	provisioningService := service.NewProvisioningService(service.ProvisioningDependencies{
		CodeRepo:       codeRepo,
		RequestRepo:    requestRepo,
		OrgRepo:        orgRepo,
		ProfileRepo:    profileRepo,
		MembershipRepo: membershipRepo,
		Identities:     identities,
		Dispatcher:     dispatcher,
		Auditor:        auditor,
		Logger:         logger,
	})

	notificationService := service.NewNotificationService(dispatcher, logger)
	notificationService.RegisterHandlers()

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokenManager)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Requests:       handlers.NewRequestsHandler(registryService),
		Review:         handlers.NewReviewHandler(reviewService, codeService),
		Setup:          handlers.NewSetupHandler(validationService, provisioningService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
