package main

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/bus-fleet-api/internal/handler"
	internalmiddleware "github.com/noah-isme/bus-fleet-api/internal/middleware"
	"github.com/noah-isme/bus-fleet-api/internal/repository"
	"github.com/noah-isme/bus-fleet-api/internal/service"
	"github.com/noah-isme/bus-fleet-api/pkg/config"
	"github.com/noah-isme/bus-fleet-api/pkg/jobs"
	"github.com/noah-isme/bus-fleet-api/pkg/storage"
	"github.com/noah-isme/bus-fleet-api/pkg/validation"
)

func buildApp(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) (*app, error) {
	validate := validation.New()

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Ledger.OwnerStatsCacheTTL, logr, cacheRepo.Enabled())

	userRepo := repository.NewUserRepository(db)
	busRepo := repository.NewBusRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	routeRepo := repository.NewRouteRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	ownerPaymentRepo := repository.NewOwnerPaymentRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	vehicleRepo := repository.NewPersonalVehicleRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	fileStore, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		return nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "bus-fleet-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	busSvc := service.NewBusService(busRepo, expenseRepo, cacheSvc, validate, logr)
	driverSvc := service.NewDriverService(driverRepo, busRepo, documentRepo, validate, logr)
	routeSvc := service.NewRouteService(routeRepo, busRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, busRepo, cacheSvc, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, studentRepo, cacheSvc, metrics, validate, logr, service.PaymentConfig{
		AllowSplitPayments: cfg.Ledger.AllowSplitPayments,
		ReceiptPrefix:      cfg.Ledger.ReceiptPrefix,
		Organisation:       cfg.Ledger.Organisation,
	})
	ownerPaymentSvc := service.NewOwnerPaymentService(ownerPaymentRepo, busRepo, cacheSvc, cfg.Ledger.OwnerStatsCacheTTL, validate, logr)
	inventorySvc := service.NewInventoryService(inventoryRepo, vehicleRepo, busRepo, metrics, validate, logr, service.InventoryConfig{
		EnforceStock: cfg.Inventory.EnforceStock,
		RecentLimit:  cfg.Inventory.RecentLimit,
	})
	fleetSvc := service.NewFleetService(busRepo, inventorySvc, cacheSvc, metrics, 0, logr)
	expenseSvc := service.NewExpenseService(expenseRepo, busRepo, validate, logr)
	alertSvc := service.NewAlertService(service.AlertSources{
		Drivers:   driverRepo,
		Buses:     busRepo,
		BusLookup: busRepo,
		Documents: documentRepo,
		Reminders: reminderRepo,
	}, cfg.Alerts.DefaultDays, validate, logr)
	documentSvc := service.NewDocumentService(documentRepo, driverRepo, busRepo, fileStore, signer, validate, logr, service.DocumentConfig{
		MaxFileSize:  cfg.Documents.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Documents.AllowedMIMEs,
		APIPrefix:    cfg.APIPrefix,
	})
	exportSvc := service.NewExportService(studentRepo, paymentRepo, logr)

	return &app{
		cacheRepo: cacheRepo,
		metrics:   metrics,
		auth:      authSvc,
		audit:     service.NewAuditRecorder(userRepo, logr, jobs.QueueConfig{Workers: 2, MaxRetries: 3}),
		limiter:   internalmiddleware.NewRateLimiter(cacheRepo, logr),

		authHandler:         handler.NewAuthHandler(authSvc),
		userHandler:         handler.NewUserHandler(userSvc),
		paymentHandler:      handler.NewPaymentHandler(paymentSvc),
		ownerPaymentHandler: handler.NewOwnerPaymentHandler(ownerPaymentSvc),
		studentHandler:      handler.NewStudentHandler(studentSvc),
		busHandler:          handler.NewBusHandler(busSvc, fleetSvc),
		driverHandler:       handler.NewDriverHandler(driverSvc),
		routeHandler:        handler.NewRouteHandler(routeSvc),
		inventoryHandler:    handler.NewInventoryHandler(inventorySvc),
		expenseHandler:      handler.NewExpenseHandler(expenseSvc),
		alertHandler:        handler.NewAlertHandler(alertSvc),
		documentHandler:     handler.NewDocumentHandler(documentSvc),
		exportHandler:       handler.NewExportHandler(exportSvc),
		metricsHandler: handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
			"database": dbPinger{db: db},
			"redis":    cacheRepo,
		}),
	}, nil
}
