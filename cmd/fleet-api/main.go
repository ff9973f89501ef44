package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/bus-fleet-api/api/swagger"
	"github.com/noah-isme/bus-fleet-api/internal/handler"
	internalmiddleware "github.com/noah-isme/bus-fleet-api/internal/middleware"
	"github.com/noah-isme/bus-fleet-api/internal/repository"
	"github.com/noah-isme/bus-fleet-api/internal/service"
	"github.com/noah-isme/bus-fleet-api/pkg/cache"
	"github.com/noah-isme/bus-fleet-api/pkg/config"
	"github.com/noah-isme/bus-fleet-api/pkg/database"
	"github.com/noah-isme/bus-fleet-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/bus-fleet-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/bus-fleet-api/pkg/middleware/requestid"
)

// @title School Bus Fleet API
// @version 1.0.0
// @description Fleet register, student transport fees, owner settlements, fuel and urea stock, expenses and expiry alerts.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(context.Background(), cfg.Database, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if client, err := cache.NewRedis(context.Background(), cfg.Redis); err != nil {
		logr.Warn("redis unavailable, caching disabled and rate limits kept in memory", zap.Error(err))
	} else {
		redisClient = client
	}

	deps, err := buildApp(cfg, db, redisClient, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to build application", "error", err)
	}
	defer deps.cacheRepo.Close() //nolint:errcheck

	deps.audit.Start(context.Background())
	defer deps.audit.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	registerRoutes(r, cfg, deps, logr)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// app holds the wired handlers and the middleware dependencies routes need.
type app struct {
	cacheRepo *repository.CacheRepository
	metrics   *service.MetricsService
	auth      *service.AuthService
	audit     *service.AuditRecorder
	limiter   *internalmiddleware.RateLimiter

	authHandler         *handler.AuthHandler
	userHandler         *handler.UserHandler
	paymentHandler      *handler.PaymentHandler
	ownerPaymentHandler *handler.OwnerPaymentHandler
	studentHandler      *handler.StudentHandler
	busHandler          *handler.BusHandler
	driverHandler       *handler.DriverHandler
	routeHandler        *handler.RouteHandler
	inventoryHandler    *handler.InventoryHandler
	expenseHandler      *handler.ExpenseHandler
	alertHandler        *handler.AlertHandler
	documentHandler     *handler.DocumentHandler
	exportHandler       *handler.ExportHandler
	metricsHandler      *handler.MetricsHandler
}

type sqlPinger interface {
	PingContext(ctx context.Context) error
}

type dbPinger struct {
	db sqlPinger
}

func (p dbPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
