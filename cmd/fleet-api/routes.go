package main

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	internalmiddleware "github.com/noah-isme/bus-fleet-api/internal/middleware"
	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/pkg/config"
)

func registerRoutes(r *gin.Engine, cfg *config.Config, deps *app, logr *zap.Logger) {
	r.Use(internalmiddleware.Metrics(deps.metrics))

	r.GET("/health", deps.metricsHandler.Health)
	r.GET("/ready", deps.metricsHandler.Ready)
	if deps.metrics != nil {
		r.GET("/metrics", deps.metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	limit := func(name string, max int, window time.Duration) gin.HandlerFunc {
		if !cfg.RateLimit.Enabled {
			return func(c *gin.Context) { c.Next() }
		}
		return deps.limiter.Limit(name, max, window)
	}
	audit := func(resource string) gin.HandlerFunc {
		return internalmiddleware.Audit(deps.audit, resource, logr)
	}
	readers := internalmiddleware.Readers()
	writers := internalmiddleware.Writers()

	api := r.Group(cfg.APIPrefix)
	api.Use(limit("api", cfg.RateLimit.APIMax, cfg.RateLimit.APIWindow))

	auth := api.Group("/auth")
	auth.POST("/login", limit("login", cfg.RateLimit.LoginMax, cfg.RateLimit.LoginWindow), deps.authHandler.Login)
	auth.POST("/register",
		limit("register", cfg.RateLimit.RegisterMax, cfg.RateLimit.RegisterWindow),
		internalmiddleware.AdminUnlessSetup(deps.auth, deps.auth),
		deps.authHandler.Register,
	)
	auth.GET("/check-setup", deps.authHandler.CheckSetup)
	auth.POST("/logout", internalmiddleware.JWT(deps.auth), deps.authHandler.Logout)
	auth.GET("/me", internalmiddleware.JWT(deps.auth), deps.authHandler.Me)

	// Signed links are handed out to people without an account.
	api.GET("/documents/download", deps.documentHandler.Download)

	secured := api.Group("", internalmiddleware.JWT(deps.auth))

	users := secured.Group("/users", internalmiddleware.RequireRoles(models.RoleAdmin), audit("users"))
	users.GET("", deps.userHandler.List)
	users.GET("/:id", deps.userHandler.Get)
	users.PATCH("/:id", deps.userHandler.Update)
	users.DELETE("/:id", deps.userHandler.Delete)

	payments := secured.Group("/payments", audit("payments"))
	payments.GET("", readers, deps.paymentHandler.List)
	payments.POST("", writers, deps.paymentHandler.Create)
	payments.DELETE("", writers, deps.paymentHandler.Delete)
	payments.GET("/:id", readers, deps.paymentHandler.Get)
	payments.GET("/:id/receipt", readers, deps.paymentHandler.Receipt)
	payments.DELETE("/:id", writers, deps.paymentHandler.Delete)

	ownerPayments := secured.Group("/bus-owner-payments", audit("bus_owner_payments"))
	ownerPayments.GET("", readers, deps.ownerPaymentHandler.List)
	ownerPayments.POST("", writers, deps.ownerPaymentHandler.Create)
	ownerPayments.PUT("", writers, deps.ownerPaymentHandler.Update)
	ownerPayments.DELETE("", writers, deps.ownerPaymentHandler.Delete)
	ownerPayments.GET("/stats", readers, deps.ownerPaymentHandler.Stats)

	students := secured.Group("/students", audit("students"))
	students.GET("", readers, deps.studentHandler.List)
	students.POST("", writers, deps.studentHandler.Create)
	students.POST("/promote", writers, deps.studentHandler.Promote)
	students.GET("/:id", readers, deps.studentHandler.Get)
	students.PUT("/:id", writers, deps.studentHandler.Update)
	students.DELETE("/:id", writers, deps.studentHandler.Delete)
	students.PATCH("/:id/status", writers, deps.studentHandler.SetStatus)
	students.GET("/:id/status-history", readers, deps.studentHandler.StatusHistory)
	students.GET("/:id/fees", readers, deps.paymentHandler.StudentFees)

	fleet := secured.Group("/fleet")
	fleet.GET("/overview", readers, deps.busHandler.Overview)
	buses := fleet.Group("/buses", audit("buses"))
	buses.GET("", readers, deps.busHandler.List)
	buses.POST("", writers, deps.busHandler.Create)
	buses.GET("/:id", readers, deps.busHandler.Get)
	buses.PUT("/:id", writers, deps.busHandler.Update)
	buses.DELETE("/:id", writers, deps.busHandler.Delete)
	buses.GET("/:id/expenses", readers, deps.busHandler.Expenses)
	buses.GET("/:id/documents", readers, deps.documentHandler.ListForBus)
	buses.POST("/:id/documents", writers, deps.documentHandler.UploadForBus)

	drivers := secured.Group("/drivers", audit("drivers"))
	drivers.GET("", readers, deps.driverHandler.List)
	drivers.POST("", writers, deps.driverHandler.Create)
	drivers.GET("/:id", readers, deps.driverHandler.Get)
	drivers.PUT("/:id", writers, deps.driverHandler.Update)
	drivers.DELETE("/:id", writers, deps.driverHandler.Delete)
	drivers.GET("/:id/documents", readers, deps.documentHandler.ListForDriver)
	drivers.POST("/:id/documents", writers, deps.documentHandler.UploadForDriver)

	documents := secured.Group("/documents", audit("documents"))
	documents.GET("/:id/url", readers, deps.documentHandler.URL)
	documents.DELETE("/:id", writers, deps.documentHandler.Delete)

	routes := secured.Group("/routes", audit("routes"))
	routes.GET("", readers, deps.routeHandler.List)
	routes.POST("", writers, deps.routeHandler.Create)
	routes.POST("/assign-bus", writers, deps.routeHandler.AssignBus)
	routes.GET("/:id", readers, deps.routeHandler.Get)
	routes.PUT("/:id", writers, deps.routeHandler.Update)
	routes.DELETE("/:id", writers, deps.routeHandler.Delete)

	inventory := deps.inventoryHandler
	for prefix, category := range map[string]models.InventoryCategory{"/fuel": models.CategoryFuel, "/urea": models.CategoryUrea} {
		stock := secured.Group(prefix, audit(string(category)))
		stock.GET("/inventory", readers, inventory.Summary(category))
		stock.GET("/purchases", readers, inventory.Purchases(category))
		stock.POST("/purchases", writers, inventory.RecordPurchase(category))
		stock.DELETE("/purchases/:id", writers, inventory.DeletePurchase(category))
		stock.GET("/dispenses", readers, inventory.Dispenses(category))
		stock.POST("/dispenses", writers, inventory.Dispense(category))
		stock.DELETE("/dispenses/:id", writers, inventory.DeleteDispense(category))
	}
	secured.GET("/fuel/mileage", readers, inventory.Mileage)

	vehicles := secured.Group("/personal-vehicles", audit("personal_vehicles"))
	vehicles.GET("", readers, inventory.Vehicles)
	vehicles.POST("", writers, inventory.RegisterVehicle)
	vehicles.GET("/dispense", readers, inventory.VehicleDispenses)
	vehicles.POST("/dispense", writers, inventory.DispenseToVehicle)
	vehicles.DELETE("/dispense", writers, inventory.DeleteVehicleDispense)
	vehicles.DELETE("/:id", writers, inventory.RemoveVehicle)

	expenses := secured.Group("/expenses", audit("expenses"))
	expenses.GET("/log", readers, deps.expenseHandler.List)
	expenses.POST("/log", writers, deps.expenseHandler.Log)
	expenses.GET("/aggregate", readers, deps.expenseHandler.Aggregate)
	expenses.GET("/cost-per-km", readers, deps.expenseHandler.CostPerKm)

	alerts := secured.Group("/alerts", audit("reminders"))
	alerts.GET("", readers, deps.alertHandler.Report)
	alerts.POST("/reminders", writers, deps.alertHandler.CreateReminder)
	alerts.POST("/resolve", writers, deps.alertHandler.Resolve)

	export := secured.Group("/export", readers)
	export.GET("/students", deps.exportHandler.Students)
	export.GET("/payments", deps.exportHandler.Payments)
}
