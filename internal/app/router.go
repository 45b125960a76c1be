package app

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"budgettracker/internal/handlers"
	"budgettracker/internal/middleware"
)

// Router builds the HTTP API.
func (a *App) Router() *gin.Engine {
	cfg := a.Config

	authHandler := handlers.NewAuthHandler(a.Users, a.Audit)
	periodHandler := handlers.NewPeriodHandler(a.Periods, a.Audit)
	expenseHandler := handlers.NewExpenseHandler(a.Expenses, a.Audit)
	reportHandler := handlers.NewReportHandler(a.Reports)
	syncHandler := handlers.NewSyncHandler(a.Sync)
	csvHandler := handlers.NewCSVHandler(a.Periods, a.Expenses, a.Audit)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	if len(cfg.CORSAllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSAllowOrigins,
			AllowMethods:  []string{"OPTIONS", "GET", "POST", "PUT", "DELETE"},
			AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders: []string{middleware.RequestIDHeader, "Content-Disposition"},
			MaxAge:        12 * time.Hour,
		}))
	}

	if cfg.EnablePprof {
		pprof.Register(router, "debug/pprof")
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cloud": cfg.CloudEnabled()})
	})

	limiter := middleware.RateLimit(middleware.NewRateLimiterStore(middleware.RateLimiterConfig{
		PerMinute: cfg.RateLimitPerMinute,
		Burst:     cfg.RateLimitBurst,
	}))

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth", limiter)
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/activity", authHandler.GetActivity)

	periods := protected.Group("/periods")
	periods.POST("", periodHandler.CreatePeriod)
	periods.GET("", periodHandler.GetPeriods)
	periods.GET("/active", periodHandler.GetActivePeriod)
	periods.GET("/:id", periodHandler.GetPeriod)
	periods.PUT("/:id", periodHandler.UpdatePeriod)
	periods.DELETE("/:id", periodHandler.DeletePeriod)
	periods.POST("/:id/activate", periodHandler.ActivatePeriod)
	periods.POST("/:id/archive", periodHandler.ArchivePeriod)
	periods.POST("/:id/expenses", expenseHandler.CreateExpense)
	periods.GET("/:id/expenses", expenseHandler.GetPeriodExpenses)
	periods.GET("/:id/export", csvHandler.ExportPeriod)
	periods.POST("/:id/import", csvHandler.ImportPeriod)

	expenses := protected.Group("/expenses")
	expenses.POST("/validate", expenseHandler.ValidateExpense)
	expenses.POST("/bulk-delete", expenseHandler.BulkDeleteExpenses)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	reports := protected.Group("/reports")
	reports.GET("/summary", reportHandler.GetSummary)
	reports.GET("/monthly", reportHandler.GetMonthlyTotals)
	reports.GET("/projection", reportHandler.GetProjection)
	reports.GET("/frequency", reportHandler.GetFrequencyBreakdown)
	reports.GET("/compare", reportHandler.ComparePeriods)
	reports.GET("/compare/monthly", reportHandler.CompareMonthlyTotals)
	reports.GET("/compare/expenses", reportHandler.CompareExpenses)
	reports.GET("/trends", reportHandler.GetYearlyTrends)

	sync := protected.Group("/sync", limiter)
	sync.GET("/status", syncHandler.GetStatus)
	sync.GET("/check", syncHandler.CheckForUpdates)
	sync.POST("", syncHandler.Sync)
	sync.POST("/push", syncHandler.Push)
	sync.POST("/pull", syncHandler.Pull)
	sync.GET("/backups", syncHandler.ListBackups)
	sync.POST("/backups", syncHandler.CreateBackup)
	sync.POST("/backups/rotate", syncHandler.RotateBackups)
	sync.POST("/backups/:id/restore", syncHandler.RestoreBackup)

	return router
}
