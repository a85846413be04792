package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/api/handlers"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/api/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Services struct {
	Dashboard       handlers.DashboardService
	Alerts          handlers.AlertService
	Recommendations handlers.RecommendationService
	Runs            handlers.RunService
	Sales           handlers.SalesService
	Health          map[string]HealthCheck
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	if services == nil {
		services = &Services{}
	}
	apiGroup.GET("/health", healthHandler(services.Health))

	if services.Dashboard != nil {
		dashboardHandler := handlers.NewDashboardHandler(services.Dashboard)
		apiGroup.GET("/kpis", dashboardHandler.GetKPIs)
		apiGroup.GET("/almacenes", dashboardHandler.ListWarehouses)
		apiGroup.GET("/almacenes/:codigo/inventario", dashboardHandler.WarehouseInventory)
		apiGroup.GET("/productos/:referencia/red", dashboardHandler.ProductNetwork)
		apiGroup.GET("/regionales", dashboardHandler.RegionalMetrics)
	}

	if services.Alerts != nil {
		alertHandler := handlers.NewAlertHandler(services.Alerts)
		alertGroup := apiGroup.Group("/alertas")
		{
			alertGroup.GET("", alertHandler.List)
			alertGroup.GET("/resumen", alertHandler.Summary)
			alertGroup.PATCH("/:id/estado", alertHandler.UpdateStatus)
		}
	}

	if services.Recommendations != nil {
		recHandler := handlers.NewRecommendationHandler(services.Recommendations)
		apiGroup.GET("/traslados", recHandler.ListTransfers)
		apiGroup.PATCH("/traslados/:id/estado", recHandler.UpdateTransferStatus)
		apiGroup.GET("/compras", recHandler.ListPurchases)
		apiGroup.PATCH("/compras/:id/estado", recHandler.UpdatePurchaseStatus)
	}

	if services.Sales != nil {
		salesHandler := handlers.NewSalesHandler(services.Sales)
		apiGroup.GET("/ventas/diarias", salesHandler.DailySales)
		apiGroup.GET("/ventas/top-productos", salesHandler.TopProducts)
		apiGroup.GET("/marcas/desempeno", salesHandler.BrandPerformance)
		apiGroup.GET("/recomendaciones/antiguedad", salesHandler.RecommendationAging)
	}

	if services.Runs != nil {
		runHandler := handlers.NewRunHandler(services.Runs)
		runGroup := apiGroup.Group("/runs")
		{
			runGroup.GET("", runHandler.List)
			runGroup.POST("", runHandler.Trigger)
			runGroup.GET("/metrics", runHandler.Metrics)
			runGroup.GET("/:id", runHandler.Get)
		}
	}

	return router
}

func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": results})
	}
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
