package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Domenick1991/boatbooking/internal/service/booking"
	"github.com/Domenick1991/boatbooking/internal/service/trips"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RouterConfig struct {
	CORSOrigins []string
	SwaggerDir  string
}

func NewRouter(cfg RouterConfig, log *slog.Logger, tripSvc trips.TripUseCase, bookingSvc booking.BookingUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	if len(cfg.CORSOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORSOrigins
		corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}
		router.Use(cors.New(corsCfg))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	NewBoatHandler(tripSvc).Register(v1.Group("/boats"))
	tripsGroup := v1.Group("/trips")
	NewTripHandler(tripSvc).Register(tripsGroup)
	NewBookingHandler(bookingSvc).Register(tripsGroup)

	if cfg.SwaggerDir != "" {
		router.Static("/swagger", cfg.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/boatbooking.swagger.json"),
		)))
	}

	return router
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.Last().Error()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("http request", attrs...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("http request", attrs...)
		default:
			log.Info("http request", attrs...)
		}
	}
}
