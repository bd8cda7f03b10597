package api

import (
	"net/http"
	"time"

	"statuspulse/api/v1/health"
	"statuspulse/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewServer builds the HTTP server for the health surface on the
// configured port. The caller owns ListenAndServe and Shutdown.
func NewServer(mode health.ModeReporter) *http.Server {
	return &http.Server{
		Addr:              ":" + config.AppConfig.Port,
		Handler:           NewRouter(mode),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(mode health.ModeReporter) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	SetupRoutes(r, mode)
	return r
}

func SetupRoutes(r *gin.Engine, mode health.ModeReporter) {
	v1 := r.Group("/api/v1")
	{
		healthApi := v1.Group("/health")
		{
			healthApi.GET("", health.GetHealth(mode))
		}
	}
}
