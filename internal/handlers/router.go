package handlers

import (
	"net/http"
	"time"

	"property-listings/internal/logging"
	"property-listings/internal/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handlers groups every route handler the router mounts
type Handlers struct {
	Agents     *AgentHandler
	Properties *PropertyHandler
	Images     *ImageHandler
	Static     *StaticHandler
	Admin      *AdminHandler
}

// NewRouter builds the gin engine with CORS, request logging and all routes
func NewRouter(h Handlers, allowedOrigins []string, maxUploadBytes int64, limiter *ratelimit.RateLimiter, logger logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger(logger))
	r.MaxMultipartMemory = maxUploadBytes

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", healthCheck)
	r.GET("/images/:name", h.Static.Serve)

	api := r.Group("/api")
	{
		agents := api.Group("/agents")
		agents.GET("", h.Agents.List)
		agents.GET("/:id", h.Agents.Get)
		agents.POST("", h.Agents.Create)
		agents.PUT("/:id", h.Agents.Update)
		agents.DELETE("/:id", h.Agents.Delete)

		properties := api.Group("/properties")
		properties.GET("", h.Properties.List)
		properties.POST("", h.Properties.Create)
		properties.GET("/search", h.Properties.Search)
		properties.GET("/price", h.Properties.ByMaxPrice)
		properties.GET("/type/:type", h.Properties.ByType)
		properties.GET("/agent/:agentId", h.Properties.ByAgent)
		properties.GET("/:id", h.Properties.Get)
		properties.PUT("/:id", h.Properties.Update)
		properties.DELETE("/:id", h.Properties.Delete)

		// Images
		properties.GET("/:id/images", h.Images.List)
		properties.POST("/:id/images", limiter.Middleware(), h.Images.Upload)
		properties.PUT("/images/:imageId", h.Images.Update)
		properties.DELETE("/images/:imageId", h.Images.Delete)

		api.GET("/system/info", h.Admin.GetSystemInfo)

		admin := api.Group("/admin")
		admin.GET("/stats", h.Admin.GetStats)
		admin.GET("/ratelimit", h.Admin.GetRateLimitStats)
		admin.POST("/cleanup/run", h.Admin.RunCleanup)
		admin.GET("/cleanup/logs", h.Admin.GetDeleteLogs)
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}
