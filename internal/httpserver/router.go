package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"studyhub/internal/handler"
	"studyhub/internal/ws"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	groupHandler *handler.GroupHandler,
	taskHandler *handler.TaskHandler,
	chatHandler *handler.ChatHandler,
	resourceHandler *handler.ResourceHandler,
	wsHandler *ws.Handler,
	jwtSecret string,
	db *pgxpool.Pool,
	logger *zap.Logger,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(RequestLogMiddleware(logger))

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Notification push channel; the desktop client holds this open.
	r.GET("/ws", wsHandler.Serve)

	// Public
	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)

	// Protected
	api := r.Group("/api")
	api.Use(AuthMiddleware(jwtSecret))
	{
		api.POST("/groups", groupHandler.Create)
		api.GET("/groups", groupHandler.List)
		api.POST("/groups/:id/join", groupHandler.Join)
		api.GET("/groups/:id/members", groupHandler.Members)

		api.POST("/tasks", taskHandler.Create)
		api.GET("/tasks", taskHandler.ListByGroup)
		api.PUT("/tasks/:id/status", taskHandler.UpdateStatus)
		api.DELETE("/tasks/:id", taskHandler.Delete)

		api.POST("/chat", chatHandler.Post)
		api.GET("/chat", chatHandler.ListByGroup)

		api.POST("/resources/url", resourceHandler.ShareURL)
		api.POST("/resources/file", resourceHandler.ShareFile)
		api.GET("/resources", resourceHandler.ListByGroup)
	}

	return &Router{Engine: r}
}
