package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/smslease/smslease/internal/provider"
	"github.com/smslease/smslease/internal/server/http/handlers"
	"github.com/smslease/smslease/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.LeaseFacade, providers *provider.Registry, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/events"})))

	orderHandler := handlers.NewOrderHandler(facade)
	messageHandler := handlers.NewMessageHandler(facade)
	balanceHandler := handlers.NewBalanceHandler(facade)
	catalogHandler := handlers.NewCatalogHandler(facade)
	webhookHandler := handlers.NewWebhookHandler(facade, providers, logger)
	eventsHandler := handlers.NewEventsHandler(facade, logger)

	api := engine.Group("/api")
	api.POST("/webhook/sms/:provider", webhookHandler.Receive)

	user := api.Group("")
	user.Use(middleware.RequireUser())
	user.POST("/orders", orderHandler.Create)
	user.GET("/orders", orderHandler.List)
	user.GET("/orders/:id", orderHandler.Get)
	user.GET("/messages", messageHandler.List)
	user.GET("/balance", balanceHandler.Summary)
	user.GET("/balance/history", balanceHandler.History)
	user.GET("/countries", catalogHandler.Countries)
	user.GET("/services", catalogHandler.Services)
	user.GET("/events", eventsHandler.Stream)

	return engine
}
