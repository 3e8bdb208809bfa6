// internal/app/router.go
package app

import (
	"github.com/gin-gonic/gin"

	clientHandler "atriumcrm-service/internal/handlers/client"
	dedupeHandler "atriumcrm-service/internal/handlers/dedupe"
	"atriumcrm-service/internal/middleware"
	"atriumcrm-service/internal/ws"
)

type Handlers struct {
	ClientHandler  *clientHandler.ClientHandler
	DedupeHandler  *dedupeHandler.DedupeHandler
	Hub            *ws.Hub
	AuthMiddleware *middleware.AuthMiddleware
	MergeLimiter   gin.HandlerFunc
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	wsGroup := r.Group("/ws")
	wsGroup.Use(h.AuthMiddleware.Auth())
	{
		wsGroup.GET("", h.Hub.HandleConnection)
	}

	// ==================== Clients ====================
	clients := api.Group("/clients")
	clients.Use(h.AuthMiddleware.Auth())
	{
		// List and search
		clients.GET("", h.ClientHandler.ListClients)

		// Create, read, update, delete
		clients.POST("", h.ClientHandler.CreateClient)
		clients.GET("/:id", h.ClientHandler.GetClient)
		clients.PUT("/:id", h.ClientHandler.UpdateClient)
		clients.DELETE("/:id", h.ClientHandler.DeleteClient)

		// Contact numbers
		clients.POST("/:id/phones", h.ClientHandler.AddPhone)
		clients.DELETE("/:id/phones/:phoneId", h.ClientHandler.RemovePhone)

		// Related records
		clients.GET("/:id/notes", h.ClientHandler.ListNotes)
		clients.POST("/:id/notes", h.ClientHandler.AddNote)
		clients.GET("/:id/cases", h.ClientHandler.ListCases)
		clients.POST("/:id/cases", h.ClientHandler.CreateCase)
		clients.GET("/:id/documents", h.ClientHandler.ListDocuments)
		clients.GET("/:id/leads", h.ClientHandler.ListLeads)

		// Deduplication
		clients.GET("/:id/conflicts", h.DedupeHandler.GetConflicts)
		clients.POST("/:id/merge", h.MergeLimiter, h.DedupeHandler.MergeClient)
	}
}
