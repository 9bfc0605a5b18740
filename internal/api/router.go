package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns a gin engine with all routes wired.
// When authEnabled is set, every /api route requires a valid Bearer JWT.
func SetupRouter(h *Handler, authEnabled bool, jwtSecret string) *gin.Engine {
	// Default middleware (logger, recovery).
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	if authEnabled {
		api.Use(AuthMiddleware(jwtSecret))
	}
	{
		api.POST("/upload", h.Upload)
		api.POST("/analyze", h.Analyze)
		api.POST("/analyze/text", h.AnalyzeText)
		api.POST("/analyze/image", h.AnalyzeImage)
		api.GET("/analyze/:docId", h.GetAnalysis)
		api.POST("/chat", h.Chat)
		api.POST("/chat/feedback", h.Feedback)
	}

	return r
}
