package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/", h.index)

	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/qr", h.qr)
		api.POST("/stamp", h.stamp)
		api.POST("/stamp/urls", h.stampURLs)

		sessions := api.Group("/sessions")
		sessions.POST("", h.createSession)
		sessions.GET("/:id", h.getSession)
		sessions.DELETE("/:id", h.deleteSession)
		sessions.PUT("/:id/images", h.putImages)
		sessions.PUT("/:id/logo", h.putLogo)
		sessions.DELETE("/:id/logo", h.deleteLogo)
		sessions.POST("/:id/download", h.download)
	}
}
