package api

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the legal assistant endpoints on rg. auth must set the
// caller's id and role; admin must run after it and reject non-admins.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, auth, admin gin.HandlerFunc) {
	protected := rg.Group("", auth)
	{
		protected.GET("/folders/", h.ListFolders)
		protected.POST("/folders/", h.CreateFolder)
		protected.GET("/folders/:folder_id/chats/", h.ListFolderChats)
		protected.GET("/chats/", h.ListChats)
		protected.POST("/chats/", h.CreateChat)
		protected.GET("/chats/:chat_id/history/", h.ChatHistory)
		protected.POST("/chat/", h.Ask)
	}

	adminGroup := protected.Group("/admin", admin)
	{
		adminGroup.POST("/upload/", h.Upload)
		adminGroup.GET("/documents/", h.ListDocuments)
	}
}

// RegisterHealth mounts the unauthenticated health endpoint.
func RegisterHealth(r gin.IRoutes, h *Handler) {
	r.GET("/healthz", h.Health)
}
