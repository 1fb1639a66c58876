package api

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the public account endpoints on rg.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler) {
	rg.POST("/register/", h.Register)
	rg.POST("/login/", h.Login)
	rg.POST("/token/refresh/", h.Refresh)
}
