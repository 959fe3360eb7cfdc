package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gabrielvendedoryamaha-creator/Gest-o-de-Vendas/internal/sales"
)

// InitRoutes binds the session's HTTP surface onto the given engine.
func InitRoutes(e *gin.Engine, session *sales.Session, logger *zap.Logger) {
	appHandler := NewAppHandler(session, logger)

	e.POST("/login", appHandler.handleLogin)
	e.POST("/logout", appHandler.handleLogout)
	e.GET("/session", appHandler.handleSession)
	e.GET("/sales", appHandler.handleListSales)
	e.POST("/sales", appHandler.handleCreateSale)
	e.POST("/theme/toggle", appHandler.handleToggleTheme)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
