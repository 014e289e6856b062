package routes

import (
	"github.com/clodobox/EventGear/internal/core/container"
	"github.com/clodobox/EventGear/internal/middleware"
	"github.com/clodobox/EventGear/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Register mounts every feature handler. With a JWT secret configured the
// API requires a token and mutating routes additionally require the
// manager role; without one the routes stay open (development).
func Register(router *gin.Engine, c *container.Container, jwtSecret string, log *zap.Logger) {
	router.GET("/health", middleware.HealthCheckHandler())

	api := router.Group("")
	if jwtSecret != "" {
		api.Use(security.JWTMiddleware([]byte(jwtSecret)))
	} else {
		log.Warn("JWT_SECRET not set, API routes are unprotected")
	}

	write := api.Group("")
	if jwtSecret != "" {
		write.Use(security.Authorize("manager"))
	}

	c.EquipmentHandler.RegisterRoutes(api, write)
	c.ProjectHandler.RegisterRoutes(api, write)
	c.AllocationHandler.RegisterRoutes(api, write)
}
