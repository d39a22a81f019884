// Package gateway implements the API gateway: a stateless reverse proxy that
// re-exposes the user-service under /api and normalizes transport failures
// into a uniform error shape. It never inspects upstream error bodies; token
// verification belongs to the user-service, not here.
package gateway

import (
	"net/url"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the gateway router
func SetupRouter(upstream *url.URL, allowedOrigins []string) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	proxyHandler := NewProxyHandler(upstream)

	// Gateway health check
	r.GET("/health", proxyHandler.Health)

	// Everything under /api/users is relayed to the user-service with the
	// /api prefix stripped: /api/users/register -> /users/register.
	api := r.Group("/api")
	{
		api.Any("/users", proxyHandler.Relay("/api"))
		api.Any("/users/*path", proxyHandler.Relay("/api"))
	}

	return r
}
