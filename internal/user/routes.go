package user

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"liveability/internal/token"
)

// SetupRouter configures and returns the user-service router
func SetupRouter(h *Handler, verifier *token.Issuer, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.GET("/health", h.Health)

	users := r.Group("/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.GET("/:id", h.GetUser)
	}

	// Preference saves require a valid session token
	prefs := r.Group("/users")
	prefs.Use(TokenAuthMiddleware(verifier))
	{
		prefs.POST("/commute-preferences", h.SaveCommutePreferences)
		prefs.POST("/housing-preferences", h.SaveHousingPreferences)
		prefs.POST("/amenities-preferences", h.SaveAmenitiesPreferences)
	}

	return r
}
