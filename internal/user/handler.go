package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler handles user-service HTTP requests
type Handler struct {
	service Service
}

// NewHandler creates a new user handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register handles POST /users/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.service.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		case errors.Is(err, ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters long"})
		case errors.Is(err, ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists"})
		default:
			slog.Error("Registration failed", "email", req.Email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "User creation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Login handles POST /users/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		case errors.Is(err, ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		default:
			slog.Error("Login failed", "email", req.Email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUser handles GET /users/:id
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		slog.Error("Failed to fetch user", "user_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": u})
}

// SaveCommutePreferences handles POST /users/commute-preferences
func (h *Handler) SaveCommutePreferences(c *gin.Context) {
	var prefs CommutePreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	h.savePreferences(c, func(userID int64) (*User, error) {
		return h.service.SaveCommutePreferences(c.Request.Context(), userID, &prefs)
	})
}

// SaveHousingPreferences handles POST /users/housing-preferences
func (h *Handler) SaveHousingPreferences(c *gin.Context) {
	var prefs HousingPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	h.savePreferences(c, func(userID int64) (*User, error) {
		return h.service.SaveHousingPreferences(c.Request.Context(), userID, &prefs)
	})
}

// SaveAmenitiesPreferences handles POST /users/amenities-preferences
func (h *Handler) SaveAmenitiesPreferences(c *gin.Context) {
	var prefs AmenitiesPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	h.savePreferences(c, func(userID int64) (*User, error) {
		return h.service.SaveAmenitiesPreferences(c.Request.Context(), userID, &prefs)
	})
}

// savePreferences runs one preference save for the authenticated user and
// translates the outcome. The user id comes from the verified token claims
// set by TokenAuthMiddleware, never from the payload.
func (h *Handler) savePreferences(c *gin.Context, save func(userID int64) (*User, error)) {
	userID, exists := AuthUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	u, err := save(userID)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
		case errors.Is(err, ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			slog.Error("Failed to save preferences", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		}
		return
	}

	c.JSON(http.StatusOK, PreferencesResponse{Success: true, User: u})
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   "user-service",
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
