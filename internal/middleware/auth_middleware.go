package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by VerifyToken for downstream handlers.
const (
	ContextUserID          = "userID"
	ContextUserEmail       = "userEmail"
	ContextUserDisplayName = "userDisplayName"
)

// errorResponse mirrors the API error shape without importing internal/api.
type errorResponse struct {
	Error string `json:"error"`
}

// AuthMiddleware verifies Firebase ID tokens on protected routes.
type AuthMiddleware struct {
	authClient *auth.Client
	logger     *zap.Logger
}

// NewAuthMiddleware creates the Firebase token middleware. Both dependencies
// are required.
func NewAuthMiddleware(authClient *auth.Client, logger *zap.Logger) *AuthMiddleware {
	if authClient == nil {
		panic("NewAuthMiddleware requires a non-nil Firebase auth client")
	}
	if logger == nil {
		panic("NewAuthMiddleware requires a non-nil zap.Logger instance")
	}
	return &AuthMiddleware{authClient: authClient, logger: logger}
}

// VerifyToken authenticates the request from the Authorization header and
// stores the caller's UID and identity claims in the Gin context. Requests
// without a valid Bearer token are rejected with 401.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		token, err := m.authClient.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			m.logger.Warn("ID token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		c.Set(ContextUserID, token.UID)
		if email, ok := token.Claims["email"].(string); ok {
			c.Set(ContextUserEmail, email)
		}
		if name, ok := token.Claims["name"].(string); ok {
			c.Set(ContextUserDisplayName, name)
		}

		c.Next()
	}
}
