package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sellerprep-backend-go/internal/core"
	"sellerprep-backend-go/internal/middleware"
	"sellerprep-backend-go/internal/models"
)

// ErrorResponse is the generic error body returned by every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is a generic body for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// InitializeUserResponse reports the profile and whether this request
// created it.
type InitializeUserResponse struct {
	Profile *models.UserProfile `json:"profile"`
	Created bool                `json:"created"`
}

// authUserFromContext builds the caller identity from the claims the auth
// middleware stored. Returns false, after writing a 401, if the middleware
// did not run.
func authUserFromContext(c *gin.Context) (core.AuthUser, bool) {
	userID, exists := c.Get(middleware.ContextUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return core.AuthUser{}, false
	}
	return core.AuthUser{
		ID:          userID.(string),
		Email:       c.GetString(middleware.ContextUserEmail),
		DisplayName: c.GetString(middleware.ContextUserDisplayName),
	}, true
}
