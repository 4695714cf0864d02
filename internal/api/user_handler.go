package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sellerprep-backend-go/internal/core"
	"sellerprep-backend-go/internal/models"
)

// UserHandler handles the user profile and admin endpoints.
type UserHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: us, logger: logger}
}

// mapUserErrorToStatus maps errors from core.UserService to HTTP responses.
func (h *UserHandler) mapUserErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrUserNotFound.Error()})
	case errors.Is(err, core.ErrAdminRequired):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: core.ErrAdminRequired.Error()})
	case errors.Is(err, core.ErrInvalidAdminTarget):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrInvalidAdminTarget.Error()})
	default:
		h.logger.Error("user endpoint failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// InitializeUserProfile handles POST /users/initialize. Called after
// client-side Firebase sign-in to ensure the backend profile exists.
func (h *UserHandler) InitializeUserProfile(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	profile, created, err := h.userService.GetOrCreate(c.Request.Context(), user.ID, user.Email, user.DisplayName)
	if err != nil {
		h.mapUserErrorToStatus(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, InitializeUserResponse{Profile: profile, Created: created})
}

// GetCurrentUserProfile handles GET /users/me.
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	profile, _, err := h.userService.GetOrCreate(c.Request.Context(), user.ID, user.Email, user.DisplayName)
	if err != nil {
		h.mapUserErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListUsers handles GET /admin/users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	profiles, err := h.userService.ListProfiles(c.Request.Context(), user.ID)
	if err != nil {
		h.mapUserErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// MakeAdmin handles POST /admin/make-admin.
func (h *UserHandler) MakeAdmin(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		return
	}

	var req models.MakeAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	target, err := h.userService.MakeAdmin(c.Request.Context(), user.ID, req)
	if err != nil {
		h.mapUserErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}
