package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"blogapi/internal/errors"
	"blogapi/internal/middleware"
	"blogapi/internal/service"
)

// UserHandler bundles HTTP handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type profileData struct {
	Profile *service.UserProfile `json:"profile"`
}

// ownID resolves :id and rejects anyone but its owner.
func ownID(c echo.Context) (uuid.UUID, error) {
	id, err := pathID(c)
	if err != nil {
		return uuid.Nil, err
	}
	user := middleware.CurrentUser(c)
	if user == nil {
		return uuid.Nil, errors.Unauthorized("Unauthorized")
	}
	if user.ID != id {
		return uuid.Nil, errors.Forbidden("Forbidden")
	}
	return id, nil
}

// GetProfile godoc
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID, must be the caller"
// @Success 200 {object} Response{data=profileData}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	id, err := ownID(c)
	if err != nil {
		return err
	}
	profile, err := h.svc.GetUserProfile(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User profile retrieved successfully", profileData{Profile: profile})
}

// UpdateProfile godoc
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID, must be the caller"
// @Param request body service.UpdateProfileInput true "Profile"
// @Success 200 {object} Response{data=profileData}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /users/{id}/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	id, err := ownID(c)
	if err != nil {
		return err
	}
	var req service.UpdateProfileInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	profile, err := h.svc.UpdateUserProfile(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User profile updated successfully", profileData{Profile: profile})
}
