package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/driftchat/drift/internal/core/domain/user"
	"github.com/driftchat/drift/internal/infrastructure/httpserver/helpers"
)

// getOwnProfile returns the caller's own profile.
func (s *Server) getOwnProfile(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	u, err := s.userService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) updateOwnProfile(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req user.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, err := s.userService.UpdateProfile(c.Request().Context(), userID, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update profile")
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) getProfile(c echo.Context) error {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	u, err := s.userService.GetProfile(c.Request().Context(), targetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}
