package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/driftchat/drift/internal/core/domain/message"
	"github.com/driftchat/drift/internal/infrastructure/httpserver/helpers"
	"github.com/driftchat/drift/internal/infrastructure/llm"
)

func (s *Server) sendAssistantMessage(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req message.SendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	reply, err := s.assistantSvc.Send(c.Request().Context(), userID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, message.ErrEmptyBody):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, llm.ErrAssistantUnavailable):
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadGateway, "assistant request failed")
		}
	}
	return c.JSON(http.StatusCreated, reply)
}

func (s *Server) listAssistantHistory(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	history, err := s.assistantSvc.History(c.Request().Context(), userID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load assistant history")
	}
	return c.JSON(http.StatusOK, history)
}
