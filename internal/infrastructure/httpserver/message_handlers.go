package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/driftchat/drift/internal/core/domain/message"
	"github.com/driftchat/drift/internal/infrastructure/httpserver/helpers"
)

func (s *Server) toggleReaction(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid message id")
	}

	var req struct {
		Reaction message.Reaction `json:"reaction"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !req.Reaction.IsValid() {
		return echo.NewHTTPError(http.StatusBadRequest, "reaction must be 'like' or 'dislike'")
	}

	state, err := s.reactionSvc.Toggle(c.Request().Context(), messageID, userID, req.Reaction)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "reaction could not be saved")
	}
	return c.JSON(http.StatusOK, state)
}

func (s *Server) getReactions(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid message id")
	}

	state, err := s.reactionSvc.Get(c.Request().Context(), messageID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load reactions")
	}
	return c.JSON(http.StatusOK, state)
}

// getReactionTotals serves the shared counters without the caller's own
// reaction, so popular messages hit one cache entry for every viewer.
func (s *Server) getReactionTotals(c echo.Context) error {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid message id")
	}

	state, err := s.reactionSvc.Totals(c.Request().Context(), messageID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load reactions")
	}
	return c.JSON(http.StatusOK, state)
}
