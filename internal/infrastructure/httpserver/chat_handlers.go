package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/driftchat/drift/internal/core/domain/chat"
	"github.com/driftchat/drift/internal/core/domain/friend"
	"github.com/driftchat/drift/internal/core/domain/message"
	"github.com/driftchat/drift/internal/infrastructure/httpserver/helpers"
)

func chatErrorStatus(err error) int {
	switch {
	case errors.Is(err, chat.ErrNotFound), errors.Is(err, friend.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrNotMember):
		return http.StatusForbidden
	case errors.Is(err, message.ErrEmptyBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) listChats(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	summaries, err := s.chatService.ListSummaries(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list chats")
	}
	return c.JSON(http.StatusOK, summaries)
}

// openDirectChat resolves (or creates) the direct chat with a friend.
func (s *Server) openDirectChat(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	otherID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	ch, err := s.chatService.EnsureDirect(c.Request().Context(), userID, otherID)
	if err != nil {
		return echo.NewHTTPError(chatErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, ch)
}

func (s *Server) listMessages(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid chat id")
	}

	before := c.QueryParam("before")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	msgs, err := s.messageService.ListWindow(c.Request().Context(), chatID, userID, before, limit)
	if err != nil {
		return echo.NewHTTPError(chatErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, msgs)
}

func (s *Server) sendMessage(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid chat id")
	}

	var req message.SendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	m, err := s.messageService.Send(c.Request().Context(), chatID, userID, req.Body)
	if err != nil {
		return echo.NewHTTPError(chatErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (s *Server) markRead(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid chat id")
	}

	var req struct {
		MessageIDs []uuid.UUID `json:"message_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.messageService.MarkRead(c.Request().Context(), chatID, userID, req.MessageIDs); err != nil {
		return echo.NewHTTPError(chatErrorStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listReceipts(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid chat id")
	}

	receipts, err := s.messageService.Receipts(c.Request().Context(), chatID, userID)
	if err != nil {
		return echo.NewHTTPError(chatErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, receipts)
}

func (s *Server) getUnread(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid chat id")
	}

	n, err := s.messageService.Unread(c.Request().Context(), chatID, userID)
	if err != nil {
		return echo.NewHTTPError(chatErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"unread": n})
}
