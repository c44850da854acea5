package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/driftchat/drift/internal/application/services"
	"github.com/driftchat/drift/internal/core/domain/friend"
	"github.com/driftchat/drift/internal/infrastructure/httpserver/helpers"
)

// friendErrorStatus maps the friendship domain errors onto HTTP codes.
func friendErrorStatus(err error) int {
	switch {
	case errors.Is(err, friend.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, friend.ErrSelfRequest),
		errors.Is(err, friend.ErrAlreadyFriends),
		errors.Is(err, friend.ErrAlreadyPending),
		errors.Is(err, friend.ErrNotPending):
		return http.StatusConflict
	case errors.Is(err, friend.ErrNotReceiver):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) sendFriendRequest(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req friend.SendRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ReceiverID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "receiver_id is required")
	}

	f, err := s.friendService.SendRequest(c.Request().Context(), userID, req.ReceiverID)
	if err != nil {
		return echo.NewHTTPError(friendErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, f)
}

func (s *Server) acceptFriendRequest(c echo.Context) error {
	return s.answerFriendRequest(c, true)
}

func (s *Server) declineFriendRequest(c echo.Context) error {
	return s.answerFriendRequest(c, false)
}

func (s *Server) answerFriendRequest(c echo.Context, accept bool) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request id")
	}

	var f *friend.Friendship
	if accept {
		f, err = s.friendService.Accept(c.Request().Context(), userID, requestID)
	} else {
		f, err = s.friendService.Decline(c.Request().Context(), userID, requestID)
	}
	if err != nil {
		return echo.NewHTTPError(friendErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, f)
}

func (s *Server) removeFriend(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	otherID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := s.friendService.Remove(c.Request().Context(), userID, otherID); err != nil {
		return echo.NewHTTPError(friendErrorStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listFriends(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	friends, err := s.friendService.ListFriends(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list friends")
	}
	return c.JSON(http.StatusOK, friends)
}

func (s *Server) listPendingRequests(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	pending, err := s.friendService.ListPending(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list pending requests")
	}
	return c.JSON(http.StatusOK, pending)
}

func (s *Server) listSentRequests(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	sent, err := s.friendService.ListSent(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list sent requests")
	}
	return c.JSON(http.StatusOK, sent)
}

func (s *Server) listShareTargets(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	targets, err := s.friendService.ShareTargets(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list share targets")
	}
	return c.JSON(http.StatusOK, targets)
}

func (s *Server) sendInvite(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req friend.InviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	if err := s.friendService.Invite(c.Request().Context(), userID, req.Email); err != nil {
		return echo.NewHTTPError(friendErrorStatus(err), err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) redeemInvite(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req struct {
		Email string `json:"email"`
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and token are required")
	}

	f, err := s.friendService.RedeemInvite(c.Request().Context(), userID, req.Email, req.Token)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInviteToken) {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return echo.NewHTTPError(friendErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, f)
}
