package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/unemployed-avengers/backend/internal/metrics"
	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"github.com/anonto42/unemployed-avengers/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow requests and follow edges
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	metrics          *metrics.Metrics
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, m *metrics.Metrics) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
		metrics:          m,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/follow-status", h.GetFollowStatus)
	g.GET("/users/:id/followers", h.ListFollowers)
	g.GET("/users/:id/following", h.ListFollowing)
	g.GET("/follow-requests", h.ListPendingRequests)
	g.POST("/follow-requests/:requester_id/accept", h.AcceptRequest)
	g.POST("/follow-requests/:requester_id/reject", h.RejectRequest)
}

// PendingRequest is a follow request together with who sent it
type PendingRequest struct {
	models.FollowRequest
	Requester models.UserCompact `json:"requester"`
}

// FollowUser sends a follow request to a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	targetID := c.Param("id")

	if _, err := h.userRepository.GetUserByID(ctx, targetID); err != nil {
		return storeError(err, "User profile not found")
	}

	if err := h.followRepository.RequestFollow(ctx, session.UserID, targetID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrSelfFollow):
			return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
		case errors.Is(err, repositories.ErrAlreadyFollowing):
			return echo.NewHTTPError(http.StatusConflict, "Already following this user")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Follow request failed: "+err.Error())
		}
	}
	h.metrics.FollowRequests.Inc()

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"status": models.FollowStatusRequested}})
}

// UnfollowUser removes the caller's follow edge to a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}

	if err := h.followRepository.Unfollow(c.Request().Context(), session.UserID, c.Param("id")); err != nil {
		if errors.Is(err, repositories.ErrNotFollowing) {
			return echo.NewHTTPError(http.StatusNotFound, "Not following this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Unfollow failed: "+err.Error())
	}
	h.metrics.Unfollows.Inc()

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"status": models.FollowStatusNone}})
}

// GetFollowStatus reports whether the caller follows, has requested, or neither
func (h *FollowHandler) GetFollowStatus(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}

	status, err := h.followRepository.GetFollowStatus(c.Request().Context(), session.UserID, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"status": status}})
}

// ListPendingRequests lists follow requests waiting on the caller
func (h *FollowHandler) ListPendingRequests(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	requests, err := h.followRepository.ListPendingRequests(ctx, session.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	pending := make([]PendingRequest, 0, len(requests))
	for _, req := range requests {
		user, err := h.userRepository.GetUserByID(ctx, req.RequesterID)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		pending = append(pending, PendingRequest{FollowRequest: req, Requester: user.ToCompact()})
	}
	return c.JSON(http.StatusOK, pending)
}

// AcceptRequest turns a pending request into a follow edge
func (h *FollowHandler) AcceptRequest(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}

	if err := h.followRepository.AcceptFollowRequest(c.Request().Context(), c.Param("requester_id"), session.UserID); err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Follow request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Accept failed: "+err.Error())
	}
	h.metrics.FollowAccepts.Inc()

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"status": models.FollowStatusFollowing}})
}

// RejectRequest drops a pending request
func (h *FollowHandler) RejectRequest(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}

	if err := h.followRepository.RejectFollowRequest(c.Request().Context(), c.Param("requester_id"), session.UserID); err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Follow request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Reject failed: "+err.Error())
	}
	h.metrics.FollowRejects.Inc()

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"status": models.FollowStatusNone}})
}

func (h *FollowHandler) ListFollowers(c echo.Context) error {
	ctx := c.Request().Context()
	edges, err := h.followRepository.ListFollowers(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.FollowerID
	}
	users, err := compactUsers(ctx, h.userRepository, ids)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, users)
}

func (h *FollowHandler) ListFollowing(c echo.Context) error {
	ctx := c.Request().Context()
	edges, err := h.followRepository.ListFollowing(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.FollowingID
	}
	users, err := compactUsers(ctx, h.userRepository, ids)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, users)
}
