package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/unemployed-avengers/backend/internal/metrics"
	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"github.com/anonto42/unemployed-avengers/backend/internal/moodfilter"
	"github.com/anonto42/unemployed-avengers/backend/internal/repositories"
	"github.com/anonto42/unemployed-avengers/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// MoodHandler handles HTTP requests related to mood events
type MoodHandler struct {
	moodRepository    repositories.MoodRepository
	userRepository    repositories.UserRepository
	followRepository  repositories.FollowRepository
	commentRepository repositories.CommentRepository
	metrics           *metrics.Metrics
}

// NewMoodHandler creates a new MoodHandler
func NewMoodHandler(
	moodRepo repositories.MoodRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	commentRepo repositories.CommentRepository,
	m *metrics.Metrics,
) *MoodHandler {
	return &MoodHandler{
		moodRepository:    moodRepo,
		userRepository:    userRepo,
		followRepository:  followRepo,
		commentRepository: commentRepo,
		metrics:           m,
	}
}

// RegisterMoodRoutes registers mood-related routes
func (h *MoodHandler) RegisterMoodRoutes(g *echo.Group) {
	g.POST("/moods", h.CreateMood)
	g.GET("/moods", h.ListMoods)
	g.GET("/moods/:id", h.GetMood)
	g.PUT("/moods/:id", h.UpdateMood)
	g.DELETE("/moods/:id", h.DeleteMood)
	g.GET("/users/:id/moods", h.ListUserMoods)
}

// CreateMood logs a new mood event for the caller
func (h *MoodHandler) CreateMood(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}
	var req models.MoodEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	mood := &models.MoodEvent{
		ID:        uuid.NewString(),
		UserID:    session.UserID,
		Username:  session.Username,
		Timestamp: time.Now().UnixMilli(),
	}
	req.Apply(mood)

	if err := h.moodRepository.CreateMood(c.Request().Context(), mood); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.metrics.MoodsCreated.Inc()
	return c.JSON(http.StatusCreated, mood)
}

// GetMood returns a mood event the caller is allowed to see
func (h *MoodHandler) GetMood(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	mood, err := h.moodRepository.FindMood(ctx, c.Param("id"))
	if err != nil {
		return storeError(err, "Mood event not found")
	}
	visible, err := canView(ctx, h.followRepository, session.UserID, mood)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !visible {
		return echo.NewHTTPError(http.StatusNotFound, "Mood event not found")
	}
	return c.JSON(http.StatusOK, mood)
}

// UpdateMood overwrites one of the caller's mood events
func (h *MoodHandler) UpdateMood(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}
	var req models.MoodEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	mood, err := h.moodRepository.GetMood(ctx, session.UserID, c.Param("id"))
	if err != nil {
		return storeError(err, "Mood event not found")
	}
	req.Apply(mood)

	if err := h.moodRepository.UpdateMood(ctx, mood); err != nil {
		return storeError(err, "Mood event not found")
	}
	return c.JSON(http.StatusOK, mood)
}

// DeleteMood removes one of the caller's mood events and its comments
func (h *MoodHandler) DeleteMood(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	id := c.Param("id")

	if err := h.moodRepository.DeleteMood(ctx, session.UserID, id); err != nil {
		return storeError(err, "Mood event not found")
	}

	comments, err := h.commentRepository.ListCommentsByMoodEvent(ctx, id)
	if err != nil {
		logger.Log.WithError(err).WithField("mood_id", id).Warn("Failed to list comments of deleted mood event")
		return c.NoContent(http.StatusNoContent)
	}
	for _, comment := range comments {
		if err := h.commentRepository.DeleteComment(ctx, comment.ID); err != nil {
			logger.Log.WithError(err).WithField("comment_id", comment.ID).Warn("Failed to delete comment of deleted mood event")
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMoods returns the caller's own mood history, newest first, filtered by the query
func (h *MoodHandler) ListMoods(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}
	criteria, err := parseCriteria(c)
	if err != nil {
		return err
	}

	moods, err := h.moodRepository.ListMoodsByUser(c.Request().Context(), session.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, moodfilter.Filter(moods, criteria, time.Now()))
}

// ListUserMoods returns another user's public moods to their followers. The
// caller's own ID lists everything, private moods included.
func (h *MoodHandler) ListUserMoods(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}
	criteria, err := parseCriteria(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	targetID := c.Param("id")

	var moods []models.MoodEvent
	if targetID == session.UserID {
		moods, err = h.moodRepository.ListMoodsByUser(ctx, targetID)
	} else {
		if _, err := h.userRepository.GetUserByID(ctx, targetID); err != nil {
			return storeError(err, "User profile not found")
		}
		following, ferr := h.followRepository.IsFollowing(ctx, session.UserID, targetID)
		if ferr != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, ferr.Error())
		}
		if !following {
			return echo.NewHTTPError(http.StatusForbidden, "You must follow this user to see their moods")
		}
		moods, err = h.moodRepository.ListPublicMoodsByUsers(ctx, []string{targetID})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, moodfilter.Filter(moods, criteria, time.Now()))
}
