package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/anonto42/unemployed-avengers/backend/internal/metrics"
	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"github.com/anonto42/unemployed-avengers/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	moodRepository    repositories.MoodRepository
	followRepository  repositories.FollowRepository
	metrics           *metrics.Metrics
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	moodRepo repositories.MoodRepository,
	followRepo repositories.FollowRepository,
	m *metrics.Metrics,
) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		moodRepository:    moodRepo,
		followRepository:  followRepo,
		metrics:           m,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/moods/:mood_id/comments", h.CreateComment)
	g.GET("/moods/:mood_id/comments", h.GetCommentsByMoodID)
	g.GET("/comments/:id/replies", h.GetReplies)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// visibleMood loads a mood event and checks the caller may see it
func (h *CommentHandler) visibleMood(ctx context.Context, viewerID, moodID string) (*models.MoodEvent, error) {
	mood, err := h.moodRepository.FindMood(ctx, moodID)
	if err != nil {
		return nil, storeError(err, "Mood event not found")
	}
	visible, err := canView(ctx, h.followRepository, viewerID, mood)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !visible {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Mood event not found")
	}
	return mood, nil
}

// CreateComment adds a comment, or a reply when parent_id is set
func (h *CommentHandler) CreateComment(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	moodID := c.Param("mood_id")

	if _, err := h.visibleMood(ctx, session.UserID, moodID); err != nil {
		return err
	}

	if req.ParentID != "" {
		parent, err := h.commentRepository.GetCommentByID(ctx, req.ParentID)
		if err != nil {
			return storeError(err, "Parent comment not found")
		}
		if parent.MoodEventID != moodID {
			return echo.NewHTTPError(http.StatusBadRequest, "Parent comment belongs to a different mood event")
		}
	}

	comment := &models.Comment{
		ID:          uuid.NewString(),
		MoodEventID: moodID,
		UserID:      session.UserID,
		Username:    session.Username,
		Content:     req.Content,
		Timestamp:   time.Now().UnixMilli(),
		ParentID:    req.ParentID,
		ReplyIDs:    []string{},
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return storeError(err, "Parent comment not found")
	}
	h.metrics.CommentsCreated.Inc()

	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsByMoodID lists the top-level comments on a mood event, oldest first
func (h *CommentHandler) GetCommentsByMoodID(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	moodID := c.Param("mood_id")

	if _, err := h.visibleMood(ctx, session.UserID, moodID); err != nil {
		return err
	}

	comments, err := h.commentRepository.ListCommentsByMoodEvent(ctx, moodID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comments)
}

// GetReplies lists the replies to a comment, oldest first
func (h *CommentHandler) GetReplies(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	parent, err := h.commentRepository.GetCommentByID(ctx, c.Param("id"))
	if err != nil {
		return storeError(err, "Comment not found")
	}
	if _, err := h.visibleMood(ctx, session.UserID, parent.MoodEventID); err != nil {
		return err
	}

	replies, err := h.commentRepository.ListReplies(ctx, parent.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, replies)
}

// DeleteComment deletes one of the caller's comments together with its replies
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	comment, err := h.commentRepository.GetCommentByID(ctx, c.Param("id"))
	if err != nil {
		return storeError(err, "Comment not found")
	}
	if comment.UserID != session.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own comments")
	}

	if err := h.commentRepository.DeleteComment(ctx, comment.ID); err != nil {
		return storeError(err, "Comment not found")
	}
	return c.NoContent(http.StatusNoContent)
}
