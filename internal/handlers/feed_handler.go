package handlers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"github.com/anonto42/unemployed-avengers/backend/internal/moodfilter"
	"github.com/anonto42/unemployed-avengers/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	moodRepository   repositories.MoodRepository
	followRepository repositories.FollowRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(moodRepo repositories.MoodRepository, followRepo repositories.FollowRepository) *FeedHandler {
	return &FeedHandler{
		moodRepository:   moodRepo,
		followRepository: followRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns the public moods of everyone the caller follows, newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}
	criteria, err := parseCriteria(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	ctx := c.Request().Context()
	followingIDs, err := h.followRepository.ListFollowingIDs(ctx, session.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	moods, err := h.moodRepository.ListPublicMoodsByUsers(ctx, followingIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	moods = moodfilter.Filter(moods, criteria, time.Now())

	totalItems := len(moods)
	totalPages := int(math.Ceil(float64(totalItems) / float64(limit)))
	// pages past the end are empty
	start, end := totalItems, totalItems
	if page <= totalPages {
		start = (page - 1) * limit
		end = min(start+limit, totalItems)
	}
	pageItems := moods[start:end]
	if pageItems == nil {
		pageItems = []models.MoodEvent{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"moods": pageItems,
		},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      totalItems,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}
