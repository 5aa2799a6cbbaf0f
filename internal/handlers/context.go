package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/anonto42/unemployed-avengers/backend/internal/middleware"
	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"github.com/anonto42/unemployed-avengers/backend/internal/moodfilter"
	"github.com/anonto42/unemployed-avengers/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// getSessionFromContext returns the caller's session or a 401
func getSessionFromContext(c echo.Context) (*models.Session, error) {
	session := middleware.CurrentSession(c)
	if session == nil || session.UserID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return session, nil
}

// bindAndValidate binds the request body into req and runs the registered validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

// storeError maps repository errors onto HTTP errors, surfacing the raw message
func storeError(err error, notFoundMsg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, notFoundMsg)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// parseCriteria reads the mood, reason and recent_week query parameters
func parseCriteria(c echo.Context) (moodfilter.Criteria, error) {
	var criteria moodfilter.Criteria
	if mood := c.QueryParam("mood"); mood != "" {
		criteria.ByMood = true
		criteria.Mood = mood
	}
	if reason := strings.TrimSpace(c.QueryParam("reason")); reason != "" {
		if len(strings.Fields(reason)) > 1 {
			return criteria, echo.NewHTTPError(http.StatusBadRequest, "Reason filter must be a single word")
		}
		criteria.ByReason = true
		criteria.Reason = reason
	}
	if week := c.QueryParam("recent_week"); week != "" {
		on, err := strconv.ParseBool(week)
		if err != nil {
			return criteria, echo.NewHTTPError(http.StatusBadRequest, "recent_week must be true or false")
		}
		criteria.ByRecentWeek = on
	}
	return criteria, nil
}

// canView reports whether viewer may see mood: owners see everything,
// followers of the owner see public moods.
func canView(ctx context.Context, follows repositories.FollowRepository, viewerID string, mood *models.MoodEvent) (bool, error) {
	if mood.UserID == viewerID {
		return true, nil
	}
	if !mood.Public {
		return false, nil
	}
	return follows.IsFollowing(ctx, viewerID, mood.UserID)
}

// compactUsers resolves ids to public user views, skipping ids without a profile
func compactUsers(ctx context.Context, users repositories.UserRepository, ids []string) ([]models.UserCompact, error) {
	out := make([]models.UserCompact, 0, len(ids))
	for _, id := range ids {
		user, err := users.GetUserByID(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, user.ToCompact())
	}
	return out, nil
}
