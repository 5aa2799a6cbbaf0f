package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/unemployed-avengers/backend/internal/identity"
	"github.com/anonto42/unemployed-avengers/backend/internal/middleware"
	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"github.com/anonto42/unemployed-avengers/backend/internal/repositories"
	"github.com/anonto42/unemployed-avengers/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	identity       identity.Provider
	tokens         *middleware.TokenIssuer
	emailDomain    string
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, provider identity.Provider, tokens *middleware.TokenIssuer, emailDomain string) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		identity:       provider,
		tokens:         tokens,
		emailDomain:    emailDomain,
	}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.PUT("/profile/password", h.ChangePassword)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(err, "User profile not found")
	}
	return c.JSON(http.StatusOK, user.ToCompact())
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(c.Request().Context(), session.UserID)
	if err != nil {
		return storeError(err, "User profile not found")
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the avatar and, when asked, renames the user. A
// rename moves the login email first and puts it back if the profile write fails.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, session.UserID)
	if err != nil {
		return storeError(err, "User profile not found")
	}

	oldEmail := user.Email
	renamed := req.Username != "" && req.Username != user.Username
	if renamed {
		existing, err := h.userRepository.GetUserByUsername(ctx, req.Username)
		switch {
		case err == nil && existing.ID != user.ID:
			return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
		case err != nil && !errors.Is(err, repositories.ErrNotFound):
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		newEmail := identity.DummyEmail(req.Username, h.emailDomain)
		if err := h.identity.UpdateEmail(ctx, user.ID, newEmail); err != nil {
			if errors.Is(err, identity.ErrEmailInUse) {
				return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "Rename failed: "+err.Error())
		}
		user.Username = req.Username
		user.Email = newEmail
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}

	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		if renamed {
			if rerr := h.identity.UpdateEmail(ctx, user.ID, oldEmail); rerr != nil {
				logger.Log.WithError(rerr).WithField("user_id", user.ID).Error("Failed to restore login email after rename failed")
			}
		}
		if errors.Is(err, repositories.ErrUsernameTaken) {
			return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
		}
		return storeError(err, "User profile not found")
	}

	resp := echo.Map{"user": user}
	if renamed {
		// the old token still carries the old username
		token, err := h.tokens.Issue(user)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
		}
		resp["token"] = token
	}
	return c.JSON(http.StatusOK, resp)
}

// ChangePassword sets a new password for the signed-in user
func (h *UserHandler) ChangePassword(c echo.Context) error {
	session, err := getSessionFromContext(c)
	if err != nil {
		return err
	}
	var req models.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.identity.UpdatePassword(c.Request().Context(), session.UserID, req.NewPassword); err != nil {
		if errors.Is(err, identity.ErrAccountNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Account not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Password change failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Password updated"})
}

// SearchUsers finds users whose username starts with q
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > maxSearchLimit {
		limit = defaultSearchLimit
	}

	users, err := h.userRepository.SearchUsers(c.Request().Context(), query, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	results := make([]models.UserCompact, len(users))
	for i := range users {
		results[i] = users[i].ToCompact()
	}
	return c.JSON(http.StatusOK, results)
}
