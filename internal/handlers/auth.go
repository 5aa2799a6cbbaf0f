package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/anonto42/unemployed-avengers/backend/internal/identity"
	"github.com/anonto42/unemployed-avengers/backend/internal/metrics"
	"github.com/anonto42/unemployed-avengers/backend/internal/middleware"
	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"github.com/anonto42/unemployed-avengers/backend/internal/repositories"
	"github.com/anonto42/unemployed-avengers/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	identity       identity.Provider
	tokens         *middleware.TokenIssuer
	firebaseAuth   *middleware.FirebaseTokenAuth
	emailDomain    string
	metrics        *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil when
// Firebase ID-token login is not available.
func NewAuthHandler(
	userRepo repositories.UserRepository,
	provider identity.Provider,
	tokens *middleware.TokenIssuer,
	firebaseAuth *middleware.FirebaseTokenAuth,
	emailDomain string,
	m *metrics.Metrics,
) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		identity:       provider,
		tokens:         tokens,
		firebaseAuth:   firebaseAuth,
		emailDomain:    emailDomain,
		metrics:        m,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
	g.POST("/password/reset", h.ResetPassword)
}

// Signup creates the identity account and the profile for a new username
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	email := identity.DummyEmail(req.Username, h.emailDomain)
	uid, err := h.identity.CreateAccount(ctx, email, req.Password, req.Username)
	if err != nil {
		if errors.Is(err, identity.ErrEmailInUse) {
			return echo.NewHTTPError(http.StatusConflict, "Signup failed: "+err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Signup failed: "+err.Error())
	}

	user := &models.User{
		ID:        uid,
		Username:  req.Username,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		// an account without a profile could never sign in, so drop it
		if derr := h.identity.DeleteAccount(ctx, uid); derr != nil {
			logger.Log.WithError(derr).WithField("uid", uid).Error("Failed to remove identity account after profile write failed")
		}
		if errors.Is(err, repositories.ErrUsernameTaken) {
			return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Signup failed: "+err.Error())
	}
	h.metrics.Signups.Inc()
	logger.Log.WithField("user_id", uid).Info("User signed up")

	token, err := h.tokens.Issue(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token after signup")
	}
	return c.JSON(http.StatusCreated, echo.Map{"token": token, "user": user})
}

// SignIn checks a username and password and issues a session token
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SigninRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	uid, err := h.identity.VerifyPassword(ctx, identity.DummyEmail(req.Username, h.emailDomain), req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			h.metrics.FailedSignins.Inc()
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user, err := h.userRepository.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": user})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin exchanges a Firebase ID token for a local session token
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "Firebase login is not enabled")
	}
	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.firebaseAuth.User(c.Request().Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate local JWT")
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": user})
}

// ResetPassword re-authenticates with the current password, then sets a new one
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	uid, err := h.identity.VerifyPassword(ctx, identity.DummyEmail(req.Username, h.emailDomain), req.CurrentPassword)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			h.metrics.FailedSignins.Inc()
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.identity.UpdatePassword(ctx, uid, req.NewPassword); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Password reset failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Password updated"})
}
