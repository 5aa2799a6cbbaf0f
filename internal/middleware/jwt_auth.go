package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const sessionKey = "session"

// TokenIssuer signs and parses the HS256 session tokens handed out at sign-in
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue generates a JWT token for a given user
func (t *TokenIssuer) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse validates a token string and returns its claims
func (t *TokenIssuer) Parse(tokenString string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// JWTAuthMiddleware checks for a valid bearer token and stores the caller's
// session in the context. Tokens that are not ours are offered to the Firebase
// verifier when one is configured.
func JWTAuthMiddleware(issuer *TokenIssuer, firebase *FirebaseTokenAuth) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}
			tokenString := parts[1]

			claims, err := issuer.Parse(tokenString)
			if err == nil {
				c.Set(sessionKey, &models.Session{UserID: claims.UserID, Username: claims.Username})
				return next(c)
			}
			if errors.Is(err, jwt.ErrTokenExpired) || firebase == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			session, ferr := firebase.Session(c.Request().Context(), tokenString)
			if ferr != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			c.Set(sessionKey, session)
			return next(c)
		}
	}
}

// CurrentSession returns the session stored by JWTAuthMiddleware, or nil
func CurrentSession(c echo.Context) *models.Session {
	session, _ := c.Get(sessionKey).(*models.Session)
	return session
}

// WithSession stores a session in the context
func WithSession(c echo.Context, session *models.Session) {
	c.Set(sessionKey, session)
}
