package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/unemployed-avengers/backend/internal/identity"
	"github.com/anonto42/unemployed-avengers/backend/internal/metrics"
	"github.com/anonto42/unemployed-avengers/backend/internal/middleware"
	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"github.com/anonto42/unemployed-avengers/backend/internal/repositories"
	"github.com/anonto42/unemployed-avengers/backend/internal/router"
	"github.com/anonto42/unemployed-avengers/backend/internal/testutil"
	"github.com/anonto42/unemployed-avengers/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	e    *echo.Echo
	deps *router.Deps
}

// newTestServer wires the real routes onto SQLite and the local identity provider
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.OpenSQLite(t)
	provider := identity.NewLocalProvider(db, bcrypt.MinCost)
	if err := provider.Migrate(); err != nil {
		t.Fatalf("Failed to migrate credentials: %v", err)
	}

	deps := &router.Deps{
		Users:       repositories.NewSQLUserRepository(db),
		Moods:       repositories.NewSQLMoodRepository(db),
		Follows:     repositories.NewSQLFollowRepository(db),
		Comments:    repositories.NewSQLCommentRepository(db),
		Identity:    provider,
		Tokens:      middleware.NewTokenIssuer("test-secret", time.Hour),
		EmailDomain: identity.DefaultEmailDomain,
		Metrics:     metrics.New(prometheus.NewRegistry()),
	}

	e := echo.New()
	e.Validator = validators.NewValidator()
	router.SetupRoutes(e, deps)
	return &testServer{e: e, deps: deps}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// signup registers username with a fixed password and returns its token and ID
func (s *testServer) signup(t *testing.T, username string) (string, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/signup", "", echo.Map{"username": username, "password": "secret1"})
	assertStatus(t, rec, http.StatusCreated)
	var resp authResponse
	decode(t, rec, &resp)
	return resp.Token, resp.User.ID
}

func (s *testServer) createMood(t *testing.T, token string, body echo.Map) models.MoodEvent {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/moods", token, body)
	assertStatus(t, rec, http.StatusCreated)
	var mood models.MoodEvent
	decode(t, rec, &mood)
	return mood
}

// follow makes follower follow target through the request/accept routes
func (s *testServer) follow(t *testing.T, followerToken, followerID, targetToken, targetID string) {
	t.Helper()
	assertStatus(t, s.do(t, http.MethodPost, "/api/v1/users/"+targetID+"/follow", followerToken, nil), http.StatusOK)
	assertStatus(t, s.do(t, http.MethodPost, "/api/v1/follow-requests/"+followerID+"/accept", targetToken, nil), http.StatusOK)
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assertStatus(t, rec, http.StatusOK)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	assertStatus(t, s.do(t, http.MethodGet, "/api/v1/profile", "", nil), http.StatusUnauthorized)
	assertStatus(t, s.do(t, http.MethodGet, "/api/v1/feed", "not-a-token", nil), http.StatusUnauthorized)
}
