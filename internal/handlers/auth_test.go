package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"github.com/labstack/echo/v4"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSignupAndSignin(t *testing.T) {
	s := newTestServer(t)

	token, uid := s.signup(t, "alice")
	if token == "" || uid == "" {
		t.Fatalf("signup returned token=%q uid=%q", token, uid)
	}

	rec := s.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	assertStatus(t, rec, http.StatusOK)
	var profile models.User
	decode(t, rec, &profile)
	if profile.Username != "alice" || profile.Email != "alice@example.com" {
		t.Errorf("unexpected profile %+v", profile)
	}
	if body := rec.Body.String(); strings.Contains(body, "secret1") || strings.Contains(body, "password") {
		t.Errorf("profile leaks the password: %s", body)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/auth/signup", "", echo.Map{"username": "alice", "password": "other12"})
	assertStatus(t, rec, http.StatusConflict)
	// login emails ignore case, so a case variant of a taken name is refused
	rec = s.do(t, http.MethodPost, "/api/v1/auth/signup", "", echo.Map{"username": "Alice", "password": "other12"})
	assertStatus(t, rec, http.StatusConflict)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/signin", "", echo.Map{"username": "alice", "password": "wrong12"})
	assertStatus(t, rec, http.StatusUnauthorized)
	if got := promtest.ToFloat64(s.deps.Metrics.FailedSignins); got != 1 {
		t.Errorf("expected 1 failed sign-in, got %v", got)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/auth/signin", "", echo.Map{"username": "alice", "password": "secret1"})
	assertStatus(t, rec, http.StatusOK)
	var resp authResponse
	decode(t, rec, &resp)
	if resp.User.ID != uid || resp.Token == "" {
		t.Errorf("unexpected signin response %+v", resp)
	}
	if got := promtest.ToFloat64(s.deps.Metrics.Signups); got != 1 {
		t.Errorf("expected 1 signup, got %v", got)
	}
}

func TestSignupValidation(t *testing.T) {
	s := newTestServer(t)
	for name, body := range map[string]echo.Map{
		"short password":   {"username": "alice", "password": "123"},
		"invalid username": {"username": "a b", "password": "secret1"},
		"missing username": {"password": "secret1"},
	} {
		rec := s.do(t, http.MethodPost, "/api/v1/auth/signup", "", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rec.Code)
		}
	}
}

func TestFirebaseLoginDisabledWithoutFirebase(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/v1/auth/firebase-login", "", echo.Map{"idToken": "x"})
	assertStatus(t, rec, http.StatusNotImplemented)
}

func TestChangeAndResetPassword(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signup(t, "alice")

	rec := s.do(t, http.MethodPut, "/api/v1/profile/password", token, echo.Map{"new_password": "secret2"})
	assertStatus(t, rec, http.StatusOK)
	assertStatus(t, s.do(t, http.MethodPost, "/api/v1/auth/signin", "", echo.Map{"username": "alice", "password": "secret1"}), http.StatusUnauthorized)
	assertStatus(t, s.do(t, http.MethodPost, "/api/v1/auth/signin", "", echo.Map{"username": "alice", "password": "secret2"}), http.StatusOK)

	// reset needs the current password
	rec = s.do(t, http.MethodPost, "/api/v1/auth/password/reset", "", echo.Map{
		"username": "alice", "current_password": "secret1", "new_password": "secret3",
	})
	assertStatus(t, rec, http.StatusUnauthorized)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/password/reset", "", echo.Map{
		"username": "alice", "current_password": "secret2", "new_password": "secret3",
	})
	assertStatus(t, rec, http.StatusOK)
	assertStatus(t, s.do(t, http.MethodPost, "/api/v1/auth/signin", "", echo.Map{"username": "alice", "password": "secret3"}), http.StatusOK)
}

func TestRenameMovesLoginEmail(t *testing.T) {
	s := newTestServer(t)
	token, uid := s.signup(t, "alice")
	s.signup(t, "bob")

	rec := s.do(t, http.MethodPut, "/api/v1/profile", token, echo.Map{"username": "bob"})
	assertStatus(t, rec, http.StatusConflict)

	rec = s.do(t, http.MethodPut, "/api/v1/profile", token, echo.Map{"username": "alicia"})
	assertStatus(t, rec, http.StatusOK)
	var resp authResponse
	decode(t, rec, &resp)
	if resp.User.Username != "alicia" || resp.User.Email != "alicia@example.com" || resp.Token == "" {
		t.Fatalf("unexpected rename response %+v", resp)
	}

	assertStatus(t, s.do(t, http.MethodPost, "/api/v1/auth/signin", "", echo.Map{"username": "alice", "password": "secret1"}), http.StatusUnauthorized)
	rec = s.do(t, http.MethodPost, "/api/v1/auth/signin", "", echo.Map{"username": "alicia", "password": "secret1"})
	assertStatus(t, rec, http.StatusOK)
	decode(t, rec, &resp)
	if resp.User.ID != uid {
		t.Errorf("rename changed the user id: %s != %s", resp.User.ID, uid)
	}

	// the old name is free again
	s.signup(t, "alice")
}

func TestSearchUsers(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signup(t, "alice")
	s.signup(t, "alicia")
	s.signup(t, "bob")

	assertStatus(t, s.do(t, http.MethodGet, "/api/v1/users/search", token, nil), http.StatusBadRequest)

	rec := s.do(t, http.MethodGet, "/api/v1/users/search?q=ali", token, nil)
	assertStatus(t, rec, http.StatusOK)
	var users []models.UserCompact
	decode(t, rec, &users)
	if len(users) != 2 || users[0].Username != "alice" || users[1].Username != "alicia" {
		t.Errorf("unexpected search result %+v", users)
	}
}
