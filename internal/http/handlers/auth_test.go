package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tumorvision/tumorvision/internal/auth"
	"github.com/tumorvision/tumorvision/internal/domain/user"
	"github.com/tumorvision/tumorvision/internal/http/handlers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthenticator struct {
	signInFn func(ctx context.Context, email, password string) (user.User, error)
	signUpFn func(ctx context.Context, name, email, password string) (user.User, error)
}

func (f *fakeAuthenticator) SignIn(ctx context.Context, email, password string) (user.User, error) {
	return f.signInFn(ctx, email, password)
}

func (f *fakeAuthenticator) SignUp(ctx context.Context, name, email, password string) (user.User, error) {
	return f.signUpFn(ctx, name, email, password)
}

type fakeSessions struct {
	currentFn func() (user.User, bool)
	clearFn   func(ctx context.Context) error
}

func (f *fakeSessions) Current() (user.User, bool) { return f.currentFn() }

func (f *fakeSessions) Clear(ctx context.Context) error { return f.clearFn(ctx) }

func performJSON(t *testing.T, handler gin.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	router := gin.New()
	router.Handle(method, path, handler)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	body := decodeBody(t, rec)
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error envelope in %q", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestSignInSuccess(t *testing.T) {
	authenticator := &fakeAuthenticator{
		signInFn: func(_ context.Context, email, password string) (user.User, error) {
			if email != "demo@example.com" || password != "demo123" {
				t.Fatalf("credentials not passed through: %s / %s", email, password)
			}
			return user.User{ID: "demo-patient", Email: email, Role: user.RolePatient}, nil
		},
	}
	h := handlers.NewAuthHandler(authenticator, &fakeSessions{})

	rec := performJSON(t, h.SignIn, http.MethodPost, "/auth/signin",
		`{"email":"demo@example.com","password":"demo123"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["redirect"] != "upload" {
		t.Fatalf("redirect = %v", body["redirect"])
	}

	u, ok := body["user"].(map[string]any)
	if !ok || u["email"] != "demo@example.com" {
		t.Fatalf("user = %v", body["user"])
	}
}

func TestSignInErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid email", auth.ErrInvalidEmail, http.StatusBadRequest, "invalid_email"},
		{"short password", auth.ErrPasswordTooShort, http.StatusBadRequest, "password_too_short"},
		{"bad credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"store blew up", context.DeadlineExceeded, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authenticator := &fakeAuthenticator{
				signInFn: func(context.Context, string, string) (user.User, error) {
					return user.User{}, tt.err
				},
			}
			h := handlers.NewAuthHandler(authenticator, &fakeSessions{})

			rec := performJSON(t, h.SignIn, http.MethodPost, "/auth/signin",
				`{"email":"a@b.com","password":"whatever"}`)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Fatalf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestSignInRejectsMissingFields(t *testing.T) {
	called := false
	authenticator := &fakeAuthenticator{
		signInFn: func(context.Context, string, string) (user.User, error) {
			called = true
			return user.User{}, nil
		},
	}
	h := handlers.NewAuthHandler(authenticator, &fakeSessions{})

	rec := performJSON(t, h.SignIn, http.MethodPost, "/auth/signin", `{"email":"a@b.com"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "invalid_request" {
		t.Fatalf("code = %q", code)
	}
	if called {
		t.Fatal("authenticator reached despite bad body")
	}
}

func TestSignUpSuccess(t *testing.T) {
	authenticator := &fakeAuthenticator{
		signUpFn: func(_ context.Context, name, email, password string) (user.User, error) {
			return user.User{ID: "u1", Name: name, Email: email, Role: user.RolePatient}, nil
		},
	}
	h := handlers.NewAuthHandler(authenticator, &fakeSessions{})

	rec := performJSON(t, h.SignUp, http.MethodPost, "/auth/signup",
		`{"name":"Jane Doe","email":"jane@example.com","password":"hunter22"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["redirect"] != "upload" {
		t.Fatalf("redirect = %v", body["redirect"])
	}
}

func TestSignUpDuplicateEmailConflict(t *testing.T) {
	authenticator := &fakeAuthenticator{
		signUpFn: func(context.Context, string, string, string) (user.User, error) {
			return user.User{}, auth.ErrEmailTaken
		},
	}
	h := handlers.NewAuthHandler(authenticator, &fakeSessions{})

	rec := performJSON(t, h.SignUp, http.MethodPost, "/auth/signup",
		`{"name":"Jane Doe","email":"jane@example.com","password":"hunter22"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "email_taken" {
		t.Fatalf("code = %q", code)
	}
}

func TestLogout(t *testing.T) {
	cleared := false
	sessions := &fakeSessions{
		clearFn: func(context.Context) error {
			cleared = true
			return nil
		},
	}
	h := handlers.NewAuthHandler(&fakeAuthenticator{}, sessions)

	rec := performJSON(t, h.Logout, http.MethodPost, "/auth/logout", "")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if !cleared {
		t.Fatal("session not cleared")
	}
}

func TestMe(t *testing.T) {
	t.Run("active session", func(t *testing.T) {
		sessions := &fakeSessions{
			currentFn: func() (user.User, bool) {
				return user.User{ID: "u1", Email: "t@example.com"}, true
			},
		}
		h := handlers.NewAuthHandler(&fakeAuthenticator{}, sessions)

		rec := performJSON(t, h.Me, http.MethodGet, "/auth/me", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}

		body := decodeBody(t, rec)
		u, _ := body["user"].(map[string]any)
		if u["id"] != "u1" {
			t.Fatalf("user = %v", body["user"])
		}
	})

	t.Run("no session", func(t *testing.T) {
		sessions := &fakeSessions{
			currentFn: func() (user.User, bool) { return user.User{}, false },
		}
		h := handlers.NewAuthHandler(&fakeAuthenticator{}, sessions)

		rec := performJSON(t, h.Me, http.MethodGet, "/auth/me", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "no_session" {
			t.Fatalf("code = %q", code)
		}
	})
}
