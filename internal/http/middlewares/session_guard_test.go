package middlewares_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tumorvision/tumorvision/internal/domain/user"
	"github.com/tumorvision/tumorvision/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeChecker struct {
	currentFn func() (user.User, bool)
}

func (f *fakeChecker) Current() (user.User, bool) { return f.currentFn() }

func guardedRouter(checker middlewares.SessionChecker, handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	guard := middlewares.NewSessionGuard(checker)
	router.GET("/protected", guard.RequireSession(), handler)
	return router
}

func TestRequireSessionRejectsAnonymous(t *testing.T) {
	reached := false
	router := guardedRouter(
		&fakeChecker{currentFn: func() (user.User, bool) { return user.User{}, false }},
		func(c *gin.Context) { reached = true },
	)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if reached {
		t.Fatal("handler reached without a session")
	}

	var body map[string]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	errObj := body["error"]
	if errObj["code"] != "auth_required" || errObj["redirect"] != "login" {
		t.Fatalf("error = %v", errObj)
	}
}

func TestRequireSessionExposesUserToHandlers(t *testing.T) {
	router := guardedRouter(
		&fakeChecker{currentFn: func() (user.User, bool) {
			return user.User{ID: "u1", Role: user.RoleDoctor}, true
		}},
		func(c *gin.Context) {
			id, ok := middlewares.UserIDFromContext(c)
			if !ok || id != "u1" {
				t.Fatalf("user id = %q ok=%v", id, ok)
			}
			role, ok := middlewares.RoleFromContext(c)
			if !ok || role != "doctor" {
				t.Fatalf("role = %q ok=%v", role, ok)
			}
			c.Status(http.StatusNoContent)
		},
	)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
}
