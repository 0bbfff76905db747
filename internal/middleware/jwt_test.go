package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-session-service/internal/utils"
)

const testSecret = "access-secret-for-tests"

func protectedEcho(roles ...string) *echo.Echo {
	e := echo.New()
	g := e.Group("/v1")
	g.Use(JWTAuth(testSecret))
	if len(roles) > 0 {
		g.Use(RequireRole(roles...))
	}
	g.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user_id": CurrentUserID(c)})
	})
	return e
}

func getMe(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func issueAccess(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	pair, err := utils.IssuePair(testSecret, "other-secret", ttl, ttl,
		utils.Claims{UserID: 42, Email: "alice@example.com", Role: role})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return pair.AccessToken
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	e := protectedEcho()
	rec := getMe(e, "Bearer "+issueAccess(t, "USER", time.Minute))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestJWTAuthRejects(t *testing.T) {
	e := protectedEcho()
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer garbage"},
		{"expired token", "Bearer " + issueAccess(t, "USER", -time.Minute)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := getMe(e, tc.header); rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequireRoleEnforced(t *testing.T) {
	e := protectedEcho("ADMIN")

	if rec := getMe(e, "Bearer "+issueAccess(t, "ADMIN", time.Minute)); rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}
	if rec := getMe(e, "Bearer "+issueAccess(t, "USER", time.Minute)); rec.Code != http.StatusForbidden {
		t.Fatalf("user status = %d, want 403", rec.Code)
	}
}
