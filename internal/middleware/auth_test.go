package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/shinyyama/realestate-backend/internal/apperr"
	"github.com/shinyyama/realestate-backend/internal/model"
	"github.com/shinyyama/realestate-backend/internal/reqctx"
	"gorm.io/gorm"
)

const testSecret = "jwt-test-secret"

type stubUsers map[string]*model.User

func (s stubUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newAuth() *AuthMiddleware {
	return NewAuthMiddleware(NewJWTVerifier(testSecret), stubUsers{
		"u1": {ID: "u1", Role: model.RoleBuyer},
	})
}

func run(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (echo.Context, bool, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	return c, called, err
}

func TestSignTokenRoundTrip(t *testing.T) {
	tok, err := SignToken(testSecret, "u1", time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	uid, err := NewJWTVerifier(testSecret).Verify(context.Background(), tok)
	if err != nil || uid != "u1" {
		t.Fatalf("Verify uid=%q err=%v", uid, err)
	}
	if _, err := NewJWTVerifier("other").Verify(context.Background(), tok); err == nil {
		t.Fatalf("token accepted with wrong secret")
	}
}

func TestJWTVerifierRejects(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	expired, _ := SignToken(testSecret, "u1", -time.Minute)
	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"id": "u1", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "u1"}).SignedString([]byte(testSecret))

	tests := map[string]string{"expired": expired, "hs512": hs512, "no exp": noExp, "garbage": "not-a-token"}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := v.Verify(context.Background(), tok); err == nil {
				t.Fatalf("expected rejection")
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	good, _ := SignToken(testSecret, "u1", time.Hour)
	ghost, _ := SignToken(testSecret, "gone", time.Hour)

	tests := []struct {
		name   string
		header string
		cookie string
		ok     bool
	}{
		{"bearer header", "Bearer " + good, "", true},
		{"cookie", "", good, true},
		{"missing", "", "", false},
		{"bad token", "Bearer nope", "", false},
		{"deleted user", "Bearer " + ghost, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}
			c, called, err := run(t, newAuth().RequireAuth, req)
			if tt.ok {
				if err != nil || !called {
					t.Fatalf("err=%v called=%v", err, called)
				}
				if c.Get("uid") != "u1" || c.Get("role") != "buyer" {
					t.Fatalf("uid=%v role=%v", c.Get("uid"), c.Get("role"))
				}
				if reqctx.UserID(c.Request().Context()) != "u1" {
					t.Fatalf("user id not in request context")
				}
				return
			}
			if called || !apperr.IsKind(err, apperr.KindUnauthorized) {
				t.Fatalf("expected unauthorized, err=%v called=%v", err, called)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole(model.RoleSeller)
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set("role", "buyer")
	err := mw(func(c echo.Context) error { return nil })(c)
	ae, ok := apperr.As(err)
	if !ok || ae.Status != http.StatusForbidden || ae.Message != "Access denied. This action is restricted to: seller" {
		t.Fatalf("unexpected error %v", err)
	}

	c.Set("role", "seller")
	if err := mw(func(c echo.Context) error { return nil })(c); err != nil {
		t.Fatalf("seller rejected: %v", err)
	}
}

func TestRequestContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	c, called, err := run(t, RequestContext, req)
	if err != nil || !called {
		t.Fatalf("err=%v called=%v", err, called)
	}
	if reqctx.RID(c.Request().Context()) != "rid-1" {
		t.Fatalf("rid not propagated")
	}
}
