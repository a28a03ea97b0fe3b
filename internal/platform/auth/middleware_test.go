package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signTestToken(t *testing.T, key []byte, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	mw := JWTMiddleware(JWTConfig{SigningKey: []byte("secret")})
	err := mw(func(c echo.Context) error { return nil })(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	key := []byte("secret")
	tokenStr := signTestToken(t, key, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "op-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name:  "Maria Operator",
		Roles: []string{"nir"},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	c := e.NewContext(req, httptest.NewRecorder())

	mw := JWTMiddleware(JWTConfig{SigningKey: key})
	called := false
	err := mw(func(c echo.Context) error {
		called = true
		ctx := c.Request().Context()
		if UserIDFromContext(ctx) != "op-1" {
			t.Errorf("expected subject op-1, got %s", UserIDFromContext(ctx))
		}
		if UserNameFromContext(ctx) != "Maria Operator" {
			t.Errorf("unexpected actor name %s", UserNameFromContext(ctx))
		}
		return nil
	})(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected next handler to run")
	}
}

func TestJWTMiddleware_InvalidSignature(t *testing.T) {
	tokenStr := signTestToken(t, []byte("wrong"), &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	c := e.NewContext(req, httptest.NewRecorder())

	mw := JWTMiddleware(JWTConfig{SigningKey: []byte("secret")})
	err := mw(func(c echo.Context) error { return nil })(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	newCtx := func(roles []string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), UserRolesKey, roles)
		req = req.WithContext(ctx)
		return e.NewContext(req, httptest.NewRecorder())
	}

	ok := func(c echo.Context) error { return nil }

	if err := RequireRole("nir")(ok)(newCtx([]string{"nir"})); err != nil {
		t.Errorf("expected nir role to pass: %v", err)
	}
	if err := RequireRole("nir")(ok)(newCtx([]string{"admin"})); err != nil {
		t.Errorf("expected admin to bypass role check: %v", err)
	}
	if err := RequireRole("nir")(ok)(newCtx([]string{"nurse"})); err == nil {
		t.Error("expected nurse to be forbidden")
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := DevAuthMiddleware()(func(c echo.Context) error {
		roles := RolesFromContext(c.Request().Context())
		if len(roles) != 1 || roles[0] != "admin" {
			t.Errorf("expected admin role in dev mode, got %v", roles)
		}
		return nil
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
