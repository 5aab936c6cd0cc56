package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/skor-go-api/internal/middleware"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newProtectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/", middleware.JWTProtected(testSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"role":    c.Locals("user_role"),
		})
	})
	return app
}

func perform(t *testing.T, app *fiber.App, authorization string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestJWTProtectedMissingHeader(t *testing.T) {
	app := newProtectedApp()

	resp := perform(t, app, "")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestJWTProtectedInvalidToken(t *testing.T) {
	app := newProtectedApp()

	resp := perform(t, app, "Bearer not-a-token")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestJWTProtectedWrongSecret(t *testing.T) {
	app := newProtectedApp()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"})
	signed, err := token.SignedString([]byte("another-secret"))
	require.NoError(t, err)

	resp := perform(t, app, "Bearer "+signed)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestJWTProtectedExtractsIdentity(t *testing.T) {
	app := newProtectedApp()

	signed := signToken(t, jwt.MapClaims{
		"sub":  float64(42),
		"role": "Teacher",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	resp := perform(t, app, "Bearer "+signed)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		UserID uint   `json:"user_id"`
		Role   string `json:"role"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NoError(t, resp.Body.Close())
	require.Equal(t, uint(42), body.UserID)
	require.Equal(t, "teacher", body.Role)
}

func TestJWTProtectedExpiredToken(t *testing.T) {
	app := newProtectedApp()

	signed := signToken(t, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	resp := perform(t, app, "Bearer "+signed)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}
