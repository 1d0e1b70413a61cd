package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carscan-store/internal/services"
	"github.com/localnerve/carscan-store/internal/store"
	"github.com/localnerve/carscan-store/internal/testutil"
	"github.com/localnerve/carscan-store/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	userID string
	err    error
}

func (s stubValidator) ValidateSession(context.Context, string) (string, error) {
	return s.userID, s.err
}

func customErrors(c *fiber.Ctx, err error) error {
	var ce *types.CustomError
	if errors.As(err, &ce) {
		return c.Status(ce.Code).SendString(ce.Message)
	}
	return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
}

func sessionApp(t *testing.T, validator services.SessionValidator) *fiber.App {
	t.Helper()

	local := store.NewLocalStore(testutil.OpenSQLite(t))
	remote := store.NewRemoteStore(testutil.OpenRemoteSQLite(t))
	provider := store.NewProvider(local, remote, zerolog.Nop(), nil)

	app := fiber.New(fiber.Config{ErrorHandler: customErrors})
	app.Use(Session(provider, validator, zerolog.Nop()))
	app.Get("/", func(c *fiber.Ctx) error {
		_, ok := Repository(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString("user=" + UserID(c))
	})
	return app
}

func get(t *testing.T, app *fiber.App, cookie string) (int, string) {
	t.Helper()

	req := httptest.NewRequest("GET", "/", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: services.SessionCookie, Value: cookie})
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestSessionWithoutCookieIsSignedOut(t *testing.T) {
	app := sessionApp(t, stubValidator{userID: "alice"})

	status, body := get(t, app, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "user=", body)
}

func TestSessionResolvesUser(t *testing.T) {
	app := sessionApp(t, stubValidator{userID: "alice"})

	status, body := get(t, app, "session")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "user=alice", body)
}

func TestSessionRejected(t *testing.T) {
	app := sessionApp(t, stubValidator{err: services.ErrInvalidSession})

	status, body := get(t, app, "session")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Invalid session", body)

	app = sessionApp(t, stubValidator{err: errors.New("authorizer ping failed")})
	status, body = get(t, app, "session")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Session could not be validated", body)
}

func TestSessionIgnoredWithoutValidator(t *testing.T) {
	app := sessionApp(t, nil)

	status, body := get(t, app, "session")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "user=", body)
}

func TestVersionMiddleware(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: customErrors})
	app.Use(VersionMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(LocalsVersion).(string))
	})

	for header, want := range map[string]int{"": fiber.StatusOK, "1": fiber.StatusOK, "1.0": fiber.StatusOK, "v1.2.0": fiber.StatusOK, "2.0.0": fiber.StatusBadRequest} {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set(VersionHeader, header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, header)
		assert.Equal(t, APIVersion, resp.Header.Get(VersionHeader))
		if want == fiber.StatusOK {
			assert.Equal(t, APIVersion, string(body))
		}
	}
}
