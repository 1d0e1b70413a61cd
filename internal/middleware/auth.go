package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carscan-store/internal/services"
	"github.com/localnerve/carscan-store/internal/store"
	"github.com/localnerve/carscan-store/internal/types"
	"github.com/rs/zerolog"
)

const (
	// LocalsUser holds the signed-in user id, empty when signed out
	LocalsUser = "userID"
	// LocalsRepository holds the store.Repository for the request
	LocalsRepository = "repo"
)

// Session resolves the session cookie to a user and picks that user's repository.
// Requests without a cookie, or any request when validator is nil, use the local store.
func Session(provider *store.Provider, validator services.SessionValidator, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := ""

		if cookie := c.Cookies(services.SessionCookie); cookie != "" && validator != nil {
			id, err := validator.ValidateSession(c.UserContext(), cookie)
			if err != nil {
				log.Debug().Err(err).Str("url", c.OriginalURL()).Msg("session rejected")
				message := "Invalid session"
				if !errors.Is(err, services.ErrInvalidSession) {
					message = "Session could not be validated"
				}
				return &types.CustomError{
					Code:    fiber.StatusForbidden,
					Message: message,
					Type:    "authorization",
				}
			}
			userID = id
		}

		c.Locals(LocalsUser, userID)
		c.Locals(LocalsRepository, provider.For(userID))

		return c.Next()
	}
}

// UserID returns the user resolved by Session
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalsUser).(string)
	return id
}

// Repository returns the repository resolved by Session
func Repository(c *fiber.Ctx) (store.Repository, bool) {
	repo, ok := c.Locals(LocalsRepository).(store.Repository)
	return repo, ok
}
