package account

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const userLocalsKey = "account:user"

// RequireAuth resolves the bearer token to its account and stores it in the
// request locals. Anything that fails short of a live session gets a 401.
func RequireAuth(engine *Accounts) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return unauthorized(c)
		}

		user, err := engine.Authenticate(c.UserContext(), raw)
		if err != nil {
			return unauthorized(c)
		}

		c.Locals(userLocalsKey, user)

		return c.Next()
	}
}

// CurrentSessionUser returns the account stored by RequireAuth.
func CurrentSessionUser(c *fiber.Ctx) (*User, error) {
	user, ok := c.Locals(userLocalsKey).(*User)
	if !ok || user == nil {
		return nil, ErrUnableToDecodeSession
	}
	return user, nil
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Not authorized",
	})
}
