package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// RequestIDKey is the locals key the request ID is stored under.
const RequestIDKey = "request_id"

// RequestID tags every request with an ID, honoring one supplied by an
// upstream proxy, and echoes it back so client logs can be correlated with
// per-source fetch logs.
func RequestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(RequestIDKey, id)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}
