package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultTimeout = 5 * time.Second

// withTimeout bounds store work for one request. It derives from the
// request's user context so cancellation reaches the store.
func (h *Handler) withTimeout(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), h.timeout)
}
