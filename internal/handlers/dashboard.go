package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/JarviousX/yogitrack-studio-management/internal/service"
)

func (h *Handler) Dashboard(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	stats, err := h.svc.Summary(ctx, service.DateRange{})
	if err != nil {
		h.log.ErrorContext(ctx, "dashboard stats", slog.Any("error", err))
		return c.Render("dashboard", fiber.Map{
			"Title":   "Dashboard",
			"Message": "Could not load studio statistics",
		})
	}
	h.log.DebugContext(ctx, "dashboard stats",
		slog.Int("customers", stats.Customers),
		slog.Int("instructors", stats.ActiveInstructors),
		slog.Int("classes", stats.ActiveClasses),
		slog.Int("sales", stats.Sales))

	schedule, err := h.svc.Schedule(ctx)
	if err != nil {
		h.log.ErrorContext(ctx, "dashboard schedule", slog.Any("error", err))
	}
	return c.Render("dashboard", fiber.Map{
		"Title":    "Dashboard",
		"Stats":    stats,
		"Schedule": schedule,
	})
}

// Health reports whether the store answers.
func (h *Handler) Health(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	if err := h.svc.Ping(ctx); err != nil {
		h.log.WarnContext(ctx, "health check failed", slog.Any("error", err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "store": "down"})
	}
	return c.JSON(fiber.Map{"status": "ok", "store": "up"})
}
