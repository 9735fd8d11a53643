package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/service"
)

// Report endpoints take optional startDate/endDate (YYYY-MM-DD or RFC 3339).

func (h *Handler) PackageSalesReport(c *fiber.Ctx) error {
	r, err := service.ParseRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	rep, err := h.svc.PackageSalesReport(ctx, r, c.Query("type"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(rep)
}

func (h *Handler) InstructorClassesReport(c *fiber.Ctx) error {
	r, err := service.ParseRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	rows, err := h.svc.InstructorClassesReport(ctx, r, c.Query("instructor"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(rows)
}

func (h *Handler) CustomerPackagesReport(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	rows, err := h.svc.CustomerPackagesReport(ctx, c.Query("customer"), c.Query("status"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(rows)
}

func (h *Handler) TeacherPaymentsReport(c *fiber.Ctx) error {
	year, err := queryInt(c, "year")
	if err != nil {
		return h.writeError(c, err)
	}
	month, err := queryInt(c, "month")
	if err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	rep, err := h.svc.TeacherPaymentsReport(ctx, year, month, c.Query("instructor"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(rep)
}

func (h *Handler) SummaryReport(c *fiber.Ctx) error {
	r, err := service.ParseRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	rep, err := h.svc.Summary(ctx, r)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(rep)
}

// queryInt returns 0 for a missing parameter.
func queryInt(c *fiber.Ctx, name string) (int, error) {
	v := c.Query(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, models.Invalid(name, "%s must be a number", name)
	}
	return n, nil
}
