package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/service"
)

func (h *Handler) ListClasses(c *fiber.Ctx) error {
	f := models.ClassFilter{
		DayOfWeek:  c.Query("dayOfWeek"),
		Level:      c.Query("level"),
		Instructor: c.Query("instructor"),
	}
	if v := c.Query("isActive"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return h.writeError(c, models.Invalid("isActive", "isActive must be true or false"))
		}
		f.Active = &active
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	list, err := h.svc.ListClasses(ctx, f)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) Schedule(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	days, err := h.svc.Schedule(ctx)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(days)
}

func (h *Handler) GetClass(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	class, err := h.svc.GetClass(ctx, c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(class)
}

func (h *Handler) CreateClass(c *fiber.Ctx) error {
	var in service.CreateClassInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	class, err := h.svc.CreateClass(ctx, in)
	if err != nil {
		return h.writeError(c, err)
	}
	return created(c, "/api/classes/"+class.ID, class)
}

func (h *Handler) UpdateClass(c *fiber.Ctx) error {
	var in service.UpdateClassInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	class, err := h.svc.UpdateClass(ctx, c.Params("id"), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(class)
}

func (h *Handler) DeleteClass(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	if err := h.svc.DeleteClass(ctx, c.Params("id")); err != nil {
		return h.writeError(c, err)
	}
	return jsonOK(c, fiber.Map{"msg": "Class deleted"})
}

func (h *Handler) SetClassStatus(c *fiber.Ctx) error {
	var in statusInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	class, err := h.svc.SetClassStatus(ctx, c.Params("id"), in.Status)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(class)
}

func (h *Handler) UpdateEnrollment(c *fiber.Ctx) error {
	var in service.EnrollmentInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	class, err := h.svc.UpdateEnrollment(ctx, c.Params("id"), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"class":          class,
		"availableSpots": class.AvailableSpots(),
	})
}
