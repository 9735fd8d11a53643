package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/service"
)

func (h *Handler) ListAttendance(c *fiber.Ctx) error {
	r, err := service.ParseRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	list, err := h.svc.ListAttendance(ctx, models.AttendanceFilter{
		Class:      c.Query("class"),
		Instructor: c.Query("instructor"),
		From:       r.From,
		To:         r.To,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) InstructorAttendance(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	list, err := h.svc.InstructorAttendance(ctx, c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) ClassAttendance(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	list, err := h.svc.ClassAttendance(ctx, c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) GetAttendance(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	rec, err := h.svc.GetAttendance(ctx, c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(rec)
}

func (h *Handler) CreateAttendance(c *fiber.Ctx) error {
	var in service.CreateAttendanceInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	rec, err := h.svc.CreateAttendance(ctx, in)
	if err != nil {
		return h.writeError(c, err)
	}
	return created(c, "/api/attendance/"+rec.ID, rec)
}

func (h *Handler) UpdateAttendance(c *fiber.Ctx) error {
	var in service.UpdateAttendanceInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	rec, err := h.svc.UpdateAttendance(ctx, c.Params("id"), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(rec)
}

func (h *Handler) DeleteAttendance(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	if err := h.svc.DeleteAttendance(ctx, c.Params("id")); err != nil {
		return h.writeError(c, err)
	}
	return jsonOK(c, fiber.Map{"msg": "Attendance record deleted"})
}

func (h *Handler) SetAttendanceStatus(c *fiber.Ctx) error {
	var in statusInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	rec, err := h.svc.SetAttendanceStatus(ctx, c.Params("id"), in.Status)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(rec)
}
