package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/service"
)

func (h *Handler) ListInstructors(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	list, err := h.svc.ListInstructors(ctx, models.InstructorFilter{
		Status: c.Query("status"),
		Email:  c.Query("email"),
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) GetInstructor(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	inst, err := h.svc.GetInstructor(ctx, c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(inst)
}

func (h *Handler) CreateInstructor(c *fiber.Ctx) error {
	var in service.CreateInstructorInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	inst, err := h.svc.CreateInstructor(ctx, in)
	if err != nil {
		return h.writeError(c, err)
	}
	return created(c, "/api/instructors/"+inst.ID, inst)
}

func (h *Handler) UpdateInstructor(c *fiber.Ctx) error {
	var in service.UpdateInstructorInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	inst, err := h.svc.UpdateInstructor(ctx, c.Params("id"), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(inst)
}

func (h *Handler) DeleteInstructor(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	if err := h.svc.DeleteInstructor(ctx, c.Params("id")); err != nil {
		return h.writeError(c, err)
	}
	return jsonOK(c, fiber.Map{"msg": "Instructor deleted"})
}

func (h *Handler) SetInstructorStatus(c *fiber.Ctx) error {
	var in statusInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	inst, err := h.svc.SetInstructorStatus(ctx, c.Params("id"), in.Status)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(inst)
}

func (h *Handler) InstructorClasses(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	list, err := h.svc.InstructorClasses(ctx, c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(list)
}
