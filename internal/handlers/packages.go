package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/service"
)

func (h *Handler) ListPackages(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	list, err := h.svc.ListPackages(ctx, models.PackageFilter{
		Status: c.Query("status"),
		Type:   c.Query("type"),
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) GetPackage(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	p, err := h.svc.GetPackage(ctx, c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) CreatePackage(c *fiber.Ctx) error {
	var in service.CreatePackageInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	p, err := h.svc.CreatePackage(ctx, in)
	if err != nil {
		return h.writeError(c, err)
	}
	return created(c, "/api/packages/"+p.ID, p)
}

func (h *Handler) UpdatePackage(c *fiber.Ctx) error {
	var in service.UpdatePackageInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	p, err := h.svc.UpdatePackage(ctx, c.Params("id"), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) DeletePackage(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	if err := h.svc.DeletePackage(ctx, c.Params("id")); err != nil {
		return h.writeError(c, err)
	}
	return jsonOK(c, fiber.Map{"msg": "Package deleted"})
}

func (h *Handler) SetPackageStatus(c *fiber.Ctx) error {
	var in statusInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	p, err := h.svc.SetPackageStatus(ctx, c.Params("id"), in.Status)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) RecordPackageSales(c *fiber.Ctx) error {
	var in service.PackageSalesInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	p, err := h.svc.RecordPackageSales(ctx, c.Params("id"), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(p)
}
