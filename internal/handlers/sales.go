package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/service"
)

func (h *Handler) ListSales(c *fiber.Ctx) error {
	r, err := service.ParseRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	list, err := h.svc.ListSales(ctx, models.SaleFilter{
		Customer: c.Query("customer"),
		Package:  c.Query("package"),
		Status:   c.Query("status"),
		PaidFrom: r.From,
		PaidTo:   r.To,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) CustomerSales(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	list, err := h.svc.CustomerSales(ctx, c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) PackageSales(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	list, err := h.svc.PackageSales(ctx, c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) GetSale(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	sale, err := h.svc.GetSale(ctx, c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(sale)
}

func (h *Handler) CreateSale(c *fiber.Ctx) error {
	var in service.CreateSaleInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	sale, err := h.svc.CreateSale(ctx, in)
	if err != nil {
		return h.writeError(c, err)
	}
	return created(c, "/api/sales/"+sale.ID, sale)
}

func (h *Handler) UpdateSale(c *fiber.Ctx) error {
	var in service.UpdateSaleInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	sale, err := h.svc.UpdateSale(ctx, c.Params("id"), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(sale)
}

func (h *Handler) DeleteSale(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	if err := h.svc.DeleteSale(ctx, c.Params("id")); err != nil {
		return h.writeError(c, err)
	}
	return jsonOK(c, fiber.Map{"msg": "Sale deleted"})
}

func (h *Handler) SetSaleStatus(c *fiber.Ctx) error {
	var in statusInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	sale, err := h.svc.SetSaleStatus(ctx, c.Params("id"), in.Status)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(sale)
}

func (h *Handler) UseClasses(c *fiber.Ctx) error {
	var in service.UseClassesInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	sale, err := h.svc.UseClasses(ctx, c.Params("id"), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(sale)
}
