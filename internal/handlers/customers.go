package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/service"
)

func (h *Handler) ListCustomers(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	list, err := h.svc.ListCustomers(ctx, models.CustomerFilter{
		Status: c.Query("status"),
		Email:  c.Query("email"),
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) GetCustomer(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	cust, err := h.svc.GetCustomer(ctx, c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(cust)
}

func (h *Handler) CreateCustomer(c *fiber.Ctx) error {
	var in service.CreateCustomerInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	cust, err := h.svc.CreateCustomer(ctx, in)
	if err != nil {
		return h.writeError(c, err)
	}
	return created(c, "/api/customers/"+cust.ID, cust)
}

func (h *Handler) UpdateCustomer(c *fiber.Ctx) error {
	var in service.UpdateCustomerInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	cust, err := h.svc.UpdateCustomer(ctx, c.Params("id"), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(cust)
}

func (h *Handler) DeleteCustomer(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	if err := h.svc.DeleteCustomer(ctx, c.Params("id")); err != nil {
		return h.writeError(c, err)
	}
	return jsonOK(c, fiber.Map{"msg": "Customer deleted"})
}

func (h *Handler) SetCustomerStatus(c *fiber.Ctx) error {
	var in statusInput
	if err := h.bind(c, &in); err != nil {
		return h.writeError(c, err)
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	cust, err := h.svc.SetCustomerStatus(ctx, c.Params("id"), in.Status)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(cust)
}
