package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	inventory *services.InventoryService
}

func NewInventoryHandler(inventory *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

func (h *InventoryHandler) List(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	units, err := h.inventory.ListUnits(p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(units)
}

func (h *InventoryHandler) Totals(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	totals, err := h.inventory.Totals(p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(totals)
}

func (h *InventoryHandler) Add(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	var req dto.AddBloodUnitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	unit, err := h.inventory.AddUnits(p, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(unit)
}

func (h *InventoryHandler) UpdateStatus(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid unit id")
	}

	var req dto.UpdateBloodUnitStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	unit, err := h.inventory.UpdateUnitStatus(p, id, req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(unit)
}
