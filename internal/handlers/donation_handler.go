package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type DonationHandler struct {
	donations *services.DonationService
}

func NewDonationHandler(donations *services.DonationService) *DonationHandler {
	return &DonationHandler{donations: donations}
}

func (h *DonationHandler) Record(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	var req dto.RecordDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	donation, err := h.donations.Record(p, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(donation)
}

func (h *DonationHandler) History(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	donations, err := h.donations.History(p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(donations)
}

func (h *DonationHandler) Stats(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	stats, err := h.donations.Stats(p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

// ListInRange requires start and end query dates (YYYY-MM-DD).
func (h *DonationHandler) ListInRange(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	from, err := queryDate(c, "start")
	if err != nil || from == nil {
		return badRequest(c, "start must be YYYY-MM-DD")
	}
	to, err := queryDate(c, "end")
	if err != nil || to == nil {
		return badRequest(c, "end must be YYYY-MM-DD")
	}

	rows, err := h.donations.ListInRange(p, *from, *to)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rows)
}
