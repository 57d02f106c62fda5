package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	resp, err := h.profiles.Get(p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *ProfileHandler) UpdateUser(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	var req dto.UpdateUserInfoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.profiles.UpdateUserInfo(p, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

func (h *ProfileHandler) UpsertDonor(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	var req dto.DonorProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	profile, err := h.profiles.UpsertDonorProfile(p, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

func (h *ProfileHandler) UpsertEmergencyContact(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	var req dto.EmergencyContactRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	contact, err := h.profiles.UpsertEmergencyContact(p, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(contact)
}
