package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/eligibility"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// InfoHandler serves the public pages of the marketing site.
type InfoHandler struct{}

func NewInfoHandler() *InfoHandler {
	return &InfoHandler{}
}

func (h *InfoHandler) Eligibility(c *fiber.Ctx) error {
	windows := make(map[string]int, len(models.DonationTypes))
	for _, t := range models.DonationTypes {
		windows[string(t)] = eligibility.WindowDays(t)
	}
	groups := make([]string, 0, len(models.BloodGroups))
	for _, g := range models.BloodGroups {
		groups = append(groups, string(g))
	}

	return c.JSON(dto.EligibilityInfo{
		WindowsDays:      windows,
		BloodGroups:      groups,
		MinHemoglobin:    services.MinHemoglobin.StringFixed(1),
		MinWeightKg:      services.MinWeightKg,
		LivesPerDonation: services.LivesPerDonation,
	})
}

func (h *InfoHandler) PrivacyPolicy(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Privacy Policy - LifeDrop</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#b91c1c}h2{color:#444;margin-top:30px}</style>
</head><body>
<h1>Privacy Policy</h1>
<h2>Information We Collect</h2>
<p>We collect your name, email address, contact details, blood group, date of birth, weight and donation history to schedule and record blood donations.</p>
<h2>Health Information</h2>
<p>Screening values such as hemoglobin level and blood pressure are recorded by clinic staff at each donation and are visible only to you and to LifeDrop administrators.</p>
<h2>Emergency Contact</h2>
<p>The emergency contact you provide is used only if you need assistance during a donation.</p>
<h2>Account Deletion</h2>
<p>You can delete your account at any time. Donation records are retained for blood bank traceability.</p>
</body></html>`)
}
