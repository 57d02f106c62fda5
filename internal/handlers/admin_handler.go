package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AdminHandler serves the back-office dashboard, donor directory and reports.
type AdminHandler struct {
	donors  *services.DonorDirectoryService
	reports *services.ReportService
}

func NewAdminHandler(donors *services.DonorDirectoryService, reports *services.ReportService) *AdminHandler {
	return &AdminHandler{donors: donors, reports: reports}
}

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	stats, err := h.reports.Dashboard(c.UserContext(), p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

// SearchDonors takes optional q and blood_group query parameters.
func (h *AdminHandler) SearchDonors(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	donors, err := h.donors.Search(p, c.Query("q"), c.Query("blood_group"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(donors)
}

func (h *AdminHandler) DonorDetail(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid donor id")
	}

	detail, err := h.donors.Detail(p, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(detail)
}

func (h *AdminHandler) Report(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	report, err := h.reports.Report(c.UserContext(), p, c.Query("period", "month"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(report)
}

// ExportReport downloads a report as xlsx (default) or txt.
func (h *AdminHandler) ExportReport(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	period := c.Query("period", "month")
	format := c.Query("format", services.ExportXLSX)
	if format != services.ExportXLSX && format != services.ExportText {
		return badRequest(c, "format must be xlsx or txt")
	}

	report, err := h.reports.Report(c.UserContext(), p, period)
	if err != nil {
		return fail(c, err)
	}

	now := time.Now().UTC()
	c.Attachment(services.ExportFileName(period, format, now))
	if format == services.ExportText {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(services.ReportText(report, now))
	}

	body, err := services.ReportXLSX(report, now)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(body)
}
