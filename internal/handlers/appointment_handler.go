package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AppointmentHandler struct {
	appointments *services.AppointmentService
	reminders    *services.ReminderService
}

func NewAppointmentHandler(appointments *services.AppointmentService, reminders *services.ReminderService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments, reminders: reminders}
}

func (h *AppointmentHandler) Create(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	var req dto.CreateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	appt, err := h.appointments.Create(p, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AppointmentCreatedResponse{ID: appt.ID, Appointment: appt})
}

func (h *AppointmentHandler) List(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	appts, err := h.appointments.ListForUser(p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(appts)
}

func (h *AppointmentHandler) Upcoming(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	appts, err := h.appointments.Upcoming(p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(appts)
}

func (h *AppointmentHandler) UpdateStatus(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid appointment id")
	}

	var req dto.UpdateAppointmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	appt, err := h.appointments.UpdateStatus(p, id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(appt)
}

func (h *AppointmentHandler) Cancel(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid appointment id")
	}

	appt, err := h.appointments.Cancel(p, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(appt)
}

// ListAll takes optional start and end query dates (YYYY-MM-DD).
func (h *AppointmentHandler) ListAll(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}
	from, err := queryDate(c, "start")
	if err != nil {
		return badRequest(c, "start must be YYYY-MM-DD")
	}
	to, err := queryDate(c, "end")
	if err != nil {
		return badRequest(c, "end must be YYYY-MM-DD")
	}

	rows, err := h.appointments.ListAll(p, from, to)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rows)
}

func (h *AppointmentHandler) Today(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	resp, err := h.appointments.Today(p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *AppointmentHandler) SendReminders(c *fiber.Ctx) error {
	p, err := access.FromCtx(c)
	if err != nil {
		return fail(c, err)
	}

	result, err := h.reminders.SendReminders(c.UserContext(), p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}
