package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// statusOf maps the service error taxonomy to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrAppointmentNotFound),
		errors.Is(err, services.ErrDonorNotFound),
		errors.Is(err, services.ErrBloodUnitNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrDuplicateBooking),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrIneligibleDonor),
		errors.Is(err, services.ErrInvalidSchedule),
		errors.Is(err, services.ErrScreeningFailed):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	code := statusOf(err)
	message := err.Error()
	if code >= fiber.StatusInternalServerError {
		if !errors.Is(err, services.ErrPersistence) {
			slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}
		message = "Internal server error"
	}
	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
