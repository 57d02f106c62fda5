package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Reminder is the payload sent for an appointment on the next day.
type Reminder struct {
	AppointmentID uuid.UUID           `json:"appointment_id"`
	DonorName     string              `json:"donor_name"`
	DonorEmail    string              `json:"donor_email"`
	Date          string              `json:"date"`
	Time          string              `json:"time"`
	Location      string              `json:"location"`
	DonationType  models.DonationType `json:"donation_type"`
}

type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// WebhookNotifier posts reminders as JSON to an external delivery service.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &WebhookNotifier{client: client, url: url}
}

func (n *WebhookNotifier) Notify(ctx context.Context, r Reminder) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(r).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("reminder webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("reminder webhook: status %d", resp.StatusCode())
	}
	return nil
}

// LogNotifier only logs reminders. Used when no webhook is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, r Reminder) error {
	slog.Info("appointment reminder",
		"appointment_id", r.AppointmentID.String(),
		"date", r.Date,
		"time", r.Time,
		"location", r.Location,
	)
	return nil
}
