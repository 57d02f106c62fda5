package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderService struct {
	db       *gorm.DB
	cal      Calendar
	notifier Notifier
}

func NewReminderService(db *gorm.DB, cal Calendar, notifier Notifier) *ReminderService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &ReminderService{db: db, cal: cal, notifier: notifier}
}

// SendReminders notifies donors with a scheduled or confirmed appointment
// tomorrow that have not been reminded yet. A failed delivery leaves the
// appointment unflagged so the next run retries it.
func (s *ReminderService) SendReminders(ctx context.Context, actor access.Principal) (*dto.ReminderResult, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	tomorrow := s.cal.Today().AddDate(0, 0, 1)

	var due []struct {
		ID              uuid.UUID
		AppointmentDate time.Time
		AppointmentTime string
		Location        string
		DonationType    models.DonationType
		DonorName       string
		DonorEmail      string
	}
	if err := s.db.Table("appointments").
		Select(`appointments.id, appointments.appointment_date, appointments.appointment_time,
			appointments.location, appointments.donation_type,
			users.name AS donor_name, users.email AS donor_email`).
		Joins("JOIN users ON users.id = appointments.user_id AND users.deleted_at IS NULL").
		Where("appointments.appointment_date = ? AND appointments.status IN ? AND appointments.reminder_sent = ?",
			tomorrow,
			[]models.AppointmentStatus{models.AppointmentScheduled, models.AppointmentConfirmed},
			false).
		Order("appointments.appointment_time ASC").
		Scan(&due).Error; err != nil {
		return nil, persistenceError("list due reminders", err)
	}

	result := &dto.ReminderResult{}
	for _, a := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		err := s.notifier.Notify(ctx, Reminder{
			AppointmentID: a.ID,
			DonorName:     a.DonorName,
			DonorEmail:    a.DonorEmail,
			Date:          a.AppointmentDate.Format(models.DateLayout),
			Time:          a.AppointmentTime,
			Location:      a.Location,
			DonationType:  a.DonationType,
		})
		if err != nil {
			slog.Warn("reminder delivery failed", "appointment_id", a.ID.String(), "error", err)
			result.Failed++
			continue
		}

		if err := s.db.Model(&models.Appointment{}).
			Where("id = ?", a.ID).
			Update("reminder_sent", true).Error; err != nil {
			return result, persistenceError("flag reminder sent", err)
		}
		result.Sent++
	}

	return result, nil
}
