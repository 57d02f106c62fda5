package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const upcomingLimit = 5

type AppointmentService struct {
	db  *gorm.DB
	cal Calendar
}

func NewAppointmentService(db *gorm.DB, cal Calendar) *AppointmentService {
	return &AppointmentService{db: db, cal: cal}
}

// Create books an appointment for the calling donor. Checks run in order:
// eligibility, then the slot is in the future, then no other scheduled
// appointment exists on the same date.
func (s *AppointmentService) Create(actor access.Principal, req *dto.CreateAppointmentRequest) (*models.Appointment, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}

	appt, err := s.newAppointment(actor.UserID, req)
	if err != nil {
		return nil, err
	}

	// A deleted account keeps a valid access token until it expires.
	var donor models.User
	if err := s.db.Select("id").First(&donor, "id = ?", actor.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, persistenceError("load donor", err)
	}

	today := s.cal.Today()
	eligible, err := refreshEligibility(s.db, actor.UserID, today)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, ErrIneligibleDonor
	}

	startsAt, err := appt.StartsAt(s.cal.loc())
	if err != nil {
		return nil, validationError("appointment time must be HH:MM")
	}
	if !startsAt.After(s.cal.now()) {
		return nil, ErrInvalidSchedule
	}

	var existing int64
	if err := s.db.Model(&models.Appointment{}).
		Scopes(access.ForUser(actor.UserID)).
		Where("appointment_date = ? AND status = ?", appt.AppointmentDate, models.AppointmentScheduled).
		Count(&existing).Error; err != nil {
		return nil, persistenceError("count scheduled appointments", err)
	}
	if existing > 0 {
		return nil, ErrDuplicateBooking
	}

	if err := s.db.Create(appt).Error; err != nil {
		// The partial unique index settles concurrent bookings.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateBooking
		}
		return nil, persistenceError("create appointment", err)
	}

	return appt, nil
}

func (s *AppointmentService) newAppointment(userID uuid.UUID, req *dto.CreateAppointmentRequest) (*models.Appointment, error) {
	date, err := models.ParseDate(strings.TrimSpace(req.AppointmentDate))
	if err != nil {
		return nil, validationError("appointment date must be YYYY-MM-DD")
	}
	clock := strings.TrimSpace(req.AppointmentTime)
	if _, err := time.Parse("15:04", clock); err != nil || len(clock) != 5 {
		return nil, validationError("appointment time must be HH:MM")
	}
	donationType := req.DonationType
	if donationType == "" {
		donationType = models.DonationBlood
	}
	if !donationType.IsValid() {
		return nil, validationError("unknown donation type %q", donationType)
	}
	location := strings.TrimSpace(req.Location)
	if location == "" {
		return nil, validationError("location is required")
	}

	return &models.Appointment{
		UserID:          userID,
		AppointmentDate: date,
		AppointmentTime: clock,
		DonationType:    donationType,
		Location:        location,
		Status:          models.AppointmentScheduled,
		Notes:           strings.TrimSpace(req.Notes),
	}, nil
}

// UpdateStatus moves an appointment along its lifecycle. Completing an
// appointment records the donation and updates the donor's eligibility in the
// same transaction.
func (s *AppointmentService) UpdateStatus(actor access.Principal, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*models.Appointment, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}
	if !req.Status.IsValid() {
		return nil, validationError("unknown appointment status %q", req.Status)
	}

	var appt models.Appointment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAppointmentNotFound
			}
			return persistenceError("load appointment", err)
		}
		if err := actor.RequireOwnerOrAdmin(appt.UserID); err != nil {
			return err
		}
		if !appt.Status.CanTransitionTo(req.Status) {
			return ErrInvalidTransition
		}

		updates := map[string]interface{}{"status": req.Status}
		if req.Notes != nil {
			updates["notes"] = strings.TrimSpace(*req.Notes)
		}
		// Compare-and-set on the status read above; a concurrent writer
		// leaves zero rows affected.
		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", appt.ID, appt.Status).
			Updates(updates)
		if res.Error != nil {
			return persistenceError("update appointment status", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		appt.Status = req.Status
		if req.Notes != nil {
			appt.Notes = strings.TrimSpace(*req.Notes)
		}

		if req.Status == models.AppointmentCompleted {
			return s.recordCompletion(tx, actor, &appt)
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, persistenceError("commit appointment status", err)
	}

	return &appt, nil
}

func (s *AppointmentService) recordCompletion(tx *gorm.DB, actor access.Principal, appt *models.Appointment) error {
	donation := models.Donation{
		UserID:        appt.UserID,
		AppointmentID: &appt.ID,
		DonationType:  appt.DonationType,
		Location:      appt.Location,
		DonationDate:  appt.AppointmentDate,
		Notes: fmt.Sprintf("Completed from appointment on %s at %s",
			appt.AppointmentDate.Format(models.DateLayout), appt.AppointmentTime),
		Status: models.DonationCompleted,
	}
	if actor.IsAdmin() {
		processedBy := actor.UserID
		donation.ProcessedBy = &processedBy
	}

	if err := tx.Create(&donation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrInvalidTransition
		}
		return persistenceError("create donation from appointment", err)
	}

	return applyDonation(tx, appt.UserID, donation.DonationDate, donation.DonationType, s.cal.Today())
}

// Cancel is UpdateStatus to cancelled.
func (s *AppointmentService) Cancel(actor access.Principal, id uuid.UUID) (*models.Appointment, error) {
	return s.UpdateStatus(actor, id, &dto.UpdateAppointmentStatusRequest{Status: models.AppointmentCancelled})
}

// ListForUser returns the caller's appointments, newest date first.
func (s *AppointmentService) ListForUser(actor access.Principal) ([]models.Appointment, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}

	var appts []models.Appointment
	if err := s.db.Scopes(access.ForUser(actor.UserID)).
		Order("appointment_date DESC, appointment_time DESC").
		Find(&appts).Error; err != nil {
		return nil, persistenceError("list appointments", err)
	}
	return appts, nil
}

// Upcoming returns the caller's next appointments from today on that are
// still scheduled or confirmed.
func (s *AppointmentService) Upcoming(actor access.Principal) ([]models.Appointment, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}

	var appts []models.Appointment
	if err := s.db.Scopes(access.ForUser(actor.UserID)).
		Where("appointment_date >= ? AND status IN ?", s.cal.Today(),
			[]models.AppointmentStatus{models.AppointmentScheduled, models.AppointmentConfirmed}).
		Order("appointment_date ASC, appointment_time ASC").
		Limit(upcomingLimit).
		Find(&appts).Error; err != nil {
		return nil, persistenceError("list upcoming appointments", err)
	}
	return appts, nil
}

// ListAll returns every appointment joined with its donor, optionally limited
// to an inclusive date range.
func (s *AppointmentService) ListAll(actor access.Principal, from, to *time.Time) ([]dto.AdminAppointment, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	q := s.adminQuery()
	if from != nil {
		q = q.Where("appointments.appointment_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("appointments.appointment_date <= ?", *to)
	}

	var rows []dto.AdminAppointment
	if err := q.Order("appointments.appointment_date DESC, appointments.appointment_time DESC").
		Scan(&rows).Error; err != nil {
		return nil, persistenceError("list all appointments", err)
	}
	return rows, nil
}

// Today returns the count and list of appointments on the current clinic date.
func (s *AppointmentService) Today(actor access.Principal) (*dto.TodayAppointmentsResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var rows []dto.AdminAppointment
	if err := s.adminQuery().
		Where("appointments.appointment_date = ?", s.cal.Today()).
		Order("appointments.appointment_time ASC").
		Scan(&rows).Error; err != nil {
		return nil, persistenceError("list today's appointments", err)
	}

	if rows == nil {
		rows = []dto.AdminAppointment{}
	}
	return &dto.TodayAppointmentsResponse{Count: int64(len(rows)), Appointments: rows}, nil
}

func (s *AppointmentService) adminQuery() *gorm.DB {
	return s.db.Table("appointments").
		Select(`appointments.id, appointments.user_id, appointments.appointment_date,
			appointments.appointment_time, appointments.donation_type, appointments.location,
			appointments.status, appointments.notes, appointments.reminder_sent,
			appointments.created_at, appointments.updated_at,
			users.name AS donor_name, users.email AS donor_email,
			donor_profiles.phone AS donor_phone, donor_profiles.blood_group AS donor_blood_group,
			donor_profiles.weight AS donor_weight, donor_profiles.city AS donor_city,
			donor_profiles.date_of_birth AS donor_date_of_birth`).
		Joins("JOIN users ON users.id = appointments.user_id AND users.deleted_at IS NULL").
		Joins("LEFT JOIN donor_profiles ON donor_profiles.user_id = appointments.user_id")
}
