package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/google/uuid"
)

type CreateAppointmentRequest struct {
	AppointmentDate string              `json:"appointment_date"` // YYYY-MM-DD
	AppointmentTime string              `json:"appointment_time"` // HH:MM
	DonationType    models.DonationType `json:"donation_type"`
	Location        string              `json:"location"`
	Notes           string              `json:"notes"`
}

type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status"`
	Notes  *string                  `json:"notes"`
}

type AppointmentCreatedResponse struct {
	ID          uuid.UUID           `json:"id"`
	Appointment *models.Appointment `json:"appointment"`
}

// AdminAppointment is an appointment joined with its donor.
type AdminAppointment struct {
	ID               uuid.UUID                `json:"id"`
	UserID           uuid.UUID                `json:"user_id"`
	AppointmentDate  time.Time                `json:"appointment_date"`
	AppointmentTime  string                   `json:"appointment_time"`
	DonationType     models.DonationType      `json:"donation_type"`
	Location         string                   `json:"location"`
	Status           models.AppointmentStatus `json:"status"`
	Notes            string                   `json:"notes"`
	ReminderSent     bool                     `json:"reminder_sent"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
	DonorName        string                   `json:"donor_name"`
	DonorEmail       string                   `json:"donor_email"`
	DonorPhone       *string                  `json:"donor_phone"`
	DonorBloodGroup  *string                  `json:"donor_blood_group"`
	DonorWeight      *int                     `json:"donor_weight"`
	DonorCity        *string                  `json:"donor_city"`
	DonorDateOfBirth *time.Time               `json:"donor_date_of_birth"`
}

type TodayAppointmentsResponse struct {
	Count        int64              `json:"count"`
	Appointments []AdminAppointment `json:"appointments"`
}

type ReminderResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
