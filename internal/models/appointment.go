package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus transitions:
//
//	scheduled -> confirmed -> completed
//	scheduled | confirmed -> completed | cancelled | no_show
//
// completed, cancelled and no_show are terminal.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentScheduled: {AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled, AppointmentNoShow},
	AppointmentConfirmed: {AppointmentCompleted, AppointmentCancelled, AppointmentNoShow},
	AppointmentCompleted: {},
	AppointmentCancelled: {},
	AppointmentNoShow:    {},
}

func (s AppointmentStatus) IsValid() bool {
	_, ok := appointmentTransitions[s]
	return ok
}

func (s AppointmentStatus) IsTerminal() bool {
	return s.IsValid() && len(appointmentTransitions[s]) == 0
}

func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	AppointmentDate time.Time         `gorm:"type:date;not null;index" json:"appointment_date"`
	AppointmentTime string            `gorm:"size:5;not null" json:"appointment_time"`
	DonationType    DonationType      `gorm:"size:20;not null;default:'blood'" json:"donation_type"`
	Location        string            `gorm:"not null;size:255" json:"location"`
	Status          AppointmentStatus `gorm:"size:20;not null;default:'scheduled';index" json:"status"`
	Notes           string            `gorm:"type:text" json:"notes"`
	ReminderSent    bool              `gorm:"not null;default:false" json:"reminder_sent"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	User            User              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// StartsAt combines the appointment date and HH:MM time in loc.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	clock, err := time.Parse("15:04", a.AppointmentTime)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := a.AppointmentDate.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc), nil
}
