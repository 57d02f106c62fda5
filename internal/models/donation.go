package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DonationType string

const (
	DonationBlood     DonationType = "blood"
	DonationPlasma    DonationType = "plasma"
	DonationPlatelets DonationType = "platelets"
	DonationDoubleRed DonationType = "double_red"
)

var DonationTypes = []DonationType{DonationBlood, DonationPlasma, DonationPlatelets, DonationDoubleRed}

func (t DonationType) IsValid() bool {
	switch t {
	case DonationBlood, DonationPlasma, DonationPlatelets, DonationDoubleRed:
		return true
	}
	return false
}

type DonationStatus string

const (
	DonationCompleted DonationStatus = "completed"
	DonationDeferred  DonationStatus = "deferred"
	DonationCancelled DonationStatus = "cancelled"
)

func (s DonationStatus) IsValid() bool {
	switch s {
	case DonationCompleted, DonationDeferred, DonationCancelled:
		return true
	}
	return false
}

// Donation is a historical record. Rows are only ever inserted.
type Donation struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	AppointmentID   *uuid.UUID          `gorm:"type:uuid;uniqueIndex" json:"appointment_id,omitempty"`
	DonationType    DonationType        `gorm:"size:20;not null;default:'blood'" json:"donation_type"`
	Location        string              `gorm:"not null;size:255" json:"location"`
	DonationDate    time.Time           `gorm:"type:date;not null;index" json:"donation_date"`
	HemoglobinLevel decimal.NullDecimal `gorm:"type:numeric(4,1)" json:"hemoglobin_level"`
	BloodPressure   string              `gorm:"size:20" json:"blood_pressure"`
	Weight          *int                `json:"weight"`
	Notes           string              `gorm:"type:text" json:"notes"`
	Status          DonationStatus      `gorm:"size:20;not null;default:'completed';index" json:"status"`
	ProcessedBy     *uuid.UUID          `gorm:"type:uuid" json:"processed_by,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	User            User                `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
