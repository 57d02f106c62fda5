package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/google/uuid"
)

type RecordDonationRequest struct {
	// UserID is only honoured for admins; donors always record for themselves.
	UserID          *uuid.UUID            `json:"user_id"`
	DonationType    models.DonationType   `json:"donation_type"`
	Location        string                `json:"location"`
	DonationDate    string                `json:"donation_date"` // YYYY-MM-DD
	HemoglobinLevel string                `json:"hemoglobin_level"` // g/dL, e.g. "13.2"
	BloodPressure   string                `json:"blood_pressure"`
	Weight          *int                  `json:"weight"`
	Notes           string                `json:"notes"`
	Status          models.DonationStatus `json:"status"`
}

type LastDonation struct {
	Date time.Time           `json:"date"`
	Type models.DonationType `json:"type"`
}

type DonationStats struct {
	TotalDonations   int64         `json:"total_donations"`
	LivesImpacted    int64         `json:"lives_impacted"`
	LastDonation     *LastDonation `json:"last_donation"`
	NextEligibleDate *time.Time    `json:"next_eligible_date"`
	IsEligible       bool          `json:"is_eligible"`
}

// DonationWithDonor is a donation joined with its donor.
type DonationWithDonor struct {
	ID           uuid.UUID             `json:"id"`
	UserID       uuid.UUID             `json:"user_id"`
	DonationType models.DonationType   `json:"donation_type"`
	Location     string                `json:"location"`
	DonationDate time.Time             `json:"donation_date"`
	Status       models.DonationStatus `json:"status"`
	DonorName    string                `json:"donor_name"`
	DonorEmail   string                `json:"donor_email"`
}
