package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
)

type ProfileResponse struct {
	User             UserResponse             `json:"user"`
	Profile          *models.DonorProfile     `json:"profile"`
	EmergencyContact *models.EmergencyContact `json:"emergency_contact"`
	NextEligibleDate *time.Time               `json:"next_eligible_date"`
}

type UpdateUserInfoRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DonorProfileRequest carries the donor-editable fields. Eligibility and the
// last donation are maintained by the donation workflow only.
type DonorProfileRequest struct {
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	BloodGroup   *string `json:"blood_group"`
	DateOfBirth  string  `json:"date_of_birth"` // YYYY-MM-DD, empty clears
	Weight       *int    `json:"weight"`
	MedicalNotes string  `json:"medical_notes"`
}

type EmergencyContactRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}
