package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/google/uuid"
)

type DonorSummary struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Phone            *string    `json:"phone"`
	BloodGroup       *string    `json:"blood_group"`
	City             *string    `json:"city"`
	LastDonationDate *time.Time `json:"last_donation_date"`
	IsEligible       *bool      `json:"is_eligible"`
	CreatedAt        time.Time  `json:"created_at"`
	TotalDonations   int64      `json:"total_donations"`
}

type DonorDetail struct {
	Donor        UserResponse         `json:"donor"`
	Profile      *models.DonorProfile `json:"profile"`
	Donations    []models.Donation    `json:"donations"`
	Appointments []models.Appointment `json:"appointments"`
}

type DashboardStats struct {
	TodayAppointments int64            `json:"today_appointments"`
	TodayDonations    int64            `json:"today_donations"`
	Utilization       int              `json:"utilization"`
	BloodGroupStats   map[string]int64 `json:"blood_group_stats"`
}

type ReportData struct {
	Period            string           `json:"period"`
	Days              int              `json:"days"`
	StartDate         time.Time        `json:"start_date"`
	TotalDonations    int64            `json:"total_donations"`
	TotalAppointments int64            `json:"total_appointments"`
	CompletionRate    int              `json:"completion_rate"`
	DonationsByGroup  map[string]int64 `json:"donations_by_group"`
	AverageDaily      float64          `json:"average_daily"`
}

type EligibilityInfo struct {
	WindowsDays      map[string]int `json:"windows_days"`
	BloodGroups      []string       `json:"blood_groups"`
	MinHemoglobin    string         `json:"min_hemoglobin_g_dl"`
	MinWeightKg      int            `json:"min_weight_kg"`
	LivesPerDonation int            `json:"lives_per_donation"`
}
