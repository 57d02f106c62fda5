package services

import (
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DonorDirectoryService is the back-office view over donors.
type DonorDirectoryService struct {
	db *gorm.DB
}

func NewDonorDirectoryService(db *gorm.DB) *DonorDirectoryService {
	return &DonorDirectoryService{db: db}
}

// Search lists donor accounts matching query on name, email or phone, and
// optionally a blood group, with their completed donation count.
func (s *DonorDirectoryService) Search(actor access.Principal, query, bloodGroup string) ([]dto.DonorSummary, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	completed := s.db.Model(&models.Donation{}).
		Select("user_id, COUNT(*) AS total").
		Where("status = ?", models.DonationCompleted).
		Group("user_id")

	q := s.db.Table("users").
		Select(`users.id, users.name, users.email, users.created_at,
			donor_profiles.phone, donor_profiles.blood_group, donor_profiles.city,
			donor_profiles.last_donation_date, donor_profiles.is_eligible,
			COALESCE(donation_counts.total, 0) AS total_donations`).
		Joins("LEFT JOIN donor_profiles ON donor_profiles.user_id = users.id").
		Joins("LEFT JOIN (?) AS donation_counts ON donation_counts.user_id = users.id", completed).
		Where("users.deleted_at IS NULL AND users.role = ?", models.RoleUser)

	if term := strings.ToLower(strings.TrimSpace(query)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(COALESCE(donor_profiles.phone, '')) LIKE ?",
			like, like, like)
	}
	if group := strings.ToUpper(strings.TrimSpace(bloodGroup)); group != "" && group != "ALL" {
		if !models.BloodGroup(group).IsValid() {
			return nil, validationError("unknown blood group %q", bloodGroup)
		}
		q = q.Where("donor_profiles.blood_group = ?", group)
	}

	var rows []dto.DonorSummary
	if err := q.Order("users.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, persistenceError("search donors", err)
	}
	if rows == nil {
		rows = []dto.DonorSummary{}
	}
	return rows, nil
}

// Detail returns a donor with their profile, donations and appointments.
func (s *DonorDirectoryService) Detail(actor access.Principal, donorID uuid.UUID) (*dto.DonorDetail, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", donorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonorNotFound
		}
		return nil, persistenceError("load donor", err)
	}

	detail := &dto.DonorDetail{
		Donor:        userResponse(&user),
		Donations:    []models.Donation{},
		Appointments: []models.Appointment{},
	}

	profile, err := findProfile(s.db, donorID)
	if err != nil {
		return nil, err
	}
	detail.Profile = profile

	if err := s.db.Scopes(access.ForUser(donorID)).
		Order("donation_date DESC").
		Find(&detail.Donations).Error; err != nil {
		return nil, persistenceError("list donor donations", err)
	}
	if err := s.db.Scopes(access.ForUser(donorID)).
		Order("appointment_date DESC, appointment_time DESC").
		Find(&detail.Appointments).Error; err != nil {
		return nil, persistenceError("list donor appointments", err)
	}

	return detail, nil
}
