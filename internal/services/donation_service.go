package services

import (
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/eligibility"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LivesPerDonation is the number of patients one donation is counted as
// helping.
const LivesPerDonation = 3

// Health screening thresholds for a completed donation.
var (
	MinHemoglobin = decimal.RequireFromString("12.5") // g/dL
	MinWeightKg   = 50
)

type DonationService struct {
	db  *gorm.DB
	cal Calendar
}

func NewDonationService(db *gorm.DB, cal Calendar) *DonationService {
	return &DonationService{db: db, cal: cal}
}

// Record stores a donation made outside the appointment flow. Donors record
// for themselves; admins may record for any donor through req.UserID.
func (s *DonationService) Record(actor access.Principal, req *dto.RecordDonationRequest) (*models.Donation, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}

	donorID := actor.UserID
	if req.UserID != nil && *req.UserID != actor.UserID {
		if err := actor.RequireAdmin(); err != nil {
			return nil, err
		}
		if err := s.requireStoredAdmin(actor); err != nil {
			return nil, err
		}
		donorID = *req.UserID
	}

	donation, err := s.newDonation(donorID, req)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		processedBy := actor.UserID
		donation.ProcessedBy = &processedBy
	}

	if donation.Status == models.DonationCompleted {
		if err := screen(donation); err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var donor models.User
		if err := tx.Select("id").First(&donor, "id = ?", donorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDonorNotFound
			}
			return persistenceError("load donor", err)
		}

		if err := tx.Create(donation).Error; err != nil {
			return persistenceError("create donation", err)
		}
		if donation.Status != models.DonationCompleted {
			return nil
		}
		return applyDonation(tx, donorID, donation.DonationDate, donation.DonationType, s.cal.Today())
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, persistenceError("commit donation", err)
	}

	return donation, nil
}

// requireStoredAdmin re-reads the actor's role. Portal routes only carry the
// role claim from the token.
func (s *DonationService) requireStoredAdmin(actor access.Principal) error {
	var user models.User
	if err := s.db.Select("id", "role").First(&user, "id = ?", actor.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return persistenceError("load acting admin", err)
	}
	if !user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *DonationService) newDonation(donorID uuid.UUID, req *dto.RecordDonationRequest) (*models.Donation, error) {
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

	date := s.cal.Today()
	if raw := strings.TrimSpace(req.DonationDate); raw != "" {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			return nil, validationError("donation date must be YYYY-MM-DD")
		}
		date = parsed
	}
	if date.After(s.cal.Today()) {
		return nil, validationError("donation date cannot be in the future")
	}

	status := req.Status
	if status == "" {
		status = models.DonationCompleted
	}
	if !status.IsValid() {
		return nil, validationError("unknown donation status %q", status)
	}

	var hemoglobin decimal.NullDecimal
	if raw := strings.TrimSpace(req.HemoglobinLevel); raw != "" {
		level, err := decimal.NewFromString(raw)
		if err != nil || !level.IsPositive() {
			return nil, validationError("hemoglobin level must be a positive number")
		}
		hemoglobin = decimal.NewNullDecimal(level.Round(1))
	}

	if req.Weight != nil && *req.Weight <= 0 {
		return nil, validationError("weight must be positive")
	}

	return &models.Donation{
		UserID:          donorID,
		DonationType:    donationType,
		Location:        location,
		DonationDate:    date,
		HemoglobinLevel: hemoglobin,
		BloodPressure:   strings.TrimSpace(req.BloodPressure),
		Weight:          req.Weight,
		Notes:           strings.TrimSpace(req.Notes),
		Status:          status,
	}, nil
}

// screen rejects a completed donation whose recorded vitals are below the
// screening thresholds. Vitals that were not recorded are not checked.
func screen(d *models.Donation) error {
	if d.HemoglobinLevel.Valid && d.HemoglobinLevel.Decimal.LessThan(MinHemoglobin) {
		return ErrScreeningFailed
	}
	if d.Weight != nil && *d.Weight < MinWeightKg {
		return ErrScreeningFailed
	}
	return nil
}

// History returns the caller's donations, newest first.
func (s *DonationService) History(actor access.Principal) ([]models.Donation, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}

	var donations []models.Donation
	if err := s.db.Scopes(access.ForUser(actor.UserID)).
		Order("donation_date DESC, created_at DESC").
		Find(&donations).Error; err != nil {
		return nil, persistenceError("list donations", err)
	}
	return donations, nil
}

// Stats summarises the caller's completed donations and current eligibility.
func (s *DonationService) Stats(actor access.Principal) (*dto.DonationStats, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}

	completed := s.db.Model(&models.Donation{}).
		Scopes(access.ForUser(actor.UserID)).
		Where("status = ?", models.DonationCompleted)

	var total int64
	if err := completed.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, persistenceError("count donations", err)
	}

	stats := &dto.DonationStats{
		TotalDonations: total,
		LivesImpacted:  total * LivesPerDonation,
		IsEligible:     true,
	}
	if total == 0 {
		return stats, nil
	}

	var last models.Donation
	if err := completed.Session(&gorm.Session{}).
		Order("donation_date DESC, created_at DESC").
		First(&last).Error; err != nil {
		return nil, persistenceError("load last donation", err)
	}

	today := s.cal.Today()
	next := eligibility.NextDate(last.DonationDate, last.DonationType)
	stats.LastDonation = &dto.LastDonation{Date: last.DonationDate, Type: last.DonationType}
	stats.NextEligibleDate = &next
	stats.IsEligible = !today.Before(next)
	return stats, nil
}

// ListInRange returns donations with their donor within the inclusive date
// range.
func (s *DonationService) ListInRange(actor access.Principal, from, to time.Time) ([]dto.DonationWithDonor, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, validationError("end date is before start date")
	}

	var rows []dto.DonationWithDonor
	if err := s.db.Table("donations").
		Select(`donations.id, donations.user_id, donations.donation_type, donations.location,
			donations.donation_date, donations.status,
			users.name AS donor_name, users.email AS donor_email`).
		Joins("JOIN users ON users.id = donations.user_id").
		Where("donations.donation_date >= ? AND donations.donation_date <= ?", from, to).
		Order("donations.donation_date DESC").
		Scan(&rows).Error; err != nil {
		return nil, persistenceError("list donations in range", err)
	}
	if rows == nil {
		rows = []dto.DonationWithDonor{}
	}
	return rows, nil
}
