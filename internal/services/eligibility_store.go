package services

import (
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/eligibility"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func findProfile(db *gorm.DB, userID uuid.UUID) (*models.DonorProfile, error) {
	var profile models.DonorProfile
	err := db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError("load donor profile", err)
	}
	return &profile, nil
}

// refreshEligibility recomputes a donor's eligibility for today and writes
// the cached flag back when it went stale. A donor without a profile is
// eligible.
func refreshEligibility(db *gorm.DB, userID uuid.UUID, today time.Time) (bool, error) {
	profile, err := findProfile(db, userID)
	if err != nil || profile == nil {
		return true, err
	}

	eligible, _ := eligibility.Of(profile, today)
	if eligible != profile.IsEligible {
		if err := db.Model(&models.DonorProfile{}).
			Where("id = ?", profile.ID).
			Update("is_eligible", eligible).Error; err != nil {
			return false, persistenceError("refresh eligibility", err)
		}
	}
	return eligible, nil
}

// applyDonation folds a completed donation into the donor's profile,
// creating the profile when the donor has none.
func applyDonation(tx *gorm.DB, userID uuid.UUID, date time.Time, t models.DonationType, today time.Time) error {
	profile, err := findProfile(tx, userID)
	if err != nil {
		return err
	}

	if profile == nil {
		profile = &models.DonorProfile{UserID: userID}
		eligibility.Apply(profile, date, t, today)
		if err := tx.Create(profile).Error; err != nil {
			return persistenceError("create donor profile", err)
		}
		// The column default would turn a false flag into true on insert.
		if !profile.IsEligible {
			if err := tx.Model(profile).Update("is_eligible", false).Error; err != nil {
				return persistenceError("update eligibility", err)
			}
		}
		return nil
	}

	eligibility.Apply(profile, date, t, today)
	if err := tx.Model(&models.DonorProfile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]interface{}{
			"last_donation_date": profile.LastDonationDate,
			"last_donation_type": profile.LastDonationType,
			"is_eligible":        profile.IsEligible,
		}).Error; err != nil {
		return persistenceError("update eligibility", err)
	}
	return nil
}
