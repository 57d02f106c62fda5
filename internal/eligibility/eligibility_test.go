package eligibility

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDate(t *testing.T) {
	base := date(2024, 1, 1)

	tests := []struct {
		name string
		typ  models.DonationType
		want time.Time
	}{
		{"plasma waits 28 days", models.DonationPlasma, date(2024, 1, 29)},
		{"blood waits 56 days", models.DonationBlood, date(2024, 2, 26)},
		{"platelets use the default window", models.DonationPlatelets, date(2024, 2, 26)},
		{"double red uses the default window", models.DonationDoubleRed, date(2024, 2, 26)},
		{"unknown type falls back to default", models.DonationType("unknown"), date(2024, 2, 26)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDate(base, tt.typ))
		})
	}
}

func TestNextDate_AcrossDates(t *testing.T) {
	for d := date(2023, 12, 1); d.Before(date(2024, 4, 1)); d = d.AddDate(0, 0, 7) {
		assert.Equal(t, 28, int(NextDate(d, models.DonationPlasma).Sub(d).Hours()/24), d)
		assert.Equal(t, 56, int(NextDate(d, models.DonationBlood).Sub(d).Hours()/24), d)
	}
}

func TestIsEligible_BloodScenario(t *testing.T) {
	last := date(2024, 1, 1)

	assert.False(t, IsEligible(date(2024, 1, 2), &last, models.DonationBlood))
	assert.False(t, IsEligible(date(2024, 2, 25), &last, models.DonationBlood))
	assert.True(t, IsEligible(date(2024, 2, 26), &last, models.DonationBlood))
	assert.True(t, IsEligible(date(2024, 3, 10), &last, models.DonationBlood))
}

func TestIsEligible_NoPriorDonation(t *testing.T) {
	assert.True(t, IsEligible(date(2024, 1, 1), nil, models.DonationBlood))
}

func TestOf(t *testing.T) {
	ok, next := Of(nil, date(2024, 1, 1))
	assert.True(t, ok)
	assert.Nil(t, next)

	last := date(2024, 5, 1)
	plasma := models.DonationPlasma
	p := &models.DonorProfile{LastDonationDate: &last, LastDonationType: &plasma}

	ok, next = Of(p, date(2024, 5, 20))
	assert.False(t, ok)
	assert.Equal(t, date(2024, 5, 29), *next)

	// Missing type is treated as whole blood.
	p.LastDonationType = nil
	ok, next = Of(p, date(2024, 6, 1))
	assert.False(t, ok)
	assert.Equal(t, date(2024, 6, 26), *next)
}

func TestApply(t *testing.T) {
	p := &models.DonorProfile{IsEligible: true}

	Apply(p, date(2024, 5, 1), models.DonationBlood, date(2024, 5, 1))
	assert.Equal(t, date(2024, 5, 1), *p.LastDonationDate)
	assert.Equal(t, models.DonationBlood, *p.LastDonationType)
	assert.False(t, p.IsEligible)

	// An older back-dated donation does not move the last donation backwards.
	Apply(p, date(2024, 3, 1), models.DonationPlasma, date(2024, 5, 2))
	assert.Equal(t, date(2024, 5, 1), *p.LastDonationDate)
	assert.Equal(t, models.DonationBlood, *p.LastDonationType)

	// Long after the window the flag is recomputed as eligible.
	Apply(p, date(2024, 3, 1), models.DonationPlasma, date(2024, 7, 1))
	assert.True(t, p.IsEligible)
}
