// Package eligibility computes when a donor may donate again.
//
// All dates are calendar dates as produced by models.CalendarDate.
package eligibility

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
)

const (
	PlasmaWindowDays  = 28
	DefaultWindowDays = 56
)

// WindowDays is the minimum number of days between a donation of type t and
// the next one. Only plasma has a shorter window; every other type, known or
// not, uses the whole-blood interval.
func WindowDays(t models.DonationType) int {
	if t == models.DonationPlasma {
		return PlasmaWindowDays
	}
	return DefaultWindowDays
}

// NextDate returns the first calendar date a donor who last donated t on last
// may donate again.
func NextDate(last time.Time, t models.DonationType) time.Time {
	return last.AddDate(0, 0, WindowDays(t))
}

// IsEligible reports whether a donor may donate on today. A donor without a
// previous donation is always eligible.
func IsEligible(today time.Time, last *time.Time, t models.DonationType) bool {
	if last == nil {
		return true
	}
	return !today.Before(NextDate(*last, t))
}

// Of returns the eligibility of a profile on today and the next eligible
// date, nil when the profile carries no donation.
func Of(p *models.DonorProfile, today time.Time) (bool, *time.Time) {
	if p == nil || p.LastDonationDate == nil {
		return true, nil
	}
	t := models.DonationBlood
	if p.LastDonationType != nil {
		t = *p.LastDonationType
	}
	next := NextDate(*p.LastDonationDate, t)
	return !today.Before(next), &next
}

// Apply records a donation of t on date in p and recomputes the cached
// IsEligible flag for today. An older donation than the one already on the
// profile leaves the last-donation fields unchanged.
func Apply(p *models.DonorProfile, date time.Time, t models.DonationType, today time.Time) {
	if p.LastDonationDate == nil || !date.Before(*p.LastDonationDate) {
		d := date
		dt := t
		p.LastDonationDate = &d
		p.LastDonationType = &dt
	}
	p.IsEligible, _ = Of(p, today)
}
