package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const distributionWindowDays = 30

// ReportPeriods maps a report period to the number of days it looks back.
var ReportPeriods = map[string]int{
	"week":    7,
	"month":   30,
	"quarter": 90,
	"year":    365,
}

// ReportService computes read-only rollups for the back office. Results are
// cached for ttl when a KV is configured; staleness up to ttl is accepted.
type ReportService struct {
	db       *gorm.DB
	cal      Calendar
	kv       cache.KV
	ttl      time.Duration
	capacity int
}

func NewReportService(db *gorm.DB, cal Calendar, kv cache.KV, ttl time.Duration, capacity int) *ReportService {
	if capacity <= 0 {
		capacity = 50
	}
	return &ReportService{db: db, cal: cal, kv: kv, ttl: ttl, capacity: capacity}
}

func (s *ReportService) Dashboard(ctx context.Context, actor access.Principal) (*dto.DashboardStats, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	today := s.cal.Today()
	key := "lifedrop:dashboard:" + today.Format(models.DateLayout)

	var stats dto.DashboardStats
	if s.cached(ctx, key, &stats) {
		return &stats, nil
	}

	if err := s.db.Model(&models.Appointment{}).
		Where("appointment_date = ?", today).
		Count(&stats.TodayAppointments).Error; err != nil {
		return nil, persistenceError("count today's appointments", err)
	}
	if err := s.db.Model(&models.Donation{}).
		Where("donation_date = ? AND status = ?", today, models.DonationCompleted).
		Count(&stats.TodayDonations).Error; err != nil {
		return nil, persistenceError("count today's donations", err)
	}

	utilization := decimal.NewFromInt(stats.TodayAppointments).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(s.capacity)))
	stats.Utilization = int(decimal.Min(utilization, decimal.NewFromInt(100)).Round(0).IntPart())

	groups, err := s.donationsByGroup(today.AddDate(0, 0, -distributionWindowDays))
	if err != nil {
		return nil, err
	}
	stats.BloodGroupStats = groups

	s.store(ctx, key, &stats)
	return &stats, nil
}

// Report aggregates donations and appointments dated from period days before
// today onwards.
func (s *ReportService) Report(ctx context.Context, actor access.Principal, period string) (*dto.ReportData, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	days, ok := ReportPeriods[period]
	if !ok {
		return nil, validationError("period must be one of week, month, quarter, year")
	}

	today := s.cal.Today()
	key := "lifedrop:report:" + period + ":" + today.Format(models.DateLayout)

	var report dto.ReportData
	if s.cached(ctx, key, &report) {
		return &report, nil
	}

	start := today.AddDate(0, 0, -days)
	report.Period = period
	report.Days = days
	report.StartDate = start

	if err := s.db.Model(&models.Donation{}).
		Where("donation_date >= ? AND status = ?", start, models.DonationCompleted).
		Count(&report.TotalDonations).Error; err != nil {
		return nil, persistenceError("count period donations", err)
	}
	if err := s.db.Model(&models.Appointment{}).
		Where("appointment_date >= ?", start).
		Count(&report.TotalAppointments).Error; err != nil {
		return nil, persistenceError("count period appointments", err)
	}

	var completedAppointments int64
	if err := s.db.Model(&models.Appointment{}).
		Where("appointment_date >= ? AND status = ?", start, models.AppointmentCompleted).
		Count(&completedAppointments).Error; err != nil {
		return nil, persistenceError("count completed appointments", err)
	}
	report.CompletionRate = CompletionRate(completedAppointments, report.TotalAppointments)

	groups, err := s.donationsByGroup(start)
	if err != nil {
		return nil, err
	}
	report.DonationsByGroup = groups
	report.AverageDaily, _ = decimal.NewFromInt(report.TotalDonations).
		Div(decimal.NewFromInt(int64(days))).
		Round(1).
		Float64()

	s.store(ctx, key, &report)
	return &report, nil
}

// CompletionRate is completed/total as a percentage rounded to the nearest
// integer, 0 when total is 0.
func CompletionRate(completed, total int64) int {
	if total == 0 {
		return 0
	}
	return int(decimal.NewFromInt(completed).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		Round(0).
		IntPart())
}

// donationsByGroup counts completed donations from since onwards per donor
// blood group. Donors without a recorded blood group are left out.
func (s *ReportService) donationsByGroup(since time.Time) (map[string]int64, error) {
	var rows []struct {
		BloodGroup string
		Total      int64
	}
	if err := s.db.Table("donations").
		Select("donor_profiles.blood_group AS blood_group, COUNT(*) AS total").
		Joins("JOIN donor_profiles ON donor_profiles.user_id = donations.user_id").
		Where("donations.donation_date >= ? AND donations.status = ? AND donor_profiles.blood_group IS NOT NULL",
			since, models.DonationCompleted).
		Group("donor_profiles.blood_group").
		Scan(&rows).Error; err != nil {
		return nil, persistenceError("group donations by blood group", err)
	}

	groups := make(map[string]int64, len(rows))
	for _, r := range rows {
		groups[r.BloodGroup] = r.Total
	}
	return groups, nil
}

func (s *ReportService) cached(ctx context.Context, key string, dst interface{}) bool {
	if s.kv == nil {
		return false
	}
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("stats cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		slog.Warn("stats cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (s *ReportService) store(ctx context.Context, key string, v interface{}) {
	if s.kv == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.kv.Set(ctx, key, string(raw), s.ttl); err != nil {
		slog.Warn("stats cache write failed", "key", key, "error", err)
	}
}
