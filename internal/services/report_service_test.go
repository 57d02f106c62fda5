package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type failingKV struct{}

func (failingKV) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("connection refused")
}

func (failingKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errors.New("connection refused")
}

func addDonation(t *testing.T, db *gorm.DB, userID uuid.UUID, date string, status models.DonationStatus) {
	t.Helper()
	require.NoError(t, db.Create(&models.Donation{
		UserID: userID, Location: "x", DonationDate: day(date), Status: status,
	}).Error)
}

func TestReportDashboard(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, testCalendar(), nil, 0, 4)
	admin := createAdmin(t, db)
	a := createDonor(t, db, "ayse")
	b := createDonor(t, db, "mehmet")
	c := createDonor(t, db, "zeynep")
	createProfile(t, db, a.UserID, models.BloodGroupOPos, nil, "")
	createProfile(t, db, b.UserID, models.BloodGroupAPos, nil, "")

	createAppointment(t, db, a.UserID, "2024-03-01", "09:00", models.AppointmentCompleted)
	createAppointment(t, db, b.UserID, "2024-03-01", "10:00", models.AppointmentScheduled)
	createAppointment(t, db, c.UserID, "2024-03-01", "11:00", models.AppointmentCancelled)
	createAppointment(t, db, c.UserID, "2024-03-02", "11:00", models.AppointmentScheduled)

	addDonation(t, db, a.UserID, "2024-03-01", models.DonationCompleted)
	addDonation(t, db, a.UserID, "2024-02-10", models.DonationCompleted)
	addDonation(t, db, b.UserID, "2024-02-20", models.DonationCompleted)
	addDonation(t, db, b.UserID, "2024-02-21", models.DonationDeferred)
	addDonation(t, db, b.UserID, "2024-01-01", models.DonationCompleted) // outside 30 days
	addDonation(t, db, c.UserID, "2024-02-25", models.DonationCompleted) // no blood group

	stats, err := svc.Dashboard(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TodayAppointments)
	assert.Equal(t, int64(1), stats.TodayDonations)
	assert.Equal(t, 75, stats.Utilization)
	assert.Equal(t, map[string]int64{"O+": 2, "A+": 1}, stats.BloodGroupStats)

	_, err = svc.Dashboard(context.Background(), a)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestReportDashboard_UtilizationCapped(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, testCalendar(), nil, 0, 1)
	admin := createAdmin(t, db)
	a := createDonor(t, db, "ayse")
	b := createDonor(t, db, "mehmet")
	createAppointment(t, db, a.UserID, "2024-03-01", "09:00", models.AppointmentScheduled)
	createAppointment(t, db, b.UserID, "2024-03-01", "09:00", models.AppointmentScheduled)

	stats, err := svc.Dashboard(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 100, stats.Utilization)
	assert.Empty(t, stats.BloodGroupStats)
}

func TestReportDashboard_Cached(t *testing.T) {
	db := newTestDB(t)
	kv := cache.NewMemory()
	svc := NewReportService(db, testCalendar(), kv, time.Minute, 50)
	admin := createAdmin(t, db)
	donor := createDonor(t, db, "ayse")

	first, err := svc.Dashboard(context.Background(), admin)
	require.NoError(t, err)
	assert.Zero(t, first.TodayAppointments)

	createAppointment(t, db, donor.UserID, "2024-03-01", "09:00", models.AppointmentScheduled)

	second, err := svc.Dashboard(context.Background(), admin)
	require.NoError(t, err)
	assert.Zero(t, second.TodayAppointments, "served from cache")

	fresh, err := NewReportService(db, testCalendar(), nil, 0, 50).Dashboard(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.TodayAppointments)
}

func TestReportDashboard_CacheErrorsFallBack(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, testCalendar(), failingKV{}, time.Minute, 50)
	admin := createAdmin(t, db)

	_, err := svc.Dashboard(context.Background(), admin)
	assert.NoError(t, err)
}

func TestReportPeriod(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, testCalendar(), nil, 0, 50)
	admin := createAdmin(t, db)
	donor := createDonor(t, db, "ayse")
	createProfile(t, db, donor.UserID, models.BloodGroupABPos, nil, "")

	// Week window starts 2024-02-23. 10 appointments, 7 completed.
	dates := []string{"2024-02-23", "2024-02-24", "2024-02-25", "2024-02-26", "2024-02-27",
		"2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02", "2024-03-03"}
	for i, date := range dates {
		status := models.AppointmentCompleted
		if i >= 7 {
			status = models.AppointmentScheduled
		}
		createAppointment(t, db, donor.UserID, date, "09:00", status)
	}
	createAppointment(t, db, donor.UserID, "2024-02-01", "09:00", models.AppointmentCompleted)

	for _, date := range []string{"2024-02-24", "2024-02-26", "2024-02-28"} {
		addDonation(t, db, donor.UserID, date, models.DonationCompleted)
	}
	addDonation(t, db, donor.UserID, "2024-02-27", models.DonationDeferred)
	addDonation(t, db, donor.UserID, "2024-02-01", models.DonationCompleted)

	week, err := svc.Report(context.Background(), admin, "week")
	require.NoError(t, err)
	assert.Equal(t, "week", week.Period)
	assert.Equal(t, "2024-02-23", week.StartDate.Format(models.DateLayout))
	assert.Equal(t, int64(10), week.TotalAppointments)
	assert.Equal(t, 70, week.CompletionRate)
	assert.Equal(t, int64(3), week.TotalDonations)
	assert.Equal(t, map[string]int64{"AB+": 3}, week.DonationsByGroup)
	assert.Equal(t, 0.4, week.AverageDaily)

	month, err := svc.Report(context.Background(), admin, "month")
	require.NoError(t, err)
	assert.Equal(t, int64(11), month.TotalAppointments)
	assert.Equal(t, int64(4), month.TotalDonations)
	assert.Equal(t, 0.1, month.AverageDaily)

	_, err = svc.Report(context.Background(), admin, "decade")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0, CompletionRate(0, 0))
	assert.Equal(t, 70, CompletionRate(7, 10))
	assert.Equal(t, 67, CompletionRate(2, 3))
	assert.Equal(t, 33, CompletionRate(1, 3))
	assert.Equal(t, 100, CompletionRate(4, 4))
}

func TestReportExports(t *testing.T) {
	report := &dto.ReportData{
		Period:            "week",
		Days:              7,
		StartDate:         day("2024-02-23"),
		TotalDonations:    3,
		TotalAppointments: 10,
		CompletionRate:    70,
		DonationsByGroup:  map[string]int64{"AB+": 1, "O-": 2},
		AverageDaily:      0.4,
	}
	generated := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	text := ReportText(report, generated)
	assert.True(t, strings.HasPrefix(text, "LifeDrop Blood Donation Report\nPeriod: week\n"))
	assert.Contains(t, text, "- Completion Rate: 70%\n")
	assert.Contains(t, text, "- Average Daily Donations: 0.4\n")
	assert.Less(t, strings.Index(text, "- O-: 2"), strings.Index(text, "- AB+: 1"))

	assert.Equal(t, "lifedrop-report-week-2024-03-01.xlsx", ExportFileName("week", ExportXLSX, generated))

	raw, err := ReportXLSX(report, generated)
	require.NoError(t, err)

	f, err := excelize.OpenReader(strings.NewReader(string(raw)))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Blood Groups"}, f.GetSheetList())
	v, err := f.GetCellValue("Summary", "B6")
	require.NoError(t, err)
	assert.Equal(t, "10", v)
	v, err = f.GetCellValue("Blood Groups", "A2")
	require.NoError(t, err)
	assert.Equal(t, "O-", v)
}
