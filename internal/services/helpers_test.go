package services

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 2024-03-01 10:00 UTC
var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func testCalendar() Calendar {
	return FixedCalendar(testNow, time.UTC)
}

func day(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestDB(t *testing.T) *gorm.DB {
	return dbtest.Open(t)
}

func createUser(t *testing.T, db *gorm.DB, name string, role models.Role) access.Principal {
	t.Helper()
	u := models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "x",
		Role:     role,
	}
	require.NoError(t, db.Create(&u).Error)
	return access.Principal{UserID: u.ID, Role: role}
}

func createDonor(t *testing.T, db *gorm.DB, name string) access.Principal {
	return createUser(t, db, name, models.RoleUser)
}

func createAdmin(t *testing.T, db *gorm.DB) access.Principal {
	return createUser(t, db, "admin", models.RoleAdmin)
}

func createProfile(t *testing.T, db *gorm.DB, userID uuid.UUID, group models.BloodGroup, last *time.Time, lastType models.DonationType) *models.DonorProfile {
	t.Helper()
	p := models.DonorProfile{UserID: userID, BloodGroup: &group, IsEligible: true}
	if last != nil {
		p.LastDonationDate = last
		p.LastDonationType = &lastType
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func createAppointment(t *testing.T, db *gorm.DB, userID uuid.UUID, date, clock string, status models.AppointmentStatus) *models.Appointment {
	t.Helper()
	a := models.Appointment{
		UserID:          userID,
		AppointmentDate: day(date),
		AppointmentTime: clock,
		DonationType:    models.DonationBlood,
		Location:        "City Hospital",
		Status:          status,
	}
	require.NoError(t, db.Create(&a).Error)
	return &a
}

func loadProfile(t *testing.T, db *gorm.DB, userID uuid.UUID) models.DonorProfile {
	t.Helper()
	var p models.DonorProfile
	require.NoError(t, db.Where("user_id = ?", userID).First(&p).Error)
	return p
}

func ptr[T any](v T) *T { return &v }
