package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookReq(date, clock string) *dto.CreateAppointmentRequest {
	return &dto.CreateAppointmentRequest{
		AppointmentDate: date,
		AppointmentTime: clock,
		DonationType:    models.DonationBlood,
		Location:        "City Hospital",
	}
}

func TestAppointmentCreate_Success(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db, testCalendar())
	donor := createDonor(t, db, "ayse")

	appt, err := svc.Create(donor, bookReq("2024-03-05", "09:30"))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, appt.ID)
	assert.Equal(t, donor.UserID, appt.UserID)
	assert.Equal(t, models.AppointmentScheduled, appt.Status)
	assert.Equal(t, "2024-03-05", appt.AppointmentDate.Format(models.DateLayout))
}

func TestAppointmentCreate_DefaultsDonationType(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db, testCalendar())
	donor := createDonor(t, db, "ayse")

	req := bookReq("2024-03-05", "09:30")
	req.DonationType = ""
	appt, err := svc.Create(donor, req)
	require.NoError(t, err)
	assert.Equal(t, models.DonationBlood, appt.DonationType)
}

func TestAppointmentCreate_IneligibleDonor(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db, testCalendar())
	donor := createDonor(t, db, "ayse")
	// Last whole-blood donation 2024-02-10: next eligible 2024-04-06.
	createProfile(t, db, donor.UserID, models.BloodGroupAPos, ptr(day("2024-02-10")), models.DonationBlood)

	_, err := svc.Create(donor, bookReq("2024-03-05", "09:30"))
	assert.ErrorIs(t, err, ErrIneligibleDonor)

	// Eligibility is checked before the schedule.
	_, err = svc.Create(donor, bookReq("2020-01-01", "09:30"))
	assert.ErrorIs(t, err, ErrIneligibleDonor)

	// The stale cached flag was corrected.
	assert.False(t, loadProfile(t, db, donor.UserID).IsEligible)

	var count int64
	db.Model(&models.Appointment{}).Count(&count)
	assert.Zero(t, count)
}

func TestAppointmentCreate_EligibleAgainAfterWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db, testCalendar())
	donor := createDonor(t, db, "ayse")
	// Plasma on 2024-02-01: eligible from 2024-02-29.
	createProfile(t, db, donor.UserID, models.BloodGroupONeg, ptr(day("2024-02-01")), models.DonationPlasma)

	_, err := svc.Create(donor, bookReq("2024-03-02", "08:00"))
	assert.NoError(t, err)
}

func TestAppointmentCreate_MustBeInFuture(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db, testCalendar())
	donor := createDonor(t, db, "ayse")

	tests := []struct {
		name  string
		date  string
		clock string
	}{
		{"yesterday", "2024-02-29", "12:00"},
		{"earlier today", "2024-03-01", "09:59"},
		{"right now", "2024-03-01", "10:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(donor, bookReq(tt.date, tt.clock))
			assert.ErrorIs(t, err, ErrInvalidSchedule)
		})
	}

	_, err := svc.Create(donor, bookReq("2024-03-01", "10:01"))
	assert.NoError(t, err)
}

func TestAppointmentCreate_DuplicateBooking(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db, testCalendar())
	donor := createDonor(t, db, "ayse")

	first, err := svc.Create(donor, bookReq("2024-03-05", "09:30"))
	require.NoError(t, err)

	_, err = svc.Create(donor, bookReq("2024-03-05", "14:00"))
	assert.ErrorIs(t, err, ErrDuplicateBooking)

	// Another donor may book the same date.
	other := createDonor(t, db, "mehmet")
	_, err = svc.Create(other, bookReq("2024-03-05", "09:30"))
	assert.NoError(t, err)

	// Cancelling frees the date.
	_, err = svc.Cancel(donor, first.ID)
	require.NoError(t, err)
	_, err = svc.Create(donor, bookReq("2024-03-05", "14:00"))
	assert.NoError(t, err)
}

func TestAppointmentCreate_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db, testCalendar())
	donor := createDonor(t, db, "ayse")

	tests := []struct {
		name   string
		mutate func(r *dto.CreateAppointmentRequest)
	}{
		{"bad date", func(r *dto.CreateAppointmentRequest) { r.AppointmentDate = "05/03/2024" }},
		{"bad time", func(r *dto.CreateAppointmentRequest) { r.AppointmentTime = "9:30am" }},
		{"unknown type", func(r *dto.CreateAppointmentRequest) { r.DonationType = "saliva" }},
		{"no location", func(r *dto.CreateAppointmentRequest) { r.Location = "  " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := bookReq("2024-03-05", "09:30")
			tt.mutate(req)
			_, err := svc.Create(donor, req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAppointmentCreate_Unauthenticated(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db, testCalendar())

	_, err := svc.Create(access.Principal{}, bookReq("2024-03-05", "09:30"))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAppointmentUpdateStatus_CompleteRecordsDonation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db, testCalendar())
	donor := createDonor(t, db, "ayse")
	admin := createAdmin(t, db)

	appt := createAppointment(t, db, donor.UserID, "2024-03-01", "09:00", models.AppointmentConfirmed)

	updated, err := svc.UpdateStatus(admin, appt.ID, &dto.UpdateAppointmentStatusRequest{Status: models.AppointmentCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompleted, updated.Status)

	var donations []models.Donation
	require.NoError(t, db.Where("user_id = ?", donor.UserID).Find(&donations).Error)
	require.Len(t, donations, 1)
	d := donations[0]
	require.NotNil(t, d.AppointmentID)
	assert.Equal(t, appt.ID, *d.AppointmentID)
	assert.Equal(t, models.DonationCompleted, d.Status)
	assert.Equal(t, "2024-03-01", d.DonationDate.Format(models.DateLayout))
	assert.Equal(t, "Completed from appointment on 2024-03-01 at 09:00", d.Notes)
	require.NotNil(t, d.ProcessedBy)
	assert.Equal(t, admin.UserID, *d.ProcessedBy)

	// No profile existed; completion created one.
	p := loadProfile(t, db, donor.UserID)
	require.NotNil(t, p.LastDonationDate)
	assert.Equal(t, "2024-03-01", p.LastDonationDate.Format(models.DateLayout))
	require.NotNil(t, p.LastDonationType)
	assert.Equal(t, models.DonationBlood, *p.LastDonationType)
	assert.False(t, p.IsEligible)
}

func TestAppointmentUpdateStatus_CompleteTwiceFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db, testCalendar())
	donor := createDonor(t, db, "ayse")
	admin := createAdmin(t, db)
	appt := createAppointment(t, db, donor.UserID, "2024-03-01", "09:00", models.AppointmentScheduled)

	req := &dto.UpdateAppointmentStatusRequest{Status: models.AppointmentCompleted}
	_, err := svc.UpdateStatus(admin, appt.ID, req)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(admin, appt.ID, req)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var count int64
	db.Model(&models.Donation{}).Where("appointment_id = ?", appt.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAppointmentUpdateStatus_TerminalStates(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db, testCalendar())
	donor := createDonor(t, db, "ayse")

	for _, terminal := range []models.AppointmentStatus{models.AppointmentCancelled, models.AppointmentNoShow} {
		appt := createAppointment(t, db, donor.UserID, "2024-03-10", "09:00", terminal)
		for _, next := range []models.AppointmentStatus{models.AppointmentScheduled, models.AppointmentConfirmed, models.AppointmentCompleted} {
			_, err := svc.UpdateStatus(donor, appt.ID, &dto.UpdateAppointmentStatusRequest{Status: next})
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", terminal, next)
		}
	}

	var count int64
	db.Model(&models.Donation{}).Count(&count)
	assert.Zero(t, count)
}

func TestAppointmentUpdateStatus_OwnerMayConfirmAndNotes(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db, testCalendar())
	donor := createDonor(t, db, "ayse")
	appt := createAppointment(t, db, donor.UserID, "2024-03-10", "09:00", models.AppointmentScheduled)

	notes := "bringing a friend"
	updated, err := svc.UpdateStatus(donor, appt.ID, &dto.UpdateAppointmentStatusRequest{
		Status: models.AppointmentConfirmed,
		Notes:  &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentConfirmed, updated.Status)

	var stored models.Appointment
	require.NoError(t, db.First(&stored, "id = ?", appt.ID).Error)
	assert.Equal(t, models.AppointmentConfirmed, stored.Status)
	assert.Equal(t, notes, stored.Notes)
}

func TestAppointmentUpdateStatus_DonorCompletionHasNoProcessor(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db, testCalendar())
	donor := createDonor(t, db, "ayse")
	appt := createAppointment(t, db, donor.UserID, "2024-03-01", "08:00", models.AppointmentScheduled)

	_, err := svc.UpdateStatus(donor, appt.ID, &dto.UpdateAppointmentStatusRequest{Status: models.AppointmentCompleted})
	require.NoError(t, err)

	var d models.Donation
	require.NoError(t, db.Where("appointment_id = ?", appt.ID).First(&d).Error)
	assert.Nil(t, d.ProcessedBy)
}

func TestAppointmentUpdateStatus_Authorization(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db, testCalendar())
	owner := createDonor(t, db, "ayse")
	stranger := createDonor(t, db, "mehmet")
	appt := createAppointment(t, db, owner.UserID, "2024-03-10", "09:00", models.AppointmentScheduled)

	_, err := svc.UpdateStatus(stranger, appt.ID, &dto.UpdateAppointmentStatusRequest{Status: models.AppointmentCancelled})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Cancel(access.Principal{}, appt.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	var stored models.Appointment
	require.NoError(t, db.First(&stored, "id = ?", appt.ID).Error)
	assert.Equal(t, models.AppointmentScheduled, stored.Status)
}

func TestAppointmentUpdateStatus_NotFoundAndBadStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db, testCalendar())
	donor := createDonor(t, db, "ayse")

	_, err := svc.UpdateStatus(donor, uuid.New(), &dto.UpdateAppointmentStatusRequest{Status: models.AppointmentCancelled})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	appt := createAppointment(t, db, donor.UserID, "2024-03-10", "09:00", models.AppointmentScheduled)
	_, err = svc.UpdateStatus(donor, appt.ID, &dto.UpdateAppointmentStatusRequest{Status: "pending"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAppointmentReads(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db, testCalendar())
	donor := createDonor(t, db, "ayse")
	other := createDonor(t, db, "mehmet")
	admin := createAdmin(t, db)
	createProfile(t, db, donor.UserID, models.BloodGroupBPos, nil, "")

	createAppointment(t, db, donor.UserID, "2024-02-01", "09:00", models.AppointmentCompleted)
	createAppointment(t, db, donor.UserID, "2024-03-01", "15:00", models.AppointmentScheduled)
	createAppointment(t, db, donor.UserID, "2024-03-04", "09:00", models.AppointmentCancelled)
	createAppointment(t, db, donor.UserID, "2024-03-08", "11:00", models.AppointmentConfirmed)
	createAppointment(t, db, other.UserID, "2024-03-01", "08:30", models.AppointmentScheduled)

	mine, err := svc.ListForUser(donor)
	require.NoError(t, err)
	require.Len(t, mine, 4)
	assert.Equal(t, "2024-03-08", mine[0].AppointmentDate.Format(models.DateLayout))
	assert.Equal(t, "2024-02-01", mine[3].AppointmentDate.Format(models.DateLayout))

	upcoming, err := svc.Upcoming(donor)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "2024-03-01", upcoming[0].AppointmentDate.Format(models.DateLayout))
	assert.Equal(t, "2024-03-08", upcoming[1].AppointmentDate.Format(models.DateLayout))

	_, err = svc.ListAll(donor, nil, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	all, err := svc.ListAll(admin, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	from, to := day("2024-03-01"), day("2024-03-04")
	ranged, err := svc.ListAll(admin, &from, &to)
	require.NoError(t, err)
	assert.Len(t, ranged, 3)

	today, err := svc.Today(admin)
	require.NoError(t, err)
	require.Equal(t, int64(2), today.Count)
	assert.Equal(t, "08:30", today.Appointments[0].AppointmentTime)
	assert.Equal(t, "mehmet", today.Appointments[0].DonorName)
	assert.Nil(t, today.Appointments[0].DonorBloodGroup)
	assert.Equal(t, "ayse", today.Appointments[1].DonorName)
	require.NotNil(t, today.Appointments[1].DonorBloodGroup)
	assert.Equal(t, "B+", *today.Appointments[1].DonorBloodGroup)
}
