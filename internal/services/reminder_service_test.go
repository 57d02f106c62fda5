package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendReminders_Webhook(t *testing.T) {
	var (
		mu       sync.Mutex
		received []Reminder
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rem Reminder
		if err := json.NewDecoder(r.Body).Decode(&rem); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		received = append(received, rem)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	db := newTestDB(t)
	svc := NewReminderService(db, testCalendar(), NewWebhookNotifier(srv.URL, 5*time.Second))
	admin := createAdmin(t, db)
	donor := createDonor(t, db, "ayse")
	other := createDonor(t, db, "mehmet")

	due := createAppointment(t, db, donor.UserID, "2024-03-02", "09:00", models.AppointmentScheduled)
	createAppointment(t, db, other.UserID, "2024-03-02", "10:00", models.AppointmentConfirmed)
	createAppointment(t, db, other.UserID, "2024-03-02", "11:00", models.AppointmentCancelled)
	createAppointment(t, db, donor.UserID, "2024-03-03", "09:00", models.AppointmentScheduled)

	result, err := svc.SendReminders(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)
	assert.Zero(t, result.Failed)

	require.Len(t, received, 2)
	assert.Equal(t, due.ID, received[0].AppointmentID)
	assert.Equal(t, "ayse@example.com", received[0].DonorEmail)
	assert.Equal(t, "2024-03-02", received[0].Date)
	assert.Equal(t, "09:00", received[0].Time)

	var stored models.Appointment
	require.NoError(t, db.First(&stored, "id = ?", due.ID).Error)
	assert.True(t, stored.ReminderSent)

	// Nothing left to send.
	result, err = svc.SendReminders(context.Background(), admin)
	require.NoError(t, err)
	assert.Zero(t, result.Sent)

	_, err = svc.SendReminders(context.Background(), donor)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSendReminders_FailedDeliveryRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	db := newTestDB(t)
	admin := createAdmin(t, db)
	donor := createDonor(t, db, "ayse")
	appt := createAppointment(t, db, donor.UserID, "2024-03-02", "09:00", models.AppointmentScheduled)

	failing := NewReminderService(db, testCalendar(), NewWebhookNotifier(srv.URL, time.Second))
	result, err := failing.SendReminders(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)

	var stored models.Appointment
	require.NoError(t, db.First(&stored, "id = ?", appt.ID).Error)
	assert.False(t, stored.ReminderSent)

	result, err = NewReminderService(db, testCalendar(), nil).SendReminders(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
}
