package services

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
)

// Calendar pins "now" and the clinic timezone used to turn instants into
// calendar dates.
type Calendar struct {
	Now      func() time.Time
	Location *time.Location
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Now: time.Now, Location: loc}
}

// FixedCalendar always reports now.
func FixedCalendar(now time.Time, loc *time.Location) Calendar {
	c := NewCalendar(loc)
	c.Now = func() time.Time { return now }
	return c
}

func (c Calendar) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Today is the current calendar date in the clinic timezone.
func (c Calendar) Today() time.Time {
	return models.CalendarDate(c.now(), c.Location)
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
