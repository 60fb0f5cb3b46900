package slot

import (
	"time"
)

type Modality string

const (
	ModalityInPerson Modality = "in_person"
	ModalityOnline   Modality = "online"
)

// Slot is one bookable appointment unit. ScheduledAt carries the natural
// (date, time) key at minute granularity; patient fields are set only while
// the slot is booked.
type Slot struct {
	ID           int64
	ScheduledAt  time.Time
	Available    bool
	PatientName  *string
	PatientPhone *string
	Modality     *Modality
	CreatedAt    time.Time
	BookedAt     *time.Time
}

// Label renders the slot key the way the chatbot and admin panel display it.
func (s Slot) Label() string {
	return s.ScheduledAt.Format("02/01/2006 15:04")
}

// AtMinute drops seconds and below so equality on ScheduledAt is exact.
func AtMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

// DayStart returns midnight of t's day in t's location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
