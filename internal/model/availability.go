package model

import "time"

// Slot dates and times are stored date-only and minute-granular, always UTC.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// AvailabilitySlot is an advisor's declaration "I am bookable at this
// date and time". Slots are toggled per date and never expire on their own.
type AvailabilitySlot struct {
	ID        string    `json:"id"`
	AdvisorID string    `json:"advisor_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Time      string    `json:"time"` // HH:MM
	CreatedAt time.Time `json:"created_at"`
}

// ParseDate validates a calendar date in the slot layout.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// ParseTimeOfDay validates a time-of-day in the slot layout.
func ParseTimeOfDay(s string) (string, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return "", err
	}
	return t.Format(TimeLayout), nil
}
