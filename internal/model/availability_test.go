package model

import "testing"

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2025-01-10"); err != nil {
		t.Errorf("valid date rejected: %v", err)
	}
	for _, bad := range []string{"10-01-2025", "2025-01-10T00:00:00Z", ""} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("%q should not parse as a date", bad)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	if _, err := ParseTimeOfDay("09:30"); err != nil {
		t.Errorf("valid time rejected: %v", err)
	}
	for _, bad := range []string{"9:30am", "25:00", "09:30:00", ""} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Errorf("%q should not parse as a time", bad)
		}
	}
}
