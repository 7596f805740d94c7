package reminders

import (
	"testing"
	"time"
)

func TestParseRemindAt(t *testing.T) {
	got, err := parseRemindAt("2024-12-01T09:30:00")
	if err != nil {
		t.Fatalf("parseRemindAt failed: %v", err)
	}
	want := time.Date(2024, 12, 1, 9, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("parseRemindAt = %v, want %v", got, want)
	}
}

func TestParseRemindAtRejectsBadInput(t *testing.T) {
	for _, input := range []string{
		"2024-12-01 09:30:00",
		"2024-12-01",
		"09:30",
		"2024-12-01T25:00:00",
		"soon",
	} {
		t.Run(input, func(t *testing.T) {
			if _, err := parseRemindAt(input); err == nil {
				t.Errorf("parseRemindAt(%q) did not fail", input)
			}
		})
	}
}
