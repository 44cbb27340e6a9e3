package application

import (
	"testing"
	"time"
)

func TestParseDailyAt(t *testing.T) {
	hour, minute, err := parseDailyAt("02:30")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if hour != 2 || minute != 30 {
		t.Fatalf("parsed %d:%d, want 2:30", hour, minute)
	}

	if _, _, err := parseDailyAt("nonsense"); err == nil {
		t.Fatal("expected error for invalid time")
	}
}

func TestSchedulerShouldRun(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	s := NewScheduler(nil, "00:00", loc, 0, nil)

	// Midnight in Sao Paulo (UTC-3) is 03:00 UTC.
	match := time.Date(2026, 8, 31, 3, 0, 10, 0, time.UTC)
	if !s.shouldRun(match.In(loc)) {
		t.Fatal("expected run at configured local midnight")
	}
	miss := time.Date(2026, 8, 31, 0, 0, 10, 0, time.UTC)
	if s.shouldRun(miss.In(loc)) {
		t.Fatal("unexpected run at UTC midnight")
	}
}
