package nlp

import (
	"testing"
	"time"
)

// Wednesday, so "sexta" resolves within the same week.
var refNow = time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

func TestExtractDateWeekdayWithClock(t *testing.T) {
	got, ok := ExtractDate("reunião às 14h na sexta", refNow)
	if !ok {
		t.Fatal("expected a date")
	}
	if got.Time.Weekday() != time.Friday {
		t.Errorf("weekday = %s, want Friday", got.Time.Weekday())
	}
	if got.Time.Hour() != 14 {
		t.Errorf("hour = %d, want 14", got.Time.Hour())
	}
	if !got.Time.After(refNow) {
		t.Errorf("resolved time %s is not after the reference %s", got.Time, refNow)
	}
	if got.Span == "" {
		t.Error("span is empty")
	}
}

func TestExtractDateKeepsClockWithDayWord(t *testing.T) {
	// A day-word match alone must not swallow the clock component.
	got, ok := ExtractDate("entregar o relatório na sexta às 14h30", refNow)
	if !ok {
		t.Fatal("expected a date")
	}
	if got.Time.Weekday() != time.Friday {
		t.Errorf("weekday = %s, want Friday", got.Time.Weekday())
	}
	if got.Time.Hour() != 14 || got.Time.Minute() != 30 {
		t.Errorf("clock = %02d:%02d, want 14:30", got.Time.Hour(), got.Time.Minute())
	}
}

func TestExtractDateTomorrow(t *testing.T) {
	got, ok := ExtractDate("consulta amanhã às 10h", refNow)
	if !ok {
		t.Fatal("expected a date")
	}
	wantDay := refNow.AddDate(0, 0, 1)
	if got.Time.Year() != wantDay.Year() || got.Time.YearDay() != wantDay.YearDay() {
		t.Errorf("day = %s, want %s", got.Time.Format("2006-01-02"), wantDay.Format("2006-01-02"))
	}
	if got.Time.Hour() != 10 {
		t.Errorf("hour = %d, want 10", got.Time.Hour())
	}
}

func TestExtractDateNone(t *testing.T) {
	if _, ok := ExtractDate("obrigado pela ajuda", refNow); ok {
		t.Error("expected no date")
	}
}
