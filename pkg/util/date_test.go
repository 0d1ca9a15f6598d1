package util

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-10-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected date %v", got)
	}

	if _, err := ParseDate("10/10/2024"); err == nil {
		t.Fatalf("expected error for non-ISO date")
	}
}

func TestFormatDateRoundTrip(t *testing.T) {
	d := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "2023-01-02" {
		t.Fatalf("unexpected format %q", got)
	}
}

func TestDayFloor(t *testing.T) {
	in := time.Date(2024, 10, 10, 15, 4, 5, 6, time.UTC)
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if got := DayFloor(in); !got.Equal(want) {
		t.Fatalf("unexpected floor %v", got)
	}
}

func TestAlignDaily(t *testing.T) {
	from := time.Date(2024, 10, 10, 9, 30, 0, 0, time.UTC)
	to := time.Date(2024, 10, 12, 16, 0, 0, 0, time.UTC)
	gotFrom, gotTo := AlignDaily(from, to)
	if gotFrom.Hour() != 0 || gotTo.Hour() != 0 {
		t.Fatalf("range not day-aligned: %v %v", gotFrom, gotTo)
	}
	if !gotFrom.Equal(time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v", gotFrom)
	}
}
