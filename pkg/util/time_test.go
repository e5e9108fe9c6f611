package util

import (
	"testing"
	"time"
)

func TestPeriodDuration(t *testing.T) {
	if got := PeriodDuration("5m"); got != 5*time.Minute {
		t.Fatalf("unexpected duration %v", got)
	}
	if got := PeriodDuration("24h"); got != 24*time.Hour {
		t.Fatalf("unexpected duration %v", got)
	}
	if got := PeriodDuration("bogus"); got != time.Hour {
		t.Fatalf("expected fallback hour, got %v", got)
	}
}

func TestHourBucket(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 42, 31, 0, time.UTC)
	want := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	if got := HourBucket(ts); !got.Equal(want) {
		t.Fatalf("unexpected bucket %v", got)
	}
}

func TestParseUnixSeconds(t *testing.T) {
	got, ok := ParseUnixSeconds("1728554410.5")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != 1728554410 {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
	if _, ok := ParseUnixSeconds(""); ok {
		t.Fatalf("expected not ok for empty input")
	}
	if _, ok := ParseUnixSeconds("abc"); ok {
		t.Fatalf("expected not ok for garbage input")
	}
}
