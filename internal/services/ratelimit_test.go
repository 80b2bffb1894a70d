package services

import (
	"testing"
	"time"
)

func TestDayWindowBounds(t *testing.T) {
	loc := time.FixedZone("UTC+6", 6*3600)
	now := time.Date(2026, time.May, 4, 0, 0, 1, 0, loc)
	start, end := DayWindow(now)

	if !start.Equal(time.Date(2026, time.May, 4, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected start %v", start)
	}
	if !end.Equal(time.Date(2026, time.May, 4, 23, 59, 59, int(999*time.Millisecond), loc)) {
		t.Fatalf("unexpected end %v", end)
	}
}

func TestCheckCommentQuota(t *testing.T) {
	for count := int64(0); count < MaxCommentsPerPostPerDay; count++ {
		if err := CheckCommentQuota(count); err != nil {
			t.Fatalf("count %d should pass, got %v", count, err)
		}
	}
	expectKind(t, CheckCommentQuota(MaxCommentsPerPostPerDay), KindRateLimit)
	expectKind(t, CheckCommentQuota(MaxCommentsPerPostPerDay+3), KindRateLimit)
}

func TestBanExpiry(t *testing.T) {
	now := time.Date(2026, time.January, 31, 12, 0, 0, 0, time.UTC)
	cases := map[string]time.Time{
		"30m":       now.Add(30 * time.Minute),
		"1h":        now.Add(time.Hour),
		"12h":       now.Add(12 * time.Hour),
		"1d":        now.Add(24 * time.Hour),
		"3d":        now.Add(72 * time.Hour),
		"1w":        now.Add(7 * 24 * time.Hour),
		"2w":        now.Add(14 * 24 * time.Hour),
		"1m":        time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC),
		"3m":        time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC),
		"6m":        time.Date(2026, time.July, 31, 12, 0, 0, 0, time.UTC),
		"1y":        time.Date(2027, time.January, 31, 12, 0, 0, 0, time.UTC),
		"2y":        time.Date(2028, time.January, 31, 12, 0, 0, 0, time.UTC),
		"permanent": time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	for token, want := range cases {
		got, err := BanExpiry(token, now)
		if err != nil {
			t.Fatalf("%s: %v", token, err)
		}
		if !got.Equal(want) {
			t.Fatalf("%s: expected %v, got %v", token, want, got)
		}
	}

	_, err := BanExpiry("forever", now)
	expectKind(t, err, KindValidation)
}

func TestBanExpiryAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// clocks spring forward on 2026-03-08
	now := time.Date(2026, time.March, 7, 12, 0, 0, 0, ny)
	for token, want := range map[string]time.Duration{
		"1d": 24 * time.Hour,
		"3d": 72 * time.Hour,
		"1w": 7 * 24 * time.Hour,
		"2w": 14 * 24 * time.Hour,
	} {
		got, err := BanExpiry(token, now)
		if err != nil {
			t.Fatalf("%s: %v", token, err)
		}
		if d := got.Sub(now); d != want {
			t.Fatalf("%s: expected offset %v, got %v", token, want, d)
		}
	}
}
