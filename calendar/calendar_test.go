package calendar_test

import (
	"testing"
	"time"

	"github.com/meenmo/pricingengine/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdjustModifiedFollowing(t *testing.T) {
	t.Parallel()

	// Sat 2026-01-31: Following would land on Mon 2026-02-02, crossing the
	// month end, so Modified Following rolls back to Fri 2026-01-30.
	got := calendar.Adjust(calendar.WEEKEND, date(2026, 1, 31))
	if !got.Equal(date(2026, 1, 30)) {
		t.Fatalf("got %s want 2026-01-30", got.Format("2006-01-02"))
	}

	// Sat 2026-01-10 stays within the month: plain roll to Mon 2026-01-12.
	got = calendar.Adjust(calendar.WEEKEND, date(2026, 1, 10))
	if !got.Equal(date(2026, 1, 12)) {
		t.Fatalf("got %s want 2026-01-12", got.Format("2006-01-02"))
	}

	// Business days pass through unchanged.
	got = calendar.Adjust(calendar.WEEKEND, date(2026, 1, 7))
	if !got.Equal(date(2026, 1, 7)) {
		t.Fatalf("got %s want 2026-01-07", got.Format("2006-01-02"))
	}
}

func TestAdjustFollowingCrossesMonth(t *testing.T) {
	t.Parallel()

	got := calendar.AdjustFollowing(calendar.WEEKEND, date(2026, 1, 31))
	if !got.Equal(date(2026, 2, 2)) {
		t.Fatalf("got %s want 2026-02-02", got.Format("2006-01-02"))
	}
}

func TestRegisteredHolidays(t *testing.T) {
	// Uses a dedicated calendar id so parallel tests sharing the registry
	// never observe this set.
	const cal = calendar.CalendarID("TEST-HOLIDAYS")
	holiday := date(2026, 1, 5) // a Monday
	calendar.RegisterHolidays(cal, []time.Time{holiday})

	if calendar.IsBusinessDay(cal, holiday) {
		t.Fatal("registered holiday treated as business day")
	}
	if !calendar.IsBusinessDay(calendar.WEEKEND, holiday) {
		t.Fatal("holiday leaked into another calendar")
	}

	got := calendar.Adjust(cal, holiday)
	if !got.Equal(date(2026, 1, 6)) {
		t.Fatalf("got %s want 2026-01-06", got.Format("2006-01-02"))
	}
}

func TestAddBusinessDays(t *testing.T) {
	t.Parallel()

	// Fri 2026-01-09 + 2 business days skips the weekend.
	got := calendar.AddBusinessDays(calendar.WEEKEND, date(2026, 1, 9), 2)
	if !got.Equal(date(2026, 1, 13)) {
		t.Fatalf("got %s want 2026-01-13", got.Format("2006-01-02"))
	}

	got = calendar.AddBusinessDays(calendar.WEEKEND, date(2026, 1, 12), -1)
	if !got.Equal(date(2026, 1, 9)) {
		t.Fatalf("got %s want 2026-01-09", got.Format("2006-01-02"))
	}
}

func TestLastBusinessDayOfMonth(t *testing.T) {
	t.Parallel()

	// Jan 31 2026 is a Saturday.
	got := calendar.LastBusinessDayOfMonth(calendar.WEEKEND, date(2026, 1, 15))
	if !got.Equal(date(2026, 1, 30)) {
		t.Fatalf("got %s want 2026-01-30", got.Format("2006-01-02"))
	}

	if !calendar.IsEndOfMonth(calendar.WEEKEND, date(2026, 1, 30)) {
		t.Fatal("2026-01-30 should be end of month")
	}
	if calendar.IsEndOfMonth(calendar.WEEKEND, date(2026, 1, 15)) {
		t.Fatal("2026-01-15 should not be end of month")
	}
}

func TestGenerateDatesSemiannual(t *testing.T) {
	t.Parallel()

	// 2026-07-05 is a Sunday, rolls to Monday 2026-07-06.
	got, err := calendar.GenerateDates(date(2026, 1, 5), date(2027, 1, 5), 6, calendar.WEEKEND)
	if err != nil {
		t.Fatalf("GenerateDates error: %v", err)
	}
	want := []time.Time{date(2026, 1, 5), date(2026, 7, 6), date(2027, 1, 5)}
	if len(got) != len(want) {
		t.Fatalf("got %d dates want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("date %d: got %s want %s", i,
				got[i].Format("2006-01-02"), want[i].Format("2006-01-02"))
		}
	}
}

func TestGenerateDatesShortStub(t *testing.T) {
	t.Parallel()

	// End falls between roll dates; the final period is a short stub.
	got, err := calendar.GenerateDates(date(2026, 1, 5), date(2026, 10, 5), 6, calendar.WEEKEND)
	if err != nil {
		t.Fatalf("GenerateDates error: %v", err)
	}
	want := []time.Time{date(2026, 1, 5), date(2026, 7, 6), date(2026, 10, 5)}
	if len(got) != len(want) {
		t.Fatalf("got %d dates want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("date %d: got %s want %s", i,
				got[i].Format("2006-01-02"), want[i].Format("2006-01-02"))
		}
	}
}

func TestGenerateDatesRejectsBadInput(t *testing.T) {
	t.Parallel()

	if _, err := calendar.GenerateDates(date(2026, 1, 5), date(2026, 1, 5), 6, calendar.WEEKEND); err == nil {
		t.Fatal("expected error when end equals start")
	}
	if _, err := calendar.GenerateDates(date(2026, 1, 5), date(2027, 1, 5), 0, calendar.WEEKEND); err == nil {
		t.Fatal("expected error for zero frequency")
	}
}
