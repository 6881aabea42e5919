package cashflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/pricingengine/calendar"
	"github.com/meenmo/pricingengine/utils"
)

// ErrSchedule is returned for invalid leg date ranges or frequencies.
var ErrSchedule = errors.New("invalid schedule")

// Schedule describes the accrual grid of a leg.
type Schedule struct {
	Start           time.Time
	End             time.Time
	FrequencyMonths int
	Calendar        calendar.CalendarID
	DayCount        utils.DayCount
	PayDelayDays    int
	// FixingLagDays counts business days the rate observation precedes the
	// accrual start. Zero fixes on the accrual start itself.
	FixingLagDays int
}

// Period is one accrual window with its payment and rate-fixing dates.
type Period struct {
	Start  time.Time
	End    time.Time
	Pay    time.Time
	Fixing time.Time
}

// Periods expands the schedule into business-day adjusted accrual periods.
func (s Schedule) Periods() ([]Period, error) {
	if !s.End.After(s.Start) {
		return nil, fmt.Errorf("%w: start %s on or after end %s",
			ErrSchedule, s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"))
	}
	if s.FrequencyMonths <= 0 {
		return nil, fmt.Errorf("%w: non-positive frequency %d", ErrSchedule, s.FrequencyMonths)
	}

	dates, err := calendar.GenerateDates(s.Start, s.End, s.FrequencyMonths, s.Calendar)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchedule, err)
	}

	periods := make([]Period, 0, len(dates)-1)
	for i := 0; i < len(dates)-1; i++ {
		start, end := dates[i], dates[i+1]
		periods = append(periods, Period{
			Start:  start,
			End:    end,
			Pay:    calendar.AddBusinessDays(s.Calendar, end, s.PayDelayDays),
			Fixing: calendar.AddBusinessDays(s.Calendar, start, -s.FixingLagDays),
		})
	}
	return periods, nil
}
