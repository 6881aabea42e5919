package calendar

import (
	"fmt"
	"time"

	"github.com/meenmo/pricingengine/utils"
)

// GenerateDates returns the ordered, business-day adjusted period boundary
// dates from start to end at the given frequency, inclusive of both ends.
//
// Dates roll forward from start in freqMonths steps using EDATE-style month
// arithmetic, each adjusted Modified Following on cal. The final date is
// forced to the adjusted end so the last period may be a short stub.
func GenerateDates(start, end time.Time, freqMonths int, cal CalendarID) ([]time.Time, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("GenerateDates: end %s not after start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	if freqMonths <= 0 {
		return nil, fmt.Errorf("GenerateDates: non-positive frequency %d", freqMonths)
	}

	adjEnd := Adjust(cal, end)
	dates := []time.Time{Adjust(cal, start)}

	for i := 1; ; i++ {
		next := utils.AddMonth(start, freqMonths*i)
		if next.After(end.AddDate(0, 0, 1)) {
			break
		}
		adj := Adjust(cal, next)
		if adj.After(adjEnd) {
			break
		}
		dates = append(dates, adj)
	}

	if !dates[len(dates)-1].Equal(adjEnd) {
		dates = append(dates, adjEnd)
	}
	return dates, nil
}
