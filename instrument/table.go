package instrument

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TableRow is one exported cash-flow line. Signed amounts carry the leg's
// pay/receive direction; monetary columns are rounded to currency precision.
type TableRow struct {
	LegID    int
	PayDate  time.Time
	Currency string
	Notional float64
	Rate     float64
	DF       float64
	Amount   decimal.Decimal
	PV       decimal.Decimal
}

// CashflowTable returns one row per cash flow across all legs, ordered by
// payment date then leg id. Identical inputs yield identical ordered output.
func (s *InterestRateSwap) CashflowTable(valuation time.Time) ([]TableRow, error) {
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("InterestRateSwap.CashflowTable: %w", err)
	}

	var rows []TableRow
	for i, leg := range s.Legs {
		flows, err := leg.Leg.Cashflows(valuation, s.Discount, leg.Forecast)
		if err != nil {
			return nil, fmt.Errorf("InterestRateSwap.CashflowTable: leg %d: %w", i, err)
		}
		sign := leg.Side.Sign()
		fx := s.fxRate(leg.Leg.Currency())
		for _, f := range flows {
			amount := sign * f.Notional * f.Rate * f.Accrual
			rows = append(rows, TableRow{
				LegID:    i,
				PayDate:  f.PayDate,
				Currency: leg.Leg.Currency(),
				Notional: f.Notional,
				Rate:     f.Rate,
				DF:       f.DF,
				Amount:   decimal.NewFromFloat(amount).Round(2),
				PV:       decimal.NewFromFloat(sign * fx * f.PV).Round(2),
			})
		}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		if !rows[a].PayDate.Equal(rows[b].PayDate) {
			return rows[a].PayDate.Before(rows[b].PayDate)
		}
		return rows[a].LegID < rows[b].LegID
	})
	return rows, nil
}
