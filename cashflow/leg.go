package cashflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/pricingengine/calendar"
	"github.com/meenmo/pricingengine/curve"
	"github.com/meenmo/pricingengine/utils"
)

// ErrNilCurve is returned when a required curve argument is nil.
var ErrNilCurve = errors.New("nil curve")

// CashFlow is a single dated, discounted payment. Rows are immutable once
// generated; the curves they were computed from are referenced only during
// generation.
type CashFlow struct {
	PayDate      time.Time
	FixingDate   time.Time
	AccrualStart time.Time
	AccrualEnd   time.Time
	Notional     float64
	Rate         float64
	Accrual      float64
	DF           float64
	PV           float64
}

// Leg is one side of a multi-leg instrument. Legs carry no pay/receive sign;
// the sign convention is applied at instrument aggregation so legs stay
// reusable across instruments.
type Leg interface {
	// Cashflows generates the leg's future flows as of the valuation date.
	// Flows paying strictly before the valuation date are omitted.
	Cashflows(valuation time.Time, discount, forecast curve.TermStructure) ([]CashFlow, error)
	// PV is the sum of the generated flows' present values.
	PV(valuation time.Time, discount, forecast curve.TermStructure) (float64, error)
	Currency() string
	Maturity() time.Time
}

// FixedLeg pays a coupon fixed at construction, optionally overridden for
// individual periods.
type FixedLeg struct {
	Schedule Schedule
	Notional float64
	Ccy      string
	Rate     float64
	// RateOverrides maps a period index (0-based over the full schedule) to a
	// replacement coupon for that period.
	RateOverrides map[int]float64
}

// Currency returns the leg's payment currency.
func (l FixedLeg) Currency() string { return l.Ccy }

// Maturity returns the leg's final accrual end date.
func (l FixedLeg) Maturity() time.Time { return l.Schedule.End }

// Cashflows generates the fixed coupons. The forecast curve is unused.
func (l FixedLeg) Cashflows(valuation time.Time, discount, forecast curve.TermStructure) ([]CashFlow, error) {
	if discount == nil {
		return nil, fmt.Errorf("FixedLeg.Cashflows: %w", ErrNilCurve)
	}
	periods, err := l.Schedule.Periods()
	if err != nil {
		return nil, fmt.Errorf("FixedLeg.Cashflows: %w", err)
	}

	flows := make([]CashFlow, 0, len(periods))
	for i, p := range periods {
		if p.Pay.Before(valuation) {
			continue
		}
		rate := l.Rate
		if override, ok := l.RateOverrides[i]; ok {
			rate = override
		}
		flow, err := makeFlow(p, l.Notional, rate, l.Schedule.DayCount, discount)
		if err != nil {
			return nil, fmt.Errorf("FixedLeg.Cashflows: %w", err)
		}
		flows = append(flows, flow)
	}
	return flows, nil
}

// PV sums the leg's discounted flows.
func (l FixedLeg) PV(valuation time.Time, discount, forecast curve.TermStructure) (float64, error) {
	return sumPV(l, valuation, discount, forecast)
}

// Compounding selects how floating sub-period rates combine within a payment period.
type Compounding string

const (
	// CompoundNone projects a single simple forward per payment period.
	CompoundNone Compounding = "NONE"
	// CompoundInArrears compounds successive sub-period forwards before
	// applying the period accrual fraction.
	CompoundInArrears Compounding = "IN_ARREARS"
)

// FloatingLeg projects forwards off a forecast curve, plus an optional spread.
// When no forecast curve is supplied the discount curve projects the forwards
// (single-curve pricing).
type FloatingLeg struct {
	Schedule Schedule
	Notional float64
	Ccy      string
	Spread   float64

	Compounding Compounding
	// CompoundingMonths is the sub-period length for CompoundInArrears.
	// Zero defaults to monthly sub-periods.
	CompoundingMonths int
}

// Currency returns the leg's payment currency.
func (l FloatingLeg) Currency() string { return l.Ccy }

// Maturity returns the leg's final accrual end date.
func (l FloatingLeg) Maturity() time.Time { return l.Schedule.End }

// Cashflows generates the projected floating coupons.
func (l FloatingLeg) Cashflows(valuation time.Time, discount, forecast curve.TermStructure) ([]CashFlow, error) {
	if discount == nil {
		return nil, fmt.Errorf("FloatingLeg.Cashflows: %w", ErrNilCurve)
	}
	proj := forecast
	if proj == nil {
		proj = discount
	}
	periods, err := l.Schedule.Periods()
	if err != nil {
		return nil, fmt.Errorf("FloatingLeg.Cashflows: %w", err)
	}

	flows := make([]CashFlow, 0, len(periods))
	for _, p := range periods {
		if p.Pay.Before(valuation) {
			continue
		}
		rate, err := l.periodRate(p, proj)
		if err != nil {
			return nil, fmt.Errorf("FloatingLeg.Cashflows: %w", err)
		}
		flow, err := makeFlow(p, l.Notional, rate, l.Schedule.DayCount, discount)
		if err != nil {
			return nil, fmt.Errorf("FloatingLeg.Cashflows: %w", err)
		}
		flows = append(flows, flow)
	}
	return flows, nil
}

// PV sums the leg's discounted flows.
func (l FloatingLeg) PV(valuation time.Time, discount, forecast curve.TermStructure) (float64, error) {
	return sumPV(l, valuation, discount, forecast)
}

func (l FloatingLeg) periodRate(p Period, proj curve.TermStructure) (float64, error) {
	if l.Compounding != CompoundInArrears {
		fwd, err := proj.Forward(p.Start, p.End, l.Schedule.DayCount)
		if err != nil {
			return 0, err
		}
		return fwd + l.Spread, nil
	}

	subMonths := l.CompoundingMonths
	if subMonths <= 0 {
		subMonths = 1
	}
	dates, err := calendar.GenerateDates(p.Start, p.End, subMonths, l.Schedule.Calendar)
	if err != nil {
		return 0, err
	}

	growth := 1.0
	for i := 0; i < len(dates)-1; i++ {
		fwd, err := proj.Forward(dates[i], dates[i+1], l.Schedule.DayCount)
		if err != nil {
			return 0, err
		}
		alpha := utils.YearFraction(dates[i], dates[i+1], l.Schedule.DayCount)
		growth *= 1.0 + fwd*alpha
	}

	accrual := utils.YearFraction(p.Start, p.End, l.Schedule.DayCount)
	if accrual == 0 {
		return l.Spread, nil
	}
	return (growth-1.0)/accrual + l.Spread, nil
}

func makeFlow(p Period, notional, rate float64, convention utils.DayCount, discount curve.TermStructure) (CashFlow, error) {
	df, err := discount.DF(p.Pay)
	if err != nil {
		return CashFlow{}, err
	}
	accrual := utils.YearFraction(p.Start, p.End, convention)
	amount := notional * rate * accrual
	return CashFlow{
		PayDate:      p.Pay,
		FixingDate:   p.Fixing,
		AccrualStart: p.Start,
		AccrualEnd:   p.End,
		Notional:     notional,
		Rate:         rate,
		Accrual:      accrual,
		DF:           df,
		PV:           amount * df,
	}, nil
}

func sumPV(l Leg, valuation time.Time, discount, forecast curve.TermStructure) (float64, error) {
	flows, err := l.Cashflows(valuation, discount, forecast)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, f := range flows {
		total += f.PV
	}
	return total, nil
}
