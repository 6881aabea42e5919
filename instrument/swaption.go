package instrument

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/pricingengine/cashflow"
	"github.com/meenmo/pricingengine/curve"
	"github.com/meenmo/pricingengine/utils"
)

// Swaption is a European option to enter an interest rate swap at the strike
// fixed rate, priced with the Black model on the forward par rate.
type Swaption struct {
	Exercise   time.Time
	Payer      bool // right to pay fixed at the strike
	Strike     float64
	Notional   float64
	Volatility float64 // Black volatility of the par rate

	// FixedSchedule and FloatSchedule describe the underlying swap's legs;
	// the par rate and annuity are extracted from them.
	FixedSchedule cashflow.Schedule
	FloatSchedule cashflow.Schedule

	Discount curve.TermStructure
	Forecast curve.TermStructure
}

func (sw *Swaption) validate() error {
	if sw.Discount == nil {
		return fmt.Errorf("%w: swaption requires a discount curve", ErrConfig)
	}
	if sw.Volatility <= 0 {
		return fmt.Errorf("%w: volatility must be positive", ErrConfig)
	}
	return nil
}

// IsExpired reports whether the exercise date has passed as of valuation.
func (sw *Swaption) IsExpired(valuation time.Time) bool {
	return !valuation.Before(sw.Exercise)
}

// annuityAndParRate prices the underlying swap's fixed annuity (per unit
// notional) and forward par rate off the bound curves.
func (sw *Swaption) annuityAndParRate() (float64, float64, error) {
	proj := sw.Forecast
	if proj == nil {
		proj = sw.Discount
	}

	fixedPeriods, err := sw.FixedSchedule.Periods()
	if err != nil {
		return 0, 0, fmt.Errorf("fixed leg: %w", err)
	}
	annuity := 0.0
	for _, p := range fixedPeriods {
		df, err := sw.Discount.DF(p.Pay)
		if err != nil {
			return 0, 0, fmt.Errorf("fixed leg: %w", err)
		}
		annuity += utils.YearFraction(p.Start, p.End, sw.FixedSchedule.DayCount) * df
	}
	if annuity == 0 {
		return 0, 0, fmt.Errorf("%w: underlying annuity is zero", ErrConfig)
	}

	floatPeriods, err := sw.FloatSchedule.Periods()
	if err != nil {
		return 0, 0, fmt.Errorf("float leg: %w", err)
	}
	floatPV := 0.0
	for _, p := range floatPeriods {
		fwd, err := proj.Forward(p.Start, p.End, sw.FloatSchedule.DayCount)
		if err != nil {
			return 0, 0, fmt.Errorf("float leg: %w", err)
		}
		df, err := sw.Discount.DF(p.Pay)
		if err != nil {
			return 0, 0, fmt.Errorf("float leg: %w", err)
		}
		floatPV += fwd * utils.YearFraction(p.Start, p.End, sw.FloatSchedule.DayCount) * df
	}

	return annuity, floatPV / annuity, nil
}

// PV returns the Black value of the swaption.
func (sw *Swaption) PV(valuation time.Time) (float64, error) {
	if err := sw.validate(); err != nil {
		return 0, fmt.Errorf("Swaption.PV: %w", err)
	}
	if sw.IsExpired(valuation) {
		return 0, nil
	}

	annuity, forward, err := sw.annuityAndParRate()
	if err != nil {
		return 0, fmt.Errorf("Swaption.PV: %w", err)
	}

	t := utils.YearFraction(valuation, sw.Exercise, utils.Act365F)
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(forward/sw.Strike) + 0.5*sw.Volatility*sw.Volatility*t) / (sw.Volatility * sqrtT)
	d2 := d1 - sw.Volatility*sqrtT

	var black float64
	if sw.Payer {
		black = forward*normCDF(d1) - sw.Strike*normCDF(d2)
	} else {
		black = sw.Strike*normCDF(-d2) - forward*normCDF(-d1)
	}
	return sw.Notional * annuity * black, nil
}

// MTM is PV under financial terminology.
func (sw *Swaption) MTM(valuation time.Time) (float64, error) {
	return sw.PV(valuation)
}

// Vega is dPV/dVol (per unit of absolute Black volatility).
func (sw *Swaption) Vega(valuation time.Time) (float64, error) {
	if err := sw.validate(); err != nil {
		return 0, fmt.Errorf("Swaption.Vega: %w", err)
	}
	if sw.IsExpired(valuation) {
		return 0, nil
	}
	annuity, forward, err := sw.annuityAndParRate()
	if err != nil {
		return 0, fmt.Errorf("Swaption.Vega: %w", err)
	}
	t := utils.YearFraction(valuation, sw.Exercise, utils.Act365F)
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(forward/sw.Strike) + 0.5*sw.Volatility*sw.Volatility*t) / (sw.Volatility * sqrtT)
	return sw.Notional * annuity * forward * sqrtT * normPDF(d1), nil
}
