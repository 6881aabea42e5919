package instrument

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/pricingengine/utils"
)

// OptionType distinguishes calls from puts.
type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// EquityOption is a vanilla European option priced with Black-Scholes under
// a flat continuously compounded rate and dividend yield.
type EquityOption struct {
	Maturity     time.Time
	Type         OptionType
	Strike       float64
	Spot         float64
	Volatility   float64
	RiskFreeRate float64
	DividendRate float64
}

func (o *EquityOption) validate() error {
	if o.Type != Call && o.Type != Put {
		return fmt.Errorf("%w: unknown option type %q", ErrConfig, o.Type)
	}
	if o.Strike <= 0 || o.Spot <= 0 {
		return fmt.Errorf("%w: strike and spot must be positive", ErrConfig)
	}
	if o.Volatility <= 0 {
		return fmt.Errorf("%w: volatility must be positive", ErrConfig)
	}
	return nil
}

// IsExpired reports whether the option has matured as of the valuation date.
func (o *EquityOption) IsExpired(valuation time.Time) bool {
	return !valuation.Before(o.Maturity)
}

func (o *EquityOption) d1d2(t float64) (float64, float64) {
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(o.Spot/o.Strike) + (o.RiskFreeRate-o.DividendRate+0.5*o.Volatility*o.Volatility)*t) /
		(o.Volatility * sqrtT)
	return d1, d1 - o.Volatility*sqrtT
}

// PV returns the Black-Scholes value as of the valuation date.
func (o *EquityOption) PV(valuation time.Time) (float64, error) {
	if err := o.validate(); err != nil {
		return 0, fmt.Errorf("EquityOption.PV: %w", err)
	}
	if o.IsExpired(valuation) {
		return 0, nil
	}
	t := utils.YearFraction(valuation, o.Maturity, utils.Act365F)
	d1, d2 := o.d1d2(t)
	discS := o.Spot * math.Exp(-o.DividendRate*t)
	discK := o.Strike * math.Exp(-o.RiskFreeRate*t)

	if o.Type == Call {
		return discS*normCDF(d1) - discK*normCDF(d2), nil
	}
	return discK*normCDF(-d2) - discS*normCDF(-d1), nil
}

// MTM is PV under financial terminology.
func (o *EquityOption) MTM(valuation time.Time) (float64, error) {
	return o.PV(valuation)
}

// Delta is dPV/dSpot.
func (o *EquityOption) Delta(valuation time.Time) (float64, error) {
	if err := o.validate(); err != nil {
		return 0, fmt.Errorf("EquityOption.Delta: %w", err)
	}
	if o.IsExpired(valuation) {
		return 0, nil
	}
	t := utils.YearFraction(valuation, o.Maturity, utils.Act365F)
	d1, _ := o.d1d2(t)
	q := math.Exp(-o.DividendRate * t)
	if o.Type == Call {
		return q * normCDF(d1), nil
	}
	return q * (normCDF(d1) - 1), nil
}

// Gamma is the second derivative of PV with respect to spot.
func (o *EquityOption) Gamma(valuation time.Time) (float64, error) {
	if err := o.validate(); err != nil {
		return 0, fmt.Errorf("EquityOption.Gamma: %w", err)
	}
	if o.IsExpired(valuation) {
		return 0, nil
	}
	t := utils.YearFraction(valuation, o.Maturity, utils.Act365F)
	d1, _ := o.d1d2(t)
	q := math.Exp(-o.DividendRate * t)
	return q * normPDF(d1) / (o.Spot * o.Volatility * math.Sqrt(t)), nil
}

// Vega is dPV/dVol (per unit of absolute volatility).
func (o *EquityOption) Vega(valuation time.Time) (float64, error) {
	if err := o.validate(); err != nil {
		return 0, fmt.Errorf("EquityOption.Vega: %w", err)
	}
	if o.IsExpired(valuation) {
		return 0, nil
	}
	t := utils.YearFraction(valuation, o.Maturity, utils.Act365F)
	d1, _ := o.d1d2(t)
	q := math.Exp(-o.DividendRate * t)
	return o.Spot * q * math.Sqrt(t) * normPDF(d1), nil
}
