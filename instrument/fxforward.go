package instrument

import (
	"fmt"
	"time"

	"github.com/meenmo/pricingengine/curve"
)

// FXForward is a simple FX forward priced under interest-rate parity.
// Notional is the foreign currency amount; ForwardRate and Spot are quoted
// domestic per unit foreign.
type FXForward struct {
	Maturity    time.Time
	Notional    float64
	ForwardRate float64
	Spot        float64

	Domestic curve.TermStructure
	Foreign  curve.TermStructure
}

func (f *FXForward) validate() error {
	if f.Domestic == nil || f.Foreign == nil {
		return fmt.Errorf("%w: FX forward requires domestic and foreign curves", ErrConfig)
	}
	return nil
}

// IsExpired reports whether the forward has matured as of the valuation date.
func (f *FXForward) IsExpired(valuation time.Time) bool {
	return !valuation.Before(f.Maturity)
}

// PV returns the domestic-currency value of the forward.
func (f *FXForward) PV(valuation time.Time) (float64, error) {
	if err := f.validate(); err != nil {
		return 0, fmt.Errorf("FXForward.PV: %w", err)
	}
	if f.IsExpired(valuation) {
		return 0, nil
	}
	dfDom, err := f.Domestic.DF(f.Maturity)
	if err != nil {
		return 0, fmt.Errorf("FXForward.PV: domestic: %w", err)
	}
	dfFor, err := f.Foreign.DF(f.Maturity)
	if err != nil {
		return 0, fmt.Errorf("FXForward.PV: foreign: %w", err)
	}
	fwdMarket := f.Spot * dfFor / dfDom
	return f.Notional * (fwdMarket - f.ForwardRate) * dfDom, nil
}

// MTM is PV under financial terminology.
func (f *FXForward) MTM(valuation time.Time) (float64, error) {
	return f.PV(valuation)
}

// Delta is the sensitivity of PV to a unit change in the spot rate.
func (f *FXForward) Delta(valuation time.Time) (float64, error) {
	if err := f.validate(); err != nil {
		return 0, fmt.Errorf("FXForward.Delta: %w", err)
	}
	if f.IsExpired(valuation) {
		return 0, nil
	}
	dfFor, err := f.Foreign.DF(f.Maturity)
	if err != nil {
		return 0, fmt.Errorf("FXForward.Delta: foreign: %w", err)
	}
	return f.Notional * dfFor, nil
}
