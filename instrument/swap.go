package instrument

import (
	"fmt"
	"time"

	"github.com/meenmo/pricingengine/cashflow"
	"github.com/meenmo/pricingengine/curve"
)

// SwapLeg binds a cash-flow leg to its direction and, for floating legs, the
// forecast curve projecting its rates. A nil Forecast projects off the
// instrument's discount curve (single-curve pricing).
type SwapLeg struct {
	Side     Side
	Leg      cashflow.Leg
	Forecast curve.TermStructure
}

// InterestRateSwap composes two or more legs priced off shared, externally
// owned curves. The pay/receive sign convention lives here, not on the legs.
//
// When leg currencies differ from the reporting currency, FXRates must supply
// a conversion rate per foreign currency; converting is otherwise out of
// scope and pricing fails with ErrConfig.
type InterestRateSwap struct {
	Legs     []SwapLeg
	Discount curve.TermStructure

	// Ccy is the reporting currency. Empty defaults to the first leg's.
	Ccy string
	// FXRates converts one unit of a leg currency into the reporting currency.
	FXRates map[string]float64

	// CostBasis, when set, makes MTM report PV minus the basis. Left nil,
	// MTM and PV coincide.
	CostBasis *float64
}

func (s *InterestRateSwap) validate() error {
	if len(s.Legs) == 0 {
		return fmt.Errorf("%w: swap has no legs", ErrConfig)
	}
	if s.Discount == nil {
		return fmt.Errorf("%w: missing discount curve", ErrConfig)
	}
	reporting := s.reportingCurrency()
	for i, leg := range s.Legs {
		if leg.Leg == nil {
			return fmt.Errorf("%w: leg %d is nil", ErrConfig, i)
		}
		ccy := leg.Leg.Currency()
		if ccy == reporting {
			continue
		}
		if _, ok := s.FXRates[ccy]; !ok {
			return fmt.Errorf("%w: leg %d pays %s but reporting currency is %s and no FX rate was supplied",
				ErrConfig, i, ccy, reporting)
		}
	}
	return nil
}

func (s *InterestRateSwap) reportingCurrency() string {
	if s.Ccy != "" {
		return s.Ccy
	}
	if len(s.Legs) > 0 && s.Legs[0].Leg != nil {
		return s.Legs[0].Leg.Currency()
	}
	return ""
}

func (s *InterestRateSwap) fxRate(ccy string) float64 {
	if ccy == s.reportingCurrency() {
		return 1.0
	}
	return s.FXRates[ccy]
}

// Maturity returns the latest leg maturity.
func (s *InterestRateSwap) Maturity() time.Time {
	var maturity time.Time
	for _, leg := range s.Legs {
		if leg.Leg != nil && leg.Leg.Maturity().After(maturity) {
			maturity = leg.Leg.Maturity()
		}
	}
	return maturity
}

// IsExpired reports whether the swap has matured as of the valuation date.
func (s *InterestRateSwap) IsExpired(valuation time.Time) bool {
	return !valuation.Before(s.Maturity())
}

// PV returns the sum over legs of signed leg PV in the reporting currency.
func (s *InterestRateSwap) PV(valuation time.Time) (float64, error) {
	if err := s.validate(); err != nil {
		return 0, fmt.Errorf("InterestRateSwap.PV: %w", err)
	}
	if s.IsExpired(valuation) {
		return 0, nil
	}

	total := 0.0
	for i, leg := range s.Legs {
		pv, err := leg.Leg.PV(valuation, s.Discount, leg.Forecast)
		if err != nil {
			return 0, fmt.Errorf("InterestRateSwap.PV: leg %d: %w", i, err)
		}
		total += leg.Side.Sign() * s.fxRate(leg.Leg.Currency()) * pv
	}
	return total, nil
}

// MTM returns the mark-to-market value: PV, less the cost basis when one is set.
func (s *InterestRateSwap) MTM(valuation time.Time) (float64, error) {
	pv, err := s.PV(valuation)
	if err != nil {
		return 0, err
	}
	if s.CostBasis != nil {
		return pv - *s.CostBasis, nil
	}
	return pv, nil
}

// WithDiscount returns a sibling swap priced off a different discount curve.
// The receiver is unchanged; legs and forecast curves are shared.
func (s *InterestRateSwap) WithDiscount(discount curve.TermStructure) *InterestRateSwap {
	out := *s
	out.Legs = make([]SwapLeg, len(s.Legs))
	copy(out.Legs, s.Legs)
	out.Discount = discount
	return &out
}

// WithForecast returns a sibling swap with leg i's forecast curve replaced.
func (s *InterestRateSwap) WithForecast(i int, forecast curve.TermStructure) (*InterestRateSwap, error) {
	if i < 0 || i >= len(s.Legs) {
		return nil, fmt.Errorf("%w: leg index %d out of range", ErrConfig, i)
	}
	out := *s
	out.Legs = make([]SwapLeg, len(s.Legs))
	copy(out.Legs, s.Legs)
	out.Legs[i].Forecast = forecast
	return &out, nil
}
