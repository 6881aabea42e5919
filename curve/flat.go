package curve

import (
	"math"
	"time"

	"github.com/meenmo/pricingengine/utils"
)

// FlatCurve is a closed-form flat zero-rate term structure with an unbounded
// domain. It doubles as the test collaborator the interpolated curves are
// checked against.
type FlatCurve struct {
	asOf time.Time
	rate float64
}

// NewFlatCurve returns a flat continuously compounded zero curve.
func NewFlatCurve(asOf time.Time, rate float64) *FlatCurve {
	return &FlatCurve{asOf: asOf, rate: rate}
}

// AsOf returns the curve's evaluation date.
func (c *FlatCurve) AsOf() time.Time { return c.asOf }

// Rate returns the flat zero rate.
func (c *FlatCurve) Rate() float64 { return c.rate }

// DF returns exp(-r*t); 1 for dates at or before the evaluation date.
func (c *FlatCurve) DF(t time.Time) (float64, error) {
	if !t.After(c.asOf) {
		return 1.0, nil
	}
	tt := utils.YearFraction(c.asOf, t, utils.Act365F)
	return math.Exp(-c.rate * tt), nil
}

// Forward returns the simple forward rate over [start, end].
func (c *FlatCurve) Forward(start, end time.Time, convention utils.DayCount) (float64, error) {
	return forwardFromDFs(c, start, end, convention)
}
