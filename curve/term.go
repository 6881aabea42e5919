package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/pricingengine/utils"
)

// ErrCurveDomain is returned when a date falls outside the curve domain and
// extrapolation is disabled.
var ErrCurveDomain = errors.New("date outside curve domain")

// TermStructure turns discrete curve nodes into continuous discount and
// forward functions. Implementations are deterministic, safe for concurrent
// read-only use, and local in node influence: bumping a node only moves
// DF(t) for t near that node's date.
type TermStructure interface {
	AsOf() time.Time
	DF(t time.Time) (float64, error)
	Forward(start, end time.Time, convention utils.DayCount) (float64, error)
}

// Interpolation selects the quoting space the curve interpolates in.
type Interpolation string

const (
	// LogLinearDF interpolates linearly on the log of discount factors,
	// the standard convention for discounting curves.
	LogLinearDF Interpolation = "LOG_LINEAR_DF"
	// LinearZero interpolates linearly on zero rates, commonly used for
	// forecast curves.
	LinearZero Interpolation = "LINEAR_ZERO"
)

// Curve is an interpolated term structure built from CurveNodes.
//
// Beyond the last node the curve extrapolates flat in zero-rate space unless
// extrapolation is disabled, in which case DF fails with ErrCurveDomain.
// DF(t) is exactly 1 for t at or before the evaluation date.
type Curve struct {
	asOf        time.Time
	dates       []time.Time
	times       []float64
	zeros       []float64
	logDFs      []float64
	interp      Interpolation
	extrapolate bool
	dayCount    utils.DayCount
}

// NewDiscountCurve builds a log-linear-on-DF curve from the nodes.
func NewDiscountCurve(nodes *CurveNodes) (*Curve, error) {
	return build(nodes, LogLinearDF)
}

// NewForecastCurve builds a linear-on-zero-rate curve from the nodes.
func NewForecastCurve(nodes *CurveNodes) (*Curve, error) {
	return build(nodes, LinearZero)
}

func build(nodes *CurveNodes, interp Interpolation) (*Curve, error) {
	if nodes == nil {
		return nil, fmt.Errorf("%w: nil nodes", ErrValidation)
	}

	pairs := nodes.AsPairs()
	c := &Curve{
		asOf:        nodes.AsOf(),
		dates:       make([]time.Time, len(pairs)),
		times:       make([]float64, len(pairs)),
		zeros:       make([]float64, len(pairs)),
		logDFs:      make([]float64, len(pairs)),
		interp:      interp,
		extrapolate: true,
		dayCount:    utils.Act365F,
	}

	prevT := 0.0
	logDF := 0.0
	for i, n := range pairs {
		if !n.Date.After(c.asOf) {
			return nil, fmt.Errorf("%w: node %d (%s) not after evaluation date %s",
				ErrValidation, i, n.Date.Format("2006-01-02"), c.asOf.Format("2006-01-02"))
		}
		t := utils.YearFraction(c.asOf, n.Date, c.dayCount)
		c.dates[i] = n.Date
		c.times[i] = t

		switch nodes.Kind() {
		case QuoteDiscount:
			c.zeros[i] = -math.Log(n.Rate) / t
			c.logDFs[i] = math.Log(n.Rate)
		case QuoteForward:
			// Each quote accrues from the previous node, so discounting
			// compounds the forwards up to the node.
			logDF -= n.Rate * (t - prevT)
			c.zeros[i] = -logDF / t
			c.logDFs[i] = logDF
		default:
			c.zeros[i] = n.Rate
			c.logDFs[i] = -n.Rate * t
		}
		prevT = t
	}
	return c, nil
}

// DisableExtrapolation returns a sibling curve whose DF fails with
// ErrCurveDomain for dates beyond the last node.
func (c *Curve) DisableExtrapolation() *Curve {
	out := *c
	out.extrapolate = false
	return &out
}

// AsOf returns the curve's evaluation date.
func (c *Curve) AsOf() time.Time { return c.asOf }

// LastNodeDate returns the end of the curve's defined domain.
func (c *Curve) LastNodeDate() time.Time { return c.dates[len(c.dates)-1] }

// DF returns the discount factor for date t.
func (c *Curve) DF(t time.Time) (float64, error) {
	if !t.After(c.asOf) {
		return 1.0, nil
	}
	tt := utils.YearFraction(c.asOf, t, c.dayCount)

	last := len(c.times) - 1
	if tt > c.times[last] {
		if !c.extrapolate {
			return 0, fmt.Errorf("%w: %s beyond last node %s",
				ErrCurveDomain, t.Format("2006-01-02"), c.dates[last].Format("2006-01-02"))
		}
		// Flat zero-rate extrapolation.
		return math.Exp(-c.zeros[last] * tt), nil
	}
	if tt <= c.times[0] {
		// Between asOf and the first node the zero rate is anchored at the
		// first node's zero, keeping early DFs independent of later nodes.
		return math.Exp(-c.zeros[0] * tt), nil
	}

	// First index with times[i] >= tt; tt is strictly inside (times[0], times[last]].
	i := sort.Search(len(c.times), func(i int) bool {
		return c.times[i] >= tt
	})
	t1, t2 := c.times[i-1], c.times[i]
	w := (tt - t1) / (t2 - t1)

	switch c.interp {
	case LinearZero:
		z := c.zeros[i-1] + (c.zeros[i]-c.zeros[i-1])*w
		return math.Exp(-z * tt), nil
	default:
		logDF := c.logDFs[i-1] + (c.logDFs[i]-c.logDFs[i-1])*w
		return math.Exp(logDF), nil
	}
}

// ZeroRate returns the continuously compounded zero rate for date t.
func (c *Curve) ZeroRate(t time.Time) (float64, error) {
	df, err := c.DF(t)
	if err != nil {
		return 0, err
	}
	tt := utils.YearFraction(c.asOf, t, c.dayCount)
	if tt <= 0 {
		return c.zeros[0], nil
	}
	return -math.Log(df) / tt, nil
}

// Forward returns the simple forward rate over [start, end] implied by the
// curve's discount factors, accrued per the given day count.
func (c *Curve) Forward(start, end time.Time, convention utils.DayCount) (float64, error) {
	return forwardFromDFs(c, start, end, convention)
}

func forwardFromDFs(ts TermStructure, start, end time.Time, convention utils.DayCount) (float64, error) {
	if !end.After(start) {
		return 0, fmt.Errorf("%w: forward period end %s not after start %s",
			ErrValidation, end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	dfStart, err := ts.DF(start)
	if err != nil {
		return 0, err
	}
	dfEnd, err := ts.DF(end)
	if err != nil {
		return 0, err
	}
	alpha := utils.YearFraction(start, end, convention)
	if alpha == 0 {
		return 0, nil
	}
	return (dfStart/dfEnd - 1.0) / alpha, nil
}
