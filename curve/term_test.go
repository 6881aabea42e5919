package curve_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/meenmo/pricingengine/curve"
	"github.com/meenmo/pricingengine/utils"
)

func mustCurve(t *testing.T, build func(*curve.CurveNodes) (*curve.Curve, error), nodes *curve.CurveNodes) *curve.Curve {
	t.Helper()
	c, err := build(nodes)
	if err != nil {
		t.Fatalf("curve build error: %v", err)
	}
	return c
}

func TestCurveRejectsNodesAtOrBeforeAsOf(t *testing.T) {
	t.Parallel()

	asOf := date(2026, 1, 5)
	nodes, err := curve.FromPairs(asOf, []time.Time{asOf, date(2027, 1, 5)}, []float64{0.02, 0.02})
	if err != nil {
		t.Fatalf("FromPairs error: %v", err)
	}
	if _, err := curve.NewDiscountCurve(nodes); !errors.Is(err, curve.ErrValidation) {
		t.Fatalf("got %v want ErrValidation", err)
	}
}

func TestDFAtAndBeforeAsOf(t *testing.T) {
	t.Parallel()

	asOf := date(2026, 1, 5)
	c := mustCurve(t, curve.NewDiscountCurve, mustNodes(t))

	for _, d := range []time.Time{asOf, date(2025, 6, 1)} {
		df, err := c.DF(d)
		if err != nil {
			t.Fatalf("DF error: %v", err)
		}
		if df != 1.0 {
			t.Fatalf("DF(%s) = %.10f want 1", d.Format("2006-01-02"), df)
		}
	}
}

func TestFlatNodesMatchClosedForm(t *testing.T) {
	t.Parallel()

	asOf := date(2026, 1, 5)
	const rate = 0.02

	nodes, err := curve.FromFlat(asOf, date(2031, 1, 5), rate)
	if err != nil {
		t.Fatalf("FromFlat error: %v", err)
	}
	c := mustCurve(t, curve.NewDiscountCurve, nodes)
	flat := curve.NewFlatCurve(asOf, rate)

	for _, d := range []time.Time{
		date(2026, 7, 5),
		date(2028, 1, 5),
		date(2031, 1, 5),
		date(2040, 1, 5), // extrapolated
	} {
		want, _ := flat.DF(d)
		got, err := c.DF(d)
		if err != nil {
			t.Fatalf("DF(%s) error: %v", d.Format("2006-01-02"), err)
		}
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("DF(%s): got %.12f want %.12f", d.Format("2006-01-02"), got, want)
		}
	}
}

func TestLogLinearInterpolation(t *testing.T) {
	t.Parallel()

	asOf := date(2026, 1, 5)
	d1, d2 := date(2027, 1, 5), date(2029, 1, 5)
	z1, z2 := 0.02, 0.04

	nodes, err := curve.FromPairs(asOf, []time.Time{d1, d2}, []float64{z1, z2})
	if err != nil {
		t.Fatalf("FromPairs error: %v", err)
	}
	c := mustCurve(t, curve.NewDiscountCurve, nodes)

	mid := date(2028, 1, 5)
	t1 := utils.YearFraction(asOf, d1, utils.Act365F)
	t2 := utils.YearFraction(asOf, d2, utils.Act365F)
	tm := utils.YearFraction(asOf, mid, utils.Act365F)

	w := (tm - t1) / (t2 - t1)
	wantLog := -z1*t1 + w*(-z2*t2+z1*t1)
	want := math.Exp(wantLog)

	got, err := c.DF(mid)
	if err != nil {
		t.Fatalf("DF error: %v", err)
	}
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("got %.12f want %.12f", got, want)
	}
}

func TestLinearZeroInterpolation(t *testing.T) {
	t.Parallel()

	asOf := date(2026, 1, 5)
	d1, d2 := date(2027, 1, 5), date(2029, 1, 5)
	z1, z2 := 0.02, 0.04

	nodes, err := curve.FromPairs(asOf, []time.Time{d1, d2}, []float64{z1, z2})
	if err != nil {
		t.Fatalf("FromPairs error: %v", err)
	}
	c := mustCurve(t, curve.NewForecastCurve, nodes)

	mid := date(2028, 1, 5)
	t1 := utils.YearFraction(asOf, d1, utils.Act365F)
	t2 := utils.YearFraction(asOf, d2, utils.Act365F)
	tm := utils.YearFraction(asOf, mid, utils.Act365F)

	z := z1 + (z2-z1)*(tm-t1)/(t2-t1)
	want := math.Exp(-z * tm)

	got, err := c.DF(mid)
	if err != nil {
		t.Fatalf("DF error: %v", err)
	}
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("got %.12f want %.12f", got, want)
	}
}

func TestExtrapolationFlatAndDisabled(t *testing.T) {
	t.Parallel()

	asOf := date(2026, 1, 5)
	c := mustCurve(t, curve.NewDiscountCurve, mustNodes(t))

	beyond := date(2040, 1, 5)
	tt := utils.YearFraction(asOf, beyond, utils.Act365F)

	got, err := c.DF(beyond)
	if err != nil {
		t.Fatalf("DF error: %v", err)
	}
	// Flat in the last node's zero rate (0.03 in mustNodes).
	want := math.Exp(-0.03 * tt)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("extrapolated DF: got %.12f want %.12f", got, want)
	}

	strict := c.DisableExtrapolation()
	if _, err := strict.DF(beyond); !errors.Is(err, curve.ErrCurveDomain) {
		t.Fatalf("got %v want ErrCurveDomain", err)
	}
	// Dates inside the domain still price.
	if _, err := strict.DF(date(2028, 6, 1)); err != nil {
		t.Fatalf("in-domain DF error: %v", err)
	}
	// The original curve is a separate object and still extrapolates.
	if _, err := c.DF(beyond); err != nil {
		t.Fatalf("sibling leaked into original: %v", err)
	}
}

func TestBumpLocality(t *testing.T) {
	t.Parallel()

	nodes := mustNodes(t)
	base := mustCurve(t, curve.NewDiscountCurve, nodes)

	// Bump the last node (2031); DFs at and before the first node (2027)
	// must be unchanged.
	bumpedNodes, err := nodes.Bump(2, 0.0001)
	if err != nil {
		t.Fatalf("Bump error: %v", err)
	}
	bumped := mustCurve(t, curve.NewDiscountCurve, bumpedNodes)

	for _, d := range []time.Time{date(2026, 7, 5), date(2027, 1, 5)} {
		dfBase, _ := base.DF(d)
		dfBumped, _ := bumped.DF(d)
		if dfBase != dfBumped {
			t.Fatalf("DF(%s) moved: %.15f -> %.15f", d.Format("2006-01-02"), dfBase, dfBumped)
		}
	}

	// But it does move DFs past the second node.
	dfBase, _ := base.DF(date(2030, 1, 5))
	dfBumped, _ := bumped.DF(date(2030, 1, 5))
	if dfBase == dfBumped {
		t.Fatal("bump had no effect near the bumped node")
	}
}

func TestForward(t *testing.T) {
	t.Parallel()

	asOf := date(2026, 1, 5)
	const rate = 0.02
	flat := curve.NewFlatCurve(asOf, rate)

	start, end := date(2027, 1, 5), date(2028, 1, 5)
	alpha := utils.YearFraction(start, end, utils.Act365F)

	got, err := flat.Forward(start, end, utils.Act365F)
	if err != nil {
		t.Fatalf("Forward error: %v", err)
	}
	want := (math.Exp(rate*alpha) - 1) / alpha
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("got %.12f want %.12f", got, want)
	}

	if _, err := flat.Forward(end, start, utils.Act365F); !errors.Is(err, curve.ErrValidation) {
		t.Fatalf("reversed period: got %v want ErrValidation", err)
	}
	if _, err := flat.Forward(start, start, utils.Act365F); !errors.Is(err, curve.ErrValidation) {
		t.Fatalf("zero-length period: got %v want ErrValidation", err)
	}
}

func TestZeroRateRoundTrip(t *testing.T) {
	t.Parallel()

	c := mustCurve(t, curve.NewDiscountCurve, mustNodes(t))

	d := date(2028, 1, 5)
	z, err := c.ZeroRate(d)
	if err != nil {
		t.Fatalf("ZeroRate error: %v", err)
	}
	df, err := c.DF(d)
	if err != nil {
		t.Fatalf("DF error: %v", err)
	}
	tt := utils.YearFraction(c.AsOf(), d, utils.Act365F)
	if math.Abs(df-math.Exp(-z*tt)) > 1e-12 {
		t.Fatalf("zero rate inconsistent with DF: z=%.10f df=%.12f", z, df)
	}
}

func TestForwardQuotedCurve(t *testing.T) {
	t.Parallel()

	asOf := date(2026, 1, 5)
	d1, d2 := date(2027, 1, 5), date(2029, 1, 5)
	f1, f2 := 0.02, 0.03

	nodes, err := curve.FromForwards(asOf, []time.Time{d1, d2}, []float64{f1, f2})
	if err != nil {
		t.Fatalf("FromForwards error: %v", err)
	}
	c := mustCurve(t, curve.NewForecastCurve, nodes)

	t1 := utils.YearFraction(asOf, d1, utils.Act365F)
	t2 := utils.YearFraction(asOf, d2, utils.Act365F)

	// Discounting compounds each interval's forward.
	df1, err := c.DF(d1)
	if err != nil {
		t.Fatalf("DF error: %v", err)
	}
	if want := math.Exp(-f1 * t1); math.Abs(df1-want) > 1e-12 {
		t.Fatalf("DF at first node: got %.12f want %.12f", df1, want)
	}

	df2, err := c.DF(d2)
	if err != nil {
		t.Fatalf("DF error: %v", err)
	}
	if want := math.Exp(-f1*t1 - f2*(t2-t1)); math.Abs(df2-want) > 1e-12 {
		t.Fatalf("DF at second node: got %.12f want %.12f", df2, want)
	}

	// Bumping the second interval's forward leaves the first node's DF alone.
	bumpedNodes, err := nodes.Bump(1, 0.0001)
	if err != nil {
		t.Fatalf("Bump error: %v", err)
	}
	bumped := mustCurve(t, curve.NewForecastCurve, bumpedNodes)
	dfBumped, err := bumped.DF(d1)
	if err != nil {
		t.Fatalf("DF error: %v", err)
	}
	if dfBumped != df1 {
		t.Fatalf("DF at first node moved: %.15f -> %.15f", df1, dfBumped)
	}
}

func TestDiscountQuotedCurve(t *testing.T) {
	t.Parallel()

	asOf := date(2026, 1, 5)
	d1 := date(2027, 1, 5)

	nodes, err := curve.FromDiscounts(asOf, []time.Time{d1, date(2031, 1, 5)}, []float64{0.98, 0.86})
	if err != nil {
		t.Fatalf("FromDiscounts error: %v", err)
	}
	c := mustCurve(t, curve.NewDiscountCurve, nodes)

	// The curve reproduces the quoted factor at its own pillar.
	got, err := c.DF(d1)
	if err != nil {
		t.Fatalf("DF error: %v", err)
	}
	if math.Abs(got-0.98) > 1e-12 {
		t.Fatalf("pillar DF: got %.12f want 0.98", got)
	}
}
