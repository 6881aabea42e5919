package risk

import (
	"fmt"
	"sync"
	"time"

	"github.com/meenmo/pricingengine/cashflow"
	"github.com/meenmo/pricingengine/curve"
	"github.com/meenmo/pricingengine/instrument"
	"github.com/meenmo/pricingengine/utils"
)

// Reprice maps a candidate node set to an instrument PV. Implementations
// rebuild the term structure from the nodes and re-invoke the full valuation
// chain; the engine never caches across candidate sets.
type Reprice func(nodes *curve.CurveNodes) (float64, error)

// Engine computes bump-and-reprice rate sensitivities. All inputs are
// immutable, so per-node tasks run concurrently without locking: each task
// reads the original nodes and produces its own bumped sibling and curve
// build.
type Engine struct {
	cfg Config
}

// NewEngine returns an engine with the given numeric policy.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// NodePV01s returns the PV change per bump for every node, indexed like the
// node set. Forward difference records pv(bump(i,h)) - pv(original); central
// difference records (pv(+h) - pv(-h)) / 2.
func (e *Engine) NodePV01s(nodes *curve.CurveNodes, reprice Reprice) ([]float64, error) {
	if nodes == nil {
		return nil, fmt.Errorf("NodePV01s: %w: nil nodes", curve.ErrValidation)
	}
	h := e.cfg.bumpSize()
	scheme := e.cfg.scheme()

	var base float64
	if scheme == ForwardDifference {
		var err error
		base, err = reprice(nodes)
		if err != nil {
			return nil, fmt.Errorf("NodePV01s: base: %w", err)
		}
	}

	n := nodes.Len()
	results := make([]float64, n)
	errs := make([]error, n)

	limit := e.cfg.MaxParallel
	if limit <= 0 {
		limit = n
	}
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], errs[i] = e.nodePV01(nodes, reprice, i, h, scheme, base)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("NodePV01s: node %d: %w", i, err)
		}
	}
	return results, nil
}

func (e *Engine) nodePV01(nodes *curve.CurveNodes, reprice Reprice, i int, h float64, scheme Difference, base float64) (float64, error) {
	up, err := nodes.Bump(i, h)
	if err != nil {
		return 0, err
	}
	pvUp, err := reprice(up)
	if err != nil {
		return 0, err
	}

	if scheme == ForwardDifference {
		return pvUp - base, nil
	}

	down, err := nodes.Bump(i, -h)
	if err != nil {
		return 0, err
	}
	pvDown, err := reprice(down)
	if err != nil {
		return 0, err
	}
	return (pvUp - pvDown) / 2, nil
}

// ParallelDV01 returns the PV change for a parallel shift of every node.
func (e *Engine) ParallelDV01(nodes *curve.CurveNodes, reprice Reprice) (float64, error) {
	if nodes == nil {
		return 0, fmt.Errorf("ParallelDV01: %w: nil nodes", curve.ErrValidation)
	}
	h := e.cfg.bumpSize()

	pvUp, err := reprice(nodes.BumpAll(h))
	if err != nil {
		return 0, fmt.Errorf("ParallelDV01: %w", err)
	}

	if e.cfg.scheme() == ForwardDifference {
		base, err := reprice(nodes)
		if err != nil {
			return 0, fmt.Errorf("ParallelDV01: base: %w", err)
		}
		return pvUp - base, nil
	}

	pvDown, err := reprice(nodes.BumpAll(-h))
	if err != nil {
		return 0, fmt.Errorf("ParallelDV01: %w", err)
	}
	return (pvUp - pvDown) / 2, nil
}

// DiscountReprice returns a Reprice that rebuilds the swap's discount curve
// from the candidate nodes and reprices.
func DiscountReprice(s *instrument.InterestRateSwap, valuation time.Time) Reprice {
	return func(nodes *curve.CurveNodes) (float64, error) {
		disc, err := curve.NewDiscountCurve(nodes)
		if err != nil {
			return 0, err
		}
		return s.WithDiscount(disc).PV(valuation)
	}
}

// ForecastReprice returns a Reprice that rebuilds leg i's forecast curve from
// the candidate nodes and reprices.
func ForecastReprice(s *instrument.InterestRateSwap, legIndex int, valuation time.Time) Reprice {
	return func(nodes *curve.CurveNodes) (float64, error) {
		fc, err := curve.NewForecastCurve(nodes)
		if err != nil {
			return 0, err
		}
		bumped, err := s.WithForecast(legIndex, fc)
		if err != nil {
			return 0, err
		}
		return bumped.PV(valuation)
	}
}

// AnnuityBPV is the analytic PV change of a leg for a one basis point move in
// its coupon or spread: notional x sum of accrual x DF over future periods,
// scaled by 1e-4.
func AnnuityBPV(s cashflow.Schedule, notional float64, discount curve.TermStructure, valuation time.Time) (float64, error) {
	if discount == nil {
		return 0, fmt.Errorf("AnnuityBPV: %w", cashflow.ErrNilCurve)
	}
	periods, err := s.Periods()
	if err != nil {
		return 0, fmt.Errorf("AnnuityBPV: %w", err)
	}

	annuity := 0.0
	for _, p := range periods {
		if p.Pay.Before(valuation) {
			continue
		}
		df, err := discount.DF(p.Pay)
		if err != nil {
			return 0, fmt.Errorf("AnnuityBPV: %w", err)
		}
		annuity += utils.YearFraction(p.Start, p.End, s.DayCount) * df
	}
	return notional * annuity * 1e-4, nil
}
