package curve

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/meenmo/pricingengine/utils"
)

var (
	// ErrValidation is returned for malformed node input.
	ErrValidation = errors.New("invalid curve nodes")
	// ErrNodeIndex is returned when a bump index is out of range.
	ErrNodeIndex = errors.New("node index out of range")
)

// QuoteKind describes what the node rates represent.
type QuoteKind string

const (
	// QuoteZero nodes carry continuously compounded zero rates.
	QuoteZero QuoteKind = "zero"
	// QuoteDiscount nodes carry discount factors in (0, 1].
	QuoteDiscount QuoteKind = "discount"
	// QuoteForward nodes carry continuously compounded forward rates, each
	// applying from the previous node (or the evaluation date) to its own.
	QuoteForward QuoteKind = "forward"
	// QuoteFlat is a single-node flat zero rate out to the node date.
	QuoteFlat QuoteKind = "flat"
)

// Node is a (date, rate) curve pillar.
type Node struct {
	Date time.Time
	Rate float64
}

// CurveNodes is an immutable, ordered set of curve pillars.
//
// Every operation returns a sibling object; an existing CurveNodes is never
// mutated, so a bumped copy can be priced while the original remains valid
// for comparison.
type CurveNodes struct {
	asOf     time.Time
	dates    []time.Time
	rates    []float64
	kind     QuoteKind
	dayCount utils.DayCount
}

func newNodes(asOf time.Time, dates []time.Time, rates []float64, kind QuoteKind) (*CurveNodes, error) {
	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: at least one node is required", ErrValidation)
	}
	if len(dates) != len(rates) {
		return nil, fmt.Errorf("%w: %d dates vs %d rates", ErrValidation, len(dates), len(rates))
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("%w: dates must be strictly increasing at index %d (%s)",
				ErrValidation, i, dates[i].Format("2006-01-02"))
		}
	}
	if kind == QuoteDiscount {
		for i, df := range rates {
			if df <= 0 || df > 1 {
				return nil, fmt.Errorf("%w: discount factor %g at index %d outside (0, 1]",
					ErrValidation, df, i)
			}
		}
	}
	if kind == QuoteFlat && len(dates) != 1 {
		return nil, fmt.Errorf("%w: flat quote expects exactly one node, got %d", ErrValidation, len(dates))
	}
	if kind == QuoteForward && len(dates) < 2 {
		return nil, fmt.Errorf("%w: forward quote needs at least two nodes, got %d", ErrValidation, len(dates))
	}

	c := &CurveNodes{
		asOf:     asOf,
		dates:    make([]time.Time, len(dates)),
		rates:    make([]float64, len(rates)),
		kind:     kind,
		dayCount: utils.Act365F,
	}
	copy(c.dates, dates)
	copy(c.rates, rates)
	return c, nil
}

// FromPairs builds zero-rate quoted nodes from parallel date and rate slices.
func FromPairs(asOf time.Time, dates []time.Time, rates []float64) (*CurveNodes, error) {
	return newNodes(asOf, dates, rates, QuoteZero)
}

// FromZeros is an explicit alias of FromPairs.
func FromZeros(asOf time.Time, dates []time.Time, zeros []float64) (*CurveNodes, error) {
	return newNodes(asOf, dates, zeros, QuoteZero)
}

// FromDiscounts builds discount-factor quoted nodes. Factors must lie in (0, 1].
func FromDiscounts(asOf time.Time, dates []time.Time, discounts []float64) (*CurveNodes, error) {
	return newNodes(asOf, dates, discounts, QuoteDiscount)
}

// FromForwards builds forward-rate quoted nodes: rates[i] is the
// continuously compounded forward over (dates[i-1], dates[i]], with the first
// interval starting at asOf.
func FromForwards(asOf time.Time, dates []time.Time, forwards []float64) (*CurveNodes, error) {
	return newNodes(asOf, dates, forwards, QuoteForward)
}

// FromFlat builds a single-node flat zero curve out to maturity.
func FromFlat(asOf, maturity time.Time, zero float64) (*CurveNodes, error) {
	return newNodes(asOf, []time.Time{maturity}, []float64{zero}, QuoteFlat)
}

// AsOf returns the curve's evaluation date.
func (c *CurveNodes) AsOf() time.Time { return c.asOf }

// Kind returns the quoting convention of the node rates.
func (c *CurveNodes) Kind() QuoteKind { return c.kind }

// Len returns the number of nodes.
func (c *CurveNodes) Len() int { return len(c.dates) }

// AsPairs returns the (date, rate) pairs in original order. The slice is a
// copy; callers cannot alias the internal state through it.
func (c *CurveNodes) AsPairs() []Node {
	out := make([]Node, len(c.dates))
	for i := range c.dates {
		out[i] = Node{Date: c.dates[i], Rate: c.rates[i]}
	}
	return out
}

// Bump returns a sibling with rates[i] shifted by amount (a decimal rate, e.g.
// 0.0001 for one basis point) and every other node unchanged.
//
// Discount-factor quoted nodes are bumped in rate space: the factor is
// converted to its implied zero, shifted, and converted back.
func (c *CurveNodes) Bump(i int, amount float64) (*CurveNodes, error) {
	if i < 0 || i >= len(c.rates) {
		return nil, fmt.Errorf("%w: %d (curve has %d nodes)", ErrNodeIndex, i, len(c.rates))
	}
	sibling := c.clone()
	sibling.rates[i] = c.bumpedRate(i, amount)
	return sibling, nil
}

// BumpAll returns a sibling with every node's rate shifted by amount.
func (c *CurveNodes) BumpAll(amount float64) *CurveNodes {
	sibling := c.clone()
	for i := range sibling.rates {
		sibling.rates[i] = c.bumpedRate(i, amount)
	}
	return sibling
}

func (c *CurveNodes) clone() *CurveNodes {
	out := &CurveNodes{
		asOf:     c.asOf,
		dates:    make([]time.Time, len(c.dates)),
		rates:    make([]float64, len(c.rates)),
		kind:     c.kind,
		dayCount: c.dayCount,
	}
	copy(out.dates, c.dates)
	copy(out.rates, c.rates)
	return out
}

func (c *CurveNodes) bumpedRate(i int, amount float64) float64 {
	if c.kind != QuoteDiscount {
		return c.rates[i] + amount
	}
	t := utils.YearFraction(c.asOf, c.dates[i], c.dayCount)
	if t <= 0 {
		// Protect asOf/near-zero times.
		return c.rates[i]
	}
	r := -math.Log(c.rates[i]) / t
	return math.Exp(-(r + amount) * t)
}
