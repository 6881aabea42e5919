package instrument

import (
	"errors"
	"math"
	"time"
)

// ErrConfig is returned for inconsistent instrument configuration, such as
// mismatched leg currencies without a conversion rate.
var ErrConfig = errors.New("inconsistent instrument configuration")

// Instrument is the closed contract shared by all priced products. PV and MTM
// are pure functions of the bound curves and the valuation date; expired
// instruments value to zero.
type Instrument interface {
	PV(valuation time.Time) (float64, error)
	MTM(valuation time.Time) (float64, error)
}

// Side is the pay/receive direction of a swap leg.
type Side int

const (
	Pay Side = iota
	Receive
)

// Sign returns the aggregation sign: pay legs contribute negatively.
func (s Side) Sign() float64 {
	if s == Pay {
		return -1.0
	}
	return 1.0
}

func (s Side) String() string {
	if s == Pay {
		return "PAY"
	}
	return "REC"
}

func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
