package risk

// Difference selects the finite-difference scheme for bump-and-reprice.
type Difference string

const (
	// ForwardDifference uses pv(+h) - pv(0): one reprice per node, cheaper.
	ForwardDifference Difference = "FORWARD"
	// CentralDifference uses (pv(+h) - pv(-h)) / 2: cancels first-order
	// asymmetry, preferred for reporting-grade PV01.
	CentralDifference Difference = "CENTRAL"
)

// Config holds the engine's numeric policy.
type Config struct {
	// BumpSize is the rate shift per bump as a decimal. Zero defaults to
	// one basis point (0.0001).
	BumpSize float64

	// Difference is the finite-difference scheme. Empty defaults to central.
	Difference Difference

	// MaxParallel caps concurrent per-node repricing tasks. Zero or negative
	// runs one goroutine per node.
	MaxParallel int
}

// DefaultConfig provides reporting-grade defaults.
var DefaultConfig = Config{
	BumpSize:   1e-4,
	Difference: CentralDifference,
}

func (c Config) bumpSize() float64 {
	if c.BumpSize == 0 {
		return DefaultConfig.BumpSize
	}
	return c.BumpSize
}

func (c Config) scheme() Difference {
	if c.Difference == "" {
		return CentralDifference
	}
	return c.Difference
}
