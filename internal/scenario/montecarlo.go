package scenario

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/Veraticus/tranche/internal/model"
)

const (
	// DefaultSimulations is the path count used when none is requested.
	DefaultSimulations = 10000
	// DefaultVolatility is the log-space standard deviation of loss draws.
	DefaultVolatility = 0.5

	cancelCheckEvery = 1024
)

// SimulationOptions controls Simulate.
type SimulationOptions struct {
	Simulations int
	Seed        uint64
	Volatility  float64
}

// SimulationResult summarises the simulated cumulative net loss distribution.
type SimulationResult struct {
	DealID            string  `json:"deal_id"`
	Simulations       int     `json:"simulations"`
	Seed              uint64  `json:"seed"`
	BaseCNL           float64 `json:"base_cnl"`
	CreditEnhancement float64 `json:"credit_enhancement"`
	Mean              float64 `json:"mean"`
	StdDev            float64 `json:"std_dev"`
	P50               float64 `json:"p50"`
	P95               float64 `json:"p95"`
	P99               float64 `json:"p99"`
	Max               float64 `json:"max"`
	// BreachProbability is the share of paths whose loss exceeds enhancement.
	BreachProbability float64 `json:"breach_probability"`
}

// Simulate draws lognormal cumulative net losses centred on the deal's base
// expected loss and measures how often they exhaust credit enhancement.
// Identical options give identical results.
func Simulate(ctx context.Context, deal *model.NewIssueDeal, opts SimulationOptions) (SimulationResult, error) {
	if ctx == nil {
		return SimulationResult{}, errors.New("nil context")
	}
	if deal == nil {
		return SimulationResult{}, fmt.Errorf("%w: nil deal", ErrInsufficientData)
	}
	base := BaseCNL(deal)
	if base <= 0 {
		return SimulationResult{}, fmt.Errorf("%w: no expected cumulative net loss", ErrInsufficientData)
	}
	if opts.Simulations <= 0 {
		opts.Simulations = DefaultSimulations
	}
	if opts.Volatility <= 0 {
		opts.Volatility = DefaultVolatility
	}

	ce := CreditEnhancement(deal)
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	// exp(sigma*Z - sigma^2/2) has mean 1, so draws average to the base loss.
	sigma := opts.Volatility
	drift := -sigma * sigma / 2

	losses := make([]float64, opts.Simulations)
	var sum float64
	breaches := 0
	for i := range losses {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return SimulationResult{}, fmt.Errorf("simulation interrupted: %w", err)
			}
		}
		loss := math.Min(base*math.Exp(drift+sigma*rng.NormFloat64()), 100)
		losses[i] = loss
		sum += loss
		if ce > 0 && loss > ce {
			breaches++
		}
	}

	n := float64(len(losses))
	mean := sum / n
	var sq float64
	for _, l := range losses {
		sq += (l - mean) * (l - mean)
	}
	sort.Float64s(losses)

	return SimulationResult{
		DealID:            deal.ID,
		Simulations:       opts.Simulations,
		Seed:              opts.Seed,
		BaseCNL:           base,
		CreditEnhancement: ce,
		Mean:              mean,
		StdDev:            math.Sqrt(sq / n),
		P50:               percentile(losses, 0.50),
		P95:               percentile(losses, 0.95),
		P99:               percentile(losses, 0.99),
		Max:               losses[len(losses)-1],
		BreachProbability: float64(breaches) / n,
	}, nil
}

// percentile uses the nearest-rank method on sorted values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
