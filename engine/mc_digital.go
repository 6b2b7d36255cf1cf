package engine

import (
	"fmt"
	"math"

	"github.com/banachtech/zebra-digital/logs"
	"github.com/banachtech/zebra-digital/market"
	"github.com/banachtech/zebra-digital/mc"
	"github.com/banachtech/zebra-digital/payoff"
	"github.com/sirupsen/logrus"
)

// bridgeSeedOffset separates the Brownian bridge uniforms from the path Gaussians.
const bridgeSeedOffset = 0x9e3779b97f4a7c15

// MCConfig configures a Monte Carlo digital engine. Exactly one of RequiredSamples and
// RequiredTolerance must be set.
type MCConfig struct {
	MaxTimeStepsPerYear int
	Antithetic          bool
	ControlVariate      bool
	RequiredSamples     int
	RequiredTolerance   float64
	MaxSamples          int
	Seed                uint64
	// RNG defaults to mc.PseudoRandom.
	RNG mc.RNG
	// NewAccumulator defaults to mc.NewStatistics.
	NewAccumulator func() mc.Accumulator
	Progress       func(done, target int)
}

// MCDigitalEngine prices American digitals by simulation with a Brownian bridge hit
// correction. It holds configuration only and may be reused across calls.
type MCDigitalEngine struct {
	cfg        MCConfig
	controller mc.Controller
}

func NewMCDigitalEngine(cfg MCConfig) (*MCDigitalEngine, error) {
	if cfg.MaxTimeStepsPerYear < 1 {
		return nil, fmt.Errorf("%w: max time steps per year must be at least 1, got %d", ErrConfiguration, cfg.MaxTimeStepsPerYear)
	}
	if cfg.RNG == nil {
		cfg.RNG = mc.PseudoRandom{}
	}
	if cfg.NewAccumulator == nil {
		cfg.NewAccumulator = func() mc.Accumulator { return mc.NewStatistics() }
	}
	ctrl := mc.Controller{
		RequiredSamples:   cfg.RequiredSamples,
		RequiredTolerance: cfg.RequiredTolerance,
		MaxSamples:        cfg.MaxSamples,
		Progress:          cfg.Progress,
	}
	if err := ctrl.Validate(); err != nil {
		return nil, err
	}
	if cfg.RequiredTolerance > 0 && !cfg.RNG.AllowsErrorEstimate() {
		return nil, fmt.Errorf("%w: tolerance target with a generator that gives no error estimate", ErrConfiguration)
	}
	return &MCDigitalEngine{cfg: cfg, controller: ctrl}, nil
}

func (e *MCDigitalEngine) Config() MCConfig { return e.cfg }

func (e *MCDigitalEngine) Calculate(args Arguments) (Results, error) {
	ex, p, err := americanDigital(args)
	if err != nil {
		return Results{}, err
	}
	proc := args.Process

	var cash *payoff.CashOrNothing
	if e.cfg.ControlVariate {
		c, ok := p.(*payoff.CashOrNothing)
		if !ok {
			return Results{}, fmt.Errorf("%w: no control for %s payoff", ErrUnsupportedControlVariate, p.Name())
		}
		cash = c
	}

	maturity := proc.Time(ex.Latest)
	grid, err := mc.NewTimeGrid(maturity, mc.StepsFor(maturity, e.cfg.MaxTimeStepsPerYear))
	if err != nil {
		return Results{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	steps := grid.Steps()

	gen, err := mc.NewPathGenerator(proc, grid, e.cfg.RNG.Gaussian(steps, e.cfg.Seed))
	if err != nil {
		return Results{}, err
	}
	pricer, err := NewDigitalPathPricer(p, ex.PayoffAtExpiry, proc, e.cfg.RNG.Uniform(steps, e.cfg.Seed+bridgeSeedOffset))
	if err != nil {
		return Results{}, err
	}

	var cv *mc.ControlVariate[mc.Path]
	if cash != nil {
		cv, err = e.controlVariate(cash, ex, proc)
		if err != nil {
			return Results{}, err
		}
	}

	acc := e.cfg.NewAccumulator()
	model := mc.NewModel[mc.Path](gen, pricer, acc, e.cfg.Antithetic, cv)
	out, err := e.controller.Run(model, e.cfg.RNG.AllowsErrorEstimate())
	if err != nil {
		return Results{}, err
	}

	res := Results{Value: ptr(acc.Mean()), Samples: out.Samples, State: out.State}
	if e.cfg.RNG.AllowsErrorEstimate() && !math.IsNaN(out.Error) {
		res.ErrorEstimate = ptr(out.Error)
	}

	fields := logrus.Fields{
		"engine":  "mc_digital",
		"payoff":  p.Name(),
		"steps":   steps,
		"samples": out.Samples,
		"state":   out.State.String(),
		"value":   *res.Value,
		"error":   out.Error,
	}
	if cv != nil {
		fields["control_value"] = cv.Value()
		fields["control_mean"] = cv.Control().Mean()
	}
	logs.WithFields(fields).Debug("monte carlo run finished")
	return res, nil
}

// controlVariate pairs the European digital with the same terms, simulated on the same
// paths and valued in closed form.
func (e *MCDigitalEngine) controlVariate(c *payoff.CashOrNothing, ex *payoff.AmericanExercise, proc *market.BlackScholesProcess) (*mc.ControlVariate[mc.Path], error) {
	res, err := NewAnalyticEuropeanEngine().Calculate(Arguments{
		Payoff:   c,
		Exercise: payoff.NewEuropeanExercise(ex.Latest),
		Process:  proc,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedControlVariate, err)
	}
	pricer := NewEuropeanPathPricer(c, market.DiscountAt(proc.RiskFree, ex.Latest))
	return mc.NewControlVariate[mc.Path](pricer, *res.Value), nil
}
