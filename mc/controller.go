package mc

import (
	"errors"
	"fmt"
	"math"
)

// ErrConfiguration is returned for an unusable stopping policy.
var ErrConfiguration = errors.New("invalid simulation configuration")

// DefaultMinSamples is the first batch of a tolerance-driven run.
const DefaultMinSamples = 1023

const progressBatch = 1024

// State of a simulation run.
type State int

const (
	Idle State = iota
	Accumulating
	Converged
	ExhaustedSamples
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Accumulating:
		return "accumulating"
	case Converged:
		return "converged"
	case ExhaustedSamples:
		return "exhausted_samples"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Sampler is what a Controller drives. *Model satisfies it.
type Sampler interface {
	AddSamples(n int)
	Accumulator() Accumulator
}

// Controller decides how many samples to draw. Exactly one of RequiredSamples and
// RequiredTolerance must be set. MaxSamples of zero means unbounded.
type Controller struct {
	RequiredSamples   int
	RequiredTolerance float64
	MaxSamples        int
	MinSamples        int
	// Progress, when set, is called after every batch with the samples drawn so far and the
	// target (zero when the target is not known in advance).
	Progress func(done, target int)
}

// Outcome summarises a finished run.
type Outcome struct {
	State   State
	Samples int
	Error   float64
}

func (c Controller) Validate() error {
	switch {
	case c.RequiredSamples <= 0 && !(c.RequiredTolerance > 0):
		return fmt.Errorf("%w: neither tolerance nor number of samples set", ErrConfiguration)
	case c.RequiredSamples > 0 && c.RequiredTolerance > 0:
		return fmt.Errorf("%w: both tolerance and number of samples set", ErrConfiguration)
	case c.RequiredSamples < 0:
		return fmt.Errorf("%w: negative number of samples %d", ErrConfiguration, c.RequiredSamples)
	case c.MaxSamples < 0:
		return fmt.Errorf("%w: negative max samples %d", ErrConfiguration, c.MaxSamples)
	case c.RequiredTolerance > 0 && c.MaxSamples > 0 && c.MaxSamples < 2:
		return fmt.Errorf("%w: max samples %d cannot give an error estimate", ErrConfiguration, c.MaxSamples)
	}
	return nil
}

// Run drives s until the policy is met.
func (c Controller) Run(s Sampler, allowsErrorEstimate bool) (Outcome, error) {
	if err := c.Validate(); err != nil {
		return Outcome{State: Idle}, err
	}
	if c.RequiredTolerance > 0 {
		if !allowsErrorEstimate {
			return Outcome{State: Idle}, fmt.Errorf("%w: tolerance target needs an error estimate", ErrConfiguration)
		}
		return c.runTolerance(s)
	}
	return c.runFixed(s), nil
}

func (c Controller) runFixed(s Sampler) Outcome {
	drawn := 0
	for drawn < c.RequiredSamples {
		batch := c.RequiredSamples - drawn
		if batch > progressBatch {
			batch = progressBatch
		}
		s.AddSamples(batch)
		drawn += batch
		c.report(drawn, c.RequiredSamples)
	}
	out := Outcome{State: Converged, Samples: drawn, Error: math.NaN()}
	if e, err := s.Accumulator().ErrorEstimate(); err == nil {
		out.Error = e
	}
	return out
}

func (c Controller) runTolerance(s Sampler) (Outcome, error) {
	maxSamples := c.MaxSamples
	if maxSamples == 0 {
		maxSamples = math.MaxInt
	}
	minSamples := c.MinSamples
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	acc := s.Accumulator()
	drawn := 0
	add := func(n int) {
		if n > maxSamples-drawn {
			n = maxSamples - drawn
		}
		for n > 0 {
			batch := min(n, progressBatch)
			s.AddSamples(batch)
			drawn += batch
			n -= batch
			c.report(drawn, c.MaxSamples)
		}
	}

	add(minSamples)
	e, err := acc.ErrorEstimate()
	for err == nil && e > c.RequiredTolerance {
		if drawn >= maxSamples {
			return Outcome{State: ExhaustedSamples, Samples: drawn, Error: e}, nil
		}
		// conservative guess of the samples still needed
		order := e * e / c.RequiredTolerance / c.RequiredTolerance
		next := math.Max(float64(drawn)*order*0.8-float64(drawn), float64(minSamples))
		add(int(math.Min(next, float64(maxSamples-drawn))))
		e, err = acc.ErrorEstimate()
	}
	if err != nil {
		// the accumulator rejected the draws
		return Outcome{State: Accumulating, Samples: drawn, Error: math.NaN()}, err
	}
	return Outcome{State: Converged, Samples: drawn, Error: e}, nil
}

func (c Controller) report(done, target int) {
	if c.Progress != nil {
		c.Progress(done, target)
	}
}
