package mc

// ControlVariate holds a pricer for a payoff whose exact value is known, and the statistics of
// the primary and control prices seen on the same draws.
type ControlVariate[P any] struct {
	pricer  PathPricer[P]
	value   float64
	primary *Statistics
	control *Statistics
}

func NewControlVariate[P any](pricer PathPricer[P], value float64) *ControlVariate[P] {
	return &ControlVariate[P]{pricer: pricer, value: value, primary: NewStatistics(), control: NewStatistics()}
}

// Value is the exact value of the control payoff.
func (c *ControlVariate[P]) Value() float64 { return c.value }

// Primary holds the uncorrected prices.
func (c *ControlVariate[P]) Primary() *Statistics { return c.primary }

// Control holds the simulated control prices.
func (c *ControlVariate[P]) Control() *Statistics { return c.control }

// Corrected is primary mean - simulated control mean + exact control value.
func (c *ControlVariate[P]) Corrected() float64 {
	return c.primary.Mean() - c.control.Mean() + c.value
}
