package mc

import "fmt"

// Process is a one-factor diffusion that a PathGenerator can evolve.
type Process interface {
	// X0 is the state at time zero.
	X0() float64
	// Evolve returns the state at t+dt given state x at t and a standard normal draw dw.
	Evolve(t, x, dt, dw float64) float64
	// StdDeviation is the standard deviation of the log increment over [t, t+dt].
	StdDeviation(t, x, dt float64) float64
}

// Path is one simulated trajectory, Values[i] being the state at Grid[i].
type Path struct {
	Grid   TimeGrid
	Values []float64
}

func (p Path) Len() int { return len(p.Values) }

func (p Path) Front() float64 { return p.Values[0] }

func (p Path) Back() float64 { return p.Values[len(p.Values)-1] }

// Sample pairs a draw with its weight.
type Sample[P any] struct {
	Value  P
	Weight float64
}

// Generator produces simulated draws of type P.
type Generator[P any] interface {
	Next() Sample[P]
	// Antithetic returns the mirror of the last draw returned by Next.
	Antithetic() Sample[P]
}

// PathPricer maps one draw to a discounted value.
type PathPricer[P any] interface {
	Price(P) float64
}

// PathPricerFunc adapts a function to a PathPricer.
type PathPricerFunc[P any] func(P) float64

func (f PathPricerFunc[P]) Price(p P) float64 { return f(p) }

// PathGenerator simulates a Process over a fixed grid, consuming one Gaussian vector per path.
type PathGenerator struct {
	process Process
	grid    TimeGrid
	gen     Sequence
	last    []float64
}

func NewPathGenerator(process Process, grid TimeGrid, gen Sequence) (*PathGenerator, error) {
	if gen.Dimension() != grid.Steps() {
		return nil, fmt.Errorf("sequence dimension %d does not match %d time steps", gen.Dimension(), grid.Steps())
	}
	return &PathGenerator{process: process, grid: grid, gen: gen, last: make([]float64, grid.Steps())}, nil
}

func (g *PathGenerator) Next() Sample[Path] {
	copy(g.last, g.gen.Next())
	return g.path(1)
}

func (g *PathGenerator) Antithetic() Sample[Path] {
	return g.path(-1)
}

func (g *PathGenerator) path(sign float64) Sample[Path] {
	n := g.grid.Steps()
	x := make([]float64, n+1)
	x[0] = g.process.X0()
	for i := 0; i < n; i++ {
		x[i+1] = g.process.Evolve(g.grid[i], x[i], g.grid.Dt(i), sign*g.last[i])
	}
	return Sample[Path]{Value: Path{Grid: g.grid, Values: x}, Weight: 1}
}
