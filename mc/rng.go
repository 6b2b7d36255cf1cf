package mc

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mathext/prng"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sequence yields vectors of variates of a fixed dimension. The returned slice is owned by the
// sequence and is overwritten by the next call.
type Sequence interface {
	Dimension() int
	Next() []float64
}

// RNG is a variate generation strategy.
type RNG interface {
	// Gaussian returns a standard normal sequence.
	Gaussian(dim int, seed uint64) Sequence
	// Uniform returns a sequence of variates in [0, 1).
	Uniform(dim int, seed uint64) Sequence
	// AllowsErrorEstimate reports whether the sample variance is a meaningful error measure.
	AllowsErrorEstimate() bool
}

// PseudoRandom draws from a Mersenne Twister.
type PseudoRandom struct{}

func (PseudoRandom) Gaussian(dim int, seed uint64) Sequence {
	return &pseudoSequence{rnd: newMT(seed), out: make([]float64, dim), normal: true}
}

func (PseudoRandom) Uniform(dim int, seed uint64) Sequence {
	return &pseudoSequence{rnd: newMT(seed), out: make([]float64, dim)}
}

func (PseudoRandom) AllowsErrorEstimate() bool { return true }

func newMT(seed uint64) *rand.Rand {
	src := prng.NewMT19937()
	src.Seed(seed)
	return rand.New(src)
}

type pseudoSequence struct {
	rnd    *rand.Rand
	out    []float64
	normal bool
}

func (s *pseudoSequence) Dimension() int { return len(s.out) }

func (s *pseudoSequence) Next() []float64 {
	for i := range s.out {
		if s.normal {
			s.out[i] = s.rnd.NormFloat64()
		} else {
			s.out[i] = s.rnd.Float64()
		}
	}
	return s.out
}

// LowDiscrepancy draws from a Halton sequence. The seed selects how many leading points are
// skipped. Sample variance does not measure the error of a quasi-random estimate.
type LowDiscrepancy struct{}

func (LowDiscrepancy) Gaussian(dim int, seed uint64) Sequence {
	return &haltonSequence{h: newHalton(dim, seed), out: make([]float64, dim), normal: true}
}

func (LowDiscrepancy) Uniform(dim int, seed uint64) Sequence {
	return &haltonSequence{h: newHalton(dim, seed), out: make([]float64, dim)}
}

func (LowDiscrepancy) AllowsErrorEstimate() bool { return false }

type haltonSequence struct {
	h      *halton
	out    []float64
	normal bool
}

func (s *haltonSequence) Dimension() int { return len(s.out) }

func (s *haltonSequence) Next() []float64 {
	s.h.next(s.out)
	if s.normal {
		for i, u := range s.out {
			s.out[i] = distuv.UnitNormal.Quantile(u)
		}
	}
	return s.out
}

type halton struct {
	bases   []uint64
	counter uint64
}

func newHalton(dim int, skip uint64) *halton {
	// skip the origin, whose inverse normal image is -Inf
	return &halton{bases: firstPrimes(dim), counter: skip%(1<<32) + 1}
}

func (h *halton) next(out []float64) {
	for i, b := range h.bases {
		out[i] = radicalInverse(h.counter, b)
	}
	h.counter++
}

func radicalInverse(n, base uint64) float64 {
	inv := 1.0 / float64(base)
	f := inv
	r := 0.0
	for n > 0 {
		r += float64(n%base) * f
		n /= base
		f *= inv
	}
	return math.Min(r, 1-1e-16)
}

func firstPrimes(n int) []uint64 {
	primes := make([]uint64, 0, n)
	for c := uint64(2); len(primes) < n; c++ {
		prime := true
		for _, p := range primes {
			if p*p > c {
				break
			}
			if c%p == 0 {
				prime = false
				break
			}
		}
		if prime {
			primes = append(primes, c)
		}
	}
	return primes
}
