package mc

import (
	"errors"
	"math"
)

// ErrInsufficientSamples is returned when an error estimate is requested before two samples
// have been accumulated.
var ErrInsufficientSamples = errors.New("insufficient samples")

// Accumulator collects weighted path values. Statistics is the default implementation.
type Accumulator interface {
	Add(value, weight float64)
	Samples() int
	Mean() float64
	ErrorEstimate() (float64, error)
}

// Statistics is a running weighted mean/variance accumulator. Updates are incremental
// (West's weighted form of Welford) so the sum of squares is never formed.
type Statistics struct {
	n        int
	rejected int
	w        float64
	mean     float64
	m2       float64
	min, max float64
}

func NewStatistics() *Statistics {
	return &Statistics{min: math.Inf(1), max: math.Inf(-1)}
}

// Add incorporates one observation. Non-positive weights and NaN values are rejected.
func (s *Statistics) Add(value, weight float64) {
	if !(weight > 0) || math.IsNaN(value) {
		s.rejected++
		return
	}
	if s.n == 0 {
		s.min, s.max = math.Inf(1), math.Inf(-1)
	}
	s.n++
	s.w += weight
	delta := value - s.mean
	s.mean += delta * weight / s.w
	s.m2 += weight * delta * (value - s.mean)
	if value < s.min {
		s.min = value
	}
	if value > s.max {
		s.max = value
	}
}

func (s *Statistics) Samples() int { return s.n }

func (s *Statistics) Rejected() int { return s.rejected }

func (s *Statistics) WeightSum() float64 { return s.w }

// Mean returns the weighted average, 0 when empty.
func (s *Statistics) Mean() float64 { return s.mean }

// Variance returns the unbiased weighted variance, 0 with fewer than two samples.
func (s *Statistics) Variance() float64 {
	if s.n < 2 {
		return 0
	}
	v := s.m2 / s.w * float64(s.n) / float64(s.n-1)
	if v < 0 {
		// rounding on constant samples
		return 0
	}
	return v
}

func (s *Statistics) StandardDeviation() float64 { return math.Sqrt(s.Variance()) }

// ErrorEstimate returns the standard error of the mean.
func (s *Statistics) ErrorEstimate() (float64, error) {
	if s.n < 2 {
		return math.NaN(), ErrInsufficientSamples
	}
	return math.Sqrt(s.Variance() / float64(s.n)), nil
}

func (s *Statistics) Min() float64 { return s.min }

func (s *Statistics) Max() float64 { return s.max }

func (s *Statistics) Reset() { *s = *NewStatistics() }

// Merge folds other into s using the pairwise update of Chan, Golub and LeVeque.
func (s *Statistics) Merge(other *Statistics) {
	if other == nil || other.n == 0 {
		return
	}
	rejected := s.rejected + other.rejected
	defer func() { s.rejected = rejected }()
	if s.n == 0 {
		*s = *other
		return
	}
	w := s.w + other.w
	delta := other.mean - s.mean
	s.mean += delta * other.w / w
	s.m2 += other.m2 + delta*delta*s.w*other.w/w
	s.n += other.n
	s.w = w
	s.min = math.Min(s.min, other.min)
	s.max = math.Max(s.max, other.max)
}

// MergeAll merges parts in slice order. Floating point addition is not associative, so a fixed
// partition merged this way gives the same bits whichever worker finished first.
func MergeAll(parts []*Statistics) *Statistics {
	out := NewStatistics()
	for _, p := range parts {
		out.Merge(p)
	}
	return out
}
