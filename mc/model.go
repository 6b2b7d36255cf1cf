package mc

// Model couples a generator, a pricer and an accumulator. Each sample is one draw, or the
// average of a draw and its antithetic mirror.
//
// With antithetic sampling the sample counts are pairs, so n samples price 2n paths.
type Model[P any] struct {
	gen        Generator[P]
	pricer     PathPricer[P]
	acc        Accumulator
	antithetic bool
	cv         *ControlVariate[P]
}

// NewModel builds a model. cv may be nil.
func NewModel[P any](gen Generator[P], pricer PathPricer[P], acc Accumulator, antithetic bool, cv *ControlVariate[P]) *Model[P] {
	if acc == nil {
		acc = NewStatistics()
	}
	return &Model[P]{gen: gen, pricer: pricer, acc: acc, antithetic: antithetic, cv: cv}
}

// AddSamples draws n samples. With a control variate the accumulated value of a draw is
// price - controlPrice + controlValue, both priced on the same path.
func (m *Model[P]) AddSamples(n int) {
	for j := 0; j < n; j++ {
		s := m.gen.Next()
		price := m.pricer.Price(s.Value)
		var cprice float64
		if m.cv != nil {
			cprice = m.cv.pricer.Price(s.Value)
		}
		if m.antithetic {
			a := m.gen.Antithetic()
			price = (price + m.pricer.Price(a.Value)) / 2
			if m.cv != nil {
				cprice = (cprice + m.cv.pricer.Price(a.Value)) / 2
			}
		}
		if m.cv != nil {
			m.cv.primary.Add(price, s.Weight)
			m.cv.control.Add(cprice, s.Weight)
			price += m.cv.value - cprice
		}
		m.acc.Add(price, s.Weight)
	}
}

func (m *Model[P]) Accumulator() Accumulator { return m.acc }

// ControlVariate returns the control state, nil when the model runs without one.
func (m *Model[P]) ControlVariate() *ControlVariate[P] { return m.cv }
