package payoff

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidPayoff is returned by the constructors for unusable terms.
var ErrInvalidPayoff = errors.New("invalid payoff")

type OptionType int

const (
	Call OptionType = 1
	Put  OptionType = -1
)

func (t OptionType) String() string {
	switch t {
	case Call:
		return "call"
	case Put:
		return "put"
	}
	return fmt.Sprintf("OptionType(%d)", int(t))
}

func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(s) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return 0, fmt.Errorf("%w: unknown option type %q", ErrInvalidPayoff, s)
}

// Payoff maps the underlying price to a cash flow.
type Payoff interface {
	Name() string
	Value(price float64) float64
}

// StrikedTypePayoff is a payoff with a call/put type and a strike.
type StrikedTypePayoff interface {
	Payoff
	OptionType() OptionType
	Strike() float64
}

// Striked carries the option type and strike shared by all struck payoffs.
type Striked struct {
	Type OptionType
	K    float64
}

func (s Striked) OptionType() OptionType { return s.Type }

func (s Striked) Strike() float64 { return s.K }

// InTheMoney is strictly beyond the strike, the European exercise condition.
func (s Striked) InTheMoney(price float64) bool {
	return float64(s.Type)*(price-s.K) > 0
}

// Touched is at or beyond the strike, the condition that triggers an American digital.
func (s Striked) Touched(price float64) bool {
	return float64(s.Type)*(price-s.K) >= 0
}

func newStriked(t OptionType, strike float64) (Striked, error) {
	if t != Call && t != Put {
		return Striked{}, fmt.Errorf("%w: option type %v", ErrInvalidPayoff, t)
	}
	if !(strike > 0) {
		return Striked{}, fmt.Errorf("%w: strike must be positive, got %v", ErrInvalidPayoff, strike)
	}
	return Striked{Type: t, K: strike}, nil
}

type PlainVanilla struct {
	Striked
}

func NewPlainVanilla(t OptionType, strike float64) (*PlainVanilla, error) {
	s, err := newStriked(t, strike)
	if err != nil {
		return nil, err
	}
	return &PlainVanilla{Striked: s}, nil
}

func (p *PlainVanilla) Name() string { return "Vanilla" }

func (p *PlainVanilla) Value(price float64) float64 {
	return math.Max(float64(p.Type)*(price-p.K), 0)
}

// CashOrNothing pays a fixed amount when the condition is met.
type CashOrNothing struct {
	Striked
	Cash float64
}

func NewCashOrNothing(t OptionType, strike, cash float64) (*CashOrNothing, error) {
	s, err := newStriked(t, strike)
	if err != nil {
		return nil, err
	}
	if cash < 0 || math.IsNaN(cash) {
		return nil, fmt.Errorf("%w: cash amount must be non-negative, got %v", ErrInvalidPayoff, cash)
	}
	return &CashOrNothing{Striked: s, Cash: cash}, nil
}

func (p *CashOrNothing) Name() string { return "CashOrNothing" }

func (p *CashOrNothing) Value(price float64) float64 {
	if p.InTheMoney(price) {
		return p.Cash
	}
	return 0
}

// AssetOrNothing pays the asset when the condition is met.
type AssetOrNothing struct {
	Striked
}

func NewAssetOrNothing(t OptionType, strike float64) (*AssetOrNothing, error) {
	s, err := newStriked(t, strike)
	if err != nil {
		return nil, err
	}
	return &AssetOrNothing{Striked: s}, nil
}

func (p *AssetOrNothing) Name() string { return "AssetOrNothing" }

func (p *AssetOrNothing) Value(price float64) float64 {
	if p.InTheMoney(price) {
		return price
	}
	return 0
}
