package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/banachtech/zebra-digital/config"
	"github.com/banachtech/zebra-digital/engine"
	"github.com/banachtech/zebra-digital/market"
	"github.com/banachtech/zebra-digital/mc"
	"github.com/banachtech/zebra-digital/metrics"
	"github.com/banachtech/zebra-digital/payoff"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const (
	analyticEngine = "analytic_digital"
	mcEngine       = "mc_digital"
	impliedEngine  = "implied_vol"

	// responsePlaces is the rounding applied to every number returned.
	responsePlaces = 8
)

var errBadRequest = errors.New("bad request")

type volPoint struct {
	Date string  `json:"date" binding:"required"`
	Vol  float64 `json:"vol" binding:"gt=0"`
}

type marketRequest struct {
	Spot          float64 `json:"spot" binding:"required,gt=0"`
	RiskFreeRate  float64 `json:"risk_free_rate"`
	DividendYield float64 `json:"dividend_yield"`
	// Volatility is a flat vol, used unless VolCurve is given.
	Volatility    float64    `json:"volatility" binding:"omitempty,gt=0"`
	VolCurve      []volPoint `json:"vol_curve" binding:"omitempty,dive"`
	ReferenceDate string     `json:"reference_date"`
	DayCounter    string     `json:"day_counter"`
}

type contractRequest struct {
	Type           string  `json:"type" binding:"required"`
	Payoff         string  `json:"payoff" binding:"required,oneof=cash asset"`
	Strike         float64 `json:"strike" binding:"required,gt=0"`
	Cash           float64 `json:"cash" binding:"omitempty,gt=0"`
	Earliest       string  `json:"earliest"`
	Expiry         string  `json:"expiry" binding:"required"`
	PayoffAtExpiry bool    `json:"payoff_at_expiry"`
}

type pricingRequest struct {
	Market   marketRequest   `json:"market"`
	Contract contractRequest `json:"contract"`
}

type mcRequest struct {
	pricingRequest
	Samples          *int     `json:"samples" binding:"omitempty,min=1,max=5000000"`
	Tolerance        *float64 `json:"tolerance" binding:"omitempty,gt=0"`
	MaxSamples       *int     `json:"max_samples" binding:"omitempty,min=1,max=5000000"`
	TimeStepsPerYear *int     `json:"time_steps_per_year" binding:"omitempty,min=1,max=10000"`
	Antithetic       *bool    `json:"antithetic"`
	ControlVariate   *bool    `json:"control_variate"`
	Seed             *uint64  `json:"seed"`
}

type impliedRequest struct {
	pricingRequest
	Price float64 `json:"price" binding:"required,gt=0"`
}

type priceResponse struct {
	RequestID     string           `json:"request_id"`
	Engine        string           `json:"engine"`
	Value         *decimal.Decimal `json:"value"`
	ErrorEstimate *decimal.Decimal `json:"error_estimate,omitempty"`
	Delta         *decimal.Decimal `json:"delta,omitempty"`
	Gamma         *decimal.Decimal `json:"gamma,omitempty"`
	Rho           *decimal.Decimal `json:"rho,omitempty"`
	Samples       int              `json:"samples,omitempty"`
	State         string           `json:"state,omitempty"`
}

func (server *Server) analytic(c *gin.Context) {
	var req pricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	args, err := req.arguments(time.Now())
	if err != nil {
		c.AbortWithStatusJSON(statusFor(err), errorResponse(err))
		return
	}

	res, err := calculate(analyticEngine, engine.NewAnalyticDigitalAmericanEngine(), args)
	if err != nil {
		c.AbortWithStatusJSON(statusFor(err), errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, newPriceResponse(c, analyticEngine, res))
}

func (server *Server) monteCarlo(c *gin.Context) {
	var req mcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	cfg, err := req.engineConfig(server.engine)
	if err != nil {
		c.AbortWithStatusJSON(statusFor(err), errorResponse(err))
		return
	}
	mcCfg, err := NewMCConfig(cfg)
	if err != nil {
		c.AbortWithStatusJSON(statusFor(err), errorResponse(err))
		return
	}
	eng, err := engine.NewMCDigitalEngine(mcCfg)
	if err != nil {
		c.AbortWithStatusJSON(statusFor(err), errorResponse(err))
		return
	}

	args, err := req.arguments(time.Now())
	if err != nil {
		c.AbortWithStatusJSON(statusFor(err), errorResponse(err))
		return
	}

	res, err := calculate(mcEngine, eng, args)
	if err != nil {
		c.AbortWithStatusJSON(statusFor(err), errorResponse(err))
		return
	}
	metrics.MCSamples.Observe(float64(res.Samples))

	c.JSON(http.StatusOK, newPriceResponse(c, mcEngine, res))
}

func (server *Server) implied(c *gin.Context) {
	var req impliedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	args, err := req.arguments(time.Now())
	if err != nil {
		c.AbortWithStatusJSON(statusFor(err), errorResponse(err))
		return
	}

	timer := prometheus.NewTimer(metrics.PricingLatency.WithLabelValues(impliedEngine))
	vol, err := engine.ImpliedVolatility(req.Price, args, req.Market.Volatility)
	timer.ObserveDuration()
	metrics.PricingRequests.WithLabelValues(impliedEngine, outcome(err)).Inc()
	if err != nil {
		c.AbortWithStatusJSON(statusFor(err), errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id":         c.GetString(requestIDContextKey),
		"engine":             impliedEngine,
		"implied_volatility": round(vol),
	})
}

type calculator interface {
	Calculate(args engine.Arguments) (engine.Results, error)
}

func calculate(name string, calc calculator, args engine.Arguments) (engine.Results, error) {
	timer := prometheus.NewTimer(metrics.PricingLatency.WithLabelValues(name))
	res, err := calc.Calculate(args)
	timer.ObserveDuration()
	metrics.PricingRequests.WithLabelValues(name, outcome(err)).Inc()
	return res, err
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (req pricingRequest) arguments(now time.Time) (engine.Arguments, error) {
	ref := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if req.Market.ReferenceDate != "" {
		d, err := parseDate("reference_date", req.Market.ReferenceDate)
		if err != nil {
			return engine.Arguments{}, err
		}
		ref = d
	}

	proc, err := req.Market.process(ref)
	if err != nil {
		return engine.Arguments{}, err
	}

	typ, err := payoff.ParseOptionType(req.Contract.Type)
	if err != nil {
		return engine.Arguments{}, err
	}
	var p payoff.Payoff
	switch req.Contract.Payoff {
	case "cash":
		if req.Contract.Cash == 0 {
			return engine.Arguments{}, fmt.Errorf("%w: cash amount is required for a cash payoff", errBadRequest)
		}
		p, err = payoff.NewCashOrNothing(typ, req.Contract.Strike, req.Contract.Cash)
	default:
		p, err = payoff.NewAssetOrNothing(typ, req.Contract.Strike)
	}
	if err != nil {
		return engine.Arguments{}, err
	}

	earliest := ref
	if req.Contract.Earliest != "" {
		if earliest, err = parseDate("earliest", req.Contract.Earliest); err != nil {
			return engine.Arguments{}, err
		}
	}
	expiry, err := parseDate("expiry", req.Contract.Expiry)
	if err != nil {
		return engine.Arguments{}, err
	}
	if !expiry.After(ref) {
		return engine.Arguments{}, fmt.Errorf("%w: expiry %s must be after the reference date", engine.ErrInvalidArguments, req.Contract.Expiry)
	}
	ex, err := payoff.NewAmericanExercise(earliest, expiry, req.Contract.PayoffAtExpiry)
	if err != nil {
		return engine.Arguments{}, fmt.Errorf("%w: %v", engine.ErrInvalidArguments, err)
	}

	return engine.Arguments{Payoff: p, Exercise: ex, Process: proc}, nil
}

func (m marketRequest) process(ref time.Time) (*market.BlackScholesProcess, error) {
	dc, ok := market.DayCounterByName(m.DayCounter)
	if !ok {
		return nil, fmt.Errorf("%w: unknown day counter %q", errBadRequest, m.DayCounter)
	}

	var vol market.BlackVolTermStructure
	switch {
	case len(m.VolCurve) > 0:
		dates := make([]time.Time, len(m.VolCurve))
		vols := make([]float64, len(m.VolCurve))
		for i, pt := range m.VolCurve {
			d, err := parseDate("vol_curve.date", pt.Date)
			if err != nil {
				return nil, err
			}
			dates[i], vols[i] = d, pt.Vol
		}
		curve, err := market.NewBlackVarianceCurve(ref, dates, vols, dc)
		if err != nil {
			return nil, err
		}
		vol = curve
	case m.Volatility > 0:
		vol = market.NewBlackConstantVol(ref, m.Volatility, dc)
	default:
		return nil, fmt.Errorf("%w: one of volatility and vol_curve is required", errBadRequest)
	}

	return market.NewBlackScholesProcess(m.Spot,
		market.NewFlatForward(ref, m.RiskFreeRate, dc),
		market.NewFlatForward(ref, m.DividendYield, dc),
		vol)
}

// engineConfig applies the request overrides to the server defaults. A request naming a
// stopping criterion replaces the default one. A tolerance needs a bounded max_samples.
func (req mcRequest) engineConfig(cfg config.EngineConfig) (config.EngineConfig, error) {
	if req.Samples != nil && req.Tolerance != nil {
		return cfg, fmt.Errorf("%w: samples and tolerance are mutually exclusive", errBadRequest)
	}
	if req.Samples != nil {
		cfg.RequiredSamples, cfg.RequiredTolerance = *req.Samples, 0
	}
	if req.Tolerance != nil {
		cfg.RequiredSamples, cfg.RequiredTolerance = 0, *req.Tolerance
	}
	if req.MaxSamples != nil {
		cfg.MaxSamples = *req.MaxSamples
	}
	if req.TimeStepsPerYear != nil {
		cfg.MaxTimeStepsPerYear = *req.TimeStepsPerYear
	}
	if req.Antithetic != nil {
		cfg.Antithetic = *req.Antithetic
	}
	if req.ControlVariate != nil {
		cfg.ControlVariate = *req.ControlVariate
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %v", engine.ErrConfiguration, err)
	}
	return cfg, nil
}

// NewMCConfig converts the engine section of the configuration into Monte Carlo engine
// settings.
func NewMCConfig(cfg config.EngineConfig) (engine.MCConfig, error) {
	mcCfg := engine.MCConfig{
		MaxTimeStepsPerYear: cfg.MaxTimeStepsPerYear,
		Antithetic:          cfg.Antithetic,
		ControlVariate:      cfg.ControlVariate,
		RequiredSamples:     cfg.RequiredSamples,
		RequiredTolerance:   cfg.RequiredTolerance,
		MaxSamples:          cfg.MaxSamples,
		Seed:                cfg.Seed,
	}
	switch cfg.RNG {
	case "", "pseudo":
		mcCfg.RNG = mc.PseudoRandom{}
	case "halton":
		mcCfg.RNG = mc.LowDiscrepancy{}
	default:
		return engine.MCConfig{}, fmt.Errorf("%w: unknown rng %q", engine.ErrConfiguration, cfg.RNG)
	}
	return mcCfg, nil
}

func parseDate(field, s string) (time.Time, error) {
	d, err := time.Parse(market.Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be formatted %s", errBadRequest, field, market.Layout)
	}
	return d, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, payoff.ErrInvalidPayoff),
		errors.Is(err, market.ErrInvalidTermStructure),
		errors.Is(err, engine.ErrInvalidArguments),
		errors.Is(err, engine.ErrInvalidExerciseStyle),
		errors.Is(err, engine.ErrUnsupportedExerciseWindow),
		errors.Is(err, engine.ErrInvalidPayoffType),
		errors.Is(err, engine.ErrConfiguration),
		errors.Is(err, engine.ErrUnsupportedControlVariate),
		errors.Is(err, engine.ErrNoConvergence):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func round(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(responsePlaces)
}

// roundPtr leaves missing and non-finite numbers out of the response.
func roundPtr(v *float64) *decimal.Decimal {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	d := round(*v)
	return &d
}

func newPriceResponse(c *gin.Context, name string, res engine.Results) priceResponse {
	out := priceResponse{
		RequestID:     c.GetString(requestIDContextKey),
		Engine:        name,
		Value:         roundPtr(res.Value),
		ErrorEstimate: roundPtr(res.ErrorEstimate),
		Delta:         roundPtr(res.Delta),
		Gamma:         roundPtr(res.Gamma),
		Rho:           roundPtr(res.Rho),
		Samples:       res.Samples,
	}
	if name == mcEngine {
		out.State = res.State.String()
	}
	return out
}
