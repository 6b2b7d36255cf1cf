package engine

import (
	"errors"

	"github.com/banachtech/zebra-digital/mc"
)

var (
	ErrInvalidExerciseStyle      = errors.New("invalid exercise style")
	ErrUnsupportedExerciseWindow = errors.New("unsupported exercise window")
	ErrInvalidPayoffType         = errors.New("invalid payoff type")
	ErrUnsupportedControlVariate = errors.New("control variate not supported for this contract")
	ErrInvalidArguments          = errors.New("invalid pricing arguments")
	ErrNoConvergence             = errors.New("implied volatility did not converge")

	// ErrConfiguration is the simulation configuration error of package mc.
	ErrConfiguration = mc.ErrConfiguration
)
