package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/banachtech/zebra-digital/api"
	"github.com/banachtech/zebra-digital/config"
	"github.com/banachtech/zebra-digital/engine"
	"github.com/banachtech/zebra-digital/market"
	"github.com/banachtech/zebra-digital/payoff"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	spot, riskFree, dividend, vol float64
	strike, cash                  float64
	optionType, payoffKind        string
	expiryDays                    int
	atExpiry                      bool
	samples                       int
	tolerance                     float64
	maxSamples                    int
	stepsPerYear                  int
	antithetic, controlVariate    bool
	seed                          uint64
	showProgress                  bool
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price an American digital with the analytic and Monte Carlo engines side by side",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath, envFile)
		if err != nil {
			return err
		}
		if err := applyEngineFlags(cmd, cfg.Engine); err != nil {
			return err
		}

		pricingArgs, err := priceArguments(time.Now())
		if err != nil {
			return err
		}

		analytic, err := engine.NewAnalyticDigitalAmericanEngine().Calculate(pricingArgs)
		if err != nil {
			return err
		}

		mcCfg, err := api.NewMCConfig(*cfg.Engine)
		if err != nil {
			return err
		}
		if showProgress {
			length := mcCfg.RequiredSamples
			if length == 0 {
				length = mcCfg.MaxSamples
			}
			if length == 0 {
				length = -1
			}
			bar := progressBar(length)
			defer bar.Finish()
			mcCfg.Progress = func(done, target int) {
				if target > 0 {
					bar.ChangeMax(target)
				}
				_ = bar.Set(done)
			}
		}
		eng, err := engine.NewMCDigitalEngine(mcCfg)
		if err != nil {
			return err
		}
		simulated, err := eng.Calculate(pricingArgs)
		if err != nil {
			return err
		}

		printResults(cmd.OutOrStdout(), analytic, simulated)
		return nil
	},
}

func init() {
	f := priceCmd.Flags()
	f.Float64Var(&spot, "spot", 100, "Spot price of the underlying")
	f.Float64Var(&riskFree, "rate", 0.05, "Continuously compounded risk free rate")
	f.Float64Var(&dividend, "dividend", 0, "Continuously compounded dividend yield")
	f.Float64Var(&vol, "vol", 0.2, "Flat Black volatility")
	f.Float64Var(&strike, "strike", 110, "Barrier level of the digital")
	f.Float64Var(&cash, "cash", 10, "Cash amount of a cash-or-nothing digital")
	f.StringVar(&optionType, "type", "call", "Option type: call or put")
	f.StringVar(&payoffKind, "payoff", "cash", "Payoff: cash or asset")
	f.IntVar(&expiryDays, "days", 365, "Calendar days to expiry")
	f.BoolVar(&atExpiry, "at-expiry", false, "Pay at expiry instead of at the hit")
	f.IntVar(&samples, "samples", 0, "Fixed number of Monte Carlo samples")
	f.Float64Var(&tolerance, "tolerance", 0, "Target standard error, instead of a sample count")
	f.IntVar(&maxSamples, "max-samples", 0, "Sample cap for the tolerance target")
	f.IntVar(&stepsPerYear, "steps", 0, "Maximum time steps per year")
	f.BoolVar(&antithetic, "antithetic", false, "Use antithetic variates")
	f.BoolVar(&controlVariate, "control-variate", false, "Use the European digital as control variate")
	f.Uint64Var(&seed, "seed", 0, "Random seed")
	f.BoolVar(&showProgress, "progress", true, "Show a progress bar")
	rootCmd.AddCommand(priceCmd)
}

// applyEngineFlags lets flags given on the command line override the engine section.
func applyEngineFlags(cmd *cobra.Command, e *config.EngineConfig) error {
	f := cmd.Flags()
	if f.Changed("samples") && f.Changed("tolerance") {
		return fmt.Errorf("--samples and --tolerance are mutually exclusive")
	}
	if f.Changed("samples") {
		e.RequiredSamples, e.RequiredTolerance = samples, 0
	}
	if f.Changed("tolerance") {
		e.RequiredSamples, e.RequiredTolerance = 0, tolerance
	}
	if f.Changed("max-samples") {
		e.MaxSamples = maxSamples
	}
	if f.Changed("steps") {
		e.MaxTimeStepsPerYear = stepsPerYear
	}
	if f.Changed("antithetic") {
		e.Antithetic = antithetic
	}
	if f.Changed("control-variate") {
		e.ControlVariate = controlVariate
	}
	if f.Changed("seed") {
		e.Seed = seed
	}
	return e.Validate()
}

func priceArguments(now time.Time) (engine.Arguments, error) {
	ref := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dc := market.Actual365Fixed{}
	proc, err := market.NewBlackScholesProcess(spot,
		market.NewFlatForward(ref, riskFree, dc),
		market.NewFlatForward(ref, dividend, dc),
		market.NewBlackConstantVol(ref, vol, dc))
	if err != nil {
		return engine.Arguments{}, err
	}

	typ, err := payoff.ParseOptionType(optionType)
	if err != nil {
		return engine.Arguments{}, err
	}
	var p payoff.Payoff
	switch payoffKind {
	case "cash":
		p, err = payoff.NewCashOrNothing(typ, strike, cash)
	case "asset":
		p, err = payoff.NewAssetOrNothing(typ, strike)
	default:
		return engine.Arguments{}, fmt.Errorf("unknown payoff %q, want cash or asset", payoffKind)
	}
	if err != nil {
		return engine.Arguments{}, err
	}

	ex, err := payoff.NewAmericanExercise(ref, ref.AddDate(0, 0, expiryDays), atExpiry)
	if err != nil {
		return engine.Arguments{}, err
	}
	return engine.Arguments{Payoff: p, Exercise: ex, Process: proc}, nil
}

func progressBar(length int) *progressbar.ProgressBar {
	bar := progressbar.NewOptions(
		length,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetVisibility(true),
		progressbar.OptionSetDescription("simulating"),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return bar
}

func printResults(w io.Writer, analytic, simulated engine.Results) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tanalytic\tmonte carlo")
	fmt.Fprintf(tw, "value\t%s\t%s\n", format(analytic.Value), format(simulated.Value))
	fmt.Fprintf(tw, "error estimate\t-\t%s\n", format(simulated.ErrorEstimate))
	fmt.Fprintf(tw, "delta\t%s\t-\n", format(analytic.Delta))
	fmt.Fprintf(tw, "gamma\t%s\t-\n", format(analytic.Gamma))
	fmt.Fprintf(tw, "rho\t%s\t-\n", format(analytic.Rho))
	fmt.Fprintf(tw, "samples\t-\t%d (%s)\n", simulated.Samples, simulated.State)
	tw.Flush()
}

func format(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.6f", *v)
}
