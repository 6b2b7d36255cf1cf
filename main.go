package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "zebra",
	Short: "Digital option pricer",
	Long: `zebra prices American cash-or-nothing and asset-or-nothing digitals in closed form
and by Monte Carlo simulation, from the command line or as an HTTP service.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(-1)
	}
}
