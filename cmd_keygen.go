package main

import (
	"fmt"
	"time"

	"github.com/banachtech/zebra-digital/config"
	"github.com/banachtech/zebra-digital/util"
	"github.com/spf13/cobra"
)

var validMonths int

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an API key and the environment entries the service reads",
	RunE: func(cmd *cobra.Command, args []string) error {
		key := util.GenerateAPIKey()
		prefix, err := util.KeyPrefix(key)
		if err != nil {
			return err
		}
		hash, err := util.HashAPIKey(key)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "API key (give to the client): %s\n\n", key)
		fmt.Fprintf(out, "%s=%s\n", config.APIKeyPrefixEnv, prefix)
		fmt.Fprintf(out, "%s='%s'\n", config.APIKeyHashEnv, hash)
		if validMonths > 0 {
			expires := time.Now().UTC().AddDate(0, validMonths, 0)
			fmt.Fprintf(out, "%s=\"%s\"\n", config.APIKeyExpiresEnv, expires.Format(config.ExpiryLayout))
		}
		return nil
	},
}

func init() {
	keygenCmd.Flags().IntVar(&validMonths, "months", 6, "Months until the key expires, 0 for never")
	rootCmd.AddCommand(keygenCmd)
}
