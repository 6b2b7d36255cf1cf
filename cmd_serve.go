package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/banachtech/zebra-digital/api"
	"github.com/banachtech/zebra-digital/config"
	"github.com/banachtech/zebra-digital/keystore"
	"github.com/banachtech/zebra-digital/logs"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP pricing service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath, envFile)
		if err != nil {
			return err
		}
		if err := logs.Init(cfg.Logs); err != nil {
			return err
		}
		defer logs.Close()

		store := keystore.NewMemStore()
		if cfg.Server.APIKeyPrefix != "" && cfg.Server.APIKeyHash != "" {
			store.Add(keystore.Key{
				Prefix:    cfg.Server.APIKeyPrefix,
				Hash:      cfg.Server.APIKeyHash,
				ExpiresAt: cfg.Server.APIKeyExpiresAt,
			})
		} else {
			logs.Warnf("%s or %s not set, every priced request will be rejected", config.APIKeyPrefixEnv, config.APIKeyHashEnv)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return api.NewServer(cfg, store).Start(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Path to the .env file holding the API key")
	rootCmd.AddCommand(serveCmd)
}
