package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"experiment-model-registry/internal/config"
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:           "model-registry",
	Short:         "Model registry service",
	Long:          `Model registry for trained checkpoints: named models with metadata, labels and numbered versions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("store", "", "store backend: memory or postgres (env STORE_BACKEND)")
	rootCmd.PersistentFlags().String("database-url", "", "postgres connection string (env DATABASE_URL)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (env LOGGER_LEVEL)")

	_ = v.BindPFlag("STORE_BACKEND", rootCmd.PersistentFlags().Lookup("store"))
	_ = v.BindPFlag("DATABASE_URL", rootCmd.PersistentFlags().Lookup("database-url"))
	_ = v.BindPFlag("LOGGER_LEVEL", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

// loadConfig reads flags, environment and defaults into a validated Config
// and configures the global logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return nil, err
	}
	initLogger(cfg)
	return cfg, nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
