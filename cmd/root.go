package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/viktsys/woolauction/config"
	"github.com/viktsys/woolauction/logger"
	"go.uber.org/zap"
)

var configFile string

var rootCMD = &cobra.Command{
	Use:   "woolauction",
	Short: "Wool auction analytics service",
	Long: `A CLI application for analysing wool auction lots and trade exports.
It serves price, comparison and regression analytics over a REST API and
ingests monthly trade export CSV files.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCMD.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCMD.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./config.yaml or ./config/config.yaml)")
	rootCMD.AddCommand(serverCMD, ingestCMD, exportsCMD)
}

// bootstrap loads configuration and builds the operator logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
