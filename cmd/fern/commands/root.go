package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ramsey-B/fern/config"
)

// Version is stamped at build time.
var Version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fern",
	Short: "Identity reconciliation for the Let's Meet person feeds",
	Long: `Fern consolidates person records from the legacy tabular dump, the
document store and the hobby XML export into one canonical relational
schema. Records carrying the same email resolve to one user no matter how
many sources mention them, and replaying any feed leaves the store
unchanged.

Commands:
  import   - Run a full batch import from all configured feeds
  serve    - Consume person records from Kafka and expose the ops API
  migrate  - Apply database schema migrations`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the environment configuration.
func loadConfig() (*config.Config, error) {
	return config.Load()
}

// newLogger builds the application logger for the configured level.
func newLogger(cfg *config.Config) (ectologger.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(strings.ToLower(cfg.LogLevel))
	if err == nil {
		zapCfg.Level = level
	}

	zapLogger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return zapadapter.NewZapEctoLogger(zapLogger, nil), nil
}
