package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cod-stats/internal/config"
	"github.com/pable/go-cod-stats/internal/logging"
)

var (
	cfgPath   string
	dbPath    string
	apiURL    string
	csvPath   string
	noAPI     bool
	logLevel  string
	logFormat string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "codstats",
	Short: "Call of Duty match history analytics",
	Long: `Load COD match history from the stats API (falling back to a CSV
export), cache it locally and report on performance: win rates, K/D,
sessions, map vetoes, consistency and metric correlations.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "config file (default ./codstats.yaml or $CODSTATS_CONFIG)")
	pf.StringVar(&dbPath, "db", "", "path to SQLite cache (default ~/.codstats/cache.db)")
	pf.StringVar(&apiURL, "api", "", "stats API base URL")
	pf.StringVar(&csvPath, "csv", "", "fallback CSV file or URL")
	pf.BoolVar(&noAPI, "no-api", false, "skip the API and load the CSV directly")
	pf.StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "log format (console, json)")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(mapsCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(hoursCmd)
	rootCmd.AddCommand(consistencyCmd)
	rootCmd.AddCommand(correlateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// setup loads configuration, applies flag overrides and starts logging.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		c.Cache.Path = dbPath
	}
	if apiURL != "" {
		c.API.BaseURL = apiURL
	}
	if csvPath != "" {
		c.CSV.Path = csvPath
	}
	if noAPI {
		c.API.UseAPI = false
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if logFormat != "" {
		c.Log.Format = logFormat
	}
	if err := c.Validate(); err != nil {
		return err
	}

	logging.Init(logging.Config{Level: c.Log.Level, Format: c.Log.Format, Output: os.Stderr})
	cfg = c
	return nil
}
