// Package cli wires the command surface: flag parsing, config resolution,
// exit-code mapping, and rendering. The investigation engine itself never
// sees any of this.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/obskit/obsctl/internal/cache"
	"github.com/obskit/obsctl/internal/config"
	"github.com/obskit/obsctl/internal/engine"
	"github.com/obskit/obsctl/internal/metrics"
	"github.com/obskit/obsctl/internal/models"
	"github.com/obskit/obsctl/internal/repo"
	"github.com/obskit/obsctl/internal/utils"
	"github.com/obskit/obsctl/internal/window"
)

// Version is stamped at build time.
var Version = "0.3.0"

// errUsage marks argument mistakes that should exit with code 2.
var errUsage = errors.New("usage error")

var (
	configPath   string
	logLevel     string
	logJSON      bool
	outputFormat string

	// Window flags shared by every query command.
	sinceFlag string
	fromFlag  string
	toFlag    string

	cfg           *config.Config
	logger        *slog.Logger
	client        *repo.Client
	cacheProvider cache.Provider
)

var rootCmd = &cobra.Command{
	Use:   "obsctl",
	Short: "obsctl queries the observability platform and investigates incidents",
	Long: `obsctl is a client for the observability platform APIs: monitors, traces,
logs, and host telemetry. Its investigate command fans out correlated
queries across all applicable domains and merges the results into a single
time-ordered incident report.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return utils.NewAppError("config", "failed to load configuration", err)
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}
		if cmd.Flags().Changed("log-json") {
			cfg.Logging.JSON = logJSON
		}
		logger = utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)

		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			return utils.NewAppError("metrics", "failed to register collectors", err)
		}

		cacheProvider = cache.NoopProvider{}
		if cfg.Cache.Enabled {
			cacheProvider = cache.NewLRUProvider(cache.LRUConfig{Size: cfg.Cache.Size, TTL: cfg.Cache.TTL})
		}

		client = repo.NewClient(repo.ClientConfig{
			Site:      cfg.API.Site,
			BaseURL:   cfg.API.BaseURL,
			APIKey:    cfg.API.APIKey,
			AppKey:    cfg.API.AppKey,
			Timeout:   cfg.API.Timeout,
			RateLimit: cfg.API.RateLimit,
			RateBurst: cfg.API.RateBurst,
		}, cacheProvider, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cacheProvider != nil {
			_ = cacheProvider.Close()
		}
	},
}

// ExecuteContext runs the CLI and maps errors to exit codes: 0 for success
// (including empty-but-healthy results), 1 when every requested domain
// failed or a command errored, 2 for usage and time-expression mistakes.
// Cancelling ctx aborts in-flight fetches and backoff waits; whatever
// already completed is still reported.
func ExecuteContext(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	fmt.Fprintln(os.Stderr, "obsctl:", err)
	switch {
	case errors.Is(err, errUsage),
		errors.Is(err, window.ErrInvalidTimeExpression),
		errors.Is(err, window.ErrInvalidRange):
		return 2
	case errors.Is(err, engine.ErrAllDomainsFailed):
		return 1
	default:
		return 1
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table or json")

	rootCmd.AddCommand(investigateCmd)
	rootCmd.AddCommand(monitorsCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(tracesCmd)
	rootCmd.AddCommand(hostsCmd)
	rootCmd.AddCommand(incidentsCmd)
	rootCmd.AddCommand(slosCmd)
}

// addWindowFlags attaches the shared time window flags to a command.
func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sinceFlag, "since", "", "Relative window, e.g. 15m, 4h, 7d")
	cmd.Flags().StringVar(&fromFlag, "from", "", "Absolute window start (RFC 3339)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Absolute window end (RFC 3339), defaults to now")
}

// resolveWindowFlags turns the shared flags into a concrete window. The
// --since shorthand and --from are mutually exclusive, and --to only pairs
// with --from; with neither, the window defaults to the last hour.
func resolveWindowFlags() (models.TimeWindow, error) {
	switch {
	case sinceFlag != "" && fromFlag != "":
		return models.TimeWindow{}, fmt.Errorf("%w: --since and --from are mutually exclusive", errUsage)
	case sinceFlag != "":
		// The resolver rejects a relative expression paired with an end
		// time, so a stray --to surfaces instead of being dropped.
		return window.Resolve(sinceFlag, toFlag, time.Now())
	case fromFlag != "":
		return window.Resolve(fromFlag, toFlag, time.Now())
	case toFlag != "":
		return models.TimeWindow{}, fmt.Errorf("%w: --to requires --from", errUsage)
	default:
		return window.Resolve("1h", "", time.Now())
	}
}
