package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/obskit/obsctl/internal/engine"
	"github.com/obskit/obsctl/internal/models"
	"github.com/obskit/obsctl/internal/render"
	"github.com/obskit/obsctl/internal/repo"
	"github.com/obskit/obsctl/internal/retry"
)

var (
	domainsFlag      []string
	gapToleranceFlag time.Duration
)

var investigateCmd = &cobra.Command{
	Use:   "investigate <service:NAME|host:NAME>",
	Short: "Fan out correlated queries across telemetry domains and build an incident report",
	Long: `Investigate fetches every telemetry domain applicable to the entity for the
given window, retrying transient API failures per domain. Failures stay
confined to their domain: the report carries whatever was fetched plus a
per-domain error summary. The exit code is 1 only when every requested
domain failed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entity, err := models.ParseEntity(args[0])
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}

		w, err := resolveWindowFlags()
		if err != nil {
			return err
		}

		domains, err := parseDomainsFlag(domainsFlag)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}

		opts := engine.Options{
			Policy: retry.Policy{
				MaxAttempts: cfg.Retry.MaxAttempts,
				BaseDelay:   cfg.Retry.BaseDelay,
				MaxDelay:    cfg.Retry.MaxDelay,
				Jitter:      cfg.Retry.Jitter,
			},
			GapTolerance:  cfg.Investigate.GapTolerance,
			ScaleGap:      cfg.Investigate.ScaleGap,
			MaxConcurrent: cfg.Investigate.MaxConcurrent,
		}
		if cmd.Flags().Changed("gap-tolerance") {
			opts.GapTolerance = gapToleranceFlag
			opts.ScaleGap = false
		}

		orchestrator := engine.NewOrchestrator(logger, []engine.Adapter{
			repo.NewMonitorsAdapter(client),
			repo.NewTracesAdapter(client),
			repo.NewLogsAdapter(client),
			repo.NewHostsAdapter(client),
		}, opts)

		report, invErr := orchestrator.Investigate(cmd.Context(), entity, w, domains)

		// Partial reports are still reports; render before surfacing the
		// all-domains-failed case for the exit code.
		if outputFormat == "json" {
			data, err := render.ReportJSON(report)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		} else {
			fmt.Fprint(cmd.OutOrStdout(), render.Report(report))
		}

		return invErr
	},
}

func parseDomainsFlag(values []string) ([]models.Domain, error) {
	domains := make([]models.Domain, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			domain, err := models.ParseDomain(part)
			if err != nil {
				return nil, err
			}
			domains = append(domains, domain)
		}
	}
	return domains, nil
}

func init() {
	addWindowFlags(investigateCmd)
	investigateCmd.Flags().StringSliceVar(&domainsFlag, "domains", nil,
		"Domains to query (monitors,traces,logs,hosts); default is everything applicable to the entity")
	investigateCmd.Flags().DurationVar(&gapToleranceFlag, "gap-tolerance", engine.DefaultGapTolerance,
		"Maximum silence between related records before a new correlation group opens")
}
