package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obskit/obsctl/internal/render"
	"github.com/obskit/obsctl/internal/utils"
)

// The per-domain commands are thin wrappers over the platform client: one
// query, one rendering pass. Anything cross-domain belongs to investigate.

var (
	monitorTagFlag     string
	hostFilterFlag     string
	logsLimitFlag      int
	tracesLimit        int
	incidentStatusFlag string
	incidentsLimit     int
	sloQueryFlag       string
	sloTagFlag         string
	slosLimit          int
)

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "List monitors whose state changed in the window",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := resolveWindowFlags()
		if err != nil {
			return err
		}
		monitors, err := client.ListMonitors(cmd.Context(), monitorTagFlag, w)
		if err != nil {
			return utils.NewAppError("monitors", "list failed", err)
		}
		return emit(cmd, monitors, func() string { return render.Monitors(monitors) })
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs <query>",
	Short: "Search log events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := resolveWindowFlags()
		if err != nil {
			return err
		}
		events, err := client.SearchLogs(cmd.Context(), args[0], w, logsLimitFlag)
		if err != nil {
			return utils.NewAppError("logs", "search failed", err)
		}
		return emit(cmd, events, func() string { return render.Logs(events) })
	},
}

var tracesCmd = &cobra.Command{
	Use:   "traces <query>",
	Short: "Search trace spans",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := resolveWindowFlags()
		if err != nil {
			return err
		}
		spans, err := client.SearchTraces(cmd.Context(), args[0], w, tracesLimit)
		if err != nil {
			return utils.NewAppError("traces", "search failed", err)
		}
		return emit(cmd, spans, func() string { return render.Traces(spans) })
	},
}

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List hosts with their latest metric snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := resolveWindowFlags()
		if err != nil {
			return err
		}
		hosts, err := client.ListHosts(cmd.Context(), hostFilterFlag, w)
		if err != nil {
			return utils.NewAppError("hosts", "list failed", err)
		}
		return emit(cmd, hosts, func() string { return render.Hosts(hosts) })
	},
}

var incidentsCmd = &cobra.Command{
	Use:   "incidents",
	Short: "List declared incidents",
	RunE: func(cmd *cobra.Command, args []string) error {
		incidents, err := client.ListIncidents(cmd.Context(), incidentStatusFlag, incidentsLimit)
		if err != nil {
			return utils.NewAppError("incidents", "list failed", err)
		}
		return emit(cmd, incidents, func() string { return render.Incidents(incidents) })
	},
}

var slosCmd = &cobra.Command{
	Use:   "slos",
	Short: "List service level objectives",
	RunE: func(cmd *cobra.Command, args []string) error {
		slos, err := client.ListSLOs(cmd.Context(), sloQueryFlag, sloTagFlag, slosLimit)
		if err != nil {
			return utils.NewAppError("slos", "list failed", err)
		}
		return emit(cmd, slos, func() string { return render.SLOs(slos) })
	},
}

// emit writes either the table rendering or the raw items as JSON.
func emit(cmd *cobra.Command, items any, table func() string) error {
	if outputFormat == "json" {
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), table())
	return nil
}

func init() {
	for _, cmd := range []*cobra.Command{monitorsCmd, logsCmd, tracesCmd, hostsCmd} {
		addWindowFlags(cmd)
	}
	monitorsCmd.Flags().StringVar(&monitorTagFlag, "tag", "", "Restrict to monitors carrying this tag, e.g. service:checkout")
	hostsCmd.Flags().StringVar(&hostFilterFlag, "filter", "", "Host inventory filter, e.g. host:web-01")
	logsCmd.Flags().IntVar(&logsLimitFlag, "limit", 200, "Maximum events to return")
	tracesCmd.Flags().IntVar(&tracesLimit, "limit", 100, "Maximum spans to return")

	// Incidents and SLOs are bounded by their own lifecycle, not a query
	// window, so they skip the shared window flags.
	incidentsCmd.Flags().StringVar(&incidentStatusFlag, "status", "", "Restrict to one status: active, stable, or resolved")
	incidentsCmd.Flags().IntVar(&incidentsLimit, "limit", 50, "Maximum incidents to return")
	slosCmd.Flags().StringVar(&sloQueryFlag, "query", "", "Search query to narrow SLOs")
	slosCmd.Flags().StringVar(&sloTagFlag, "tag", "", "Restrict to SLOs carrying this tag")
	slosCmd.Flags().IntVar(&slosLimit, "limit", 50, "Maximum SLOs to return")
}
