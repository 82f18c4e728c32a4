// Package engine drives investigations: it fans out domain fetches through
// the retry policy, confines failures to their domain, and merges whatever
// survived into a single time-ordered, tag-correlated report.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/obskit/obsctl/internal/metrics"
	"github.com/obskit/obsctl/internal/models"
	"github.com/obskit/obsctl/internal/retry"
)

// ErrAllDomainsFailed reports that every requested domain ended in a
// terminal error. The report is still returned alongside it.
var ErrAllDomainsFailed = errors.New("every requested domain failed")

// Adapter is the uniform fetch contract every telemetry domain satisfies.
// Implementations are stateless and idempotent: the retry policy will call
// Fetch repeatedly with identical arguments on transient failure.
type Adapter interface {
	Domain() models.Domain
	AppliesTo(entity models.Entity) bool
	Fetch(ctx context.Context, entity models.Entity, w models.TimeWindow) ([]models.DomainRecord, error)
}

// Options tunes orchestration.
type Options struct {
	Policy retry.Policy
	// GapTolerance is the maximum silence between related records before
	// they are considered unrelated.
	GapTolerance time.Duration
	// ScaleGap derives the gap tolerance from the window size instead
	// (window/12, clamped to [1m, 30m]).
	ScaleGap      bool
	MaxConcurrent int
}

// Orchestrator coordinates domain adapters for a single investigation.
type Orchestrator struct {
	logger   *slog.Logger
	adapters []Adapter
	opts     Options
}

// NewOrchestrator constructs an orchestrator over the given adapters.
func NewOrchestrator(logger *slog.Logger, adapters []Adapter, opts Options) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = len(models.AllDomains)
	}
	return &Orchestrator{logger: logger, adapters: adapters, opts: opts}
}

// Investigate fetches every requested domain applicable to the entity,
// independently and concurrently, and assembles the report. A failure in
// one domain never aborts its siblings; partial reports are a first-class
// success. Only when every requested domain fails does the call also
// return ErrAllDomainsFailed.
//
// An empty domains slice requests everything applicable to the entity.
func (o *Orchestrator) Investigate(ctx context.Context, entity models.Entity, w models.TimeWindow, domains []models.Domain) (*models.InvestigationReport, error) {
	start := time.Now()

	if len(domains) == 0 {
		domains = entity.Domains()
	}
	selected := o.selectAdapters(entity, domains)

	// One slot per domain; each task writes only its own slot, so the
	// merge after the join needs no locks.
	slots := make([]*models.FetchOutcome, len(models.AllDomains))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.opts.MaxConcurrent)
	for _, adapter := range selected {
		group.Go(func() error {
			domain := adapter.Domain()
			records, retries, err := retry.Do(groupCtx, o.opts.Policy, func(callCtx context.Context) ([]models.DomainRecord, error) {
				return adapter.Fetch(callCtx, entity, w)
			})

			outcome := &models.FetchOutcome{Domain: domain, RetriesUsed: retries}
			if err != nil {
				outcome.Err = err
				metrics.ObserveFetch(domain.String(), retries, metrics.OutcomeError)
				o.logger.Warn("domain fetch failed",
					slog.String("domain", domain.String()),
					slog.Int("retries", retries),
					slog.Any("error", err),
				)
			} else {
				outcome.Records = records
				metrics.ObserveFetch(domain.String(), retries, metrics.OutcomeSuccess)
				o.logger.Debug("domain fetch complete",
					slog.String("domain", domain.String()),
					slog.Int("records", len(records)),
					slog.Int("retries", retries),
				)
			}
			slots[domain] = outcome
			return nil
		})
	}
	// Tasks never return errors to the group; the only wait outcome is the
	// join barrier itself.
	_ = group.Wait()

	report := &models.InvestigationReport{
		ID:        uuid.NewString(),
		Entity:    entity,
		Window:    w,
		Outcomes:  make(map[models.Domain]models.FetchOutcome, len(selected)),
		CreatedAt: time.Now().UTC(),
	}
	for _, adapter := range selected {
		if outcome := slots[adapter.Domain()]; outcome != nil {
			report.Outcomes[adapter.Domain()] = *outcome
		}
	}

	report.Timeline = mergeTimeline(report.Outcomes)
	correlator := Correlator{GapTolerance: o.effectiveGap(w)}
	report.Groups = correlator.Correlate(report.Timeline)

	metrics.ObserveInvestigation(time.Since(start))
	o.logger.Info("investigation complete",
		slog.String("entity", entity.String()),
		slog.Int("records", report.RecordCount()),
		slog.Int("groups", len(report.Groups)),
		slog.Int("failed_domains", len(report.FailedDomains())),
	)

	if len(selected) > 0 && report.Failed() {
		return report, ErrAllDomainsFailed
	}
	return report, nil
}

func (o *Orchestrator) selectAdapters(entity models.Entity, domains []models.Domain) []Adapter {
	requested := make(map[models.Domain]bool, len(domains))
	for _, domain := range domains {
		requested[domain] = true
	}

	selected := make([]Adapter, 0, len(o.adapters))
	for _, adapter := range o.adapters {
		if requested[adapter.Domain()] && adapter.AppliesTo(entity) {
			selected = append(selected, adapter)
		}
	}
	return selected
}

func (o *Orchestrator) effectiveGap(w models.TimeWindow) time.Duration {
	if o.opts.ScaleGap {
		gap := w.Duration() / 12
		if gap < time.Minute {
			gap = time.Minute
		}
		if gap > 30*time.Minute {
			gap = 30 * time.Minute
		}
		return gap
	}
	return o.opts.GapTolerance
}

// mergeTimeline flattens healthy outcomes into one sequence sorted by
// timestamp, ties broken by domain enum order for determinism.
func mergeTimeline(outcomes map[models.Domain]models.FetchOutcome) []models.DomainRecord {
	total := 0
	for _, outcome := range outcomes {
		total += len(outcome.Records)
	}

	timeline := make([]models.DomainRecord, 0, total)
	for _, domain := range models.AllDomains {
		outcome, ok := outcomes[domain]
		if !ok || !outcome.Healthy() {
			continue
		}
		timeline = append(timeline, outcome.Records...)
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		if !timeline[i].Timestamp.Equal(timeline[j].Timestamp) {
			return timeline[i].Timestamp.Before(timeline[j].Timestamp)
		}
		return timeline[i].Domain < timeline[j].Domain
	})
	return timeline
}
