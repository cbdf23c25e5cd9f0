// Package metrics exports a finished MigrationReport to Prometheus.
//
// A migration is a batch job with no scrape endpoint, so the counters are
// pushed to a Pushgateway once the run ends. Publisher keeps the rest of the
// tool free of Prometheus types; Nop is used when no gateway is configured.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/vvka-141/pmig/pkg/pmig"
)

// DefaultJob is the Pushgateway job name when none is configured.
const DefaultJob = "pmig"

// Publisher exports a finished report.
type Publisher interface {
	Publish(ctx context.Context, report *pmig.MigrationReport) error
}

// Nop discards reports.
type Nop struct{}

func (Nop) Publish(context.Context, *pmig.MigrationReport) error { return nil }

// Outcome label values of pmig_records.
const (
	OutcomeExtracted  = "extracted"
	OutcomeMigrated   = "migrated"
	OutcomeDuplicate  = "skipped_duplicate"
	OutcomeMalformed  = "skipped_malformed"
	OutcomeUnresolved = "skipped_unresolved_reference"
	OutcomeFailed     = "failed"
)

// Pushgateway pushes report counters to a Prometheus Pushgateway.
type Pushgateway struct {
	gatewayURL string
	job        string
	reg        *prometheus.Registry

	records  *prometheus.GaugeVec
	duration prometheus.Gauge
	finished prometheus.Gauge
}

// NewPushgateway constructs a Pushgateway publisher.
func NewPushgateway(gatewayURL, job string) (*Pushgateway, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("pushgateway URL is required: %w", pmig.ErrInvalidConfig)
	}
	if job == "" {
		job = DefaultJob
	}

	records := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pmig_records",
			Help: "Legacy records of the last migration run, partitioned by table and outcome.",
		},
		[]string{"table", "outcome"},
	)
	duration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pmig_run_duration_seconds",
		Help: "Wall time of the last migration run.",
	})
	finished := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pmig_run_finished_timestamp_seconds",
		Help: "Unix time the last migration run finished.",
	})

	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{records, duration, finished} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	return &Pushgateway{
		gatewayURL: gatewayURL,
		job:        job,
		reg:        reg,
		records:    records,
		duration:   duration,
		finished:   finished,
	}, nil
}

// Publish sets the gauges from report and replaces the job's metric group
// on the gateway. Dry runs are published too; the dry_run grouping label
// keeps them apart from real runs.
func (p *Pushgateway) Publish(ctx context.Context, report *pmig.MigrationReport) error {
	p.observe(report)

	dryRun := "false"
	if report.DryRun {
		dryRun = "true"
	}
	err := push.New(p.gatewayURL, p.job).
		Gatherer(p.reg).
		Grouping("dry_run", dryRun).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", p.gatewayURL, err)
	}
	return nil
}

func (p *Pushgateway) observe(report *pmig.MigrationReport) {
	for _, tr := range report.Tables {
		if tr.LookupOnly {
			continue
		}
		table := string(tr.Table)
		p.records.WithLabelValues(table, OutcomeExtracted).Set(float64(tr.Extracted))
		p.records.WithLabelValues(table, OutcomeMigrated).Set(float64(tr.Migrated))
		p.records.WithLabelValues(table, OutcomeDuplicate).Set(float64(tr.SkippedDuplicate))
		p.records.WithLabelValues(table, OutcomeMalformed).Set(float64(tr.SkippedMalformed))
		p.records.WithLabelValues(table, OutcomeUnresolved).Set(float64(tr.SkippedUnresolvedReference))
		p.records.WithLabelValues(table, OutcomeFailed).Set(float64(tr.Failed))
	}
	if !report.FinishedAt.IsZero() {
		p.duration.Set(report.FinishedAt.Sub(report.StartedAt).Seconds())
		p.finished.Set(float64(report.FinishedAt.Unix()))
	}
}

var (
	_ Publisher = Nop{}
	_ Publisher = (*Pushgateway)(nil)
)
