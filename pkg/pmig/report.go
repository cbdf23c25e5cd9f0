package pmig

import (
	"sync"
	"time"
	"unicode/utf8"
)

// TableReport holds the counters for one table.
//
// Extracted counts tuples found in the dump. Every extracted tuple ends up
// in exactly one of SkippedMalformed, SkippedUnresolvedReference,
// SkippedDuplicate, Migrated or Failed once a non-dry run completes.
type TableReport struct {
	Table Table `json:"table"`

	// Located is false when no INSERT statement was found for the table.
	Located bool `json:"located"`

	// LookupOnly marks a dependency table that was parsed to resolve
	// references but not written.
	LookupOnly bool `json:"lookup_only,omitempty"`

	Statements int `json:"statements"`

	Extracted                  int `json:"extracted"`
	Migrated                   int `json:"migrated"`
	SkippedDuplicate           int `json:"skipped_duplicate"`
	SkippedMalformed           int `json:"skipped_malformed"`
	SkippedUnresolvedReference int `json:"skipped_unresolved_reference"`

	// Candidates counts records that reached the persistence stage.
	Candidates int `json:"candidates"`

	// Warnings counts retained records that carry coercion warnings.
	Warnings int `json:"warnings"`

	// Failed counts records the store rejected after retries.
	Failed int `json:"failed"`

	// Samples holds the first malformed tuples verbatim for manual audit.
	Samples []Sample `json:"samples,omitempty"`
}

// Sample is one audit entry: a malformed tuple, an arity failure or an
// unresolved reference.
type Sample struct {
	Kind   string `json:"kind"`
	Offset int    `json:"offset"`
	Reason string `json:"reason"`
	Text   string `json:"text"`
}

// Sample kinds.
const (
	SampleMalformed  = "malformed"
	SampleArity      = "arity"
	SampleUnresolved = "unresolved"
	SampleFailed     = "failed"
)

// MigrationReport is created at run start and finalized at run end.
// Counter updates go through the methods so workers can share it.
type MigrationReport struct {
	RunID       string        `json:"run_id"`
	DumpPath    string        `json:"dump_path"`
	Fingerprint string        `json:"fingerprint"`
	Encoding    Encoding      `json:"encoding"`
	DryRun      bool          `json:"dry_run"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	Tables      []TableReport `json:"tables"`

	maxSamples int
	mu         sync.Mutex
}

// NewMigrationReport creates a report with one entry per table, in order.
func NewMigrationReport(runID, dumpPath string, tables []Table, maxSamples int, dryRun bool) *MigrationReport {
	r := &MigrationReport{
		RunID:      runID,
		DumpPath:   dumpPath,
		DryRun:     dryRun,
		StartedAt:  time.Now().UTC(),
		maxSamples: maxSamples,
	}
	for _, t := range tables {
		r.Tables = append(r.Tables, TableReport{Table: t})
	}
	return r
}

// Update applies fn to the table's entry under the report lock.
// Unknown tables are ignored.
func (r *MigrationReport) Update(t Table, fn func(*TableReport)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Tables {
		if r.Tables[i].Table == t {
			fn(&r.Tables[i])
			return
		}
	}
}

// AddSample records an audit sample unless the table already holds
// maxSamples of them. Text is truncated to at most MaxSamplePreviewLength
// bytes on a rune boundary.
func (r *MigrationReport) AddSample(t Table, s Sample) {
	if len(s.Text) > MaxSamplePreviewLength {
		n := MaxSamplePreviewLength
		for n > 0 && !utf8.RuneStart(s.Text[n]) {
			n--
		}
		s.Text = s.Text[:n] + "..."
	}
	r.Update(t, func(tr *TableReport) {
		if len(tr.Samples) < r.maxSamples {
			tr.Samples = append(tr.Samples, s)
		}
	})
}

// Table returns a copy of the table's entry.
func (r *MigrationReport) Table(t Table) (TableReport, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tr := range r.Tables {
		if tr.Table == t {
			return tr, true
		}
	}
	return TableReport{}, false
}

// Finish stamps the end time.
func (r *MigrationReport) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FinishedAt = time.Now().UTC()
}

// Totals sums the counters of every written table.
func (r *MigrationReport) Totals() TableReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum TableReport
	for _, tr := range r.Tables {
		if tr.LookupOnly {
			continue
		}
		sum.Statements += tr.Statements
		sum.Extracted += tr.Extracted
		sum.Migrated += tr.Migrated
		sum.SkippedDuplicate += tr.SkippedDuplicate
		sum.SkippedMalformed += tr.SkippedMalformed
		sum.SkippedUnresolvedReference += tr.SkippedUnresolvedReference
		sum.Candidates += tr.Candidates
		sum.Warnings += tr.Warnings
		sum.Failed += tr.Failed
	}
	return sum
}
