package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vvka-141/pmig/internal/checksum"
	"github.com/vvka-141/pmig/internal/dump"
	"github.com/vvka-141/pmig/internal/files/filesystem"
	"github.com/vvka-141/pmig/internal/retry"
	"github.com/vvka-141/pmig/pkg/pmig"
)

// MigrationService drives one dump through the extraction pipeline and into
// a Store.
// Thread-Safety: NOT safe for concurrent Migrate() calls on the same instance.
// Create separate instances for concurrent runs.
type MigrationService struct {
	fs       filesystem.FileSystemProvider
	store    pmig.Store
	executor *retry.Executor
	logger   pmig.Logger
	hasher   checksum.Calculator
	newRunID func() string
}

// NewMigrationService creates a MigrationService with all dependencies injected.
// Panics on nil dependencies: these are wiring mistakes, not runtime conditions.
func NewMigrationService(
	fs filesystem.FileSystemProvider,
	store pmig.Store,
	executor *retry.Executor,
	logger pmig.Logger,
) *MigrationService {
	if fs == nil {
		panic("fs cannot be nil")
	}
	if store == nil {
		panic("store cannot be nil")
	}
	if executor == nil {
		panic("executor cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &MigrationService{
		fs:       fs,
		store:    store,
		executor: executor,
		logger:   logger,
		hasher:   checksum.New(),
		newRunID: uuid.NewString,
	}
}

// Migrate runs the whole pipeline for config.DumpPath.
//
// Per-record problems never fail the run: they are counted and sampled in
// the returned report. The error is non-nil only for fatal conditions
// (unreadable dump, nothing located, cancellation). A cancelled run still
// returns the partial report.
func (s *MigrationService) Migrate(ctx context.Context, config pmig.MigrationConfig) (*pmig.MigrationReport, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	config = config.WithDefaults()

	tables := pmig.ExpandDependencies(config.Tables)
	report := pmig.NewMigrationReport(s.newRunID(), config.DumpPath, tables, config.MaxSamples, config.DryRun)
	defer report.Finish()

	selected := make(map[pmig.Table]bool, len(config.Tables))
	for _, t := range config.Tables {
		selected[t] = true
	}
	for _, t := range tables {
		if !selected[t] {
			report.Update(t, func(tr *pmig.TableReport) { tr.LookupOnly = true })
			s.logger.Verbose("Table %s is a dependency: lookup only", t)
		}
	}

	s.logger.Verbose("Run %s: reading %s", report.RunID, config.DumpPath)
	text, err := s.readDump(config, report)
	if err != nil {
		return report, err
	}

	ext, err := s.extract(ctx, text, tables, selected, config, report)
	if err != nil {
		return report, err
	}

	if config.DryRun {
		for _, t := range tables {
			p := newPlan(t, ext)
			p.record(report)
			report.Update(t, func(tr *pmig.TableReport) { tr.Candidates = len(p.candidates) })
		}
		s.logger.Info("Dry run complete: nothing was written")
		return report, nil
	}

	run := &persistRun{
		svc:     s,
		report:  report,
		workers: config.Workers,
		targets: newTargetIDs(),
	}
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return report, cancelled(err)
		}
		if err := run.table(ctx, newPlan(t, ext), !selected[t]); err != nil {
			if ctx.Err() != nil {
				return report, cancelled(ctx.Err())
			}
			return report, err
		}
	}

	totals := report.Totals()
	s.logger.Info("✓ Migration finished: %d migrated, %d duplicate, %d malformed, %d unresolved, %d failed",
		totals.Migrated, totals.SkippedDuplicate, totals.SkippedMalformed,
		totals.SkippedUnresolvedReference, totals.Failed)
	return report, nil
}

// readDump loads, fingerprints and decodes the dump.
func (s *MigrationService) readDump(config pmig.MigrationConfig, report *pmig.MigrationReport) (string, error) {
	raw, err := s.fs.ReadFile(config.DumpPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", pmig.ErrSourceUnreadable, err)
	}

	report.Fingerprint = s.hasher.Sum(raw)
	s.logger.Verbose("Dump fingerprint: %s (%d bytes)", report.Fingerprint, len(raw))

	text, enc, err := dump.Decode(raw, config.Encoding)
	if err != nil {
		return "", err
	}
	report.Encoding = enc
	if config.Encoding == pmig.EncodingAuto {
		s.logger.Verbose("Detected encoding: %s", enc)
	}
	return text, nil
}

func cancelled(err error) error {
	if errors.Is(err, pmig.ErrCancelled) {
		return err
	}
	return fmt.Errorf("%w: %w", pmig.ErrCancelled, err)
}
