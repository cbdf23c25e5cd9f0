package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vvka-141/pmig/internal/retry"
	"github.com/vvka-141/pmig/pkg/pmig"
)

// candidate is a record that survived parsing, linking and in-run dedup.
// aliases are the legacy ids of later records with the same natural key;
// they resolve to the candidate's target id.
type candidate struct {
	record  pmig.Record
	aliases []int64
}

// plan is one table's persistence work, computed before any store call.
type plan struct {
	table      pmig.Table
	candidates []*candidate
	duplicates int
	unresolved []pmig.Sample
}

// newPlan deduplicates t's records by natural key, first seen wins.
// Records whose references the linker could not resolve are set aside.
func newPlan(t pmig.Table, ext *extraction) *plan {
	p := &plan{table: t}
	byKey := make(map[pmig.NaturalKey]*candidate)
	byID := make(map[int64]*candidate)

	for _, rec := range ext.records[t] {
		if u, ok := unresolvedRef(rec); ok {
			p.unresolved = append(p.unresolved, pmig.Sample{
				Kind:   pmig.SampleUnresolved,
				Reason: u.String(),
				Text:   describe(rec),
			})
			continue
		}

		keys := rec.NaturalKeys()
		winner := byID[rec.LegacyID()]
		for _, k := range keys {
			if winner != nil {
				break
			}
			winner = byKey[k]
		}
		if winner != nil {
			winner.aliases = append(winner.aliases, rec.LegacyID())
			p.duplicates++
			continue
		}

		c := &candidate{record: rec}
		byID[rec.LegacyID()] = c
		for _, k := range keys {
			byKey[k] = c
		}
		p.candidates = append(p.candidates, c)
	}
	return p
}

// record adds the plan's in-run duplicates and unresolved references to the
// report.
func (p *plan) record(report *pmig.MigrationReport) {
	report.Update(p.table, func(tr *pmig.TableReport) {
		tr.SkippedDuplicate += p.duplicates
		tr.SkippedUnresolvedReference += len(p.unresolved)
	})
	for _, s := range p.unresolved {
		report.AddSample(p.table, s)
	}
}

// targetIDs maps legacy ids to target ids per table. Workers write it under
// the lock; the next table only reads it.
type targetIDs struct {
	mu  sync.Mutex
	ids map[pmig.Table]map[int64]int64
}

func newTargetIDs() *targetIDs {
	return &targetIDs{ids: make(map[pmig.Table]map[int64]int64)}
}

func (t *targetIDs) set(table pmig.Table, c *candidate, id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.ids[table]
	if !ok {
		m = make(map[int64]int64)
		t.ids[table] = m
	}
	m[c.record.LegacyID()] = id
	for _, alias := range c.aliases {
		m[alias] = id
	}
}

func (t *targetIDs) get(table pmig.Table, legacyID int64) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.ids[table][legacyID]
	return id, ok
}

// persistRun is the non-dry-run persistence stage of one Migrate call.
type persistRun struct {
	svc     *MigrationService
	report  *pmig.MigrationReport
	workers int
	targets *targetIDs
}

// table persists one table's candidates through a bounded worker pool.
// Lookup-only tables are matched against the store but never inserted.
// The returned error is non-nil only when the context ends.
func (r *persistRun) table(ctx context.Context, p *plan, lookupOnly bool) error {
	p.record(r.report)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, c := range p.candidates {
		if gctx.Err() != nil {
			break
		}

		entity, err := r.entity(c.record)
		if err != nil {
			r.report.Update(p.table, func(tr *pmig.TableReport) { tr.SkippedUnresolvedReference++ })
			r.report.AddSample(p.table, pmig.Sample{
				Kind:   pmig.SampleUnresolved,
				Reason: err.Error(),
				Text:   describe(c.record),
			})
			continue
		}

		r.report.Update(p.table, func(tr *pmig.TableReport) { tr.Candidates++ })
		c := c
		g.Go(func() error {
			return r.persist(gctx, p.table, c, entity, lookupOnly)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tr, _ := r.report.Table(p.table)
	if lookupOnly {
		r.svc.logger.Verbose("%s: %d of %d record(s) found in the store", p.table, tr.SkippedDuplicate-p.duplicates, tr.Candidates)
		return nil
	}
	r.svc.logger.Info("✓ %s: %d migrated, %d duplicate, %d malformed, %d unresolved, %d failed",
		p.table, tr.Migrated, tr.SkippedDuplicate, tr.SkippedMalformed, tr.SkippedUnresolvedReference, tr.Failed)
	return nil
}

// entity resolves the target ids rec references. Loans need their client,
// payments their loan; collectors are optional.
func (r *persistRun) entity(rec pmig.Record) (pmig.Entity, error) {
	e := pmig.Entity{Record: rec}
	switch rec := rec.(type) {
	case *pmig.LoanRecord:
		id, ok := r.targets.get(pmig.TableClientes, rec.ClientRef.LegacyID)
		if !ok {
			return e, fmt.Errorf("%s %d: cliente_id %d has no target id", pmig.TablePrestamos, rec.ID, rec.ClientRef.LegacyID)
		}
		e.ClientID = id
		e.CollectorID, _ = r.targets.get(pmig.TableCobradores, rec.CobradorID)
	case *pmig.PaymentRecord:
		id, ok := r.targets.get(pmig.TablePrestamos, rec.LoanRef.LegacyID)
		if !ok {
			return e, fmt.Errorf("%s %d: prestamo_id %d has no target id", pmig.TablePagos, rec.ID, rec.LoanRef.LegacyID)
		}
		e.LoanID = id
		e.CollectorID, _ = r.targets.get(pmig.TableCobradores, rec.CobradorID)
	}
	return e, nil
}

// persist matches c against the store by natural key and inserts it when
// no match exists. Store failures are counted, not returned.
func (r *persistRun) persist(ctx context.Context, table pmig.Table, c *candidate, entity pmig.Entity, lookupOnly bool) error {
	id, found, err := r.find(ctx, table, c.record)
	if err != nil {
		return r.fail(ctx, table, c, err)
	}
	if found {
		r.report.Update(table, func(tr *pmig.TableReport) { tr.SkippedDuplicate++ })
		r.targets.set(table, c, id)
		return nil
	}
	if lookupOnly {
		r.svc.logger.Verbose("%s: %s not found in the store", table, describe(c.record))
		return nil
	}

	id, err = retry.Do(ctx, r.svc.executor, func(ctx context.Context) (int64, error) {
		return r.svc.store.Insert(ctx, table, entity)
	})
	switch {
	case errors.Is(err, pmig.ErrDuplicateKey):
		// another key of the same entity was taken concurrently or by a key
		// the store checks but find does not
		r.report.Update(table, func(tr *pmig.TableReport) { tr.SkippedDuplicate++ })
		if id, found, ferr := r.find(ctx, table, c.record); ferr == nil && found {
			r.targets.set(table, c, id)
		}
		return nil
	case err != nil:
		return r.fail(ctx, table, c, err)
	}

	r.report.Update(table, func(tr *pmig.TableReport) { tr.Migrated++ })
	r.targets.set(table, c, id)
	return nil
}

// find tries rec's natural keys in priority order.
func (r *persistRun) find(ctx context.Context, table pmig.Table, rec pmig.Record) (int64, bool, error) {
	for _, key := range rec.NaturalKeys() {
		var found bool
		id, err := retry.Do(ctx, r.svc.executor, func(ctx context.Context) (int64, error) {
			id, ok, err := r.svc.store.FindByNaturalKey(ctx, table, key)
			found = ok
			return id, err
		})
		if errors.Is(err, pmig.ErrUnsupportedKey) {
			continue
		}
		if err != nil {
			return 0, false, fmt.Errorf("find %s by %s: %w", table, key, err)
		}
		if found {
			return id, true, nil
		}
	}
	return 0, false, nil
}

// fail counts a store failure. Context errors end the run instead.
func (r *persistRun) fail(ctx context.Context, table pmig.Table, c *candidate, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	r.report.Update(table, func(tr *pmig.TableReport) { tr.Failed++ })
	r.report.AddSample(table, pmig.Sample{
		Kind:   pmig.SampleFailed,
		Reason: err.Error(),
		Text:   describe(c.record),
	})
	r.svc.logger.Error("%s: %s: %v", table, describe(c.record), err)
	return nil
}

// describe identifies a record in samples and logs.
func describe(rec pmig.Record) string {
	keys := rec.NaturalKeys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return fmt.Sprintf("%s legacy id %d (%s)", rec.Table(), rec.LegacyID(), strings.Join(parts, ", "))
}
