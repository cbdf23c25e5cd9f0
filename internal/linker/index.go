package linker

import "github.com/vvka-141/pmig/pkg/pmig"

// Index maps legacy ids to records for the tables other records point at.
// It is built once per run, before linking, and only read afterwards.
type Index struct {
	clients    map[int64]*pmig.ClientRecord
	collectors map[int64]*pmig.CollectorRecord
	loans      map[int64]*pmig.LoanRecord
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		clients:    make(map[int64]*pmig.ClientRecord),
		collectors: make(map[int64]*pmig.CollectorRecord),
		loans:      make(map[int64]*pmig.LoanRecord),
	}
}

// Add indexes rec by legacy id. The first record with a given id wins; Add
// reports false for later ones. Payments are not indexed.
func (ix *Index) Add(rec pmig.Record) bool {
	switch r := rec.(type) {
	case *pmig.ClientRecord:
		if _, ok := ix.clients[r.ID]; ok {
			return false
		}
		ix.clients[r.ID] = r
	case *pmig.CollectorRecord:
		if _, ok := ix.collectors[r.ID]; ok {
			return false
		}
		ix.collectors[r.ID] = r
	case *pmig.LoanRecord:
		if _, ok := ix.loans[r.ID]; ok {
			return false
		}
		ix.loans[r.ID] = r
	}
	return true
}

// AddAll indexes recs and returns how many were shadowed by an earlier
// record with the same legacy id.
func (ix *Index) AddAll(recs []pmig.Record) int {
	shadowed := 0
	for _, r := range recs {
		if !ix.Add(r) {
			shadowed++
		}
	}
	return shadowed
}

func (ix *Index) Client(id int64) (*pmig.ClientRecord, bool) {
	r, ok := ix.clients[id]
	return r, ok
}

func (ix *Index) Collector(id int64) (*pmig.CollectorRecord, bool) {
	r, ok := ix.collectors[id]
	return r, ok
}

func (ix *Index) Loan(id int64) (*pmig.LoanRecord, bool) {
	r, ok := ix.loans[id]
	return r, ok
}

// Len returns the number of indexed records per table.
func (ix *Index) Len(table pmig.Table) int {
	switch table {
	case pmig.TableClientes:
		return len(ix.clients)
	case pmig.TableCobradores:
		return len(ix.collectors)
	case pmig.TablePrestamos:
		return len(ix.loans)
	default:
		return 0
	}
}
