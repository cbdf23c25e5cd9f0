package pmig

import "context"

// Store is the persistence collaborator owned by the target application.
// The migrator only looks records up by natural key and inserts new ones;
// it does not know or enforce the target schema's validation rules.
//
// Implementations must be safe for concurrent use: the orchestrator calls
// them from a bounded worker pool. Each Insert is its own commit.
type Store interface {
	// FindByNaturalKey returns the target id of the entity in table whose
	// key.Field equals key.Value.
	FindByNaturalKey(ctx context.Context, table Table, key NaturalKey) (id int64, found bool, err error)

	// Insert persists entity into table and returns its new target id.
	Insert(ctx context.Context, table Table, entity Entity) (int64, error)

	// Close releases the store's resources.
	Close() error
}
