// Package records maps tokenized legacy tuples onto typed records using one
// positional column schema per table. Everything else in the pipeline is
// table-agnostic.
package records
