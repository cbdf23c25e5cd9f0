// Package tokenizer splits the VALUES part of legacy INSERT statements.
//
// All scanning shares one finite-state machine over the states Outside,
// InSingleQuote and InDoubleQuote. Escaped quotes, backslash or doubled
// depending on the configured pmig.EscapeMode, never leave a quoted span, so
// commas, parentheses and semicolons inside string literals are data.
//
// SplitTuples adds paren depth on top of the machine and yields tuple
// interiors plus malformed spans. SplitFields splits one interior into raw
// fields. FindTerminator locates the ';' that ends a statement.
//
// The tokenizer never fails: text it cannot split is reported as Malformed
// and the scan continues.
package tokenizer
