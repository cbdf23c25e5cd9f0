// Package dump reads a legacy SQL export: Decode repairs its character
// encoding and Locator finds the VALUES blob of every INSERT statement per
// table. Statement ends are found with the tokenizer's quote machine, so a
// ';' inside a string literal never ends a blob.
package dump
