// Package checksum fingerprints legacy dump files.
//
// The fingerprint is recorded in every migration report. Two reports with
// the same fingerprint were produced from byte-identical dumps, which is how
// an operator tells a re-run apart from a run against a newer export.
//
// XXH3-128 is used instead of a cryptographic hash: dumps run to hundreds of
// megabytes and the fingerprint only has to detect change, not tampering.
package checksum
