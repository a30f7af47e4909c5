// Package types defines the enums and error kinds shared by the formula table,
// the scorer, the estimator and both binaries. They are the canonical
// in-memory vocabulary, separate from the CSV column names and the JSON wire
// format.
package types
