// Package dataset supplies table snapshots to the validation engine.
//
// Two implementations of core.Source live here: CSVSource reads exported CSV
// files from a data directory, PostgresSource reads the same tables from a
// live database. CachedSource wraps either one and memoizes each table so a
// report run and the store endpoints never load the same data twice.
package dataset

import "errors"

// ErrMissingColumn marks a CSV file whose header lacks a required column.
// Wrapped with the file and column name.
var ErrMissingColumn = errors.New("missing required column")

// ErrUnknownDataset marks a table key that is not in the dataset registry.
var ErrUnknownDataset = errors.New("unknown dataset")
