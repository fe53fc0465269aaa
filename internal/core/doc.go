// Package core implements the entity-resolution and validation engine for
// retail transactional data.
//
// This package is the heart of the auditor, containing all decision logic
// independent of any transport or storage layer. It can be used by web
// handlers, CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Records: typed snapshots of the source tables (Store, TransactionSet,
//     TransactionItem, Product, Payment, Discount). Records are immutable for
//     the duration of a run; every transformation returns a derived view.
//   - Deduplication: [Deduplicate] collapses store records that denote the
//     same physical location, first by store_id and then by normalized
//     street address, keeping the most recent record each time.
//   - Checks: referential integrity, value ranges, categorical domains,
//     cross-column arithmetic, and missing-data quantification. Every check
//     is side-effect-free and returns zero counts on empty input.
//   - Runner: [Runner.Run] orchestrates all checks in dependency order and
//     assembles one [Report]. A failed table load is captured as an error
//     marker on the sections that need it; the other sections still run.
//
// # Determinism
//
// Two runs over the same tables produce identical findings. The only
// wall-clock dependence is the future-date check, which reads Runner.Clock
// once per run (defaulting to time.Now).
//
// # Dataset Registry
//
// The six source tables are registered at init time with their expected
// columns. Data sources use the registry to validate headers; the data_volume
// report section iterates it to count rows per table.
package core
