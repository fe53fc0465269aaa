package core

// report.go assembles the outputs of every check into one structured report.
//
// The runner loads each source table exactly once, runs the deduplicator
// first (the canonical store set feeds the downstream checks), and then runs
// the remaining checks independently. A table that fails to load marks only
// the sections that need it; every other section still runs, so the caller
// always receives a maximally-populated report. When a section carries an
// error marker its counts are zero and must not be read as findings.

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DuplicatesSection summarizes duplicate primary keys per table. A nil entry
// means the table could not be loaded; Error names the failure.
type DuplicatesSection struct {
	StoreIDs           *DuplicateIDSummary `json:"store_ids,omitempty"`
	TransactionSetIDs  *DuplicateIDSummary `json:"transaction_set_ids,omitempty"`
	TransactionItemIDs *DuplicateIDSummary `json:"transaction_item_ids,omitempty"`
	Error              string              `json:"error,omitempty"`
}

// IntegritySection wraps the referential-integrity findings.
type IntegritySection struct {
	IntegrityFindings
	Error string `json:"error,omitempty"`
}

// ValueRangesSection wraps the value-range findings.
type ValueRangesSection struct {
	ValueRangeFindings
	Error string `json:"error,omitempty"`
}

// ConsistencySection wraps the categorical-domain findings.
type ConsistencySection struct {
	ConsistencyFindings
	Error string `json:"error,omitempty"`
}

// BusinessLogicSection wraps the cross-column arithmetic findings.
type BusinessLogicSection struct {
	BusinessLogicFindings
	Error string `json:"error,omitempty"`
}

// MissingDataSection reports null percentages per critical field, one map per
// probed table. A missing map means the table could not be loaded.
type MissingDataSection struct {
	TransactionItems map[string]float64 `json:"transaction_items,omitempty"`
	TransactionSets  map[string]float64 `json:"transaction_sets,omitempty"`
	Payments         map[string]float64 `json:"payments,omitempty"`
	Discounts        map[string]float64 `json:"discounts,omitempty"`
	Error            string             `json:"error,omitempty"`
}

// TableVolume is the row count for one source table, or the load error that
// prevented counting. One bad table never blanks the others.
type TableVolume struct {
	Rows  int    `json:"rows"`
	Error string `json:"error,omitempty"`
}

// Report is the complete outcome of one validation run. It is safe to render
// directly: every value is a scalar, list, or nested mapping.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	Duplicates           DuplicatesSection      `json:"duplicates"`
	ReferentialIntegrity IntegritySection       `json:"referential_integrity"`
	ValueRanges          ValueRangesSection     `json:"value_ranges"`
	MissingData          MissingDataSection     `json:"missing_data"`
	Consistency          ConsistencySection     `json:"consistency"`
	BusinessLogic        BusinessLogicSection   `json:"business_logic"`
	DataVolume           map[string]TableVolume `json:"data_volume"`
}

// Default critical fields probed for missing data, matching the columns the
// downstream analytics cannot work without.
var (
	DefaultCriticalItemFields     = []string{"store_id", "date_time", "gtin", "grand_total_amount"}
	DefaultCriticalSetFields      = []string{"store_id", "date_time", "transaction_set_id"}
	DefaultCriticalPaymentFields  = []string{"transaction_set_id", "amount"}
	DefaultCriticalDiscountFields = []string{"transaction_item_id", "amount"}
)

// Runner orchestrates one validation run over a Source.
//
// A Runner is cheap and stateless between runs: calling Run twice with the
// same underlying tables produces identical findings. Concurrent runs are
// safe as long as the Source's snapshots are never mutated.
type Runner struct {
	Source Source

	// TargetCities bounds the expected store footprint for the consistency
	// check. Empty disables the non-target-store count.
	TargetCities []string

	// Critical fields probed for missing data, one list per table.
	CriticalItemFields     []string
	CriticalSetFields      []string
	CriticalPaymentFields  []string
	CriticalDiscountFields []string

	// Clock supplies "now" for the future-date check. Defaults to time.Now;
	// read once per run so a run is internally consistent.
	Clock func() time.Time

	Logger *slog.Logger
}

// NewRunner creates a Runner with the default critical-field lists.
func NewRunner(src Source) *Runner {
	return &Runner{
		Source:                 src,
		CriticalItemFields:     DefaultCriticalItemFields,
		CriticalSetFields:      DefaultCriticalSetFields,
		CriticalPaymentFields:  DefaultCriticalPaymentFields,
		CriticalDiscountFields: DefaultCriticalDiscountFields,
		Clock:                  time.Now,
		Logger:                 slog.Default(),
	}
}

// CanonicalStores loads the store table and deduplicates it. This is the
// same canonical set every report section filters against.
func (r *Runner) CanonicalStores(ctx context.Context) (DedupResult, error) {
	stores, err := r.Source.Stores(ctx)
	if err != nil {
		return DedupResult{}, fmt.Errorf("load stores: %w", err)
	}
	return Deduplicate(stores), nil
}

// tableState holds one loaded table and its load error, if any.
type tableState[T any] struct {
	rows []T
	err  error
}

func (t tableState[T]) ok() bool { return t.err == nil }

// Run executes the full validation suite and assembles the report. It never
// returns an error: source failures degrade the affected sections and are
// recorded in data_volume, per-section error markers, and the log.
func (r *Runner) Run(ctx context.Context) *Report {
	started := time.Now()
	now := r.clock()()

	report := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: now,
		DataVolume:  make(map[string]TableVolume, DatasetCount()),
	}
	logger := r.logger().With("run_id", report.RunID)

	stores := loadTable(ctx, logger, DatasetStores, r.Source.Stores)
	sets := loadTable(ctx, logger, DatasetTransactionSets, r.Source.TransactionSets)
	items := loadTable(ctx, logger, DatasetTransactionItems, r.Source.TransactionItems)
	products := loadTable(ctx, logger, DatasetProducts, r.Source.Products)
	payments := loadTable(ctx, logger, DatasetPayments, r.Source.Payments)
	discounts := loadTable(ctx, logger, DatasetDiscounts, r.Source.Discounts)

	// Dedup runs first: the canonical store set is the filter for every
	// downstream check that touches store identity.
	var dedup DedupResult
	if stores.ok() {
		dedup = Deduplicate(stores.rows)
	}

	report.Duplicates = r.duplicatesSection(stores, sets, items)
	report.ReferentialIntegrity = r.integritySection(items, products, stores, dedup)
	report.ValueRanges = r.valueRangesSection(items, now)
	report.MissingData = r.missingDataSection(items, sets, payments, discounts)
	report.Consistency = r.consistencySection(items, sets, stores, dedup)
	report.BusinessLogic = r.businessLogicSection(items, sets)

	report.DataVolume[DatasetStores] = volume(stores)
	report.DataVolume[DatasetTransactionSets] = volume(sets)
	report.DataVolume[DatasetTransactionItems] = volume(items)
	report.DataVolume[DatasetProducts] = volume(products)
	report.DataVolume[DatasetPayments] = volume(payments)
	report.DataVolume[DatasetDiscounts] = volume(discounts)

	logger.Info("validation run complete",
		"duration_ms", time.Since(started).Milliseconds(),
		"stores_canonical", len(dedup.Canonical),
		"stores_dropped", len(dedup.Dropped),
	)

	return report
}

func (r *Runner) duplicatesSection(stores tableState[Store], sets tableState[TransactionSet], items tableState[TransactionItem]) DuplicatesSection {
	var section DuplicatesSection

	if stores.ok() {
		ids := make([]string, len(stores.rows))
		for i, s := range stores.rows {
			ids[i] = s.StoreID
		}
		summary := SummarizeDuplicateIDs(ids)
		section.StoreIDs = &summary
	}
	if sets.ok() {
		ids := make([]string, len(sets.rows))
		for i, s := range sets.rows {
			ids[i] = s.TransactionSetID
		}
		summary := SummarizeDuplicateIDs(ids)
		section.TransactionSetIDs = &summary
	}
	if items.ok() {
		ids := make([]string, len(items.rows))
		for i, it := range items.rows {
			ids[i] = it.TransactionItemID
		}
		summary := SummarizeDuplicateIDs(ids)
		section.TransactionItemIDs = &summary
	}

	section.Error = joinErrors(
		tableError(DatasetStores, stores.err),
		tableError(DatasetTransactionSets, sets.err),
		tableError(DatasetTransactionItems, items.err),
	)
	return section
}

func (r *Runner) integritySection(items tableState[TransactionItem], products tableState[Product], stores tableState[Store], dedup DedupResult) IntegritySection {
	var section IntegritySection
	section.Error = joinErrors(
		tableError(DatasetTransactionItems, items.err),
		tableError(DatasetProducts, products.err),
		tableError(DatasetStores, stores.err),
	)
	if section.Error != "" {
		return section
	}
	section.IntegrityFindings = CheckReferentialIntegrity(items.rows, dedup.Canonical, products.rows)
	return section
}

func (r *Runner) valueRangesSection(items tableState[TransactionItem], now time.Time) ValueRangesSection {
	var section ValueRangesSection
	if items.err != nil {
		section.Error = tableError(DatasetTransactionItems, items.err)
		return section
	}
	section.ValueRangeFindings = CheckValueRanges(items.rows, now)
	return section
}

func (r *Runner) missingDataSection(items tableState[TransactionItem], sets tableState[TransactionSet], payments tableState[Payment], discounts tableState[Discount]) MissingDataSection {
	var section MissingDataSection
	if items.ok() {
		section.TransactionItems = MissingData(items.rows, ItemFieldProbes, r.CriticalItemFields)
	}
	if sets.ok() {
		section.TransactionSets = MissingData(sets.rows, SetFieldProbes, r.CriticalSetFields)
	}
	if payments.ok() {
		section.Payments = MissingData(payments.rows, PaymentFieldProbes, r.CriticalPaymentFields)
	}
	if discounts.ok() {
		section.Discounts = MissingData(discounts.rows, DiscountFieldProbes, r.CriticalDiscountFields)
	}
	section.Error = joinErrors(
		tableError(DatasetTransactionItems, items.err),
		tableError(DatasetTransactionSets, sets.err),
		tableError(DatasetPayments, payments.err),
		tableError(DatasetDiscounts, discounts.err),
	)
	return section
}

func (r *Runner) consistencySection(items tableState[TransactionItem], sets tableState[TransactionSet], stores tableState[Store], dedup DedupResult) ConsistencySection {
	var section ConsistencySection
	section.Error = joinErrors(
		tableError(DatasetTransactionItems, items.err),
		tableError(DatasetTransactionSets, sets.err),
		tableError(DatasetStores, stores.err),
	)
	if section.Error != "" {
		return section
	}
	section.ConsistencyFindings = CheckConsistency(items.rows, sets.rows, dedup.Canonical, r.TargetCities)
	return section
}

func (r *Runner) businessLogicSection(items tableState[TransactionItem], sets tableState[TransactionSet]) BusinessLogicSection {
	var section BusinessLogicSection
	section.Error = joinErrors(
		tableError(DatasetTransactionItems, items.err),
		tableError(DatasetTransactionSets, sets.err),
	)
	if section.Error != "" {
		return section
	}
	section.BusinessLogicFindings = CheckBusinessLogic(items.rows, sets.rows)
	return section
}

func (r *Runner) clock() func() time.Time {
	if r.Clock != nil {
		return r.Clock
	}
	return time.Now
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// loadTable loads one table and logs the failure, if any. The error is kept
// alongside the rows so each section can decide whether it can still run.
func loadTable[T any](ctx context.Context, logger *slog.Logger, key string, load func(context.Context) ([]T, error)) tableState[T] {
	rows, err := load(ctx)
	if err != nil {
		logger.Warn("table load failed", "table", key, "error", err)
		return tableState[T]{err: err}
	}
	logger.Debug("table loaded", "table", key, "rows", len(rows))
	return tableState[T]{rows: rows}
}

func volume[T any](t tableState[T]) TableVolume {
	if t.err != nil {
		return TableVolume{Error: t.err.Error()}
	}
	return TableVolume{Rows: len(t.rows)}
}

func tableError(key string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", key, err)
}

// joinErrors merges per-table error markers into one section marker,
// dropping empties.
func joinErrors(markers ...string) string {
	var nonEmpty []string
	for _, m := range markers {
		if m != "" {
			nonEmpty = append(nonEmpty, m)
		}
	}
	return strings.Join(nonEmpty, "; ")
}
