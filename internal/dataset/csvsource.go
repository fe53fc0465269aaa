package dataset

// csvsource.go loads the source tables from CSV exports in a data directory.
//
// Each registered dataset is either a single file named <key>.csv or a
// subdirectory named <key>/ holding partitioned part-files (large tables are
// commonly exported in chunks). Part-files are read in name order so repeated
// loads see identical row order. Headers are matched case-insensitively and
// validated against the registered column layout before any row is parsed.

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cstore-data/audit/internal/core"
)

// CSVSource reads table snapshots from a directory of CSV exports.
type CSVSource struct {
	dir    string
	logger *slog.Logger
}

// NewCSVSource creates a source over the given data directory. The directory
// is not touched until a table is loaded.
func NewCSVSource(dir string, logger *slog.Logger) *CSVSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVSource{dir: dir, logger: logger}
}

func (s *CSVSource) Stores(ctx context.Context) ([]core.Store, error) {
	return readTable(ctx, s, core.DatasetStores, storeFromRow)
}

func (s *CSVSource) TransactionSets(ctx context.Context) ([]core.TransactionSet, error) {
	return readTable(ctx, s, core.DatasetTransactionSets, setFromRow)
}

func (s *CSVSource) TransactionItems(ctx context.Context) ([]core.TransactionItem, error) {
	return readTable(ctx, s, core.DatasetTransactionItems, itemFromRow)
}

func (s *CSVSource) Products(ctx context.Context) ([]core.Product, error) {
	return readTable(ctx, s, core.DatasetProducts, productFromRow)
}

func (s *CSVSource) Payments(ctx context.Context) ([]core.Payment, error) {
	return readTable(ctx, s, core.DatasetPayments, paymentFromRow)
}

func (s *CSVSource) Discounts(ctx context.Context) ([]core.Discount, error) {
	return readTable(ctx, s, core.DatasetDiscounts, discountFromRow)
}

// tablePaths resolves the file or part-files for one dataset key.
func (s *CSVSource) tablePaths(key string) ([]string, error) {
	partDir := filepath.Join(s.dir, key)
	if info, err := os.Stat(partDir); err == nil && info.IsDir() {
		matches, err := filepath.Glob(filepath.Join(partDir, "*.csv"))
		if err != nil {
			return nil, fmt.Errorf("list %s parts: %w", key, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: partition directory has no csv files", key)
		}
		sort.Strings(matches)
		return matches, nil
	}

	single := filepath.Join(s.dir, key+".csv")
	if _, err := os.Stat(single); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return []string{single}, nil
}

// readTable loads every file of one dataset and converts rows with fromRow.
func readTable[T any](ctx context.Context, s *CSVSource, key string, fromRow func([]string, core.HeaderIndex) T) ([]T, error) {
	info, ok := core.Dataset(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, key)
	}

	paths, err := s.tablePaths(key)
	if err != nil {
		return nil, err
	}

	var rows []T
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fileRows, err := readFile(path, info, fromRow)
		if err != nil {
			return nil, err
		}
		rows = append(rows, fileRows...)
	}

	s.logger.Debug("csv table loaded", "table", key, "files", len(paths), "rows", len(rows))
	return rows, nil
}

func readFile[T any](path string, info core.DatasetInfo, fromRow func([]string, core.HeaderIndex) T) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	reader := csv.NewReader(prepareReader(f))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file", filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", filepath.Base(path), err)
	}

	idx := core.MakeHeaderIndex(header)
	if err := validateHeader(filepath.Base(path), idx, info); err != nil {
		return nil, err
	}

	var rows []T
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		if blankRow(record) {
			continue
		}
		rows = append(rows, fromRow(record, idx))
	}
	return rows, nil
}

// validateHeader checks that every required registered column is present.
// Extra columns are allowed and ignored.
func validateHeader(file string, idx core.HeaderIndex, info core.DatasetInfo) error {
	for _, col := range info.Columns {
		if !col.Required {
			continue
		}
		if _, ok := idx[strings.ToLower(col.Name)]; !ok {
			return fmt.Errorf("%s: %w: %s", file, ErrMissingColumn, col.Name)
		}
	}
	return nil
}

func blankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func storeFromRow(row []string, idx core.HeaderIndex) core.Store {
	return core.Store{
		StoreID:       core.Cell(row, idx, "store_id"),
		Name:          core.Cell(row, idx, "name"),
		Chain:         core.Cell(row, idx, "chain"),
		StreetAddress: core.Cell(row, idx, "street_address"),
		City:          core.Cell(row, idx, "city"),
		State:         core.Cell(row, idx, "state"),
		Zip:           core.Cell(row, idx, "zip"),
		Latitude:      core.ToDecimal(core.Cell(row, idx, "lat")),
		Longitude:     core.ToDecimal(core.Cell(row, idx, "lon")),
		CreatedAt:     core.ToTime(core.Cell(row, idx, "created_at")),
		UpdatedAt:     core.ToTime(core.Cell(row, idx, "updated_at")),
	}
}

func setFromRow(row []string, idx core.HeaderIndex) core.TransactionSet {
	return core.TransactionSet{
		TransactionSetID: core.Cell(row, idx, "transaction_set_id"),
		StoreID:          core.Cell(row, idx, "store_id"),
		DateTime:         core.ToTime(core.Cell(row, idx, "date_time")),
		Subtotal:         core.ToDecimal(core.Cell(row, idx, "subtotal_amount")),
		Tax:              core.ToDecimal(core.Cell(row, idx, "tax_amount")),
		GrandTotal:       core.ToDecimal(core.Cell(row, idx, "grand_total_amount")),
		PaymentType:      core.Cell(row, idx, "payment_type"),
		POSTypeID:        core.ToInt(core.Cell(row, idx, "pos_type_id")),
	}
}

func itemFromRow(row []string, idx core.HeaderIndex) core.TransactionItem {
	return core.TransactionItem{
		TransactionItemID: core.Cell(row, idx, "transaction_item_id"),
		TransactionSetID:  core.Cell(row, idx, "transaction_set_id"),
		StoreID:           core.Cell(row, idx, "store_id"),
		GTIN:              core.Cell(row, idx, "gtin"),
		ScanType:          core.Cell(row, idx, "scan_type"),
		UnitPrice:         core.ToDecimal(core.Cell(row, idx, "unit_price")),
		UnitQuantity:      core.ToDecimal(core.Cell(row, idx, "unit_quantity")),
		DiscountAmount:    core.ToDecimal(core.Cell(row, idx, "discount_amount")),
		GrandTotalAmount:  core.ToDecimal(core.Cell(row, idx, "grand_total_amount")),
		DateTime:          core.ToTime(core.Cell(row, idx, "date_time")),
	}
}

func productFromRow(row []string, idx core.HeaderIndex) core.Product {
	return core.Product{
		GTIN:        core.Cell(row, idx, "gtin"),
		Description: core.Cell(row, idx, "description"),
		Brand:       core.Cell(row, idx, "brand"),
		Category:    core.Cell(row, idx, "category"),
		Subcategory: core.Cell(row, idx, "subcategory"),
	}
}

func paymentFromRow(row []string, idx core.HeaderIndex) core.Payment {
	return core.Payment{
		PaymentID:        core.Cell(row, idx, "payment_id"),
		TransactionSetID: core.Cell(row, idx, "transaction_set_id"),
		StoreID:          core.Cell(row, idx, "store_id"),
		PaymentType:      core.Cell(row, idx, "payment_type"),
		Amount:           core.ToDecimal(core.Cell(row, idx, "amount")),
		DateTime:         core.ToTime(core.Cell(row, idx, "date_time")),
	}
}

func discountFromRow(row []string, idx core.HeaderIndex) core.Discount {
	return core.Discount{
		DiscountID:        core.Cell(row, idx, "discount_id"),
		TransactionItemID: core.Cell(row, idx, "transaction_item_id"),
		StoreID:           core.Cell(row, idx, "store_id"),
		Description:       core.Cell(row, idx, "description"),
		Amount:            core.ToDecimal(core.Cell(row, idx, "amount")),
		DateTime:          core.ToTime(core.Cell(row, idx, "date_time")),
	}
}
