package dataset

// postgres.go loads the source tables from a live database.
//
// Numeric columns are selected as ::text and parsed with the same converters
// the CSV path uses, so both sources produce identical decimal values and
// identical null handling. Timestamps and integer ids scan natively.

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cstore-data/audit/internal/core"
)

// DBTX is the query surface the source needs.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads table snapshots from the warehouse schema.
type PostgresSource struct {
	db DBTX
}

// NewPostgresSource creates a source over the given connection pool.
func NewPostgresSource(db DBTX) *PostgresSource {
	return &PostgresSource{db: db}
}

const storesQuery = `
SELECT store_id::text, COALESCE(name, ''), COALESCE(chain, ''),
       COALESCE(street_address, ''), COALESCE(city, ''), COALESCE(state, ''),
       COALESCE(zip, ''), lat::text, lon::text, created_at, updated_at
  FROM stores
 ORDER BY store_id`

func (s *PostgresSource) Stores(ctx context.Context) ([]core.Store, error) {
	return queryRows(ctx, s.db, core.DatasetStores, storesQuery, func(rows pgx.Rows) (core.Store, error) {
		var (
			st       core.Store
			lat, lon *string
		)
		err := rows.Scan(&st.StoreID, &st.Name, &st.Chain, &st.StreetAddress,
			&st.City, &st.State, &st.Zip, &lat, &lon, &st.CreatedAt, &st.UpdatedAt)
		st.Latitude = textDecimal(lat)
		st.Longitude = textDecimal(lon)
		return st, err
	})
}

const setsQuery = `
SELECT transaction_set_id::text, store_id::text, date_time,
       subtotal_amount::text, tax_amount::text, grand_total_amount::text,
       COALESCE(payment_type, ''), pos_type_id
  FROM transaction_sets
 ORDER BY transaction_set_id`

func (s *PostgresSource) TransactionSets(ctx context.Context) ([]core.TransactionSet, error) {
	return queryRows(ctx, s.db, core.DatasetTransactionSets, setsQuery, func(rows pgx.Rows) (core.TransactionSet, error) {
		var (
			set                   core.TransactionSet
			subtotal, tax, gtotal *string
		)
		err := rows.Scan(&set.TransactionSetID, &set.StoreID, &set.DateTime,
			&subtotal, &tax, &gtotal, &set.PaymentType, &set.POSTypeID)
		set.Subtotal = textDecimal(subtotal)
		set.Tax = textDecimal(tax)
		set.GrandTotal = textDecimal(gtotal)
		return set, err
	})
}

const itemsQuery = `
SELECT transaction_item_id::text, transaction_set_id::text, store_id::text,
       COALESCE(gtin, ''), COALESCE(scan_type, ''),
       unit_price::text, unit_quantity::text, discount_amount::text,
       grand_total_amount::text, date_time
  FROM transaction_items
 ORDER BY transaction_item_id`

func (s *PostgresSource) TransactionItems(ctx context.Context) ([]core.TransactionItem, error) {
	return queryRows(ctx, s.db, core.DatasetTransactionItems, itemsQuery, func(rows pgx.Rows) (core.TransactionItem, error) {
		var (
			item                        core.TransactionItem
			price, qty, discount, total *string
		)
		err := rows.Scan(&item.TransactionItemID, &item.TransactionSetID, &item.StoreID,
			&item.GTIN, &item.ScanType, &price, &qty, &discount, &total, &item.DateTime)
		item.UnitPrice = textDecimal(price)
		item.UnitQuantity = textDecimal(qty)
		item.DiscountAmount = textDecimal(discount)
		item.GrandTotalAmount = textDecimal(total)
		return item, err
	})
}

const productsQuery = `
SELECT gtin::text, COALESCE(description, ''), COALESCE(brand, ''),
       COALESCE(category, ''), COALESCE(subcategory, '')
  FROM product_master
 ORDER BY gtin`

func (s *PostgresSource) Products(ctx context.Context) ([]core.Product, error) {
	return queryRows(ctx, s.db, core.DatasetProducts, productsQuery, func(rows pgx.Rows) (core.Product, error) {
		var p core.Product
		err := rows.Scan(&p.GTIN, &p.Description, &p.Brand, &p.Category, &p.Subcategory)
		return p, err
	})
}

const paymentsQuery = `
SELECT payment_id::text, transaction_set_id::text, store_id::text,
       COALESCE(payment_type, ''), amount::text, date_time
  FROM payments
 ORDER BY payment_id`

func (s *PostgresSource) Payments(ctx context.Context) ([]core.Payment, error) {
	return queryRows(ctx, s.db, core.DatasetPayments, paymentsQuery, func(rows pgx.Rows) (core.Payment, error) {
		var (
			p      core.Payment
			amount *string
		)
		err := rows.Scan(&p.PaymentID, &p.TransactionSetID, &p.StoreID,
			&p.PaymentType, &amount, &p.DateTime)
		p.Amount = textDecimal(amount)
		return p, err
	})
}

const discountsQuery = `
SELECT discount_id::text, transaction_item_id::text, store_id::text,
       COALESCE(description, ''), amount::text, date_time
  FROM discounts
 ORDER BY discount_id`

func (s *PostgresSource) Discounts(ctx context.Context) ([]core.Discount, error) {
	return queryRows(ctx, s.db, core.DatasetDiscounts, discountsQuery, func(rows pgx.Rows) (core.Discount, error) {
		var (
			d      core.Discount
			amount *string
		)
		err := rows.Scan(&d.DiscountID, &d.TransactionItemID, &d.StoreID,
			&d.Description, &amount, &d.DateTime)
		d.Amount = textDecimal(amount)
		return d, err
	})
}

// queryRows runs one table query and scans every row with scan.
func queryRows[T any](ctx context.Context, db DBTX, key, sql string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", key, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", key, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return out, nil
}

// textDecimal parses a numeric column selected as ::text.
func textDecimal(s *string) decimal.NullDecimal {
	if s == nil {
		return decimal.NullDecimal{}
	}
	return core.ToDecimal(*s)
}

// compile-time interface checks
var (
	_ core.Source = (*PostgresSource)(nil)
	_ core.Source = (*CSVSource)(nil)
	_ core.Source = (*CachedSource)(nil)
)
