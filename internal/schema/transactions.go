package schema

// TransactionSetColumns defines the expected columns of the basket-level
// transaction table.
var TransactionSetColumns = []Column{
	{Name: "transaction_set_id", Type: FieldText, Required: true},
	{Name: "store_id", Type: FieldText, Required: true},
	{Name: "date_time", Type: FieldDateTime, Required: true},
	{Name: "subtotal_amount", Type: FieldNumeric, Required: true},
	{Name: "tax_amount", Type: FieldNumeric, Required: true},
	{Name: "grand_total_amount", Type: FieldNumeric, Required: true},
	{Name: "payment_type", Type: FieldText, Required: false},
	{Name: "pos_type_id", Type: FieldInt, Required: false},
}

// TransactionItemColumns defines the expected columns of the line-item table.
// gtin is nullable: NONSCAN items (fuel, non-catalog) legitimately have none.
var TransactionItemColumns = []Column{
	{Name: "transaction_item_id", Type: FieldText, Required: true},
	{Name: "transaction_set_id", Type: FieldText, Required: true},
	{Name: "store_id", Type: FieldText, Required: true},
	{Name: "gtin", Type: FieldText, Required: false},
	{Name: "scan_type", Type: FieldText, Required: true},
	{Name: "unit_price", Type: FieldNumeric, Required: false},
	{Name: "unit_quantity", Type: FieldNumeric, Required: false},
	{Name: "discount_amount", Type: FieldNumeric, Required: false},
	{Name: "grand_total_amount", Type: FieldNumeric, Required: true},
	{Name: "date_time", Type: FieldDateTime, Required: true},
}

// PaymentColumns defines the expected columns of the payments table.
var PaymentColumns = []Column{
	{Name: "payment_id", Type: FieldText, Required: true},
	{Name: "transaction_set_id", Type: FieldText, Required: true},
	{Name: "store_id", Type: FieldText, Required: true},
	{Name: "payment_type", Type: FieldText, Required: false},
	{Name: "amount", Type: FieldNumeric, Required: false},
	{Name: "date_time", Type: FieldDateTime, Required: false},
}

// DiscountColumns defines the expected columns of the discounts table.
var DiscountColumns = []Column{
	{Name: "discount_id", Type: FieldText, Required: true},
	{Name: "transaction_item_id", Type: FieldText, Required: true},
	{Name: "store_id", Type: FieldText, Required: true},
	{Name: "description", Type: FieldText, Required: false},
	{Name: "amount", Type: FieldNumeric, Required: false},
	{Name: "date_time", Type: FieldDateTime, Required: false},
}
