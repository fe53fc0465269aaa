package schema

// StoreColumns defines the expected columns of the store master table.
// created_at and updated_at are nullable; the deduplicator treats missing
// values as oldest when picking the surviving record.
var StoreColumns = []Column{
	{Name: "store_id", Type: FieldText, Required: true},
	{Name: "name", Type: FieldText, Required: false},
	{Name: "chain", Type: FieldText, Required: false},
	{Name: "street_address", Type: FieldText, Required: true},
	{Name: "city", Type: FieldText, Required: true},
	{Name: "state", Type: FieldText, Required: false},
	{Name: "zip", Type: FieldText, Required: false},
	{Name: "lat", Type: FieldNumeric, Required: false},
	{Name: "lon", Type: FieldNumeric, Required: false},
	{Name: "created_at", Type: FieldDateTime, Required: false},
	{Name: "updated_at", Type: FieldDateTime, Required: false},
}

// ProductColumns defines the expected columns of the product master table,
// keyed by GTIN.
var ProductColumns = []Column{
	{Name: "gtin", Type: FieldText, Required: true},
	{Name: "description", Type: FieldText, Required: true},
	{Name: "brand", Type: FieldText, Required: false},
	{Name: "category", Type: FieldText, Required: true},
	{Name: "subcategory", Type: FieldText, Required: false},
}
