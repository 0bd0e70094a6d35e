package invoice

import "strings"

// Column is a logical invoice column
type Column string

const (
	ColumnEAN         Column = "ean"
	ColumnSupplierSKU Column = "supplier_sku"
	ColumnDescription Column = "description"
	ColumnQuantity    Column = "quantity"
	ColumnUnitPrice   Column = "unit_price"
)

var columnAliases = map[Column][]string{
	ColumnEAN: {
		"EAN", "EAN13", "EAN_13", "Čiarový kód", "Ciarovy kod", "Barcode", "Kód EAN",
		"Čárový kód", "Carovy kod",
	},
	ColumnSupplierSKU: {
		"SCM", "SČM", "SKU", "Supplier SKU", "Kat. číslo", "Katalógové číslo", "Katalogové číslo",
	},
	ColumnDescription: {
		"TITLE", "Názov", "Nazov", "Název", "Product name", "Name", "Description",
	},
	ColumnQuantity: {
		"QTY", "Mnozstvo", "Množstvo", "Množství", "Počet", "Pocet", "Počet kusov", "Kusy", "Quantity",
	},
	ColumnUnitPrice: {
		"PRICE", "Cena", "Unit price", "Jednotková cena",
	},
}

var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]Column {
	idx := make(map[string]Column)
	for col, aliases := range columnAliases {
		for _, a := range aliases {
			idx[NormalizeHeader(a)] = col
		}
	}
	return idx
}

// NormalizeHeader strips quotes, brackets and whitespace and lower-cases the name
func NormalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		switch r {
		case '"', '\'', '[', ']', '(', ')', '{', '}', '\uFEFF':
			continue
		}
		if isSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ColumnFor maps a raw header to its logical column
func ColumnFor(header string) (Column, bool) {
	col, ok := aliasIndex[NormalizeHeader(header)]
	return col, ok
}

// ColumnIndex maps logical columns to their position. The first header matching a column wins.
type ColumnIndex map[Column]int

// ResolveColumns builds a ColumnIndex from a header row
func ResolveColumns(headers []string) (ColumnIndex, error) {
	idx := make(ColumnIndex)
	for i, h := range headers {
		col, ok := ColumnFor(h)
		if !ok {
			continue
		}
		if _, seen := idx[col]; !seen {
			idx[col] = i
		}
	}
	if !idx.Has(ColumnQuantity) || (!idx.Has(ColumnEAN) && !idx.Has(ColumnSupplierSKU)) {
		return nil, ErrMissingColumns
	}
	return idx, nil
}

// Has reports whether the column is present
func (c ColumnIndex) Has(col Column) bool {
	_, ok := c[col]
	return ok
}

// Get returns the column position, or -1 when absent
func (c ColumnIndex) Get(col Column) int {
	if i, ok := c[col]; ok {
		return i
	}
	return -1
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', '\u00A0':
		return true
	}
	return false
}
