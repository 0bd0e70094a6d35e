package invoice

import (
	"path/filepath"
	"strings"

	"github.com/inventory-hub/backend/internal/domain/receiving"
	"github.com/shopspring/decimal"
)

// File formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// DefaultMaxErrors caps the number of row errors kept in a Result
const DefaultMaxErrors = 100

// Result is a parsed invoice
type Result struct {
	Format      string
	Encoding    string
	Delimiter   string
	Lines       []receiving.InvoiceLine
	SkippedRows int
	Errors      *ErrorCollection
}

// Valid reports whether every non-skipped row parsed cleanly
func (r *Result) Valid() bool {
	return !r.Errors.HasErrors()
}

// FormatFor picks the reader from the file name
func FormatFor(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", "":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Read parses an uploaded invoice file, choosing CSV or XLSX by extension
func Read(filename string, data []byte) (*Result, error) {
	format, err := FormatFor(filename)
	if err != nil {
		return nil, err
	}
	if format == FormatXLSX {
		return ReadXLSX(data)
	}
	return ReadCSV(data)
}

// ReadCSV parses a delimited invoice
func ReadCSV(data []byte, opts ...ParserOption) (*Result, error) {
	parser, err := NewCSVParser(data, opts...)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, err
	}
	result := &Result{
		Format:    FormatCSV,
		Encoding:  parser.Encoding(),
		Delimiter: string(parser.Delimiter()),
	}
	return buildLines(result, parser.Headers(), rows)
}

func buildLines(result *Result, headers []string, rows []Row) (*Result, error) {
	cols, err := ResolveColumns(headers)
	if err != nil {
		return nil, err
	}
	result.Errors = NewErrorCollection(DefaultMaxErrors)

	for _, row := range rows {
		ean := row.Field(cols.Get(ColumnEAN))
		sku := row.Field(cols.Get(ColumnSupplierSKU))
		if ean == "" && sku == "" {
			result.SkippedRows++
			continue
		}

		rawQty := row.Field(cols.Get(ColumnQuantity))
		if rawQty == "" {
			result.Errors.AddRequiredError(row.LineNumber, string(ColumnQuantity))
			continue
		}
		qty, err := ParseDecimal(rawQty)
		if err != nil {
			result.Errors.AddTypeError(row.LineNumber, string(ColumnQuantity), "decimal number", rawQty)
			continue
		}
		if !qty.IsPositive() {
			result.Errors.AddRangeError(row.LineNumber, string(ColumnQuantity), "quantity must be positive", rawQty)
			continue
		}

		line := receiving.InvoiceLine{
			EAN:         ean,
			SupplierSKU: sku,
			Description: row.Field(cols.Get(ColumnDescription)),
			OrderedQty:  qty,
		}
		if rawPrice := row.Field(cols.Get(ColumnUnitPrice)); rawPrice != "" {
			price, err := ParseDecimal(rawPrice)
			if err != nil {
				result.Errors.AddTypeError(row.LineNumber, string(ColumnUnitPrice), "decimal number", rawPrice)
				continue
			}
			if price.IsNegative() {
				result.Errors.AddRangeError(row.LineNumber, string(ColumnUnitPrice), "price cannot be negative", rawPrice)
				continue
			}
			line.UnitPrice = &price
		}
		result.Lines = append(result.Lines, line)
	}

	if len(result.Lines) == 0 && !result.Errors.HasErrors() {
		return nil, ErrNoDataRows
	}
	return result, nil
}

// ParseDecimal accepts both "1.5" and "1,5" and ignores grouping spaces
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.Map(func(r rune) rune {
		if isSpace(r) {
			return -1
		}
		return r
	}, raw)
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}
