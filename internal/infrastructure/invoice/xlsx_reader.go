package invoice

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses the first sheet of a workbook with the same header rules as CSV
func ReadXLSX(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet: %w", err)
	}

	var headers []string
	var rows []Row
	for i, rec := range records {
		if isBlank(rec) {
			continue
		}
		if headers == nil {
			headers = rec
			continue
		}
		rows = append(rows, Row{LineNumber: i + 1, Fields: rec})
	}
	if headers == nil {
		return nil, ErrMissingHeader
	}
	return buildLines(&Result{Format: FormatXLSX, Encoding: EncodingUTF8}, headers, rows)
}
