package invoice

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser reads a decoded invoice CSV row by row
type CSVParser struct {
	delimiter  rune
	lazyQuotes bool
	encoding   string
	headers    []string
	currentRow int
	reader     *csv.Reader
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter forces the field delimiter instead of detecting it
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// WithLazyQuotes enables lazy quote handling
func WithLazyQuotes(lazy bool) ParserOption {
	return func(p *CSVParser) {
		p.lazyQuotes = lazy
	}
}

// NewCSVParser decodes data and prepares a reader with the detected delimiter
func NewCSVParser(data []byte, opts ...ParserOption) (*CSVParser, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	text, enc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode invoice: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyFile
	}

	parser := &CSVParser{lazyQuotes: true, encoding: enc}
	for _, opt := range opts {
		opt(parser)
	}
	if parser.delimiter == 0 {
		parser.delimiter = DetectDelimiter(text)
	}

	parser.reader = csv.NewReader(strings.NewReader(text))
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = parser.lazyQuotes
	parser.reader.TrimLeadingSpace = true
	parser.reader.FieldsPerRecord = -1

	return parser, nil
}

// Delimiter returns the delimiter in use
func (p *CSVParser) Delimiter() rune {
	return p.delimiter
}

// Encoding returns the detected source encoding
func (p *CSVParser) Encoding() string {
	return p.encoding
}

// ParseHeader reads the first non-blank record as the header row
func (p *CSVParser) ParseHeader() error {
	for {
		record, err := p.reader.Read()
		if err == io.EOF {
			return ErrMissingHeader
		}
		p.currentRow++
		if err != nil {
			return fmt.Errorf("failed to read header: %w", err)
		}
		if isBlank(record) {
			continue
		}
		p.headers = make([]string, len(record))
		for i, h := range record {
			p.headers[i] = strings.TrimSpace(h)
		}
		return nil
	}
}

// Headers returns the parsed header names
func (p *CSVParser) Headers() []string {
	return p.headers
}

// Row is one raw record with its 1-based line number
type Row struct {
	LineNumber int
	Fields     []string
}

// Field returns the trimmed value at idx, or "" when idx is absent
func (r Row) Field(idx int) string {
	if idx < 0 || idx >= len(r.Fields) {
		return ""
	}
	return strings.TrimSpace(r.Fields[idx])
}

// ReadRow reads the next record
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.currentRow++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}
	return &Row{LineNumber: p.currentRow, Fields: record}, nil
}

// ReadAllRows reads all remaining records, skipping blank ones
func (p *CSVParser) ReadAllRows() ([]Row, error) {
	var rows []Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, err
		}
		if isBlank(row.Fields) {
			continue
		}
		rows = append(rows, *row)
	}
	return rows, nil
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
