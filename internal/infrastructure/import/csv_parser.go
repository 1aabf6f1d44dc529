package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// CSVParser reads header-mapped rows from a CSV stream. The input must be
// UTF-8; a leading BOM is stripped.
type CSVParser struct {
	delimiter  rune
	lazyQuotes bool
	trimSpace  bool
	headerMap  map[string]int
	headers    []string
	currentRow int
	totalRows  int
	reader     *csv.Reader
	bufReader  *bufio.Reader
}

// ParserOption configures a CSVParser.
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter. Comma by default.
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// WithLazyQuotes tolerates quotes appearing inside unquoted fields.
func WithLazyQuotes(lazy bool) ParserOption {
	return func(p *CSVParser) {
		p.lazyQuotes = lazy
	}
}

// WithTrimSpace trims surrounding whitespace from headers and values.
func WithTrimSpace(trim bool) ParserOption {
	return func(p *CSVParser) {
		p.trimSpace = trim
	}
}

// NewCSVParser wraps a reader, strips any UTF-8 BOM, and verifies the
// encoding before handing the stream to encoding/csv.
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	parser := &CSVParser{
		delimiter:  ',',
		lazyQuotes: true,
		trimSpace:  true,
		headerMap:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(parser)
	}

	parser.bufReader = bufio.NewReader(r)
	if err := stripBOM(parser.bufReader); err != nil {
		return nil, err
	}
	if err := checkUTF8(parser.bufReader); err != nil {
		return nil, err
	}

	parser.reader = csv.NewReader(parser.bufReader)
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = parser.lazyQuotes
	parser.reader.TrimLeadingSpace = parser.trimSpace
	// Row width is validated per entity, not by the csv reader
	parser.reader.FieldsPerRecord = -1

	return parser, nil
}

// stripBOM discards a leading UTF-8 byte order mark if present.
func stripBOM(r *bufio.Reader) error {
	head, err := r.Peek(3)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = r.Discard(3)
	}
	return nil
}

// checkUTF8 peeks the first chunk of the stream and rejects non-UTF-8 input.
func checkUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	head, err := r.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(head) == 0 {
		return ErrEmptyFile
	}
	if !utf8.Valid(head) {
		return ErrInvalidEncoding
	}
	return nil
}

// ParseHeader consumes the header row and builds the column lookup.
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		if p.trimSpace {
			h = strings.TrimSpace(h)
		}
		p.headers[i] = h
		p.headerMap[h] = i
	}

	if len(p.headers) == 0 {
		return ErrMissingHeader
	}

	p.currentRow = 1
	return nil
}

// Headers returns the parsed header names in column order.
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HeaderMap returns header name to column index.
func (p *CSVParser) HeaderMap() map[string]int {
	return p.headerMap
}

// HasHeader reports whether a column with this header exists.
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.headerMap[name]
	return ok
}

// Row is one parsed CSV data row keyed by header name. LineNumber counts the
// header as line 1.
type Row struct {
	LineNumber int
	Data       map[string]string
	RawFields  []string
}

// Get returns the value for a column by header name.
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// GetOrDefault returns the column value, or defaultVal when missing or empty.
func (r *Row) GetOrDefault(header, defaultVal string) string {
	if val, ok := r.Data[header]; ok && val != "" {
		return val
	}
	return defaultVal
}

// IsEmpty reports whether every value in the row is empty.
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next data row. Returns io.EOF at the end of the stream.
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		p.currentRow++
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}

	p.currentRow++
	p.totalRows++

	row := &Row{
		LineNumber: p.currentRow,
		Data:       make(map[string]string, len(p.headers)),
		RawFields:  record,
	}

	for i, header := range p.headers {
		var value string
		if i < len(record) {
			value = record[i]
			if p.trimSpace {
				value = strings.TrimSpace(value)
			}
		}
		row.Data[header] = value
	}

	return row, nil
}

// ReadAllRows drains the remaining rows, skipping fully empty ones.
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
}

// CurrentRow returns the 1-indexed line number of the last row read.
func (p *CSVParser) CurrentRow() int {
	return p.currentRow
}

// TotalRows returns the number of data rows read so far.
func (p *CSVParser) TotalRows() int {
	return p.totalRows
}

// ParseFromBytes creates a parser over an in-memory CSV payload.
func ParseFromBytes(data []byte, opts ...ParserOption) (*CSVParser, error) {
	return NewCSVParser(bytes.NewReader(data), opts...)
}

// ValidateHeaders returns the required headers that are absent from the file.
func (p *CSVParser) ValidateHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// GetColumnIndex returns the index of a column by name.
func (p *CSVParser) GetColumnIndex(name string) (int, bool) {
	idx, ok := p.headerMap[name]
	return idx, ok
}
