package csvimport

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes surfaced to API clients for import failures.
const (
	ErrCodeImportUnknown      = "ERR_IMPORT_UNKNOWN"
	ErrCodeImportInvalidFile  = "ERR_IMPORT_INVALID_FILE"
	ErrCodeImportEmptyFile    = "ERR_IMPORT_EMPTY_FILE"
	ErrCodeImportFileTooLarge = "ERR_IMPORT_FILE_TOO_LARGE"

	ErrCodeImportInvalidEncoding     = "ERR_IMPORT_INVALID_ENCODING"
	ErrCodeImportUnsupportedEncoding = "ERR_IMPORT_UNSUPPORTED_ENCODING"

	ErrCodeImportCSVParsing    = "ERR_IMPORT_CSV_PARSING"
	ErrCodeImportMissingHeader = "ERR_IMPORT_MISSING_HEADER"
	ErrCodeImportInvalidHeader = "ERR_IMPORT_INVALID_HEADER"
	ErrCodeImportMalformedRow  = "ERR_IMPORT_MALFORMED_ROW"

	ErrCodeImportValidation        = "ERR_IMPORT_VALIDATION"
	ErrCodeImportRequiredField     = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportInvalidType       = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeImportInvalidFormat     = "ERR_IMPORT_INVALID_FORMAT"
	ErrCodeImportInvalidLength     = "ERR_IMPORT_INVALID_LENGTH"
	ErrCodeImportInvalidRange      = "ERR_IMPORT_INVALID_RANGE"
	ErrCodeImportPatternMismatch   = "ERR_IMPORT_PATTERN_MISMATCH"
	ErrCodeImportDuplicateInFile   = "ERR_IMPORT_DUPLICATE_IN_FILE"
	ErrCodeImportDuplicateInDB     = "ERR_IMPORT_DUPLICATE_IN_DB"
	ErrCodeImportReferenceNotFound = "ERR_IMPORT_REFERENCE_NOT_FOUND"
)

// Sentinel errors for file-level failures.
var (
	ErrEmptyFile             = errors.New("CSV file is empty")
	ErrInvalidEncoding       = errors.New("invalid file encoding")
	ErrMissingHeader         = errors.New("CSV file missing header row")
	ErrNoDataRows            = errors.New("CSV file contains no data rows")
	ErrFileTooLarge          = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedEntityType = errors.New("unsupported entity type")
)

// RowError pins a validation failure to a row and column.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a RowError without the offending value.
func NewRowError(row int, column, code, message string) RowError {
	return RowError{
		Row:     row,
		Column:  column,
		Code:    code,
		Message: message,
	}
}

// NewRowErrorWithValue creates a RowError carrying the rejected value.
func NewRowErrorWithValue(row int, column, code, message, value string) RowError {
	return RowError{
		Row:     row,
		Column:  column,
		Code:    code,
		Message: message,
		Value:   value,
	}
}

// ErrorCollection accumulates row errors up to a cap while still counting
// every occurrence, so a file with thousands of bad rows reports a bounded
// error list plus the true total.
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a collection retaining at most maxErrors
// entries. Non-positive caps fall back to 100.
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		errors:    make([]RowError, 0, maxErrors),
		maxErrors: maxErrors,
	}
}

// Add records an error, retaining it only while under the cap.
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddValidationError records a generic field validation failure.
func (ec *ErrorCollection) AddValidationError(row int, column, code, message string) {
	ec.Add(NewRowError(row, column, code, message))
}

// AddRequiredError records a missing required field.
func (ec *ErrorCollection) AddRequiredError(row int, column string) {
	ec.Add(NewRowError(row, column, ErrCodeImportRequiredField, fmt.Sprintf("field '%s' is required", column)))
}

// AddTypeError records a value that failed type conversion.
func (ec *ErrorCollection) AddTypeError(row int, column, expectedType, value string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportInvalidType,
		fmt.Sprintf("expected %s", expectedType), value))
}

// AddFormatError records a value in the wrong format.
func (ec *ErrorCollection) AddFormatError(row int, column, expectedFormat, value string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportInvalidFormat,
		fmt.Sprintf("invalid format, expected %s", expectedFormat), value))
}

// AddLengthError records a string length violation. A zero bound means that
// side is unconstrained.
func (ec *ErrorCollection) AddLengthError(row int, column string, minLen, maxLen int) {
	var msg string
	switch {
	case maxLen == 0 || maxLen == int(^uint(0)>>1):
		msg = fmt.Sprintf("length must be at least %d", minLen)
	case minLen == 0:
		msg = fmt.Sprintf("length must be at most %d", maxLen)
	default:
		msg = fmt.Sprintf("length must be between %d and %d", minLen, maxLen)
	}
	ec.Add(NewRowError(row, column, ErrCodeImportInvalidLength, msg))
}

// AddRangeError records a numeric value outside its allowed range.
func (ec *ErrorCollection) AddRangeError(row int, column string, min, max float64) {
	ec.Add(NewRowError(row, column, ErrCodeImportInvalidRange,
		fmt.Sprintf("value must be between %.2f and %.2f", min, max)))
}

// AddPatternError records a value rejected by a regexp rule.
func (ec *ErrorCollection) AddPatternError(row int, column, pattern, value string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportPatternMismatch,
		fmt.Sprintf("value does not match pattern '%s'", pattern), value))
}

// AddDuplicateError records a duplicate value, either within the file or
// against existing database rows.
func (ec *ErrorCollection) AddDuplicateError(row int, column, value string, inDB bool) {
	code := ErrCodeImportDuplicateInFile
	msg := fmt.Sprintf("duplicate value '%s' found in file", value)
	if inDB {
		code = ErrCodeImportDuplicateInDB
		msg = fmt.Sprintf("value '%s' already exists in database", value)
	}
	ec.Add(NewRowErrorWithValue(row, column, code, msg, value))
}

// AddReferenceError records a foreign reference that does not exist.
func (ec *ErrorCollection) AddReferenceError(row int, column, value, refType string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportReferenceNotFound,
		fmt.Sprintf("%s '%s' not found", refType, value), value))
}

// Errors returns the retained errors.
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// Count returns the number of retained errors.
func (ec *ErrorCollection) Count() int {
	return len(ec.errors)
}

// TotalCount returns all errors seen, including those dropped by the cap.
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors reports whether anything was recorded.
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated reports whether the cap dropped any errors.
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > ec.maxErrors
}

// Clear resets the collection for reuse.
func (ec *ErrorCollection) Clear() {
	ec.errors = ec.errors[:0]
	ec.totalCount = 0
}

// ErrorSummary counts retained errors by code.
func (ec *ErrorCollection) ErrorSummary() map[string]int {
	summary := make(map[string]int)
	for _, err := range ec.errors {
		summary[err.Code]++
	}
	return summary
}

func (ec *ErrorCollection) String() string {
	if !ec.HasErrors() {
		return "no errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) found", ec.totalCount))
	if ec.IsTruncated() {
		sb.WriteString(fmt.Sprintf(" (showing first %d)", ec.maxErrors))
	}
	sb.WriteString(":\n")
	for _, err := range ec.errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// ValidationResult is the client-facing outcome of validating one CSV file.
type ValidationResult struct {
	ValidationID string           `json:"validation_id"`
	TotalRows    int              `json:"total_rows"`
	ValidRows    int              `json:"valid_rows"`
	ErrorRows    int              `json:"error_rows"`
	Errors       []RowError       `json:"errors,omitempty"`
	Preview      []map[string]any `json:"preview,omitempty"`
	IsTruncated  bool             `json:"is_truncated,omitempty"`
	TotalErrors  int              `json:"total_errors,omitempty"`
}

// NewValidationResult creates an empty result for the given validation run.
func NewValidationResult(validationID string) *ValidationResult {
	return &ValidationResult{
		ValidationID: validationID,
		Errors:       make([]RowError, 0),
		Preview:      make([]map[string]any, 0),
	}
}

// SetCounts records the row totals.
func (vr *ValidationResult) SetCounts(total, valid, errorCount int) {
	vr.TotalRows = total
	vr.ValidRows = valid
	vr.ErrorRows = errorCount
}

// AddPreview keeps up to five preview rows.
func (vr *ValidationResult) AddPreview(row map[string]any) {
	if len(vr.Preview) < 5 {
		vr.Preview = append(vr.Preview, row)
	}
}

// SetErrors copies the errors and truncation state from a collection.
func (vr *ValidationResult) SetErrors(ec *ErrorCollection) {
	vr.Errors = ec.Errors()
	vr.IsTruncated = ec.IsTruncated()
	vr.TotalErrors = ec.TotalCount()
}

// IsValid reports whether every row passed.
func (vr *ValidationResult) IsValid() bool {
	return vr.ErrorRows == 0
}
