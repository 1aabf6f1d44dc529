package csvimport

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType names the expected type of a CSV column.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeDate    FieldType = "date"
	TypeEmail   FieldType = "email"
	TypeBool    FieldType = "bool"
	TypeUUID    FieldType = "uuid"
)

// FieldRule holds every constraint applied to one column.
type FieldRule struct {
	Column      string
	Type        FieldType
	Required    bool
	MinLength   int
	MaxLength   int
	MinValue    *decimal.Decimal
	MaxValue    *decimal.Decimal
	Pattern     *regexp.Regexp
	PatternDesc string
	DateFormat  string
	Unique      bool
	Reference   string // referenced entity type, e.g. "category" or "seller"
	CustomFunc  func(value string) error
}

// FieldRuleBuilder assembles a FieldRule fluently. Import definitions read
// like Field("ceiling_price").Decimal().Required().Build().
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for the named column, defaulting to a string field
// with ISO dates.
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{
		rule: FieldRule{
			Column:     column,
			Type:       TypeString,
			DateFormat: "2006-01-02",
		},
	}
}

func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

func (b *FieldRuleBuilder) String() *FieldRuleBuilder {
	b.rule.Type = TypeString
	return b
}

func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

func (b *FieldRuleBuilder) Date() *FieldRuleBuilder {
	b.rule.Type = TypeDate
	return b
}

// DateFormat overrides the layout used when the field type is date.
func (b *FieldRuleBuilder) DateFormat(format string) *FieldRuleBuilder {
	b.rule.DateFormat = format
	return b
}

func (b *FieldRuleBuilder) Email() *FieldRuleBuilder {
	b.rule.Type = TypeEmail
	return b
}

func (b *FieldRuleBuilder) Bool() *FieldRuleBuilder {
	b.rule.Type = TypeBool
	return b
}

func (b *FieldRuleBuilder) UUID() *FieldRuleBuilder {
	b.rule.Type = TypeUUID
	return b
}

func (b *FieldRuleBuilder) MinLength(n int) *FieldRuleBuilder {
	b.rule.MinLength = n
	return b
}

func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// Length bounds the value length on both sides.
func (b *FieldRuleBuilder) Length(min, max int) *FieldRuleBuilder {
	b.rule.MinLength = min
	b.rule.MaxLength = max
	return b
}

func (b *FieldRuleBuilder) MinValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

func (b *FieldRuleBuilder) MaxValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MaxValue = &v
	return b
}

// Range bounds a numeric value on both sides.
func (b *FieldRuleBuilder) Range(min, max decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &min
	b.rule.MaxValue = &max
	return b
}

// Pattern requires the value to match the regex. The description appears in
// error messages shown to the operator.
func (b *FieldRuleBuilder) Pattern(pattern, description string) *FieldRuleBuilder {
	b.rule.Pattern = regexp.MustCompile(pattern)
	b.rule.PatternDesc = description
	return b
}

// Unique rejects values that repeat within the same file.
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Reference marks the column as a lookup into another entity.
func (b *FieldRuleBuilder) Reference(refType string) *FieldRuleBuilder {
	b.rule.Reference = refType
	return b
}

// Custom attaches an arbitrary validation function.
func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator applies the configured rules row by row, accumulating
// failures in an ErrorCollection. In-file uniqueness is tracked across rows,
// so a validator instance covers exactly one file.
type FieldValidator struct {
	rules     map[string]FieldRule
	seenInCol map[string]map[string]int // column -> value -> line first seen
	errors    *ErrorCollection
}

// NewFieldValidator indexes the rules by column.
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	ruleMap := make(map[string]FieldRule, len(rules))
	for _, r := range rules {
		ruleMap[r.Column] = r
	}

	return &FieldValidator{
		rules:     ruleMap,
		seenInCol: make(map[string]map[string]int),
		errors:    NewErrorCollection(maxErrors),
	}
}

// ValidateRow checks every ruled column of the row and reports whether all
// of them passed.
func (v *FieldValidator) ValidateRow(row *Row) bool {
	ok := true
	for column, rule := range v.rules {
		if !v.checkField(row, column, rule) {
			ok = false
		}
	}
	return ok
}

func (v *FieldValidator) checkField(row *Row, column string, rule FieldRule) bool {
	value := row.Get(column)

	if value == "" {
		if rule.Required {
			v.errors.AddRequiredError(row.LineNumber, column)
			return false
		}
		// Empty optional fields skip every other constraint.
		return true
	}

	if err := checkType(value, rule.Type, rule.DateFormat); err != nil {
		v.errors.AddTypeError(row.LineNumber, column, string(rule.Type), value)
		return false
	}

	ok := true

	if rule.MaxLength > 0 && len(value) > rule.MaxLength {
		v.errors.AddLengthError(row.LineNumber, column, rule.MinLength, rule.MaxLength)
		ok = false
	}
	if rule.MinLength > 0 && len(value) < rule.MinLength {
		v.errors.AddLengthError(row.LineNumber, column, rule.MinLength, rule.MaxLength)
		ok = false
	}

	if rule.Type == TypeInt || rule.Type == TypeDecimal {
		if err := checkRange(value, rule.MinValue, rule.MaxValue); err != nil {
			if rule.MinValue != nil && rule.MaxValue != nil {
				minFloat, _ := rule.MinValue.Float64()
				maxFloat, _ := rule.MaxValue.Float64()
				v.errors.AddRangeError(row.LineNumber, column, minFloat, maxFloat)
			}
			ok = false
		}
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		v.errors.AddPatternError(row.LineNumber, column, rule.PatternDesc, value)
		ok = false
	}

	if rule.Unique {
		if v.seenInCol[column] == nil {
			v.seenInCol[column] = make(map[string]int)
		}
		if firstRow, exists := v.seenInCol[column][value]; exists {
			v.errors.Add(NewRowErrorWithValue(row.LineNumber, column, ErrCodeImportDuplicateInFile,
				fmt.Sprintf("duplicate value '%s' (first seen in row %d)", value, firstRow), value))
			ok = false
		} else {
			v.seenInCol[column][value] = row.LineNumber
		}
	}

	if rule.CustomFunc != nil {
		if err := rule.CustomFunc(value); err != nil {
			v.errors.AddValidationError(row.LineNumber, column, ErrCodeImportValidation, err.Error())
			ok = false
		}
	}

	return ok
}

func checkType(value string, fieldType FieldType, dateFormat string) error {
	switch fieldType {
	case TypeString:
		return nil
	case TypeInt:
		_, err := strconv.ParseInt(value, 10, 64)
		return err
	case TypeDecimal:
		_, err := decimal.NewFromString(value)
		return err
	case TypeDate:
		_, err := time.Parse(dateFormat, value)
		return err
	case TypeEmail:
		_, err := mail.ParseAddress(value)
		return err
	case TypeBool:
		switch strings.ToLower(value) {
		case "true", "false", "1", "0", "yes", "no", "y", "n":
			return nil
		}
		return fmt.Errorf("invalid boolean value: %s", value)
	case TypeUUID:
		return checkUUIDFormat(value)
	}
	return nil
}

// checkUUIDFormat verifies the canonical 8-4-4-4-12 hex layout.
func checkUUIDFormat(s string) error {
	if len(s) != 36 {
		return fmt.Errorf("invalid UUID length")
	}
	if s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return fmt.Errorf("invalid UUID format")
	}
	for i, c := range s {
		if i == 8 || i == 13 || i == 18 || i == 23 {
			continue
		}
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return fmt.Errorf("invalid UUID character")
		}
	}
	return nil
}

func checkRange(value string, min, max *decimal.Decimal) error {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return err
	}

	if min != nil && d.LessThan(*min) {
		return fmt.Errorf("value %s is less than minimum %s", value, min.String())
	}
	if max != nil && d.GreaterThan(*max) {
		return fmt.Errorf("value %s is greater than maximum %s", value, max.String())
	}
	return nil
}

// Errors returns the accumulated failures.
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}

// Reset clears accumulated errors and the in-file uniqueness state so the
// validator can take another file.
func (v *FieldValidator) Reset() {
	v.seenInCol = make(map[string]map[string]int)
	v.errors.Clear()
}

// ReferenceValidator checks that referenced entities exist, memoizing
// lookups per reference type.
type ReferenceValidator struct {
	cache      map[string]map[string]bool // refType -> value -> exists
	lookupFunc func(refType, value string) (bool, error)
	errors     *ErrorCollection
}

// NewReferenceValidator creates a validator backed by the given lookup.
func NewReferenceValidator(lookupFunc func(refType, value string) (bool, error), maxErrors int) *ReferenceValidator {
	return &ReferenceValidator{
		cache:      make(map[string]map[string]bool),
		lookupFunc: lookupFunc,
		errors:     NewErrorCollection(maxErrors),
	}
}

// PreloadReferences warms the cache for a batch of values, letting callers
// resolve an entire file's references in one pass over the store.
func (v *ReferenceValidator) PreloadReferences(refType string, values []string) error {
	if v.cache[refType] == nil {
		v.cache[refType] = make(map[string]bool)
	}

	for _, value := range values {
		exists, err := v.lookupFunc(refType, value)
		if err != nil {
			return err
		}
		v.cache[refType][value] = exists
	}

	return nil
}

// ValidateReference checks one reference, consulting the cache before the
// lookup. Empty values pass; required-ness is the FieldValidator's job.
func (v *ReferenceValidator) ValidateReference(row int, column, refType, value string) bool {
	if value == "" {
		return true
	}

	if cached, ok := v.cache[refType][value]; ok {
		if !cached {
			v.errors.AddReferenceError(row, column, value, refType)
			return false
		}
		return true
	}

	exists, err := v.lookupFunc(refType, value)
	if err != nil {
		v.errors.AddValidationError(row, column, ErrCodeImportValidation,
			fmt.Sprintf("error checking %s reference: %v", refType, err))
		return false
	}

	if v.cache[refType] == nil {
		v.cache[refType] = make(map[string]bool)
	}
	v.cache[refType][value] = exists

	if !exists {
		v.errors.AddReferenceError(row, column, value, refType)
		return false
	}

	return true
}

// Errors returns the accumulated failures.
func (v *ReferenceValidator) Errors() *ErrorCollection {
	return v.errors
}

// Reset drops the cache and accumulated errors.
func (v *ReferenceValidator) Reset() {
	v.cache = make(map[string]map[string]bool)
	v.errors.Clear()
}

// UniquenessValidator checks values against what is already persisted,
// complementing the in-file uniqueness done by FieldValidator.
type UniquenessValidator struct {
	lookupFunc func(entityType, field, value string) (bool, error)
	errors     *ErrorCollection
}

// NewUniquenessValidator creates a validator backed by the given lookup.
func NewUniquenessValidator(lookupFunc func(entityType, field, value string) (bool, error), maxErrors int) *UniquenessValidator {
	return &UniquenessValidator{
		lookupFunc: lookupFunc,
		errors:     NewErrorCollection(maxErrors),
	}
}

// ValidateUnique reports whether the value is absent from the store.
func (v *UniquenessValidator) ValidateUnique(row int, column, entityType, value string) bool {
	if value == "" {
		return true
	}

	exists, err := v.lookupFunc(entityType, column, value)
	if err != nil {
		v.errors.AddValidationError(row, column, ErrCodeImportValidation,
			fmt.Sprintf("error checking uniqueness: %v", err))
		return false
	}

	if exists {
		v.errors.AddDuplicateError(row, column, value, true)
		return false
	}

	return true
}

// Errors returns the accumulated failures.
func (v *UniquenessValidator) Errors() *ErrorCollection {
	return v.errors
}
