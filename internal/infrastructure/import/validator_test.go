package csvimport

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowAt(line int, data map[string]string) *Row {
	return &Row{LineNumber: line, Data: data}
}

func singleRuleValidator(rule FieldRule) *FieldValidator {
	return NewFieldValidator([]FieldRule{rule}, 10)
}

func TestFieldRuleBuilder(t *testing.T) {
	t.Run("full ceiling price rule", func(t *testing.T) {
		minVal := decimal.NewFromInt(0)
		maxVal := decimal.NewFromInt(1000)

		rule := Field("ceiling_price").
			Required().
			Decimal().
			MinValue(minVal).
			MaxValue(maxVal).
			Unique().
			Reference("price_ceiling").
			Build()

		assert.Equal(t, "ceiling_price", rule.Column)
		assert.True(t, rule.Required)
		assert.Equal(t, TypeDecimal, rule.Type)
		assert.Equal(t, &minVal, rule.MinValue)
		assert.Equal(t, &maxVal, rule.MaxValue)
		assert.True(t, rule.Unique)
		assert.Equal(t, "price_ceiling", rule.Reference)
	})

	t.Run("length bounds", func(t *testing.T) {
		rule := Field("product_code").Required().String().Length(1, 50).Build()

		assert.Equal(t, TypeString, rule.Type)
		assert.Equal(t, 1, rule.MinLength)
		assert.Equal(t, 50, rule.MaxLength)
	})

	t.Run("pattern with description", func(t *testing.T) {
		rule := Field("phone").Pattern(`^\+?[\d\-]+$`, "phone number").Build()

		assert.NotNil(t, rule.Pattern)
		assert.Equal(t, "phone number", rule.PatternDesc)
	})

	t.Run("date format override", func(t *testing.T) {
		rule := Field("effective_from").Date().DateFormat("02/01/2006").Build()

		assert.Equal(t, TypeDate, rule.Type)
		assert.Equal(t, "02/01/2006", rule.DateFormat)
	})

	t.Run("type setters", func(t *testing.T) {
		cases := map[FieldType]*FieldRuleBuilder{
			TypeString:  Field("f").String(),
			TypeInt:     Field("f").Int(),
			TypeDecimal: Field("f").Decimal(),
			TypeDate:    Field("f").Date(),
			TypeEmail:   Field("f").Email(),
			TypeBool:    Field("f").Bool(),
			TypeUUID:    Field("f").UUID(),
		}

		for want, builder := range cases {
			assert.Equal(t, want, builder.Build().Type)
		}
	})

	t.Run("custom function attaches", func(t *testing.T) {
		rule := Field("custom").Custom(func(string) error { return nil }).Build()
		assert.NotNil(t, rule.CustomFunc)
	})
}

func TestFieldValidator_Required(t *testing.T) {
	validator := NewFieldValidator([]FieldRule{
		Field("product_code").Required().Build(),
		Field("product_name").Required().Build(),
		Field("notes").Build(),
	}, 10)

	ok := validator.ValidateRow(rowAt(2, map[string]string{
		"product_code": "RICE-5KG", "product_name": "Rice 5kg", "notes": "",
	}))
	assert.True(t, ok, "empty optional column must not fail the row")

	ok = validator.ValidateRow(rowAt(3, map[string]string{
		"product_code": "", "product_name": "Rice 5kg",
	}))
	assert.False(t, ok)

	errs := validator.Errors().Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeImportRequiredField, errs[0].Code)
	assert.Equal(t, "product_code", errs[0].Column)
}

func TestFieldValidator_Types(t *testing.T) {
	cases := []struct {
		name    string
		rule    FieldRule
		column  string
		accepts []string
		rejects []string
	}{
		{
			name:    "int",
			rule:    Field("quantity").Int().Build(),
			column:  "quantity",
			accepts: []string{"100", "-3", "0"},
			rejects: []string{"abc", "1.5"},
		},
		{
			name:    "decimal",
			rule:    Field("ceiling_price").Decimal().Build(),
			column:  "ceiling_price",
			accepts: []string{"100.50", "0.01", "-50.00", "1000000.999"},
			rejects: []string{"not-a-number"},
		},
		{
			name:    "date",
			rule:    Field("effective_from").Date().DateFormat("2006-01-02").Build(),
			column:  "effective_from",
			accepts: []string{"2026-08-25"},
			rejects: []string{"25/08/2026"},
		},
		{
			name:    "email",
			rule:    Field("contact_email").Email().Build(),
			column:  "contact_email",
			accepts: []string{"owner@rizq-traders.example"},
			rejects: []string{"not-an-email"},
		},
		{
			name:    "bool",
			rule:    Field("active").Bool().Build(),
			column:  "active",
			accepts: []string{"true", "false", "1", "0", "yes", "no", "y", "n", "TRUE", "FALSE"},
			rejects: []string{"maybe"},
		},
		{
			name:    "uuid",
			rule:    Field("id").UUID().Build(),
			column:  "id",
			accepts: []string{"550e8400-e29b-41d4-a716-446655440000"},
			rejects: []string{"not-a-uuid", "550e8400-e29b-41d4"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			validator := singleRuleValidator(tc.rule)

			for _, val := range tc.accepts {
				validator.Reset()
				ok := validator.ValidateRow(rowAt(2, map[string]string{tc.column: val}))
				assert.True(t, ok, "should accept %q", val)
			}
			for _, val := range tc.rejects {
				validator.Reset()
				ok := validator.ValidateRow(rowAt(2, map[string]string{tc.column: val}))
				assert.False(t, ok, "should reject %q", val)
			}
		})
	}
}

func TestFieldValidator_Length(t *testing.T) {
	validator := singleRuleValidator(Field("product_code").MinLength(3).MaxLength(10).Build())

	assert.False(t, validator.ValidateRow(rowAt(2, map[string]string{"product_code": "AB"})))

	validator.Reset()
	assert.False(t, validator.ValidateRow(rowAt(3, map[string]string{"product_code": "ABCDEFGHIJK"})))

	validator.Reset()
	assert.True(t, validator.ValidateRow(rowAt(4, map[string]string{"product_code": "OIL-1L"})))
}

func TestFieldValidator_Range(t *testing.T) {
	validator := singleRuleValidator(
		Field("quantity").Decimal().
			Range(decimal.NewFromInt(0), decimal.NewFromInt(100)).
			Build())

	assert.False(t, validator.ValidateRow(rowAt(2, map[string]string{"quantity": "-1"})))

	validator.Reset()
	assert.False(t, validator.ValidateRow(rowAt(3, map[string]string{"quantity": "101"})))

	validator.Reset()
	assert.True(t, validator.ValidateRow(rowAt(4, map[string]string{"quantity": "50"})))
}

func TestFieldValidator_Pattern(t *testing.T) {
	validator := singleRuleValidator(Field("phone").Pattern(`^[\d\-]+$`, "phone number").Build())

	assert.True(t, validator.ValidateRow(rowAt(2, map[string]string{"phone": "021-456-7890"})))
	assert.False(t, validator.ValidateRow(rowAt(3, map[string]string{"phone": "abc-def-ghij"})))
}

func TestFieldValidator_UniqueInFile(t *testing.T) {
	validator := singleRuleValidator(Field("product_code").Unique().Build())

	assert.True(t, validator.ValidateRow(rowAt(2, map[string]string{"product_code": "RICE-5KG"})))
	assert.True(t, validator.ValidateRow(rowAt(3, map[string]string{"product_code": "OIL-1L"})))
	assert.False(t, validator.ValidateRow(rowAt(4, map[string]string{"product_code": "RICE-5KG"})))

	codes := make([]string, 0)
	for _, err := range validator.Errors().Errors() {
		codes = append(codes, err.Code)
	}
	assert.Contains(t, codes, ErrCodeImportDuplicateInFile)
}

func TestFieldValidator_Custom(t *testing.T) {
	validator := singleRuleValidator(Field("product_code").Custom(func(value string) error {
		if value != "" && value[0] != 'R' {
			return fmt.Errorf("must start with R")
		}
		return nil
	}).Build())

	assert.True(t, validator.ValidateRow(rowAt(2, map[string]string{"product_code": "RICE-5KG"})))
	assert.False(t, validator.ValidateRow(rowAt(3, map[string]string{"product_code": "OIL-1L"})))
}

func TestFieldValidator_Reset(t *testing.T) {
	validator := singleRuleValidator(Field("product_code").Unique().Build())

	validator.ValidateRow(rowAt(2, map[string]string{"product_code": "RICE-5KG"}))
	validator.Reset()

	// The uniqueness window is per file, so the same code passes again.
	assert.True(t, validator.ValidateRow(rowAt(3, map[string]string{"product_code": "RICE-5KG"})))
	assert.False(t, validator.Errors().HasErrors())
}

func TestReferenceValidator(t *testing.T) {
	t.Run("existing and missing references", func(t *testing.T) {
		known := map[string][]string{
			"category": {"CAT-001", "CAT-002"},
			"seller":   {"SL-2026-0001"},
		}
		lookupFn := func(refType, value string) (bool, error) {
			for _, v := range known[refType] {
				if v == value {
					return true, nil
				}
			}
			return false, nil
		}

		validator := NewReferenceValidator(lookupFn, 10)

		assert.True(t, validator.ValidateReference(2, "category_id", "category", "CAT-001"))
		assert.False(t, validator.ValidateReference(3, "category_id", "category", "CAT-999"))

		errs := validator.Errors().Errors()
		require.Len(t, errs, 1)
		assert.Equal(t, ErrCodeImportReferenceNotFound, errs[0].Code)
	})

	t.Run("repeated values hit the cache", func(t *testing.T) {
		callCount := 0
		validator := NewReferenceValidator(func(refType, value string) (bool, error) {
			callCount++
			return value == "SL-2026-0001", nil
		}, 10)

		validator.ValidateReference(2, "seller_code", "seller", "SL-2026-0001")
		assert.Equal(t, 1, callCount)

		validator.ValidateReference(3, "seller_code", "seller", "SL-2026-0001")
		assert.Equal(t, 1, callCount)

		validator.ValidateReference(4, "seller_code", "seller", "SL-9999-0000")
		assert.Equal(t, 2, callCount)
	})

	t.Run("empty value never triggers a lookup", func(t *testing.T) {
		callCount := 0
		validator := NewReferenceValidator(func(string, string) (bool, error) {
			callCount++
			return true, nil
		}, 10)

		assert.True(t, validator.ValidateReference(2, "seller_code", "seller", ""))
		assert.Equal(t, 0, callCount)
	})

	t.Run("preload warms the cache", func(t *testing.T) {
		validator := NewReferenceValidator(func(refType, value string) (bool, error) {
			return value == "CAT-001" || value == "CAT-002", nil
		}, 10)

		require.NoError(t, validator.PreloadReferences("category", []string{"CAT-001", "CAT-002", "CAT-999"}))

		assert.True(t, validator.ValidateReference(2, "category_id", "category", "CAT-001"))
		assert.True(t, validator.ValidateReference(3, "category_id", "category", "CAT-002"))
		assert.False(t, validator.ValidateReference(4, "category_id", "category", "CAT-999"))
	})

	t.Run("reset drops the cache", func(t *testing.T) {
		callCount := 0
		validator := NewReferenceValidator(func(string, string) (bool, error) {
			callCount++
			return true, nil
		}, 10)

		validator.ValidateReference(2, "seller_code", "seller", "SL-2026-0001")
		assert.Equal(t, 1, callCount)

		validator.Reset()

		validator.ValidateReference(3, "seller_code", "seller", "SL-2026-0001")
		assert.Equal(t, 2, callCount)
	})
}

func TestUniquenessValidator(t *testing.T) {
	t.Run("absent value passes", func(t *testing.T) {
		validator := NewUniquenessValidator(func(string, string, string) (bool, error) {
			return false, nil
		}, 10)

		assert.True(t, validator.ValidateUnique(2, "product_code", "price_ceilings", "RICE-5KG"))
	})

	t.Run("persisted value fails", func(t *testing.T) {
		validator := NewUniquenessValidator(func(entityType, field, value string) (bool, error) {
			return value == "RICE-5KG", nil
		}, 10)

		assert.False(t, validator.ValidateUnique(2, "product_code", "price_ceilings", "RICE-5KG"))

		errs := validator.Errors().Errors()
		require.Len(t, errs, 1)
		assert.Equal(t, ErrCodeImportDuplicateInDB, errs[0].Code)
	})

	t.Run("empty value skipped", func(t *testing.T) {
		validator := NewUniquenessValidator(func(string, string, string) (bool, error) {
			return true, nil
		}, 10)

		assert.True(t, validator.ValidateUnique(2, "product_code", "price_ceilings", ""))
	})
}

func TestCheckUUIDFormat(t *testing.T) {
	valid := []string{
		"550e8400-e29b-41d4-a716-446655440000",
		"550E8400-E29B-41D4-A716-446655440000",
		"550e8400-E29B-41d4-A716-446655440000",
	}
	for _, s := range valid {
		assert.NoError(t, checkUUIDFormat(s), s)
	}

	invalid := []string{
		"",
		"550e8400-e29b-41d4",
		"550e8400-e29b-41d4-a716-446655440000-extra",
		"550e8400e29b41d4a716446655440000",
		"550e-8400-e29b-41d4-a716-446655440000",
		"550g8400-e29b-41d4-a716-446655440000",
	}
	for _, s := range invalid {
		assert.Error(t, checkUUIDFormat(s), s)
	}
}
