package persistence_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruhsty/bruhsty/persistence"
)

var (
	fieldX    = persistence.NewField[int]("x")
	fieldName = persistence.NewField[string]("name")
)

func Test_Field_Builds_Compare_Nodes(t *testing.T) {
	tests := []struct {
		name     string
		spec     persistence.Specification
		expected persistence.Compare
	}{
		{name: "eq", spec: fieldX.Eq(1), expected: persistence.Compare{Op: persistence.OpEQ, Field: "x", Value: 1}},
		{name: "ne", spec: fieldX.Ne(2), expected: persistence.Compare{Op: persistence.OpNE, Field: "x", Value: 2}},
		{name: "lt", spec: fieldX.Lt(3), expected: persistence.Compare{Op: persistence.OpLT, Field: "x", Value: 3}},
		{name: "le", spec: fieldX.Le(4), expected: persistence.Compare{Op: persistence.OpLE, Field: "x", Value: 4}},
		{name: "gt", spec: fieldX.Gt(5), expected: persistence.Compare{Op: persistence.OpGT, Field: "x", Value: 5}},
		{name: "ge", spec: fieldX.Ge(6), expected: persistence.Compare{Op: persistence.OpGE, Field: "x", Value: 6}},
		{name: "is_null", spec: fieldX.IsNull(), expected: persistence.Compare{Op: persistence.OpEQ, Field: "x", Value: nil}},
		{name: "is_not_null", spec: fieldX.IsNotNull(), expected: persistence.Compare{Op: persistence.OpNE, Field: "x", Value: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.spec)
		})
	}

	assert.Equal(t, "x", fieldX.Name())
}

func Test_Combinators_Nest_To_The_Left(t *testing.T) {
	a := fieldX.Eq(1)
	b := fieldX.Gt(2)
	c := fieldName.Eq("c")

	assert.Equal(t, persistence.And{persistence.And{a, b}, c}, a.And(b).And(c))
	assert.Equal(t, persistence.Or{persistence.And{a, b}, c}, a.And(b).Or(c))
	assert.Equal(t, persistence.And{persistence.Or{a, b}, c}, a.Or(b).And(c))
	assert.Equal(t, persistence.Not{Spec: a}, a.Not())
	assert.Equal(t, persistence.Not{Spec: persistence.Not{Spec: a}}, a.Not().Not())
	assert.Equal(t, persistence.Or{persistence.Not{Spec: a}, b}, a.Not().Or(b))
}

func Test_Combinators_Leave_Operands_Untouched(t *testing.T) {
	left := persistence.And{fieldX.Eq(1), fieldX.Eq(2)}

	combined := left.And(fieldX.Eq(3))

	assert.Len(t, left, 2)
	assert.Equal(t, persistence.And{left, fieldX.Eq(3)}, combined)
}

func Test_All_And_Any(t *testing.T) {
	assert.Equal(t, persistence.And{}, persistence.All())
	assert.Equal(t, persistence.Or{}, persistence.Any())
	assert.Equal(t, persistence.And{fieldX.Eq(1), fieldX.Eq(2)}, persistence.All(fieldX.Eq(1), fieldX.Eq(2)))
	assert.Equal(t, persistence.Or{fieldX.Eq(1), fieldX.Eq(2)}, persistence.Any(fieldX.Eq(1), fieldX.Eq(2)))
}

// textBackend renders specifications as text, which makes the shape of the compilation visible.
type textBackend struct {
	known map[string]bool
}

func (b textBackend) Compare(op persistence.Operator, field string, value any) (string, error) {
	if !b.known[field] {
		return "", fmt.Errorf("%w: %s", persistence.ErrUnknownField, field)
	}

	return fmt.Sprintf("%s %s %v", field, op, value), nil
}

func (textBackend) And(left, right string) string { return "(" + left + " AND " + right + ")" }
func (textBackend) Or(left, right string) string  { return "(" + left + " OR " + right + ")" }
func (textBackend) Not(predicate string) string   { return "NOT(" + predicate + ")" }
func (textBackend) True() string                  { return "TRUE" }
func (textBackend) False() string                 { return "FALSE" }

func newTextBackend() textBackend {
	return textBackend{known: map[string]bool{"x": true, "name": true}}
}

func Test_Compile_Renders_Every_Variant(t *testing.T) {
	tests := []struct {
		name     string
		spec     persistence.Specification
		expected string
	}{
		{name: "compare", spec: fieldX.Eq(1), expected: "x eq 1"},
		{name: "empty_and_is_true", spec: persistence.And{}, expected: "TRUE"},
		{name: "empty_or_is_false", spec: persistence.Or{}, expected: "FALSE"},
		{name: "single_child_and", spec: persistence.And{fieldX.Eq(1)}, expected: "x eq 1"},
		{
			name:     "flat_and_folds_from_the_left",
			spec:     persistence.And{fieldX.Eq(1), fieldX.Eq(2), fieldX.Eq(3)},
			expected: "((x eq 1 AND x eq 2) AND x eq 3)",
		},
		{
			name:     "flat_or_folds_from_the_left",
			spec:     persistence.Or{fieldX.Eq(1), fieldX.Eq(2), fieldX.Eq(3)},
			expected: "((x eq 1 OR x eq 2) OR x eq 3)",
		},
		{name: "not_uses_backend_negation", spec: fieldX.Gt(5).Not(), expected: "NOT(x gt 5)"},
		{name: "not_of_empty_and", spec: persistence.And{}.Not(), expected: "NOT(TRUE)"},
		{
			name:     "nested",
			spec:     fieldX.Eq(1).And(fieldName.Ne("a")).Or(fieldX.Lt(0).Not()),
			expected: "((x eq 1 AND name ne a) OR NOT(x lt 0))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled, err := persistence.Compile[string](tt.spec, newTextBackend())

			require.NoError(t, err)
			assert.Equal(t, tt.expected, compiled)
		})
	}
}

func Test_Compile_Dereferences_Pointer_Values(t *testing.T) {
	value := 7
	var missing *int

	compiled, err := persistence.Compile[string](persistence.Compare{Op: persistence.OpEQ, Field: "x", Value: &value}, newTextBackend())
	require.NoError(t, err)
	assert.Equal(t, "x eq 7", compiled)

	compiled, err = persistence.Compile[string](persistence.Compare{Op: persistence.OpEQ, Field: "x", Value: missing}, newTextBackend())
	require.NoError(t, err)
	assert.Equal(t, "x eq <nil>", compiled)
}

func Test_Compile_When_Field_Is_Unknown(t *testing.T) {
	spec := fieldX.Eq(1).And(persistence.NewField[int]("y").Eq(2).Not())

	_, err := persistence.Compile[string](spec, newTextBackend())

	assert.ErrorIs(t, err, persistence.ErrUnknownField)
}

func Test_Compile_When_Specification_Is_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		spec persistence.Specification
	}{
		{name: "nil", spec: nil},
		{name: "nil_inside_and", spec: persistence.And{fieldX.Eq(1), nil}},
		{name: "nil_inside_not", spec: persistence.Not{}},
		{name: "invalid_operator", spec: persistence.Compare{Op: "like", Field: "x", Value: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := persistence.Compile[string](tt.spec, newTextBackend())

			assert.True(t, errors.Is(err, persistence.ErrUnsupportedSpecification))
		})
	}
}

func Test_IndirectValue(t *testing.T) {
	text := "v"
	pointer := &text
	var nilPointer *string

	assert.Nil(t, persistence.IndirectValue(nil))
	assert.Nil(t, persistence.IndirectValue(nilPointer))
	assert.Equal(t, "v", persistence.IndirectValue(pointer))
	assert.Equal(t, "v", persistence.IndirectValue(&pointer))
	assert.Equal(t, 3, persistence.IndirectValue(3))
}
