package memengine

import (
	"fmt"

	"github.com/bruhsty/bruhsty/persistence"
)

// Accessor reads the value of one logical field from a record. A nil result is a missing value.
type Accessor[R any] func(record R) any

// FieldResolver maps a logical field name to an Accessor. The second result is false for unknown fields.
type FieldResolver[R any] func(field string) (Accessor[R], bool)

// Predicate reports whether a record satisfies a compiled specification.
type Predicate[R any] func(record R) bool

// RowResolver resolves the given logical fields to the Row entries of the same name.
func RowResolver(fields ...string) FieldResolver[Row] {
	known := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		known[field] = struct{}{}
	}

	return func(field string) (Accessor[Row], bool) {
		if _, ok := known[field]; !ok {
			return nil, false
		}

		return func(row Row) any { return row[field] }, true
	}
}

// CompileSpecification compiles spec into a Predicate over records of type R.
func CompileSpecification[R any](spec persistence.Specification, resolve FieldResolver[R]) (Predicate[R], error) {
	evaluate, err := persistence.Compile[evaluator[R]](spec, backend[R]{resolve: resolve})
	if err != nil {
		return nil, err
	}

	return func(record R) bool {
		return evaluate(record) == truthTrue
	}, nil
}

type truth int8

const (
	truthFalse truth = iota
	truthTrue
	truthUnknown
)

func truthOf(b bool) truth {
	if b {
		return truthTrue
	}

	return truthFalse
}

type evaluator[R any] func(record R) truth

type backend[R any] struct {
	resolve FieldResolver[R]
}

func (b backend[R]) Compare(op persistence.Operator, field string, value any) (evaluator[R], error) {
	accessor, ok := b.resolve(field)
	if !ok {
		return nil, fmt.Errorf("%w: %q", persistence.ErrUnknownField, field)
	}

	want := normalize(value)

	if want == nil {
		switch op {
		case persistence.OpEQ:
			return func(record R) truth { return truthOf(normalize(accessor(record)) == nil) }, nil
		case persistence.OpNE:
			return func(record R) truth { return truthOf(normalize(accessor(record)) != nil) }, nil
		default:
			return func(R) truth { return truthUnknown }, nil
		}
	}

	return func(record R) truth {
		got := normalize(accessor(record))
		if got == nil {
			return truthUnknown
		}

		c, ok := compareValues(got, want)
		if !ok {
			return truthUnknown
		}

		switch op {
		case persistence.OpLT:
			return truthOf(c < 0)
		case persistence.OpLE:
			return truthOf(c <= 0)
		case persistence.OpGT:
			return truthOf(c > 0)
		case persistence.OpGE:
			return truthOf(c >= 0)
		case persistence.OpEQ:
			return truthOf(c == 0)
		default:
			return truthOf(c != 0)
		}
	}, nil
}

func (backend[R]) And(left, right evaluator[R]) evaluator[R] {
	return func(record R) truth {
		l, r := left(record), right(record)

		switch {
		case l == truthFalse || r == truthFalse:
			return truthFalse
		case l == truthTrue && r == truthTrue:
			return truthTrue
		default:
			return truthUnknown
		}
	}
}

func (backend[R]) Or(left, right evaluator[R]) evaluator[R] {
	return func(record R) truth {
		l, r := left(record), right(record)

		switch {
		case l == truthTrue || r == truthTrue:
			return truthTrue
		case l == truthFalse && r == truthFalse:
			return truthFalse
		default:
			return truthUnknown
		}
	}
}

func (backend[R]) Not(predicate evaluator[R]) evaluator[R] {
	return func(record R) truth {
		switch predicate(record) {
		case truthTrue:
			return truthFalse
		case truthFalse:
			return truthTrue
		default:
			return truthUnknown
		}
	}
}

func (backend[R]) True() evaluator[R] {
	return func(R) truth { return truthTrue }
}

func (backend[R]) False() evaluator[R] {
	return func(R) truth { return truthFalse }
}
