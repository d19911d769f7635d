package persistence

import (
	"fmt"
	"reflect"
)

// Backend turns the pieces of a Specification into a backend-native predicate P.
//
// Compare resolves the logical field and must fail with ErrUnknownField when it cannot.
// Values handed to Compare are already dereferenced: a nil pointer arrives as nil.
type Backend[P any] interface {
	Compare(op Operator, field string, value any) (P, error)
	And(left, right P) P
	Or(left, right P) P
	Not(predicate P) P
	True() P
	False() P
}

// Compile interprets spec with the given backend.
//
// And and Or fold their children pairwise from the left; the empty And is backend.True()
// and the empty Or is backend.False(). Not is always the backend's own negation.
// Anything that is not one of the four variants, including a nil spec, fails with ErrUnsupportedSpecification.
func Compile[P any](spec Specification, backend Backend[P]) (P, error) {
	var empty P

	switch s := spec.(type) {
	case Compare:
		if !s.Op.Valid() {
			return empty, fmt.Errorf("%w: operator %q", ErrUnsupportedSpecification, s.Op)
		}

		return backend.Compare(s.Op, s.Field, IndirectValue(s.Value))

	case And:
		return fold(s, backend, backend.True, backend.And)

	case Or:
		return fold(s, backend, backend.False, backend.Or)

	case Not:
		inner, err := Compile(s.Spec, backend)
		if err != nil {
			return empty, err
		}

		return backend.Not(inner), nil

	default:
		return empty, fmt.Errorf("%w: %T", ErrUnsupportedSpecification, spec)
	}
}

func fold[P any](children []Specification, backend Backend[P], identity func() P, combine func(P, P) P) (P, error) {
	if len(children) == 0 {
		return identity(), nil
	}

	acc, err := Compile(children[0], backend)
	if err != nil {
		return acc, err
	}

	for _, child := range children[1:] {
		next, err := Compile(child, backend)
		if err != nil {
			return next, err
		}

		acc = combine(acc, next)
	}

	return acc, nil
}

// IndirectValue follows pointers until it reaches a non-pointer value. Nil pointers become nil.
func IndirectValue(value any) any {
	if value == nil {
		return nil
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}

		rv = rv.Elem()
	}

	return rv.Interface()
}
