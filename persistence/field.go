package persistence

// Field is a typed handle on a logical field name.
// Its comparison methods build Compare nodes, so the value type is checked at compile time.
type Field[T any] struct {
	name string
}

// NewField binds a handle to the logical field name.
func NewField[T any](name string) Field[T] {
	return Field[T]{name: name}
}

// Name returns the logical field name.
func (f Field[T]) Name() string {
	return f.name
}

func (f Field[T]) Eq(value T) Specification { return f.compare(OpEQ, value) }
func (f Field[T]) Ne(value T) Specification { return f.compare(OpNE, value) }
func (f Field[T]) Lt(value T) Specification { return f.compare(OpLT, value) }
func (f Field[T]) Le(value T) Specification { return f.compare(OpLE, value) }
func (f Field[T]) Gt(value T) Specification { return f.compare(OpGT, value) }
func (f Field[T]) Ge(value T) Specification { return f.compare(OpGE, value) }

// IsNull matches records where the field holds no value.
func (f Field[T]) IsNull() Specification { return Compare{Op: OpEQ, Field: f.name, Value: nil} }

// IsNotNull matches records where the field holds a value.
func (f Field[T]) IsNotNull() Specification { return Compare{Op: OpNE, Field: f.name, Value: nil} }

func (f Field[T]) compare(op Operator, value T) Specification {
	return Compare{Op: op, Field: f.name, Value: value}
}
