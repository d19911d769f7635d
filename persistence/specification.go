package persistence

// Operator is the comparison operator of a Compare node.
type Operator string

const (
	OpLT Operator = "lt"
	OpLE Operator = "le"
	OpGT Operator = "gt"
	OpGE Operator = "ge"
	OpEQ Operator = "eq"
	OpNE Operator = "ne"
)

// Valid reports whether o is one of the six supported operators.
func (o Operator) Valid() bool {
	switch o {
	case OpLT, OpLE, OpGT, OpGE, OpEQ, OpNE:
		return true
	default:
		return false
	}
}

// Specification is a backend-independent boolean condition over the logical fields of an aggregate.
//
// The set of variants is closed: Compare, And, Or and Not are the only implementations.
// Combinators never mutate their receiver; a.And(b) yields And{a, b},
// so chained calls nest to the left.
type Specification interface {
	And(other Specification) Specification
	Or(other Specification) Specification
	Not() Specification

	isSpecification()
}

// Compare is the leaf of a Specification: Field Op Value.
type Compare struct {
	Op    Operator
	Field string
	Value any
}

// And holds when every child holds. An empty And holds for every record.
type And []Specification

// Or holds when at least one child holds. An empty Or holds for no record.
type Or []Specification

// Not negates the wrapped specification.
type Not struct {
	Spec Specification
}

func (c Compare) And(other Specification) Specification { return And{c, other} }
func (c Compare) Or(other Specification) Specification  { return Or{c, other} }
func (c Compare) Not() Specification                    { return Not{Spec: c} }
func (Compare) isSpecification()                        {}

func (a And) And(other Specification) Specification { return And{a, other} }
func (a And) Or(other Specification) Specification  { return Or{a, other} }
func (a And) Not() Specification                    { return Not{Spec: a} }
func (And) isSpecification()                        {}

func (o Or) And(other Specification) Specification { return And{o, other} }
func (o Or) Or(other Specification) Specification  { return Or{o, other} }
func (o Or) Not() Specification                    { return Not{Spec: o} }
func (Or) isSpecification()                        {}

func (n Not) And(other Specification) Specification { return And{n, other} }
func (n Not) Or(other Specification) Specification  { return Or{n, other} }
func (n Not) Not() Specification                    { return Not{Spec: n} }
func (Not) isSpecification()                        {}

// All returns the conjunction of specs. All() matches every record.
func All(specs ...Specification) Specification {
	return And(append([]Specification{}, specs...))
}

// Any returns the disjunction of specs. Any() matches no record.
func Any(specs ...Specification) Specification {
	return Or(append([]Specification{}, specs...))
}
