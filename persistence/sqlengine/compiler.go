package sqlengine

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/bruhsty/bruhsty/persistence"
)

const (
	literalTrue   = "1 = 1"
	literalFalse  = "1 = 0"
	literalNot    = "NOT (?)"
	literalIsNull = "(? IS NULL)"
	literalNotNul = "(? IS NOT NULL)"
	literalNull   = "NULL"
)

// ColumnResolver maps a logical field name to a column name.
type ColumnResolver func(field string) (column string, ok bool)

// ColumnMap resolves fields through a fixed field-to-column map.
func ColumnMap(columns map[string]string) ColumnResolver {
	return func(field string) (string, bool) {
		column, ok := columns[field]
		return column, ok
	}
}

// CompileSpecification compiles spec into a goqu expression for a WHERE clause.
//
// Comparisons against nil follow SQL: EQ and NE become IS NULL and IS NOT NULL,
// every other operator compares with NULL and is therefore never true.
func CompileSpecification(spec persistence.Specification, resolve ColumnResolver) (exp.Expression, error) {
	return persistence.Compile[exp.Expression](spec, backend{resolve: resolve})
}

var booleanOperations = map[persistence.Operator]exp.BooleanOperation{
	persistence.OpEQ: exp.EqOp,
	persistence.OpNE: exp.NeqOp,
	persistence.OpLT: exp.LtOp,
	persistence.OpLE: exp.LteOp,
	persistence.OpGT: exp.GtOp,
	persistence.OpGE: exp.GteOp,
}

type backend struct {
	resolve ColumnResolver
}

func (b backend) Compare(op persistence.Operator, field string, value any) (exp.Expression, error) {
	column, ok := b.resolve(field)
	if !ok {
		return nil, fmt.Errorf("%w: %q", persistence.ErrUnknownField, field)
	}

	if value == nil {
		switch op {
		case persistence.OpEQ:
			return goqu.L(literalIsNull, goqu.C(column)), nil
		case persistence.OpNE:
			return goqu.L(literalNotNul, goqu.C(column)), nil
		default:
			return exp.NewBooleanExpression(booleanOperations[op], goqu.C(column), goqu.L(literalNull)), nil
		}
	}

	return exp.NewBooleanExpression(booleanOperations[op], goqu.C(column), value), nil
}

func (b backend) And(left, right exp.Expression) exp.Expression {
	return goqu.And(left, right)
}

func (b backend) Or(left, right exp.Expression) exp.Expression {
	return goqu.Or(left, right)
}

func (b backend) Not(predicate exp.Expression) exp.Expression {
	return goqu.L(literalNot, predicate)
}

func (b backend) True() exp.Expression {
	return goqu.L(literalTrue)
}

func (b backend) False() exp.Expression {
	return goqu.L(literalFalse)
}
