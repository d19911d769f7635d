// Package specfixtures holds one fixture table and a catalog of specifications with the
// identities each must accept. Every backend compiler is tested against the same catalog.
package specfixtures

import (
	"github.com/bruhsty/bruhsty/persistence"
)

// Record is one row of the fixture table. Age is nullable.
type Record struct {
	ID     int64
	Name   string
	Age    *int64
	Score  int64
	Active bool
}

// Logical field names, and the column each maps to in the SQL fixture table.
const (
	FieldID     = "id"
	FieldName   = "name"
	FieldAge    = "age"
	FieldScore  = "score"
	FieldActive = "active"

	Table        = "people"
	ColumnID     = "id"
	ColumnName   = "full_name"
	ColumnAge    = "age_years"
	ColumnScore  = "score"
	ColumnActive = "is_active"
)

var (
	ID     = persistence.NewField[int64](FieldID)
	Name   = persistence.NewField[string](FieldName)
	Age    = persistence.NewField[int64](FieldAge)
	Score  = persistence.NewField[int64](FieldScore)
	Active = persistence.NewField[bool](FieldActive)
)

// Columns maps logical field names to fixture table columns.
var Columns = map[string]string{
	FieldID:     ColumnID,
	FieldName:   ColumnName,
	FieldAge:    ColumnAge,
	FieldScore:  ColumnScore,
	FieldActive: ColumnActive,
}

// SQLiteSchema creates the fixture table.
const SQLiteSchema = `CREATE TABLE people (
	id INTEGER PRIMARY KEY,
	full_name TEXT NOT NULL,
	age_years INTEGER NULL,
	score INTEGER NOT NULL,
	is_active BOOLEAN NOT NULL
)`

// PostgresSchema creates the fixture table on PostgreSQL.
const PostgresSchema = `CREATE TABLE IF NOT EXISTS people (
	id BIGINT PRIMARY KEY,
	full_name TEXT NOT NULL,
	age_years BIGINT NULL,
	score BIGINT NOT NULL,
	is_active BOOLEAN NOT NULL
)`

func age(years int64) *int64 {
	return &years
}

// Records returns the fixture rows in identity order.
func Records() []Record {
	return []Record{
		{ID: 1, Name: "alice", Age: age(30), Score: 10, Active: true},
		{ID: 2, Name: "bob", Age: nil, Score: 20, Active: false},
		{ID: 3, Name: "carol", Age: age(25), Score: 30, Active: true},
		{ID: 4, Name: "dave", Age: age(41), Score: 10, Active: false},
		{ID: 5, Name: "erin", Age: nil, Score: 50, Active: true},
		{ID: 6, Name: "frank", Age: age(30), Score: 0, Active: true},
	}
}

// AllIDs returns every fixture identity.
func AllIDs() []int64 {
	return []int64{1, 2, 3, 4, 5, 6}
}

// Case is a specification and the identities it accepts on the fixture table.
type Case struct {
	Name     string
	Spec     persistence.Specification
	Expected []int64
}

// Cases returns the catalog of specifications.
func Cases() []Case {
	thirty := int64(30)

	return []Case{
		{Name: "age_eq", Spec: Age.Eq(30), Expected: []int64{1, 6}},
		{Name: "age_ne_skips_null", Spec: Age.Ne(30), Expected: []int64{3, 4}},
		{Name: "age_lt", Spec: Age.Lt(30), Expected: []int64{3}},
		{Name: "age_le", Spec: Age.Le(30), Expected: []int64{1, 3, 6}},
		{Name: "age_gt", Spec: Age.Gt(30), Expected: []int64{4}},
		{Name: "age_ge", Spec: Age.Ge(25), Expected: []int64{1, 3, 4, 6}},
		{Name: "age_is_null", Spec: Age.IsNull(), Expected: []int64{2, 5}},
		{Name: "age_is_not_null", Spec: Age.IsNotNull(), Expected: []int64{1, 3, 4, 6}},
		{Name: "not_age_gt_skips_null", Spec: Age.Gt(30).Not(), Expected: []int64{1, 3, 6}},
		{Name: "pointer_value", Spec: persistence.Compare{Op: persistence.OpEQ, Field: FieldAge, Value: &thirty}, Expected: []int64{1, 6}},
		{Name: "name_eq", Spec: Name.Eq("bob"), Expected: []int64{2}},
		{Name: "name_gt", Spec: Name.Gt("c"), Expected: []int64{3, 4, 5, 6}},
		{Name: "id_le", Spec: ID.Le(2), Expected: []int64{1, 2}},
		{Name: "active_eq_true", Spec: Active.Eq(true), Expected: []int64{1, 3, 5, 6}},
		{Name: "active_ne_true", Spec: Active.Ne(true), Expected: []int64{2, 4}},
		{Name: "score_and_active", Spec: Score.Ge(20).And(Active.Eq(true)), Expected: []int64{3, 5}},
		{Name: "score_or_name", Spec: Score.Eq(10).Or(Name.Eq("erin")), Expected: []int64{1, 4, 5}},
		{Name: "empty_and_matches_all", Spec: persistence.And{}, Expected: AllIDs()},
		{Name: "empty_or_matches_none", Spec: persistence.Or{}, Expected: []int64{}},
		{Name: "not_empty_and_matches_none", Spec: persistence.And{}.Not(), Expected: []int64{}},
		{Name: "not_empty_or_matches_all", Spec: persistence.Or{}.Not(), Expected: AllIDs()},
		{
			Name:     "nested_and_or",
			Spec:     Active.Eq(true).And(Age.Lt(40)).Or(Score.Gt(40)),
			Expected: []int64{1, 3, 5, 6},
		},
		{
			Name:     "not_of_or",
			Spec:     Score.Eq(10).Or(Active.Eq(false)).Not(),
			Expected: []int64{3, 5, 6},
		},
		{
			Name:     "flat_and_of_three",
			Spec:     persistence.And{Age.Gt(20), Age.Lt(35), Name.Ne("frank")},
			Expected: []int64{1, 3},
		},
		{
			Name:     "flat_or_of_three",
			Spec:     persistence.Or{Name.Eq("alice"), Name.Eq("bob"), Score.Eq(50)},
			Expected: []int64{1, 2, 5},
		},
		{Name: "double_negation", Spec: Score.Lt(20).Not().Not(), Expected: []int64{1, 4, 6}},
	}
}

// NonNullCases returns the cases that only reference non-nullable fields.
// On those, a negation accepts exactly the complement.
func NonNullCases() []Case {
	return []Case{
		{Name: "name_eq", Spec: Name.Eq("bob")},
		{Name: "score_ge", Spec: Score.Ge(20)},
		{Name: "active", Spec: Active.Eq(true)},
		{Name: "score_or_name", Spec: Score.Eq(10).Or(Name.Eq("erin"))},
		{Name: "score_and_active", Spec: Score.Ge(20).And(Active.Eq(true))},
		{Name: "empty_and", Spec: persistence.And{}},
		{Name: "empty_or", Spec: persistence.Or{}},
	}
}

// Difference returns the identities of all that are not in accepted.
func Difference(all, accepted []int64) []int64 {
	skip := make(map[int64]struct{}, len(accepted))
	for _, id := range accepted {
		skip[id] = struct{}{}
	}

	result := make([]int64, 0, len(all))
	for _, id := range all {
		if _, ok := skip[id]; !ok {
			result = append(result, id)
		}
	}

	return result
}

// Intersection returns the identities present in both a and b, in the order of a.
func Intersection(a, b []int64) []int64 {
	keep := make(map[int64]struct{}, len(b))
	for _, id := range b {
		keep[id] = struct{}{}
	}

	result := make([]int64, 0)
	for _, id := range a {
		if _, ok := keep[id]; ok {
			result = append(result, id)
		}
	}

	return result
}
