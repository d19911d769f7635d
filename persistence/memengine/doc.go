// Package memengine is the in-memory backend of the persistence package.
//
// Specifications compile to predicates over plain records and are evaluated by a linear scan.
// Evaluation follows SQL's three-valued logic: comparing against a missing value is unknown,
// the negation of unknown is unknown, and only records for which the predicate is true match.
// This keeps the accepted record sets identical to those of the SQL backend.
//
// A Store holds tables of rows keyed by identity. It admits one transaction at a time;
// a transaction works on private copies of the tables it touches and publishes them on commit.
package memengine
