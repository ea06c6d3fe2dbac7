package database

import (
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// QueryBuilder provides a fluent, type-safe API for building database queries
type QueryBuilder[T any] struct {
	db bun.IDB

	// Query clauses
	wheres []*WhereClause
	orders []*OrderClause

	// Relations to preload
	relations []*relation
}

// WhereClause represents a WHERE condition
type WhereClause struct {
	Column   string
	Operator string
	Value    any
	IsRaw    bool
	RawSQL   string
	RawArgs  []any
}

// OrderClause represents an ORDER BY clause
type OrderClause struct {
	Column    string
	Direction string // "ASC" or "DESC"
}

// OrderDirection represents sort direction
type OrderDirection string

const (
	ASC  OrderDirection = "ASC"
	DESC OrderDirection = "DESC"
)

type relation struct {
	name  string
	apply []func(*bun.SelectQuery) *bun.SelectQuery
}

// Query creates a new QueryBuilder. db may be the pool or a running transaction.
func Query[T any](db bun.IDB) *QueryBuilder[T] {
	return &QueryBuilder[T]{db: db}
}

// Where adds a simple WHERE condition (column = value)
func (q *QueryBuilder[T]) Where(column string, value any) *QueryBuilder[T] {
	return q.WhereOp(column, "=", value)
}

// WhereOp adds a WHERE condition with a custom operator
func (q *QueryBuilder[T]) WhereOp(column, operator string, value any) *QueryBuilder[T] {
	q.wheres = append(q.wheres, &WhereClause{
		Column:   column,
		Operator: operator,
		Value:    value,
	})
	return q
}

// WhereRaw adds a raw WHERE condition
func (q *QueryBuilder[T]) WhereRaw(sql string, args ...any) *QueryBuilder[T] {
	q.wheres = append(q.wheres, &WhereClause{
		IsRaw:   true,
		RawSQL:  sql,
		RawArgs: args,
	})
	return q
}

// OrderBy adds an ORDER BY clause
func (q *QueryBuilder[T]) OrderBy(column string, direction OrderDirection) *QueryBuilder[T] {
	q.orders = append(q.orders, &OrderClause{
		Column:    column,
		Direction: string(direction),
	})
	return q
}

// With specifies a relation to preload, optionally customizing its subquery
func (q *QueryBuilder[T]) With(name string, apply ...func(*bun.SelectQuery) *bun.SelectQuery) *QueryBuilder[T] {
	q.relations = append(q.relations, &relation{name: name, apply: apply})
	return q
}

// buildBunQuery builds a select query scanning into model
func (q *QueryBuilder[T]) buildBunQuery(model any) *bun.SelectQuery {
	query := q.db.NewSelect().Model(model)

	for _, rel := range q.relations {
		query = query.Relation(rel.name, rel.apply...)
	}

	for _, cond := range q.conditions() {
		query = query.Where(cond.sql, cond.args...)
	}

	for _, order := range q.orders {
		query = query.OrderExpr(fmt.Sprintf("%s %s", qualify(order.Column), order.Direction))
	}

	return query
}

type condition struct {
	sql  string
	args []any
}

// conditions renders the WHERE clauses once so select, update and delete agree
func (q *QueryBuilder[T]) conditions() []condition {
	out := make([]condition, 0, len(q.wheres))
	for _, where := range q.wheres {
		if where.IsRaw {
			out = append(out, condition{sql: where.RawSQL, args: where.RawArgs})
			continue
		}
		out = append(out, condition{sql: fmt.Sprintf("%s %s ?", qualify(where.Column), where.Operator), args: []any{where.Value}})
	}
	return out
}

// qualify prefixes bare column names with the model alias so joined relations
// never make them ambiguous.
func qualify(column string) string {
	if strings.Contains(column, ".") || strings.ContainsAny(column, " ()") {
		return column
	}
	return "?TableAlias." + column
}
