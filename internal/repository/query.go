package repository

import (
	"strconv"
)

const (
	FeaturedField QueryField = "featured"
	StatusField   QueryField = "status"
)

// DefaultListLimit bounds batch reads such as the outbox poll. Product listing is unbounded.
const DefaultListLimit = 10

type Query struct {
	Values map[QueryField]string

	Limit int
}

type QueryField string

func NewQuery() *Query {
	return &Query{
		Values: map[QueryField]string{},
	}
}

func (q *Query) With(field QueryField, val string) *Query {
	q.Values[field] = val
	return q
}

func (q *Query) WithLimit(limit int) *Query {
	q.Limit = limit
	return q
}

// Featured returns the featured filter, if one was set to a valid boolean.
func (q Query) Featured() (bool, bool) {
	raw, ok := q.Values[FeaturedField]
	if !ok {
		return false, false
	}
	featured, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return featured, true
}
