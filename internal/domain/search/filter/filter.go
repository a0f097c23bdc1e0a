package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/stylist/internal/domain/outfit"
)

// Stage says when a condition is applied during ranking.
type Stage int

const (
	// Soft conditions narrow the candidates before scoring and are dropped if they empty them.
	Soft Stage = iota
	// Hard conditions are enforced on the ranked pool and dropped only if they empty it.
	Hard
)

// stages maps filterable columns to their stage. Color is applied after ranking.
var stages = map[outfit.Column]Stage{
	outfit.Season:   Soft,
	outfit.Occasion: Soft,
	outfit.Color:    Hard,
}

// Condition is a categorical constraint on one column.
type Condition struct {
	column outfit.Column
	value  string
}

// NewMatch creates a condition on a filterable column.
func NewMatch(column outfit.Column, value string) (Condition, error) {
	if _, ok := stages[column]; !ok {
		return Condition{}, fmt.Errorf("column %q is not filterable", column)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return Condition{}, fmt.Errorf("match value is required for column %q", column)
	}
	return Condition{column: column, value: value}, nil
}

// Column returns the filtered column.
func (c Condition) Column() outfit.Column { return c.column }

// Value returns the requested value.
func (c Condition) Value() string { return c.value }

// Stage returns when the condition is applied.
func (c Condition) Stage() Stage { return stages[c.column] }

// Expression is the set of categorical conditions of one query, at most one per column.
type Expression struct {
	conditions []Condition
}

// NewExpression validates and creates an Expression.
func NewExpression(conditions ...Condition) (Expression, error) {
	seen := make(map[outfit.Column]struct{}, len(conditions))
	for _, c := range conditions {
		if _, dup := seen[c.column]; dup {
			return Expression{}, fmt.Errorf("duplicate filter on column %q", c.column)
		}
		seen[c.column] = struct{}{}
	}
	return Expression{conditions: conditions}, nil
}

// All returns every condition.
func (e Expression) All() []Condition { return e.conditions }

// Soft returns the conditions applied before scoring.
func (e Expression) Soft() []Condition { return e.byStage(Soft) }

// Hard returns the conditions applied after ranking.
func (e Expression) Hard() []Condition { return e.byStage(Hard) }

// Get returns the condition on column, if any.
func (e Expression) Get(column outfit.Column) (Condition, bool) {
	for _, c := range e.conditions {
		if c.column == column {
			return c, true
		}
	}
	return Condition{}, false
}

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.conditions) == 0 }

func (e Expression) byStage(s Stage) []Condition {
	var out []Condition
	for _, c := range e.conditions {
		if c.Stage() == s {
			out = append(out, c)
		}
	}
	return out
}
