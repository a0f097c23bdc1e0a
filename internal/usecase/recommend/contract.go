package recommend

import "context"

// Scorer measures text similarity between a query and candidate documents.
// It returns one score in [0,1] per doc, in input order.
type Scorer interface {
	Score(ctx context.Context, query string, docs []string) ([]float64, error)
}

// Matcher decides whether a categorical value satisfies a filter value.
type Matcher interface {
	Matches(value, filter string) bool
}
