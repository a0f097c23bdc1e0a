package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/outfit"
	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
	"github.com/kailas-cloud/stylist/internal/domain/search/mode"
)

// Query parameter limits.
const (
	// MaxTextLength is the maximum allowed query text length in bytes.
	MaxTextLength = 4096
	DefaultTopK   = 3
	MaxTopK       = 100
)

// Query is a validated recommendation request.
type Query struct {
	text    string
	filters filter.Expression
	topK    int
}

// New validates and normalizes query parameters.
// Text and filter values are trimmed; blank filters are treated as absent.
// topK <= 0 falls back to DefaultTopK and is clamped to MaxTopK.
func New(text, season, occasion, color string, topK int) (Query, error) {
	text = strings.TrimSpace(text)
	if len(text) > MaxTextLength {
		return Query{}, fmt.Errorf("%w: text too long (max %d chars)", domain.ErrInvalidQuery, MaxTextLength)
	}

	var conds []filter.Condition
	for _, f := range []struct {
		col   outfit.Column
		value string
	}{
		{outfit.Season, season},
		{outfit.Occasion, occasion},
		{outfit.Color, color},
	} {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		c, err := filter.NewMatch(f.col, f.value)
		if err != nil {
			return Query{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
		conds = append(conds, c)
	}
	filters, err := filter.NewExpression(conds...)
	if err != nil {
		return Query{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	return Query{text: text, filters: filters, topK: topK}, nil
}

// Text returns the trimmed query text (may be empty).
func (q *Query) Text() string { return q.text }

// Mode returns Text for a non-empty query text and Filter otherwise.
func (q *Query) Mode() mode.Mode { return mode.ForText(q.text) }

// Filters returns the categorical conditions.
func (q *Query) Filters() filter.Expression { return q.filters }

// TopK returns the maximum number of results.
func (q *Query) TopK() int { return q.topK }

// PoolSize returns how many scored candidates are kept before color enforcement.
// Over-selecting leaves the hard color filter something to choose from.
func (q *Query) PoolSize() int { return max(q.topK, 2*q.topK) }
