package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery signals a malformed recommendation query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidCatalog signals a catalog source that cannot be parsed.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrEmptyVocabulary signals that the lexical model found no usable terms
	// (e.g. every token is a stop word).
	ErrEmptyVocabulary = errors.New("empty vocabulary")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrSimilarity signals a failed text similarity computation for one ranking call.
	ErrSimilarity = errors.New("similarity computation failed")
)

// ScoringError wraps a scorer failure together with the number of candidates it was scoring.
type ScoringError struct {
	Candidates int
	Err        error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("%s over %d candidates: %v", ErrSimilarity.Error(), e.Candidates, e.Err)
}

// Unwrap exposes both the ErrSimilarity sentinel and the underlying cause.
func (e *ScoringError) Unwrap() []error { return []error{ErrSimilarity, e.Err} }

// NewScoringError creates a scoring error for a call over n candidates.
func NewScoringError(n int, err error) error {
	return &ScoringError{Candidates: n, Err: err}
}
