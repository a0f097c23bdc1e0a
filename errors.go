package stylist

import "github.com/kailas-cloud/stylist/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery           = domain.ErrInvalidQuery
	ErrInvalidCatalog         = domain.ErrInvalidCatalog
	ErrEmptyVocabulary        = domain.ErrEmptyVocabulary
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrEmbeddingQuotaExceeded = domain.ErrEmbeddingQuotaExceeded
	ErrSimilarity             = domain.ErrSimilarity
)
