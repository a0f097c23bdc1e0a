package health

import "context"

// CatalogChecker reports whether an outfit catalog is loaded.
type CatalogChecker interface {
	Loaded() bool
}

// DBPinger checks cache database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
