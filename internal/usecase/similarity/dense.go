package similarity

import (
	"context"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/kailas-cloud/stylist/internal/domain"
)

// Dense scores documents by cosine similarity of embedding vectors.
// Query and document sides may use different embedders (e.g. different
// instruction prefixes); both are built once and shared read-only.
type Dense struct {
	query domain.Embedder
	docs  domain.Embedder
}

// NewDense creates an embedding-based scorer.
func NewDense(query, docs domain.Embedder) *Dense {
	return &Dense{query: query, docs: docs}
}

// Score embeds query and docs and returns cosine similarities clamped to [0,1].
// Blank docs are not sent to the provider and score 0.
func (d *Dense) Score(ctx context.Context, query string, docs []string) ([]float64, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	qRes, err := d.query.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var texts []string
	var idx []int
	for i, doc := range docs {
		if strings.TrimSpace(doc) == "" {
			continue
		}
		texts = append(texts, doc)
		idx = append(idx, i)
	}

	scores := make([]float64, len(docs))
	if len(texts) == 0 {
		return scores, nil
	}

	batch, err := domain.EmbedBatch(ctx, d.docs, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}

	for j, vec := range batch.Embeddings {
		s, err := Cosine(qRes.Embedding, vec)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", idx[j], err)
		}
		scores[idx[j]] = clamp01(s)
	}
	return scores, nil
}

// Cosine returns the cosine similarity of a and b; 0 when either is a zero vector.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrVectorDimMismatch, len(a), len(b))
	}
	x, y := toFloat64(a), toFloat64(b)
	na, nb := floats.Norm(x, 2), floats.Norm(y, 2)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return floats.Dot(x, y) / (na * nb), nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
