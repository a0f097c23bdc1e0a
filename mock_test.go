package stylist

import (
	"context"
	"strings"

	"github.com/kailas-cloud/stylist/internal/domain/outfit"
	"github.com/kailas-cloud/stylist/internal/domain/search/query"
	"github.com/kailas-cloud/stylist/internal/domain/search/result"
)

// --- recommendUseCase mock ---

type mockRecommendUC struct {
	recommendFn func(ctx context.Context, q *query.Query) ([]result.Result, error)
	facets      outfit.Facets
	size        int
}

func (m *mockRecommendUC) Recommend(ctx context.Context, q *query.Query) ([]result.Result, error) {
	return m.recommendFn(ctx, q)
}

func (m *mockRecommendUC) Facets() outfit.Facets { return m.facets }

func (m *mockRecommendUC) Size() int { return m.size }

// --- Embedder mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchCalls int
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	m.batchCalls++
	out := BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		r, err := m.fn(ctx, t)
		if err != nil {
			return BatchEmbeddingResult{}, err
		}
		out.Embeddings[i] = r.Embedding
		out.TotalTokens += r.TotalTokens
	}
	return out, nil
}

// keywordEmbedder maps texts mentioning "coat" to one axis and everything else to another.
func keywordEmbedder() *mockEmbedder {
	return &mockEmbedder{fn: func(_ context.Context, text string) (EmbeddingResult, error) {
		if strings.Contains(strings.ToLower(text), "coat") {
			return EmbeddingResult{Embedding: []float32{1, 0}, TotalTokens: 1}, nil
		}
		return EmbeddingResult{Embedding: []float32{0, 1}, TotalTokens: 1}, nil
	}}
}

func testOutfits() []Outfit {
	return []Outfit{
		{Category: "Shirt", StyleNotes: "light linen shirt for the beach",
			Season: "Summer", Occasion: "Casual", Color: "White",
			ImageURL: "https://img.example.com/shirt.jpg"},
		{Category: "Suit", StyleNotes: "sharp navy suit for meetings",
			Season: "All", Occasion: "Business", Color: "Black"},
		{Category: "Coat", StyleNotes: "warm wool coat for cold evenings",
			Season: "Winter", Occasion: "Formal", Color: "Beige", ImageURL: "ftp://old/coat.jpg"},
		{Category: "Dress", StyleNotes: "flowing silk dress for garden parties",
			Season: "Spring", Occasion: "Party", Color: "Pink"},
	}
}
