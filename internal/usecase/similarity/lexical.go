package similarity

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kailas-cloud/stylist/internal/domain"
)

// Lexical scores documents with a TF-IDF vector-space model fit on the
// candidate documents plus the query at call time.
//
// idf(t) = ln((1+n)/(1+df(t))) + 1, vectors are L2-normalized, so the score is
// the cosine similarity in [0,1].
type Lexical struct {
	stopWords map[string]struct{}
}

// NewLexical creates a TF-IDF scorer with the built-in English stop word list.
func NewLexical() *Lexical {
	return &Lexical{stopWords: englishStopWords}
}

// Score returns the cosine similarity of query to each doc.
// Returns domain.ErrEmptyVocabulary when no doc or query has a usable term.
func (l *Lexical) Score(_ context.Context, query string, docs []string) ([]float64, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	n := len(docs) + 1 // corpus = docs + query
	tokens := make([][]string, n)
	vocab := make(map[string]int)
	var df []int

	for i := range n {
		text := query
		if i < len(docs) {
			text = docs[i]
		}
		tokens[i] = tokenize(text, l.stopWords)

		seen := make(map[string]struct{}, len(tokens[i]))
		for _, tok := range tokens[i] {
			idx, ok := vocab[tok]
			if !ok {
				idx = len(vocab)
				vocab[tok] = idx
				df = append(df, 0)
			}
			if _, dup := seen[tok]; !dup {
				seen[tok] = struct{}{}
				df[idx]++
			}
		}
	}

	if len(vocab) == 0 {
		return nil, domain.ErrEmptyVocabulary
	}

	idf := make([]float64, len(vocab))
	for i, d := range df {
		idf[i] = math.Log(float64(1+n)/float64(1+d)) + 1
	}

	queryVec := l.vector(tokens[n-1], vocab, idf)
	scores := make([]float64, len(docs))
	for i := range docs {
		scores[i] = clamp01(floats.Dot(l.vector(tokens[i], vocab, idf), queryVec))
	}
	return scores, nil
}

// vector builds the L2-normalized tf-idf vector for one token list.
func (l *Lexical) vector(tokens []string, vocab map[string]int, idf []float64) []float64 {
	v := make([]float64, len(vocab))
	for _, tok := range tokens {
		v[vocab[tok]]++
	}
	floats.Mul(v, idf)
	if norm := floats.Norm(v, 2); norm > 0 {
		floats.Scale(1/norm, v)
	}
	return v
}

// clamp01 maps x into [0,1]; NaN becomes 0.
func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
