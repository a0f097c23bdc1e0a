package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/search/query"
	"github.com/kailas-cloud/stylist/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/stylist/internal/logger"
	healthuc "github.com/kailas-cloud/stylist/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/stylist/internal/usecase/recommend"
)

const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface on top of the recommendation use cases.
type Server struct {
	recommender   *recommenduc.Recommender
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(recommender *recommenduc.Recommender, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		recommender: recommender,
		health:      health,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrEmptyVocabulary, http.StatusUnprocessableEntity, ErrorCodeEmptyVocabulary),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded,
			http.StatusPaymentRequired, ErrorCodeEmbeddingQuotaExceeded),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrSimilarity, http.StatusInternalServerError, ErrorCodeSimilarityFailed),
	}
	return s
}

// GetRecommendations handles GET /recommend.
func (s *Server) GetRecommendations(w http.ResponseWriter, r *http.Request, params RecommendParams) {
	req := RecommendRequest{
		Q:        deref(params.Q),
		Season:   deref(params.Season),
		Occasion: deref(params.Occasion),
		Color:    deref(params.Color),
		TopK:     params.TopK,
	}
	s.recommend(w, r, req)
}

// PostRecommendations handles POST /recommend.
func (s *Server) PostRecommendations(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.recommend(w, r, req)
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request, req RecommendRequest) {
	if req.TopK != nil && (*req.TopK < 1 || *req.TopK > query.MaxTopK) {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			fmt.Sprintf("top_k must be between 1 and %d", query.MaxTopK))
		return
	}

	q, err := query.New(req.Q, req.Season, req.Occasion, req.Color, deref(req.TopK))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	results, err := s.recommender.Recommend(r.Context(), &q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]OutfitItem, 0, len(results))
	for i := range results {
		items = append(items, resultToItem(&results[i]))
	}

	writeJSON(w, http.StatusOK, RecommendResponse{
		Items: items,
		Total: len(items),
		Mode:  string(q.Mode()),
	})
}

// GetFacets handles GET /facets.
func (s *Server) GetFacets(w http.ResponseWriter, _ *http.Request) {
	f := s.recommender.Facets()
	writeJSON(w, http.StatusOK, FacetsResponse{
		Seasons:   nonNil(f.Seasons),
		Occasions: nonNil(f.Occasions),
		Colors:    nonNil(f.Colors),
		Outfits:   s.recommender.Size(),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ParamErrorHandler writes a 400 for query parameters that failed to bind.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrEmptyVocabulary,
		domain.ErrEmbeddingQuotaExceeded,
		domain.ErrEmbeddingProviderError,
		domain.ErrVectorDimMismatch,
		domain.ErrSimilarity,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func resultToItem(r *result.Result) OutfitItem {
	rec := r.Record()
	item := OutfitItem{
		Position:   rec.Position(),
		Category:   rec.Category(),
		StyleNotes: rec.StyleNotes(),
		Season:     rec.Season(),
		Occasion:   rec.Occasion(),
		Color:      rec.Color(),
		ImageURL:   rec.ImageURL(),
		Score:      r.Score(),
	}
	if u, ok := rec.PreviewURL(); ok {
		item.PreviewURL = &u
	}
	return item
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
