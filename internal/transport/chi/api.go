package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrorCode is a machine-readable error code returned in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeValidationFailed       ErrorCode = "validation_failed"
	ErrorCodeEmptyVocabulary        ErrorCode = "empty_vocabulary"
	ErrorCodeSimilarityFailed       ErrorCode = "similarity_failed"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeEmbeddingQuotaExceeded ErrorCode = "embedding_quota_exceeded"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RecommendParams are the query parameters of GET /recommend.
type RecommendParams struct {
	Q        *string `form:"q,omitempty" json:"q,omitempty"`
	Season   *string `form:"season,omitempty" json:"season,omitempty"`
	Occasion *string `form:"occasion,omitempty" json:"occasion,omitempty"`
	Color    *string `form:"color,omitempty" json:"color,omitempty"`
	TopK     *int    `form:"top_k,omitempty" json:"top_k,omitempty"`
}

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	Q        string `json:"q"`
	Season   string `json:"season,omitempty"`
	Occasion string `json:"occasion,omitempty"`
	Color    string `json:"color,omitempty"`
	TopK     *int   `json:"top_k,omitempty"`
}

// OutfitItem is one ranked outfit.
type OutfitItem struct {
	Position   int     `json:"position"`
	Category   string  `json:"category"`
	StyleNotes string  `json:"style_notes"`
	Season     string  `json:"season"`
	Occasion   string  `json:"occasion"`
	Color      string  `json:"color"`
	ImageURL   string  `json:"image_url,omitempty"`
	PreviewURL *string `json:"preview_url,omitempty"`
	Score      float64 `json:"score"`
}

// RecommendResponse is the body of a successful /recommend call.
type RecommendResponse struct {
	Items []OutfitItem `json:"items"`
	Total int          `json:"total"`
	Mode  string       `json:"mode"`
}

// FacetsResponse lists the filter values present in the catalog.
type FacetsResponse struct {
	Seasons   []string `json:"seasons"`
	Occasions []string `json:"occasions"`
	Colors    []string `json:"colors"`
	Outfits   int      `json:"outfits"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ServerInterface is the set of HTTP operations served by the API.
type ServerInterface interface {
	// GET /recommend
	GetRecommendations(w http.ResponseWriter, r *http.Request, params RecommendParams)
	// POST /recommend
	PostRecommendations(w http.ResponseWriter, r *http.Request)
	// GET /facets
	GetFacets(w http.ResponseWriter, r *http.Request)
	// GET /health
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// GET /metrics
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a query parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions mounts si on options.BaseRouter (or a new router).
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := serverInterfaceWrapper{handler: si, errorHandlerFunc: options.ErrorHandlerFunc}

	r.Get("/recommend", wrapper.GetRecommendations)
	r.Post("/recommend", si.PostRecommendations)
	r.Get("/facets", si.GetFacets)
	r.Get("/health", si.HealthCheck)
	r.Get("/metrics", si.Metrics)
	return r
}

type serverInterfaceWrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// GetRecommendations binds query parameters and delegates.
func (sw serverInterfaceWrapper) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	var params RecommendParams
	query := r.URL.Query()

	bindings := []struct {
		name string
		dest any
	}{
		{"q", &params.Q},
		{"season", &params.Season},
		{"occasion", &params.Occasion},
		{"color", &params.Color},
		{"top_k", &params.TopK},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			sw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: b.name, Err: err})
			return
		}
	}

	sw.handler.GetRecommendations(w, r, params)
}
