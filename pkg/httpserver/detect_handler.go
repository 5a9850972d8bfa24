package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/mselser95/solana-cycle-arb/internal/arbitrage"
	"github.com/mselser95/solana-cycle-arb/internal/edgefile"
	"github.com/mselser95/solana-cycle-arb/internal/pipeline"
	"github.com/mselser95/solana-cycle-arb/pkg/types"
	"go.uber.org/zap"
)

// maxBodyBytes caps POST /api/detect request bodies.
const maxBodyBytes = 16 << 20

// Runner runs detection over an edge batch and remembers the latest report.
type Runner interface {
	Run(ctx context.Context, edges []types.Edge) (*pipeline.Result, error)
	Latest() (*arbitrage.Report, bool)
}

// DetectHandler handles the detection API.
type DetectHandler struct {
	runner Runner
	logger *zap.Logger
}

// NewDetectHandler creates a new detection handler.
func NewDetectHandler(runner Runner, logger *zap.Logger) *DetectHandler {
	return &DetectHandler{
		runner: runner,
		logger: logger,
	}
}

// DetectResponse is the body of a successful detection request.
type DetectResponse struct {
	Cached  bool              `json:"cached"`
	Dropped int               `json:"dropped_edges"`
	Report  *arbitrage.Report `json:"report"`
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Index *int   `json:"index,omitempty"` // Offending edge record, for validation errors
	Field string `json:"field,omitempty"`
}

// HandleDetect handles POST /api/detect?limit=N. The body is a JSON array of
// edge records or an object with an "edges" array.
func (h *DetectHandler) HandleDetect(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		h.writeError(w, ErrorResponse{Error: err.Error()}, http.StatusBadRequest)
		return
	}

	edges, err := edgefile.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	h.logger.Debug("detect-request-received", zap.Int("edges", len(edges)))

	result, err := h.runner.Run(r.Context(), edges)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	report := *result.Report
	report.Opportunities = report.Top(limit)

	h.writeJSON(w, http.StatusOK, DetectResponse{
		Cached:  result.Cached,
		Dropped: len(result.Dropped),
		Report:  &report,
	})
}

// HandleLatest handles GET /api/runs/latest.
func (h *DetectHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	report, ok := h.runner.Latest()
	if !ok {
		h.writeError(w, ErrorResponse{Error: "no detection run has completed yet"}, http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.New("limit must be a non-negative integer")
	}
	return limit, nil
}

func (h *DetectHandler) writeFailure(w http.ResponseWriter, err error) {
	var vErr *types.ValidationError
	if errors.As(err, &vErr) {
		resp := ErrorResponse{Error: vErr.Error(), Field: vErr.Field}
		if vErr.Index >= 0 {
			idx := vErr.Index
			resp.Index = &idx
		}
		h.writeError(w, resp, http.StatusBadRequest)
		return
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.writeError(w, ErrorResponse{Error: "request body too large"}, http.StatusRequestEntityTooLarge)
		return
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		h.writeError(w, ErrorResponse{Error: err.Error()}, http.StatusServiceUnavailable)
		return
	}

	h.logger.Error("detect-request-failed", zap.Error(err))
	h.writeError(w, ErrorResponse{Error: "internal error"}, http.StatusInternalServerError)
}

func (h *DetectHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (h *DetectHandler) writeError(w http.ResponseWriter, resp ErrorResponse, statusCode int) {
	h.writeJSON(w, statusCode, resp)
}
