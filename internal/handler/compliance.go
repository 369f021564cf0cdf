// Package handler contains the JSON API handlers.
//
// This file implements the compliance check endpoints: single check,
// batch, locale×platform compare, and rule corpus introspection.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rizzads/rizzads/internal/domain"
	"github.com/rizzads/rizzads/internal/rules"
	"github.com/rizzads/rizzads/internal/service"
)

// maxRequestBody caps JSON request bodies at 1 MiB. Ad copy is already
// capped far lower by domain validation; this guards the decoder.
const maxRequestBody = 1 << 20

// maxBatchRequests caps how many checks one batch call may carry.
const maxBatchRequests = 50

// =============================================================================
// Handler Configuration
// =============================================================================

// ComplianceHandler handles compliance check HTTP requests.
type ComplianceHandler struct {
	complianceService service.ComplianceService
	logger            *slog.Logger
}

// NewComplianceHandler creates a new ComplianceHandler.
func NewComplianceHandler(complianceService service.ComplianceService, logger *slog.Logger) *ComplianceHandler {
	return &ComplianceHandler{
		complianceService: complianceService,
		logger:            logger,
	}
}

// =============================================================================
// Route Registration
// =============================================================================

// RegisterRoutes registers all compliance routes with the provided mux.
//
// Routes:
// - POST /api/compliance/check   -> Check
// - POST /api/compliance/quick   -> Quick
// - POST /api/compliance/batch   -> Batch
// - POST /api/compliance/compare -> Compare
// - GET  /api/compliance/rules   -> Rules
func (h *ComplianceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/compliance/check", h.Check)
	mux.HandleFunc("POST /api/compliance/quick", h.Quick)
	mux.HandleFunc("POST /api/compliance/batch", h.Batch)
	mux.HandleFunc("POST /api/compliance/compare", h.Compare)
	mux.HandleFunc("GET /api/compliance/rules", h.Rules)
}

// =============================================================================
// POST /api/compliance/check - Single Check
// =============================================================================

// Check runs the full two-stage pipeline for one piece of ad copy.
func (h *ComplianceHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req domain.ComplianceCheckRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	result, err := h.complianceService.CheckCompliance(r.Context(), req)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// POST /api/compliance/quick - Heuristic Pre-Screen
// =============================================================================

// QuickCheckRequest carries the ad copy for a heuristic pre-screen.
type QuickCheckRequest struct {
	AdCopy string `json:"adCopy"`
}

// Quick runs the red-flag heuristic screen. No rule corpus lookup and no
// AI call; callers use it to gate whether a full check is worth paying for.
func (h *ComplianceHandler) Quick(w http.ResponseWriter, r *http.Request) {
	var req QuickCheckRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	if strings.TrimSpace(req.AdCopy) == "" {
		ErrorResponse(w, r, h.logger, domain.NewValidationError("compliance.quick", "adCopy", "ad copy is required"))
		return
	}

	writeJSON(w, http.StatusOK, service.QuickCheck(req.AdCopy))
}

// =============================================================================
// POST /api/compliance/batch - Batch Check
// =============================================================================

// BatchRequest wraps the list of checks for a batch call.
type BatchRequest struct {
	Requests []domain.ComplianceCheckRequest `json:"requests"`
}

// BatchResponse carries the per-request results, input order preserved.
type BatchResponse struct {
	Results []domain.ComplianceCheckResult `json:"results"`
}

// Batch runs up to maxBatchRequests checks concurrently. Failed members
// come back as synthetic failed results, never as an HTTP error.
func (h *ComplianceHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	if len(req.Requests) == 0 {
		ErrorResponse(w, r, h.logger, domain.NewValidationError("compliance.batch", "requests", "at least one request is required"))
		return
	}
	if len(req.Requests) > maxBatchRequests {
		ErrorResponse(w, r, h.logger, domain.NewValidationError("compliance.batch", "requests", "too many requests in one batch"))
		return
	}

	results := h.complianceService.BatchCheckCompliance(r.Context(), req.Requests)

	writeJSON(w, http.StatusOK, BatchResponse{Results: results})
}

// =============================================================================
// POST /api/compliance/compare - Locale × Platform Compare
// =============================================================================

// Compare checks the cross product of locales and platforms and ranks
// the combinations.
func (h *ComplianceHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req domain.CompareComplianceRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	result, err := h.complianceService.CompareCompliance(r.Context(), req)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// GET /api/compliance/rules - Corpus Introspection
// =============================================================================

// Rules returns the rule corpus, optionally filtered by query parameters
// locale, platform, and industry. Unknown filter values yield empty maps.
func (h *ComplianceHandler) Rules(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	snap := h.complianceService.Rules(rules.SnapshotFilter{
		Locale:   q.Get("locale"),
		Platform: q.Get("platform"),
		Industry: q.Get("industry"),
	})

	writeJSON(w, http.StatusOK, snap)
}

// =============================================================================
// Shared JSON Helpers
// =============================================================================

// decodeJSON decodes the request body into dst. On failure it writes the
// error response itself and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			ErrorResponse(w, r, logger, domain.Errorf(domain.ETOOLARGE, "", "Request body too large"))
			return false
		}
		ErrorResponse(w, r, logger, domain.Errorf(domain.EINVALID, "", "Invalid JSON request body"))
		return false
	}

	return true
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
