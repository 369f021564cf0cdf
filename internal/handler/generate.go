// Package handler contains the JSON API handlers.
//
// This file implements the ad variant generation endpoint.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/rizzads/rizzads/internal/domain"
	"github.com/rizzads/rizzads/internal/service"
)

// GenerateHandler handles ad variant generation HTTP requests.
type GenerateHandler struct {
	generatorService service.GeneratorService
	logger           *slog.Logger
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(generatorService service.GeneratorService, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{
		generatorService: generatorService,
		logger:           logger,
	}
}

// RegisterRoutes registers the generation route with the provided mux.
//
// Routes:
// - POST /api/generate -> Generate
func (h *GenerateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/generate", h.Generate)
}

// Generate produces localized, platform-fitted variants of the submitted
// ad copy. Per-locale failures come back as degraded variants inside a
// 200 response, not as an HTTP error.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateVariantsRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	result, err := h.generatorService.GenerateVariants(r.Context(), req)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
