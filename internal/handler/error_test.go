package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rizzads/rizzads/internal/domain"
)

func TestErrorCodeToHTTPStatus(t *testing.T) {
	testCases := []struct {
		code   string
		status int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ETOOLARGE, http.StatusRequestEntityTooLarge},
		{domain.ERATELIMIT, http.StatusTooManyRequests},
		{domain.EEXTERNAL, http.StatusBadGateway},
		{domain.EGENERATION, http.StatusBadGateway},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{domain.ENOTIMPL, http.StatusNotImplemented},
		{"unknown_code", http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			if got := ErrorCodeToHTTPStatus(tc.code); got != tc.status {
				t.Errorf("code %s: expected %d, got %d", tc.code, tc.status, got)
			}
		})
	}
}

func TestErrorResponse_DomainError(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/compliance/check", nil)
	rec := httptest.NewRecorder()

	err := domain.Errorf(domain.ERATELIMIT, "compliance.check", "Too many requests")
	ErrorResponse(rec, req, handlerLogger(), err)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}

	var resp JSONError
	if decodeErr := json.NewDecoder(rec.Body).Decode(&resp); decodeErr != nil {
		t.Fatalf("failed to decode error: %v", decodeErr)
	}
	if resp.Error.Code != domain.ERATELIMIT {
		t.Errorf("expected code %s, got %s", domain.ERATELIMIT, resp.Error.Code)
	}
	if resp.Error.Message != "Too many requests" {
		t.Errorf("unexpected message: %q", resp.Error.Message)
	}
}

func TestErrorResponse_ValidationErrorCarriesFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/compliance/check", nil)
	rec := httptest.NewRecorder()

	verr := domain.NewValidationError("compliance.check", "adCopy", "ad copy is required")
	domain.AddFieldError(verr, "locale", "locale is required")
	ErrorResponse(rec, req, handlerLogger(), verr)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp JSONError
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if len(resp.Error.Fields) != 2 {
		t.Errorf("expected 2 field errors, got %v", resp.Error.Fields)
	}
}

func TestErrorResponse_PlainErrorHidesDetails(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/compliance/rules", nil)
	rec := httptest.NewRecorder()

	ErrorResponse(rec, req, handlerLogger(), errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp JSONError
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if resp.Error.Message == "pq: connection refused" {
		t.Error("internal error details must not leak to the client")
	}
}
