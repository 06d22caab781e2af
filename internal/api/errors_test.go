package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(http.StatusBadGateway, ErrCodeSourceUnavailable, "rule source unavailable")

	if resp.Error != "Bad Gateway" {
		t.Errorf("Expected Error 'Bad Gateway', got '%s'", resp.Error)
	}
	if resp.Message != "rule source unavailable" {
		t.Errorf("Expected Message 'rule source unavailable', got '%s'", resp.Message)
	}
	if resp.Code != ErrCodeSourceUnavailable {
		t.Errorf("Expected Code SOURCE_UNAVAILABLE, got '%s'", resp.Code)
	}
}

func TestErrorResponse_WithRequestID(t *testing.T) {
	resp := NewErrorResponse(http.StatusInternalServerError, ErrCodeInternal, "Internal error").
		WithRequestID("req-123")

	if resp.RequestID != "req-123" {
		t.Errorf("Expected RequestID 'req-123', got '%s'", resp.RequestID)
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		write      func(http.ResponseWriter, *http.Request)
		wantStatus int
		wantCode   ErrorCode
	}{
		{"bad request", func(w http.ResponseWriter, r *http.Request) {
			BadRequestError(w, r, ErrCodeInvalidJSON, "invalid JSON")
		}, http.StatusBadRequest, ErrCodeInvalidJSON},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) { UnauthorizedError(w, r, "missing") }, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"forbidden", func(w http.ResponseWriter, r *http.Request) { ForbiddenError(w, r, "nope") }, http.StatusForbidden, ErrCodeForbidden},
		{"internal", func(w http.ResponseWriter, r *http.Request) { InternalError(w, r, "boom") }, http.StatusInternalServerError, ErrCodeInternal},
		{"too large", func(w http.ResponseWriter, r *http.Request) { RequestTooLargeError(w, r, "big") }, http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/v1/rules", nil)
			tt.write(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("Expected Code %s, got %s", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestWriteErrorResponse_RequestID(t *testing.T) {
	var got ErrorResponse
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		InternalError(w, r, "boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.RequestID == "" {
		t.Error("Expected request_id to be set")
	}
}
