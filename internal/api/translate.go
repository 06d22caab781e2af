package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/TimurManjosov/gojungse/internal/engine"
)

type translateRequest struct {
	Text  *string `json:"text"`
	Debug bool    `json:"debug"`
}

type translateResponse struct {
	Output  string               `json:"output"`
	Applied []engine.Application `json:"applied,omitempty"`
	ETag    string               `json:"etag"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTranslateBytes)

	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RequestTooLargeError(w, r, "request body too large")
			return
		}
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid JSON")
		return
	}
	if req.Text == nil {
		BadRequestError(w, r, ErrCodeMissingField, "text is required")
		return
	}
	s.translate(w, *req.Text, req.Debug)
}

func (s *Server) handleTranslateQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("text") {
		BadRequestError(w, r, ErrCodeMissingField, "text is required")
		return
	}
	debug, _ := strconv.ParseBool(q.Get("debug"))
	s.translate(w, q.Get("text"), debug)
}

func (s *Server) translate(w http.ResponseWriter, text string, debug bool) {
	res := s.engine.Translate(text, debug)
	w.Header().Set("ETag", res.ETag)
	writeJSON(w, http.StatusOK, translateResponse{
		Output:  res.Output,
		Applied: res.Applied,
		ETag:    res.ETag,
	})
}
