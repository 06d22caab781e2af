package api

import (
	"errors"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/TimurManjosov/gojungse/internal/engine"
	"github.com/TimurManjosov/gojungse/internal/rules"
)

type rulesResponse struct {
	ID        string       `json:"id"`
	ETag      string       `json:"etag"`
	Origin    string       `json:"origin,omitempty"`
	LoadedAt  time.Time    `json:"loadedAt"`
	RuleCount int          `json:"ruleCount"`
	Rules     []rules.Rule `json:"rules"`
}

type warning struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type loadResponse struct {
	RuleCount int       `json:"ruleCount"`
	ETag      string    `json:"etag"`
	Origin    string    `json:"origin,omitempty"`
	Warnings  []warning `json:"warnings"`
}

func newLoadResponse(res engine.LoadResult) loadResponse {
	out := loadResponse{
		RuleCount: res.RuleCount,
		ETag:      res.ETag,
		Origin:    res.Origin,
		Warnings:  make([]warning, 0, len(res.Warnings)),
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, warning{Row: w.Row, Field: w.Field, Message: w.Error()})
	}
	return out
}

func (s *Server) handleGetRules(w http.ResponseWriter, r *http.Request) {
	tbl := s.engine.Table()
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == tbl.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	rs := tbl.Rules
	if rs == nil {
		rs = []rules.Rule{}
	}
	w.Header().Set("ETag", tbl.ETag)
	writeJSON(w, http.StatusOK, rulesResponse{
		ID:        tbl.ID,
		ETag:      tbl.ETag,
		Origin:    tbl.Origin,
		LoadedAt:  tbl.LoadedAt,
		RuleCount: tbl.Len(),
		Rules:     rs,
	})
}

// handlePutRules replaces the table with the CSV request body. A configured
// store is written first so a failed write leaves the table untouched.
func (s *Server) handlePutRules(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTableBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RequestTooLargeError(w, r, "rule table exceeds 4 MiB")
			return
		}
		BadRequestError(w, r, ErrCodeBadRequest, "could not read request body")
		return
	}
	if !utf8.Valid(body) {
		BadRequestError(w, r, ErrCodeInvalidEncoding, engine.ErrInvalidEncoding.Error())
		return
	}

	origin := "push"
	if s.opts.Store != nil {
		if err := s.opts.Store.PutRuleTable(r.Context(), s.opts.TableName, string(body)); err != nil {
			s.log.Error().Err(err).Str("table", s.opts.TableName).Msg("persist rule table")
			writeError(w, r, http.StatusInternalServerError, ErrCodeStoreFailed, "could not persist rule table")
			return
		}
		origin = "store:" + s.opts.TableName
	}

	res, err := s.engine.LoadRuleTableFrom(string(body), origin)
	if err != nil {
		InternalError(w, r, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newLoadResponse(res))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.opts.Source == nil {
		writeError(w, r, http.StatusConflict, ErrCodeNoSource, "no rule source configured")
		return
	}

	res, err := s.engine.Reload(r.Context(), s.opts.Source)
	if err != nil {
		if errors.Is(err, engine.ErrSourceUnavailable) {
			writeError(w, r, http.StatusBadGateway, ErrCodeSourceUnavailable, err.Error())
			return
		}
		// the source answered with bytes the engine rejected
		writeError(w, r, http.StatusBadGateway, ErrCodeInvalidEncoding, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newLoadResponse(res))
}
