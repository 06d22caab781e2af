package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/TimurManjosov/gojungse/internal/telemetry"
)

type ruleEvent struct {
	ETag string `json:"etag"`
}

// handleRuleEvents streams rule table changes as server-sent events: one
// "init" event with the current ETag, then an "update" event per swap.
func (s *Server) handleRuleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		InternalError(w, r, "streaming unsupported")
		return
	}

	updates, unsubscribe := s.engine.Tables().Subscribe()
	defer unsubscribe()

	telemetry.SSEClients.Inc()
	defer telemetry.SSEClients.Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "init", s.engine.Table().ETag); err != nil {
		return
	}
	flusher.Flush()

	keepAlive := time.NewTicker(s.opts.SSEKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case etag := <-updates:
			if err := writeEvent(w, "update", etag); err != nil {
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event, etag string) error {
	data, err := json.Marshal(ruleEvent{ETag: etag})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
