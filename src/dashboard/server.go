// Package dashboard serves a small web UI that kicks off a conformance run
// and streams each result record to the browser over server-sent events, so
// partial progress is visible before the catalog completes.
package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	probe "github.com/Protocol-Lattice/go-probe"
)

// Server exposes the dashboard page and its event stream.
type Server struct {
	Runner *probe.Runner
	Logger zerolog.Logger
}

func New(runner *probe.Runner, logger zerolog.Logger) *Server {
	return &Server{Runner: runner, Logger: logger}
}

// Handler routes the index page and the /events stream.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/events", s.handleEvents)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

// handleEvents runs the probe and re-emits every record as one data: line.
// Closing the browser tab cancels the request context and stops the run
// between tools.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	count := 0
	for rec := range s.Runner.Run(r.Context()) {
		data, err := json.Marshal(rec)
		if err != nil {
			s.Logger.Error().Err(err).Str("tool", rec.Name).Msg("encode record")
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
		count++
	}

	fmt.Fprintf(w, "event: done\ndata: {\"tested\": %d}\n\n", count)
	flusher.Flush()
	s.Logger.Info().Int("tested", count).Msg("dashboard run complete")
}
