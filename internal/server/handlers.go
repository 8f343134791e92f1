package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zhiwei-liang/geofile-go/internal/geodata"
)

func writeEnvelope(w http.ResponseWriter, status int, env geodata.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleChat answers GET /chat?q=... with a success envelope carrying the
// assistant's answer.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeEnvelope(w, http.StatusBadRequest, geodata.ErrorEnvelope("query parameter q is required", "invalid_value"))
		return
	}

	answer, err := s.assistant.HandleChat(r.Context(), q)
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, geodata.ErrorEnvelope(err.Error(), "chat_failure"))
		return
	}
	writeEnvelope(w, http.StatusOK, geodata.SuccessEnvelope(answer))
}

// handleChatStream answers GET /chat/stream?q=... with server-sent events,
// one data event per token chunk and a terminal [DONE] event.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeEnvelope(w, http.StatusBadRequest, geodata.ErrorEnvelope("query parameter q is required", "invalid_value"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeEnvelope(w, http.StatusInternalServerError, geodata.ErrorEnvelope("streaming unsupported", "chat_failure"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	_, err := s.assistant.StreamChat(r.Context(), q, func(chunk string) error {
		payload, merr := json.Marshal(map[string]string{"content": chunk})
		if merr != nil {
			return merr
		}
		if _, werr := fmt.Fprintf(w, "data: %s\n\n", payload); werr != nil {
			return werr
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		fmt.Fprintf(w, "data: {\"error\": %q}\n\n", err.Error())
		flusher.Flush()
		return
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// handleReadGeoFile answers GET /readGeoFile?q=<path> with the narrated
// report envelope.
func (s *Server) handleReadGeoFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("q")
	if path == "" {
		writeEnvelope(w, http.StatusBadRequest, geodata.ErrorEnvelope("query parameter q is required", "invalid_value"))
		return
	}

	env := s.assistant.HandleReadGeoFile(r.Context(), path, geodata.Options{})
	writeEnvelope(w, http.StatusOK, env)
}

type processRequest struct {
	FilePath  string `json:"file_path"`
	LonColumn string `json:"lon_col,omitempty"`
	LatColumn string `json:"lat_col,omitempty"`
}

// handleProcess answers POST /process with the raw pipeline envelope. Unlike
// /readGeoFile the report is returned verbatim, without narration.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, geodata.ErrorEnvelope("invalid request body", "invalid_value"))
		return
	}
	if req.FilePath == "" {
		writeEnvelope(w, http.StatusBadRequest, geodata.ErrorEnvelope("file_path is required", "invalid_value"))
		return
	}

	env := s.dispatcher.Process(r.Context(), req.FilePath, geodata.Options{
		LonColumn: req.LonColumn,
		LatColumn: req.LatColumn,
	})
	writeEnvelope(w, http.StatusOK, env)
}

type memoryAddRequest struct {
	Content  string `json:"content"`
	FilePath string `json:"file_path,omitempty"`
}

type memoryQueryRequest struct {
	Question string `json:"question"`
	FilePath string `json:"file_path,omitempty"`
}

// handleMemoryAdd answers POST /memory.
func (s *Server) handleMemoryAdd(w http.ResponseWriter, r *http.Request) {
	if s.memory == nil {
		writeEnvelope(w, http.StatusServiceUnavailable, geodata.ErrorEnvelope("memory store not configured", "data_source_failure"))
		return
	}

	var req memoryAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, geodata.ErrorEnvelope("invalid request body", "invalid_value"))
		return
	}
	if req.Content == "" {
		writeEnvelope(w, http.StatusBadRequest, geodata.ErrorEnvelope("content is required", "invalid_value"))
		return
	}

	id, err := s.memory.Add(r.Context(), req.Content, req.FilePath, nil)
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, geodata.ErrorEnvelope(err.Error(), "data_source_failure"))
		return
	}
	writeEnvelope(w, http.StatusOK, geodata.SuccessEnvelope(id))
}

// handleMemoryQuery answers POST /memory/query with the raw matches.
func (s *Server) handleMemoryQuery(w http.ResponseWriter, r *http.Request) {
	if s.memory == nil {
		writeEnvelope(w, http.StatusServiceUnavailable, geodata.ErrorEnvelope("memory store not configured", "data_source_failure"))
		return
	}

	var req memoryQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, geodata.ErrorEnvelope("invalid request body", "invalid_value"))
		return
	}
	if req.Question == "" {
		writeEnvelope(w, http.StatusBadRequest, geodata.ErrorEnvelope("question is required", "invalid_value"))
		return
	}

	matches, err := s.memory.Query(r.Context(), req.Question, req.FilePath)
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, geodata.ErrorEnvelope(err.Error(), "data_source_failure"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"matches": matches,
	})
}

// handleHealthz answers GET /healthz.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"ws_clients": s.hub.ClientCount(),
	})
}

// handleStats answers GET /stats with the metrics snapshot.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}
