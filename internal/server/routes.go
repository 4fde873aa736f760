package server

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/ziadkadry99/ai-tutor/internal/tutor"
)

// maxBodyBytes bounds the request body; the query itself is limited further
// by the tutor service.
const maxBodyBytes = 64 << 10

type searchRequest struct {
	Query string `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	client := clientID(r)
	if err := s.tutor.Admit(client); err != nil {
		writeError(w, err)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.Printf("server: decoding search request from %s: %v", client, err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := s.tutor.Answer(r.Context(), req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNamespace(w http.ResponseWriter, r *http.Request) {
	if s.namespaces == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "No active namespace"})
		return
	}
	p, err := s.namespaces.Read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("server: reading namespace pointer: %v", err)
		}
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "No active namespace"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// clientID identifies the caller for rate limiting: the first
// X-Forwarded-For entry, else the remote host.
func clientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func writeError(w http.ResponseWriter, err error) {
	te := tutor.AsError(err)
	if te.Kind == tutor.KindInternal {
		log.Printf("server: %v", err)
	}
	writeJSON(w, te.Kind.HTTPStatus(), errorResponse{Error: te.Message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
