// Package review serves the manual-correction HTTP surface over a rendered
// web export. The store is the export document itself: loaded at startup,
// mutated by updates, persisted back to the same file.
package review

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/examsift/examsift/internal/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the review HTTP server. Safe for concurrent use; all document
// access goes through the mutex.
type Server struct {
	mu       sync.Mutex
	doc      *render.WebDocument
	dataFile string
	router   chi.Router
	log      *slog.Logger
}

// NewServer loads the web-export document from dataFile and builds the
// router.
func NewServer(dataFile string, log *slog.Logger) (*Server, error) {
	data, err := os.ReadFile(dataFile)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	var doc render.WebDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse data file: %w", err)
	}

	s := &Server{doc: &doc, dataFile: dataFile, log: log}
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// QuestionCount reports how many questions the loaded document holds.
func (s *Server) QuestionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.doc.Questions)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(corsMiddleware)
		r.Get("/questions", s.handleQuestions)
		r.Post("/questions/update", s.handleUpdate)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleQuestions returns the whole document; the UI filters client-side.
func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.doc); err != nil {
		s.log.Error("encode questions", "error", err)
	}
}

// updateRequest is the correction payload. Pointer fields distinguish
// "leave alone" from "set to empty"; metadata merges key by key.
type updateRequest struct {
	ID          string            `json:"id"`
	Number      *string           `json:"number,omitempty"`
	Description *string           `json:"description,omitempty"`
	Options     map[string]string `json:"options,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
}

// handleUpdate overwrites named fields on one question, last writer wins,
// and persists the document.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		jsonError(w, "missing question id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.doc.Questions {
		if s.doc.Questions[i].ID == req.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		jsonError(w, "question not found", http.StatusNotFound)
		return
	}

	q := &s.doc.Questions[idx]
	if req.Number != nil {
		q.Number = *req.Number
	}
	if req.Description != nil {
		q.Description = *req.Description
	}
	if req.Options != nil {
		q.Options = req.Options
	}
	applyMetadata(&q.Metadata, req.Metadata)

	if err := s.persist(); err != nil {
		s.log.Error("persist data file", "error", err)
		jsonError(w, "failed to save changes", http.StatusInternalServerError)
		return
	}

	s.log.Info("question updated", "id", req.ID)
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func applyMetadata(meta *render.WebQuestionMeta, updates map[string]any) {
	for key, value := range updates {
		switch key {
		case "topic":
			if s, ok := value.(string); ok {
				meta.Topic = s
			}
		case "page":
			if n, ok := value.(float64); ok {
				meta.Page = int(n)
			}
		case "source":
			if s, ok := value.(string); ok {
				meta.Source = s
			}
		case "date":
			if s, ok := value.(string); ok {
				meta.Date = s
			}
		case "confidence":
			if f, ok := value.(float64); ok {
				meta.Confidence = f
			}
		}
	}
}

// persist writes the document back to the data file. Caller holds the mutex.
func (s *Server) persist() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := os.WriteFile(s.dataFile, data, 0644); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	return nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
