package api

import (
	"context"
	"duewatch/internal/domain"
	"duewatch/internal/scheduler"
	"duewatch/internal/usecase"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Checker is the part of the scheduler loop the API drives.
type Checker interface {
	CheckNow(ctx context.Context) scheduler.Report
	Preview(ctx context.Context, at time.Time) ([]domain.Task, error)
	State() scheduler.State
	LastReport() scheduler.Report
}

type DueDateEditor interface {
	SetDueDate(ctx context.Context, id string, due domain.DueDate) (domain.Task, error)
}

type Server struct {
	router *chi.Mux
	loop   Checker
	editor DueDateEditor
}

func NewServer(loop Checker, editor DueDateEditor) *Server {
	s := &Server{loop: loop, editor: editor}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggerHandler(func(r *http.Request) bool { return r.URL.Path == "/healthz" }))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	r.Get("/status", s.status)
	r.Post("/check", s.check)
	r.Get("/tasks/due", s.due)
	r.Put("/tasks/{id}/due-date", s.setDueDate)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves on port until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	httpServer := http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", port),
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("server serving on port %d", port)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Server is shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}

type statusResp struct {
	State scheduler.State  `json:"state"`
	Last  scheduler.Report `json:"last"`
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResp{State: s.loop.State(), Last: s.loop.LastReport()})
}

func (s *Server) check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.loop.CheckNow(r.Context()))
}

type dueTask struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	DueDate  domain.DueDate  `json:"dueDate"`
	Priority domain.Priority `json:"priority,omitempty"`
}

func (s *Server) due(w http.ResponseWriter, r *http.Request) {
	var at time.Time
	if v := r.URL.Query().Get("at"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "at must be RFC 3339", http.StatusBadRequest)
			return
		}
		at = t
	}
	tasks, err := s.loop.Preview(r.Context(), at)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("preview due tasks")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dueTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, dueTask{ID: t.ID, Title: t.Title, DueDate: t.DueDate, Priority: t.Priority})
	}
	writeJSON(w, http.StatusOK, out)
}

type setDueDateReq struct {
	DueDate domain.DueDate `json:"dueDate"`
}

func (s *Server) setDueDate(w http.ResponseWriter, r *http.Request) {
	var req setDueDateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, ok := req.DueDate.Time(); !ok && !req.DueDate.IsZero() {
		http.Error(w, "dueDate must be RFC 3339 or null", http.StatusBadRequest)
		return
	}
	task, err := s.editor.SetDueDate(r.Context(), chi.URLParam(r, "id"), req.DueDate)
	if err != nil {
		if errors.Is(err, usecase.ErrTaskNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Msg("set due date")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
