// Package http exposes the staircase engine as a small session API, so
// experiment hosts (e.g. browser runtimes) can drive runs remotely.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"

	"github.com/perceptlab/staircase"
	"github.com/perceptlab/staircase/internal/logging"
	"github.com/perceptlab/staircase/pkg/domain"
	"github.com/perceptlab/staircase/pkg/ports"
	"github.com/perceptlab/staircase/pkg/session"
)

// Server exposes a session.Manager over HTTP.
type Server struct {
	manager *session.Manager
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for the given session manager.
func NewHandler(manager *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		manager: manager,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleState)
			r.Delete("/", s.handleDelete)
			r.Post("/responses", s.handleResponse)
			r.Get("/data", s.handleData)
		})
	})
	return r
}

// createRequest is the POST /sessions payload.
type createRequest struct {
	Name       string           `json:"name"`
	VarName    string           `json:"varName"`
	StairType  string           `json:"stairType"`
	Method     string           `json:"method"`
	NTrials    int              `json:"nTrials"`
	Seed       *int64           `json:"seed"`
	Conditions []map[string]any `json:"conditions"`
}

// stateResponse describes a session's observable state.
type stateResponse struct {
	ID        string   `json:"id"`
	Finished  bool     `json:"finished"`
	Label     *string  `json:"label,omitempty"`
	Intensity *float64 `json:"intensity,omitempty"`
	Trials    int      `json:"trials"`
}

// responseRequest is the POST /sessions/{id}/responses payload.
type responseRequest struct {
	Response int      `json:"response"`
	Value    *float64 `json:"value,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	stairType, err := domain.ParseStairType(body.StairType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	method := domain.MethodSequential
	if body.Method != "" {
		method, err = domain.ParseMethod(body.Method)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	conditions, err := decodeConditions(body.Conditions)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := []staircase.Option{
		staircase.WithConditions(conditions),
		staircase.WithMethod(method),
	}
	if body.Name != "" {
		opts = append(opts, staircase.WithName(body.Name))
	}
	if body.NTrials > 0 {
		opts = append(opts, staircase.WithTrialCap(body.NTrials))
	}
	if body.Seed != nil {
		opts = append(opts, staircase.WithSeed(*body.Seed))
	}

	id, err := s.manager.Create(r.Context(), body.VarName, stairType, opts...)
	if err != nil {
		var runErr *domain.RunError
		if errors.As(err, &runErr) {
			http.Error(w, runErr.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error("session creation failed", "error", err)
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	s.writeState(w, http.StatusCreated, id)
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": s.manager.List()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, http.StatusOK, chi.URLParam(r, "sessionID"))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.manager.Delete(id); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResponse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var body responseRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	err := s.manager.With(id, func(sess *staircase.Session) error {
		if body.Value != nil {
			return sess.AddResponse(r.Context(), body.Response, *body.Value)
		}
		return sess.AddResponse(r.Context(), body.Response)
	})
	switch {
	case err == nil:
		s.writeState(w, http.StatusOK, id)
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidResponse):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error("response handling failed", "session", id, "error", err)
		http.Error(w, "failed to register response", http.StatusInternalServerError)
	}
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var records []ports.Record
	err := s.manager.With(id, func(sess *staircase.Session) error {
		var dataErr error
		records, dataErr = sess.Data(r.Context())
		return dataErr
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"records": records})
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
	default:
		s.logger.Error("data read failed", "session", id, "error", err)
		http.Error(w, "failed to read session data", http.StatusInternalServerError)
	}
}

func (s *Server) writeState(w http.ResponseWriter, status int, id string) {
	resp := stateResponse{ID: id}
	err := s.manager.With(id, func(sess *staircase.Session) error {
		resp.Finished = sess.Finished()
		resp.Trials = sess.Iterator().Filled()
		if proc, ok := sess.CurrentStaircase(); ok {
			label := proc.Name()
			resp.Label = &label
		}
		if intensity, ok := sess.Intensity(); ok {
			resp.Intensity = &intensity
		}
		return nil
	})
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, status, resp)
}

// decodeConditions converts raw JSON condition objects into domain
// conditions, keeping field presence intact for validation downstream.
func decodeConditions(raw []map[string]any) ([]domain.Condition, error) {
	conditions := make([]domain.Condition, 0, len(raw))
	for i, row := range raw {
		var cond domain.Condition
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &cond,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(row); err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		conditions = append(conditions, cond)
	}
	return conditions, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
