package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/julianstephens/deeply/internal/constants"
	"github.com/julianstephens/deeply/internal/logger"
	"github.com/julianstephens/deeply/internal/models"
	"github.com/julianstephens/deeply/internal/service"
)

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var errRouteNotFound = errors.New("not found")

func (s *Server) listTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := s.svc.ListTodos(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	fields, err := readObject(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	todo, err := s.svc.CreateTodo(r.Context(), fields)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (s *Server) updateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.fail(w, r, errRouteNotFound)
		return
	}
	fields, err := readObject(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	todo, err := s.svc.UpdateTodo(r.Context(), id, fields)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) deleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.fail(w, r, errRouteNotFound)
		return
	}
	if err := s.svc.DeleteTodo(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) logSession(w http.ResponseWriter, r *http.Request) {
	fields, err := readObject(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	session, err := s.svc.LogSession(r.Context(), fields)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.TodayStats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) insights(w http.ResponseWriter, r *http.Request) {
	offset := 0
	if v := r.URL.Query().Get("week_offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.fail(w, r, &models.ValidationError{Field: "week_offset", Message: "must be an integer"})
			return
		}
		offset = n
	}

	insights, err := s.svc.WeeklyInsights(r.Context(), offset)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

func (s *Server) modes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Modes())
}

// pathID parses the {id} segment. Non-integer ids address no todo.
// pathID parses the {id} segment. Only plain digits are ids; a sign makes
// the path a missing todo.
func pathID(r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	if raw == "" || raw[0] < '0' || raw[0] > '9' {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

// readObject reads a size-limited body and decodes it as a JSON object
func readObject(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &models.ValidationError{Message: "request body too large"}
		}
		return nil, &models.ValidationError{Message: "failed to read request body"}
	}
	return models.DecodeObject(data)
}

// fail maps an error onto a status code and JSON error body
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error()})
	case errors.Is(err, service.ErrTodoNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: service.ErrTodoNotFound.Error()})
	case errors.Is(err, errRouteNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
