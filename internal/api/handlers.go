package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/moneymitra/server/internal/agent/model"
	errx "github.com/moneymitra/server/internal/core/error"
	"github.com/moneymitra/server/internal/display"
	logx "github.com/moneymitra/server/pkg/logger"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

// ToolSummary is one entry of GET /api/tools.
type ToolSummary struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CallLabel   string       `json:"callLabel"`
	ResultLabel string       `json:"resultLabel"`
	Icon        display.Icon `json:"icon"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"chat":   s.chat != nil,
		"tools":  len(s.tools.Names()),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "chat is not configured"})
		return
	}

	var in model.QueryInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		writeError(w, errx.InvalidArgument("request body must be a JSON object with a message"))
		return
	}

	reply, err := s.chat.Invoke(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleResetConversation(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "chat is not configured"})
		return
	}
	if err := s.chat.Reset(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	names := s.tools.Names()
	out := make([]ToolSummary, 0, len(names))
	for _, name := range names {
		summary := ToolSummary{Name: name}
		if info, ok := s.tools.Info(name); ok {
			summary.Description = info.Desc
		}
		d := display.Lookup(name)
		summary.CallLabel = d.CallLabel
		summary.ResultLabel = d.ResultLabel
		summary.Icon = d.CallIcon
		out = append(out, summary)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleInvokeTool(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, errx.InvalidArgument("request body too large"))
		return
	}
	args := strings.TrimSpace(string(body))
	if args != "" {
		var obj map[string]any
		if err := json.Unmarshal([]byte(args), &obj); err != nil {
			writeError(w, errx.InvalidArgument("request body must be a JSON object"))
			return
		}
	}

	result, err := s.tools.Invoke(r.Context(), mux.Vars(r)["name"], args)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, result)
}

// writeError maps err to its AppError status. Messages of unclassified errors
// are not exposed.
func writeError(w http.ResponseWriter, err error) {
	status := errx.StatusOf(err)
	msg := errx.SystemErrorMessage

	var appErr *errx.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
		if errors.Is(appErr, errx.ErrUpstreamStatus) {
			msg = appErr.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		logx.Error().Err(err).Int("status", status).Msg("Request failed")
	} else {
		logx.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Warn().Err(err).Msg("Failed to write response")
	}
}
