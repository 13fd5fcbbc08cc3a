package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/keyforge/pkg/buildinfo"
	"github.com/matzehuels/keyforge/pkg/core/keyboard"
	"github.com/matzehuels/keyforge/pkg/core/layout"
	"github.com/matzehuels/keyforge/pkg/core/transition"
	kerrors "github.com/matzehuels/keyforge/pkg/errors"
	"github.com/matzehuels/keyforge/pkg/observability"
	"github.com/matzehuels/keyforge/pkg/pipeline"
	"github.com/matzehuels/keyforge/pkg/render"
)

// =============================================================================
// Request & Response Bodies
// =============================================================================

// LayoutRequest is the body of POST /v1/layouts.
type LayoutRequest struct {
	Matrix    *transition.Matrix `json:"matrix"`
	Strategy  string             `json:"strategy,omitempty"`
	NodeLimit int                `json:"node_limit,omitempty"`
	Refresh   bool               `json:"refresh,omitempty"`
}

// LayoutResponse is the answer to POST /v1/layouts.
type LayoutResponse struct {
	ID     uuid.UUID     `json:"id"`
	Layout layout.Result `json:"layout"`
	Rows   [][]int       `json:"rows"`
	Keys   [][]string    `json:"keys,omitempty"` // present when the matrix has an alphabet
	Cached bool          `json:"cached"`
}

// KeyboardRequest is the body of POST /v1/keyboards.
type KeyboardRequest struct {
	Name      string `json:"name"`
	Matrix    string `json:"matrix"`
	Strategy  string `json:"strategy,omitempty"`
	NodeLimit int    `json:"node_limit,omitempty"`
	Refresh   bool   `json:"refresh,omitempty"`
}

// KeyboardResponse is the answer to POST /v1/keyboards.
type KeyboardResponse struct {
	Keyboard   *keyboard.Keyboard `json:"keyboard"`
	GreedyCost float64            `json:"greedy_cost"`
	Stats      layout.Stats       `json:"stats"`
	Cached     bool               `json:"cached"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code      kerrors.Code `json:"code"`
	Message   string       `json:"message"`
	RequestID string       `json:"request_id,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Matrix == nil {
		s.fail(w, r, kerrors.New(kerrors.ErrCodeInvalidMatrix, "matrix is required"))
		return
	}
	opts, err := s.layoutOptions(req.Strategy, req.NodeLimit, req.Refresh)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, hit, err := s.runner.ComputeLayoutWithCacheInfo(r.Context(), req.Matrix, opts)
	if err != nil {
		s.fail(w, r, kerrors.Wrap(kerrors.ErrCodeInternal, err, "compute layout"))
		return
	}

	resp := LayoutResponse{ID: uuid.New(), Layout: res, Rows: res.Grid.ToRows(), Cached: hit}
	if alpha := req.Matrix.Alphabet(); alpha != nil {
		kb, err := keyboard.New("", alpha, res.Grid)
		if err != nil {
			s.fail(w, r, kerrors.Wrap(kerrors.ErrCodeInternal, err, "label layout"))
			return
		}
		resp.Keys = kb.Keys
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListKeyboards(w http.ResponseWriter, r *http.Request) {
	kbs, err := s.ws.Keyboards(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if kbs == nil {
		kbs = []*keyboard.Keyboard{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"keyboards": kbs})
}

func (s *Server) handleGenerateKeyboard(w http.ResponseWriter, r *http.Request) {
	var req KeyboardRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	opts, err := s.layoutOptions(req.Strategy, req.NodeLimit, req.Refresh)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	gen, err := s.ws.GenerateKeyboard(r.Context(), req.Name, req.Matrix, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/keyboards/"+gen.Keyboard.Name)
	writeJSON(w, http.StatusCreated, KeyboardResponse{
		Keyboard:   gen.Keyboard,
		GreedyCost: gen.Layout.GreedyCost,
		Stats:      gen.Layout.Stats,
		Cached:     gen.Cached,
	})
}

func (s *Server) handleGetKeyboard(w http.ResponseWriter, r *http.Request) {
	kb, err := s.ws.Keyboard(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, kb)
}

func (s *Server) handleDeleteKeyboard(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.DeleteKeyboard(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleKeyboardSVG(w http.ResponseWriter, r *http.Request) {
	opts := pipeline.Options{Formats: []string{render.FormatSVG}, Logger: s.logger}
	if v := r.URL.Query().Get("edges"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.fail(w, r, kerrors.New(kerrors.ErrCodeInvalidInput, "edges must be an integer, got %q", v))
			return
		}
		opts.TopEdges = n
	}

	artifacts, err := s.ws.RenderKeyboard(r.Context(), chi.URLParam(r, "name"), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[render.FormatSVG])
}

// =============================================================================
// Helpers
// =============================================================================

// layoutOptions applies request overrides on top of the server defaults.
func (s *Server) layoutOptions(strategy string, nodeLimit int, refresh bool) (pipeline.Options, error) {
	opts := pipeline.Options{
		Strategy:  s.opts.Layout.Strategy,
		NodeLimit: s.opts.Layout.NodeLimit,
		Refresh:   refresh,
		Logger:    s.logger,
	}
	if strategy != "" {
		st, err := layout.ParseStrategy(strategy)
		if err != nil {
			return opts, kerrors.Wrap(kerrors.ErrCodeInvalidStrategy, err, "strategy %q", strategy)
		}
		opts.Strategy = st
	}
	if nodeLimit > s.opts.MaxNodeLimit {
		return opts, kerrors.New(kerrors.ErrCodeInvalidInput, "node_limit %d exceeds the server maximum of %d", nodeLimit, s.opts.MaxNodeLimit)
	}
	if nodeLimit != 0 {
		opts.NodeLimit = nodeLimit
	}
	if err := opts.ValidateForLayout(); err != nil {
		return opts, kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "layout options")
	}
	return opts, nil
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return kerrors.New(kerrors.ErrCodeInvalidInput, "request body is empty")
		}
		return kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "decode request")
	}
	return nil
}

// fail writes err as an ErrorResponse. Errors without a code are internal.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := kerrors.GetCode(err)
	if code == "" {
		code = kerrors.ErrCodeInternal
	}
	status := kerrors.HTTPStatus(code)
	route := r.URL.Path
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		route = rc.RoutePattern()
	}
	observability.HTTP().OnError(r.Context(), r.Method, route, err)

	msg := kerrors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "route", route, "err", err)
	} else if cause := errors.Unwrap(err); cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:      code,
		Message:   msg,
		RequestID: middleware.GetReqID(r.Context()),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
