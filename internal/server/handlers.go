package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/layershare/pkg/errors"
	"github.com/matzehuels/layershare/pkg/io"
	"github.com/matzehuels/layershare/pkg/pipeline"
)

// forestResponse is the body of GET /v1/forest.
type forestResponse struct {
	RunID  string        `json:"run_id"`
	Refs   []string      `json:"refs"`
	Forest io.Document   `json:"forest"`
	Stats  statsResponse `json:"stats"`
}

type statsResponse struct {
	Images      int   `json:"images"`
	EmptyImages int   `json:"empty_images"`
	Records     int   `json:"records"`
	Roots       int   `json:"roots"`
	Layers      int   `json:"layers"`
	StoredBytes int64 `json:"stored_bytes"`
	UniqueBytes int64 `json:"unique_bytes"`
	SharedBytes int64 `json:"shared_bytes"`
}

type errorResponse struct {
	Code      string `json:"code"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

var diagramTypes = map[string]string{
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
	pipeline.FormatDOT: "text/vnd.graphviz; charset=utf-8",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleForest(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	// The forest is returned as JSON; no diagram is rendered.
	opts.Formats = []string{pipeline.FormatJSON}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}

	st := result.Stats
	writeJSON(w, http.StatusOK, forestResponse{
		RunID:  result.RunID,
		Refs:   result.Refs,
		Forest: io.Encode(result.Forest),
		Stats: statsResponse{
			Images:      st.Images,
			EmptyImages: st.EmptyImages,
			Records:     st.Records,
			Roots:       st.Forest.Roots,
			Layers:      st.Forest.Nodes,
			StoredBytes: st.StoredBytes,
			UniqueBytes: st.Forest.UniqueBytes,
			SharedBytes: st.SharedBytes(),
		},
	})
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	contentType, ok := diagramTypes[format]
	if !ok {
		writeError(w, r, http.StatusNotFound, string(errors.ErrCodeInvalidFormat), "unsupported diagram format: "+format)
		return
	}

	opts, err := optionsFromQuery(r)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Artifacts[format])))
	_, _ = w.Write(result.Artifacts[format])
}

// optionsFromQuery reads repository, version (repeatable), strategy, color,
// ltr and refresh.
func optionsFromQuery(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Repository: q.Get("repository"),
		Versions:   q["version"],
		Strategy:   q.Get("strategy"),
		Color:      q.Get("color"),
	}
	for name, dst := range map[string]*bool{"refresh": &opts.Refresh, "ltr": &opts.LeftToRight} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", name, v)
		}
		*dst = b
	}
	return opts, nil
}

func (s *Server) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request", RequestIDFromContext(r.Context()), "err", err)
	}
	writeError(w, r, status, string(code), errors.UserMessage(err))
}

// statusFor maps error codes onto HTTP status codes.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidRepository,
		errors.ErrCodeInvalidVersion,
		errors.ErrCodeInvalidReference,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidProvider:
		return http.StatusBadRequest
	case errors.ErrCodeImageNotFound, errors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, errorResponse{
		Code:      code,
		Error:     msg,
		RequestID: RequestIDFromContext(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
