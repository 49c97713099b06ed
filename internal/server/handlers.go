package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/circlegraph/pkg/buildinfo"
	"github.com/matzehuels/circlegraph/pkg/errors"
)

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := s.logger.With("request", requestIDFrom(ctx))

	var req RenderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "", "request body exceeds the size limit")
			return
		}
		writeError(w, r, http.StatusBadRequest, string(errors.ErrCodeInvalidInput), "invalid JSON: "+err.Error())
		return
	}
	if n := len(req.Options.Thresholds); n > s.cfg.MaxThresholds {
		writeError(w, r, http.StatusBadRequest, string(errors.ErrCodeInvalidThreshold),
			"too many thresholds")
		return
	}
	if req.Options.Size > s.cfg.MaxSize {
		writeError(w, r, http.StatusBadRequest, string(errors.ErrCodeInvalidInput),
			fmt.Sprintf("size must be at most %d pixels", s.cfg.MaxSize))
		return
	}

	in, err := req.input()
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	opts := req.Options
	opts.Concurrency = s.cfg.Concurrency
	opts.Logger = logger
	res, err := s.runner.Execute(ctx, in, opts)
	if err != nil {
		logger.Warn("render rejected", "error", err)
		writePipelineError(w, r, err)
		return
	}
	if err := ctx.Err(); err != nil {
		// The timeout middleware answers once the deadline passed.
		return
	}
	writeJSON(w, http.StatusOK, newRenderResponse(res))
}

// writePipelineError maps structural input errors to 422 and option or
// request errors to 400. Anything uncoded is an internal error.
func writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch {
	case errors.IsStructural(err):
		status = http.StatusUnprocessableEntity
	case code == errors.ErrCodeInternal:
	case code != "":
		status = http.StatusBadRequest
	}
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(w, r, status, string(code), msg)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:     msg,
		Code:      code,
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
