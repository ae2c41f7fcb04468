// Package api exposes the tool operations over HTTP. Routing here is
// deliberately thin: handlers build operation arguments, dispatch,
// and write the envelope. All semantics live behind the dispatcher.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"BlockScribe/internal/digest"
	"BlockScribe/internal/fault"
	"BlockScribe/internal/logger"
	"BlockScribe/internal/tool"
)

// maxRequestSize caps request bodies.
const maxRequestSize = 16 << 20 // 16 MB

// StatusProvider exposes continuity state for monitoring.
type StatusProvider interface {
	LatestAccepted() (string, bool)
}

// Server is the HTTP API server.
type Server struct {
	addr       string           // addr is the HTTP listen address
	dispatcher *tool.Dispatcher // dispatcher runs the operations
	status     StatusProvider   // status exposes the continuity cache, may be nil
	server     *http.Server     // server is the underlying HTTP server
}

// New creates an HTTP API server over the dispatcher.
func New(addr string, dispatcher *tool.Dispatcher, status StatusProvider) *Server {
	return &Server{addr: addr, dispatcher: dispatcher, status: status}
}

// Start starts the HTTP server in a goroutine.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("http api started", "addr", s.addr)

		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /submit", s.handleSubmit)
	mux.HandleFunc("GET /block/{id}", s.handleGetBlock)
	mux.HandleFunc("GET /chain/latest", s.handleGetLatest)
	mux.HandleFunc("POST /audit", s.handleAudit)
	mux.HandleFunc("POST /verify", s.handleVerify)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)

	return mux
}

// handleSubmit handles POST /submit requests.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.dispatchBody(w, r, tool.OpSubmit)
}

// handleGetBlock handles GET /block/{id} requests.
func (s *Server) handleGetBlock(w http.ResponseWriter, r *http.Request) {
	args, err := json.Marshal(tool.BlockArgs{BlockID: r.PathValue("id")})
	if err != nil {
		writeEnvelope(w, tool.Failure(err))
		return
	}

	writeEnvelope(w, s.dispatcher.Dispatch(tool.OpGetBlock, args))
}

// handleGetLatest handles GET /chain/latest requests.
func (s *Server) handleGetLatest(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, s.dispatcher.Dispatch(tool.OpGetLatest, nil))
}

// handleAudit handles POST /audit requests.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	s.dispatchBody(w, r, tool.OpAudit)
}

// handleVerify handles POST /verify requests.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	s.dispatchBody(w, r, tool.OpVerify)
}

// dispatchBody reads the request body as raw operation arguments and
// dispatches.
func (s *Server) dispatchBody(w http.ResponseWriter, r *http.Request, op tool.Op) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
	if err != nil {
		writeEnvelope(w, tool.Failure(fault.Wrap(fault.InvalidFormat, err, "read request body")))
		return
	}

	writeEnvelope(w, s.dispatcher.Dispatch(op, body))
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleStatus handles GET /status requests.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"genesis": digest.Genesis.String(),
	}

	if s.status != nil {
		if tip, ok := s.status.LatestAccepted(); ok {
			resp["latestAccepted"] = tip
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeEnvelope writes an envelope with a status derived from its
// classification.
func writeEnvelope(w http.ResponseWriter, env tool.Envelope) {
	writeJSON(w, statusFor(env), env)
}

// statusFor maps an envelope to an HTTP status code.
func statusFor(env tool.Envelope) int {
	if env.OK {
		return http.StatusOK
	}

	switch env.Class {
	case fault.InvalidFormat:
		return http.StatusBadRequest
	case fault.PathTraversal, fault.SymlinkNotAllowed:
		return http.StatusForbidden
	case fault.NotFound:
		return http.StatusNotFound
	case fault.MissingDecryptionKey, fault.DecryptionFailed:
		return http.StatusConflict
	case fault.External:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
