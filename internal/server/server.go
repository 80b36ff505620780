// Package server exposes the tracked-idea surface over HTTP: intake,
// listing, the read path, and the manual sweep trigger, plus the
// interval scheduler that drives unattended sweeps. The wire format is
// JSON throughout; surveillance reports reach integrations by polling
// the idea endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"dossier/internal/idea"
	"dossier/internal/logging"
	"dossier/internal/store"
	"dossier/internal/surveil"
)

// sweepTimeout bounds a single triggered sweep. Generous: a sweep of a
// large portfolio makes two model calls per idea.
const sweepTimeout = 15 * time.Minute

// Sweeper runs one full surveillance sweep.
type Sweeper interface {
	RunSweep(ctx context.Context) (surveil.Summary, error)
}

// Surveillance adds the read path on top of the sweep.
type Surveillance interface {
	Sweeper
	ViewIdea(ctx context.Context, ownerID, ideaID string) (*surveil.ViewResult, error)
}

// Intake is the idea-creation surface.
type Intake interface {
	CreateIdea(ctx context.Context, ownerID, title, rawInput string) (*idea.Idea, error)
}

// Lister is the read-only idea listing surface.
type Lister interface {
	IdeasByOwner(ctx context.Context, ownerID string) ([]*idea.Idea, error)
}

// SweepGuard serializes sweeps across their two triggers, the HTTP
// endpoint and the scheduler. The zero value is ready to use.
type SweepGuard struct {
	running atomic.Bool
}

// TryAcquire claims the guard; false means a sweep is already running.
func (g *SweepGuard) TryAcquire() bool {
	return g.running.CompareAndSwap(false, true)
}

// Release frees the guard for the next sweep.
func (g *SweepGuard) Release() {
	g.running.Store(false)
}

// Running reports whether a sweep currently holds the guard.
func (g *SweepGuard) Running() bool {
	return g.running.Load()
}

// Config carries the server's wiring.
type Config struct {
	Version string
	Token   string // bearer token; empty disables auth
	Logger  *zap.Logger
	Guard   *SweepGuard // shared with the scheduler; nil gets a private one
}

// Server is the HTTP handler set.
type Server struct {
	surveillance Surveillance
	intake       Intake
	lister       Lister
	version      string
	token        string
	logger       *zap.Logger
	guard        *SweepGuard
}

// New wires the handler set.
func New(surveillance Surveillance, intake Intake, lister Lister, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	guard := cfg.Guard
	if guard == nil {
		guard = &SweepGuard{}
	}
	return &Server{
		surveillance: surveillance,
		intake:       intake,
		lister:       lister,
		version:      cfg.Version,
		token:        cfg.Token,
		logger:       logger,
		guard:        guard,
	}
}

// Handler builds the route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("POST /sweep", s.handleSweep)
	mux.HandleFunc("GET /ideas/{owner}", s.handleListIdeas)
	mux.HandleFunc("GET /ideas/{owner}/{id}", s.handleGetIdea)
	mux.HandleFunc("POST /ideas/{owner}", s.handleCreateIdea)
	return s.withRequestLog(s.withAuth(mux))
}

// HTTPServer wraps the handler in an http.Server bound to addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run serves until SIGINT/SIGTERM or a listener error, then shuts down
// gracefully with a bounded drain.
func Run(srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logging.Server("listening on %s", srv.Addr)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logging.Server("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

// handleSweep is fire-and-forget: it claims the guard, answers 202, and
// runs the sweep on a background context detached from the request so a
// closed connection cannot abort surveillance mid-portfolio.
func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	if !s.guard.TryAcquire() {
		renderJSON(w, http.StatusConflict, map[string]string{"error": "sweep already running"})
		return
	}
	go func() {
		defer s.guard.Release()
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		summary, err := s.surveillance.RunSweep(ctx)
		if err != nil {
			logging.SweepError("triggered sweep failed: %v", err)
			return
		}
		logging.Sweep("triggered sweep done: processed=%d failed=%d total=%d",
			summary.Processed, summary.Failed, summary.Total)
	}()
	renderJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) handleListIdeas(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	ideas, err := s.lister.IdeasByOwner(r.Context(), owner)
	if err != nil {
		s.internalError(w, "list ideas", err)
		return
	}
	if ideas == nil {
		ideas = []*idea.Idea{}
	}
	renderJSON(w, http.StatusOK, map[string]any{
		"ideas": ideas,
		"count": len(ideas),
	})
}

func (s *Server) handleGetIdea(w http.ResponseWriter, r *http.Request) {
	owner, id := r.PathValue("owner"), r.PathValue("id")
	res, err := s.surveillance.ViewIdea(r.Context(), owner, id)
	if errors.Is(err, store.ErrIdeaNotFound) {
		renderJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("idea %s not found", id)})
		return
	}
	if err != nil {
		s.internalError(w, "view idea", err)
		return
	}
	renderJSON(w, http.StatusOK, res)
}

func (s *Server) handleCreateIdea(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	var body struct {
		Title    string `json:"title"`
		RawInput string `json:"rawInput"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		renderJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	it, err := s.intake.CreateIdea(r.Context(), owner, body.Title, body.RawInput)
	if err != nil {
		s.internalError(w, "create idea", err)
		return
	}
	renderJSON(w, http.StatusCreated, it)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	logging.ServerError("%s: %v", op, err)
	renderJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
