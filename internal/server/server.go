package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"

	"github.com/julianstephens/softworkday/internal/analytics"
	"github.com/julianstephens/softworkday/internal/app"
	"github.com/julianstephens/softworkday/internal/archive"
	"github.com/julianstephens/softworkday/internal/generator"
	"github.com/julianstephens/softworkday/internal/logger"
	"github.com/julianstephens/softworkday/internal/schedule"
)

// Deps are the collaborators the HTTP shell serves.
type Deps struct {
	Archive   *archive.Archive
	Schedule  *schedule.Store
	Generator generator.Generator
	// Reconciler handles /api/reconcile requests from other processes.
	Reconciler schedule.Reconciler
	Tracker    analytics.Tracker
	Clock      clockwork.Clock
	// Secret authenticates /api/reconcile. Empty disables the route.
	Secret   string
	Debounce time.Duration
}

// Server is the loopback HTTP shell opened by notification clicks.
type Server struct {
	deps   Deps
	router *mux.Router
	web    *http.Server
	log    *log.Logger
}

func New(deps Deps) *Server {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Tracker == nil {
		deps.Tracker = analytics.Nop{}
	}
	s := &Server{
		deps:   deps,
		router: mux.NewRouter(),
		log:    logger.Component("server"),
	}
	s.initHandlers()
	s.web = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) initHandlers() {
	s.router.Use(s.requestID, s.logRequests)

	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.guardWrites)
	api.HandleFunc("/schedule", s.handleScheduleGet).Methods(http.MethodGet)
	api.HandleFunc("/schedule", s.handleSchedulePut).Methods(http.MethodPut)
	api.HandleFunc("/schedule/reset", s.handleScheduleReset).Methods(http.MethodPost)
	api.HandleFunc("/messages", s.handleMessageCreate).Methods(http.MethodPost)
	api.HandleFunc("/messages/{id}", s.handleMessageGet).Methods(http.MethodGet)
	api.HandleFunc("/messages/{id}/reflection", s.handleReflectionPut).Methods(http.MethodPut)
	api.HandleFunc("/messages/{id}/card.png", s.handleCard).Methods(http.MethodGet)
	api.HandleFunc("/reconcile", s.handleReconcile).Methods(http.MethodPost)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("HTTP shell is going online", "addr", ln.Addr().String())
	err := s.web.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		s.log.Info("HTTP shell has shut down")
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.web.Shutdown(ctx)
}

// newController builds a per-request view controller.
func (s *Server) newController() *app.Controller {
	return app.New(app.Options{
		Archive:   s.deps.Archive,
		Schedule:  s.deps.Schedule,
		Generator: s.deps.Generator,
		Tracker:   s.deps.Tracker,
		Clock:     s.deps.Clock,
		Debounce:  s.deps.Debounce,
	})
}
