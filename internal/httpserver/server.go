package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/arklabs/arkgw/internal/a2a"
	"github.com/arklabs/arkgw/internal/httpserver/handlers"
	"github.com/arklabs/arkgw/internal/version"
	"github.com/arklabs/arkgw/pkg/auth"
)

const (
	// API Path constants
	APIPathHealth          = "/health"
	APIPathVersion         = "/version"
	APIPathMetrics         = "/metrics"
	APIPathA2AAgents       = "/a2a/agents"
	APIPathA2AAgent        = "/a2a/agent"
	APIPathQueries         = "/api/queries"
	APIPathChatCompletions = "/openai/v1/chat/completions"
	APIPathModels          = "/openai/v1/models"
)

// ServerConfig holds the configuration for the HTTP server
type ServerConfig struct {
	Router        *mux.Router
	BindAddr      string
	Base          *handlers.Base
	RouteTable    *a2a.RouteTable
	Authenticator auth.AuthProvider
}

// HTTPServer is the structure that manages the HTTP server
type HTTPServer struct {
	httpServer    *http.Server
	config        ServerConfig
	router        *mux.Router
	handlers      *handlers.Handlers
	authenticator auth.AuthProvider
}

// NewHTTPServer creates a new HTTP server instance
func NewHTTPServer(config ServerConfig) (*HTTPServer, error) {
	return &HTTPServer{
		config:        config,
		router:        config.Router,
		handlers:      handlers.NewHandlers(config.Base),
		authenticator: config.Authenticator,
	}, nil
}

// Start initializes and starts the HTTP server
func (s *HTTPServer) Start(ctx context.Context) error {
	log := ctrllog.FromContext(ctx).WithName("http-server")
	log.Info("Starting HTTP server", "address", s.config.BindAddr)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:    s.config.BindAddr,
		Handler: s.router,
	}

	// Start the server in a separate goroutine
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "HTTP server failed")
		}
	}()

	// Wait for context cancellation to shut down
	go func() {
		<-ctx.Done()
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error(err, "Failed to properly shutdown HTTP server")
		}
	}()

	return nil
}

// Stop stops the HTTP server
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// NeedLeaderElection implements controller-runtime's LeaderElectionRunnable interface
func (s *HTTPServer) NeedLeaderElection() bool {
	// Return false so the HTTP server runs on all instances, not just the leader
	return false
}

// setupRoutes configures all the routes for the server
func (s *HTTPServer) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc(APIPathHealth, s.handlers.Health.HandleHealth).Methods(http.MethodGet)

	// Version
	s.router.HandleFunc(APIPathVersion, adaptHandler(func(erw handlers.ErrorResponseWriter, r *http.Request) {
		handlers.RespondWithJSON(erw, http.StatusOK, version.Get())
	})).Methods(http.MethodGet)

	// Metrics
	s.router.Handle(APIPathMetrics, promhttp.Handler()).Methods(http.MethodGet)

	// A2A discovery and task transport
	s.router.HandleFunc(APIPathA2AAgents, adaptHandler(s.handlers.Agents.HandleListAgents)).Methods(http.MethodGet)
	s.router.PathPrefix(APIPathA2AAgent + "/").Handler(s.config.RouteTable)

	// Queries
	s.router.HandleFunc(APIPathQueries+"/{name}", adaptHandler(s.handlers.Queries.HandleGetQuery)).Methods(http.MethodGet)
	s.router.HandleFunc(APIPathQueries+"/{name}/cancel", adaptHandler(s.handlers.Queries.HandleCancelQuery)).Methods(http.MethodPost)
	s.router.HandleFunc(APIPathQueries+"/{name}", adaptHandler(s.handlers.Queries.HandleDeleteQuery)).Methods(http.MethodDelete)

	// OpenAI-compatible surface
	s.router.HandleFunc(APIPathChatCompletions, adaptHandler(s.handlers.OpenAI.HandleChatCompletions)).Methods(http.MethodPost)
	s.router.HandleFunc(APIPathModels, adaptHandler(s.handlers.OpenAI.HandleListModels)).Methods(http.MethodGet)

	// Use middleware for common functionality
	s.router.Use(auth.AuthnMiddleware(s.authenticator))
	s.router.Use(contentTypeMiddleware)
	s.router.Use(loggingMiddleware)
	s.router.Use(errorHandlerMiddleware)
}

func adaptHandler(h func(handlers.ErrorResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(w.(handlers.ErrorResponseWriter), r)
	}
}
