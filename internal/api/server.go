package api

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/smazurov/multistrip/internal/api/models"
	"github.com/smazurov/multistrip/internal/busses"
	"github.com/smazurov/multistrip/internal/events"
	"github.com/smazurov/multistrip/internal/logging"
	"github.com/smazurov/multistrip/internal/multistrip"
	"github.com/smazurov/multistrip/internal/version"
)

// Controller is the part of the strip controller the API reads and drives.
type Controller interface {
	Status() multistrip.Status
	Busses() []busses.Config
	Save() error
}

// Server represents the Huma v2 API server
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	controller Controller
	eventBus   *events.Bus
	options    *Options
	logger     *slog.Logger
	httpLogger *slog.Logger

	allowMethods string
}

// basicAuthMiddleware creates middleware for HTTP basic authentication
func (s *Server) basicAuthMiddleware(username, password string) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		// Skip auth for operations without security requirements
		op := ctx.Operation()
		if op != nil && len(op.Security) == 0 {
			next(ctx)
			return
		}

		var credentials string
		if authHeader := ctx.Header("Authorization"); authHeader != "" {
			const prefix = "Basic "
			if !strings.HasPrefix(authHeader, prefix) {
				s.unauthorized(ctx, "Invalid authentication type")
				return
			}
			decoded, err := base64.StdEncoding.DecodeString(authHeader[len(prefix):])
			if err != nil {
				s.unauthorized(ctx, "Invalid credentials format", err)
				return
			}
			credentials = string(decoded)
		} else if queryAuth := ctx.Query("auth"); queryAuth != "" {
			// EventSource cannot set headers, so SSE clients pass credentials in the query.
			decoded, err := base64.StdEncoding.DecodeString(queryAuth)
			if err != nil {
				s.unauthorized(ctx, "Invalid credentials format", err)
				return
			}
			credentials = string(decoded)
		}

		if credentials == "" {
			s.unauthorized(ctx, "Authentication required")
			return
		}

		user, pass, ok := strings.Cut(credentials, ":")
		if !ok {
			s.unauthorized(ctx, "Invalid credentials format")
			return
		}
		if user != username || pass != password {
			s.unauthorized(ctx, "Invalid credentials")
			return
		}

		next(ctx)
	}
}

func (s *Server) unauthorized(ctx huma.Context, msg string, errs ...error) {
	ctx.SetHeader("WWW-Authenticate", `Basic realm="MultiStrip API"`)
	huma.WriteErr(s.api, ctx, http.StatusUnauthorized, msg, errs...)
}

// Options configures the API server.
type Options struct {
	AuthUsername      string
	AuthPassword      string
	Controller        Controller
	EventBus          *events.Bus
	PrometheusHandler http.Handler // Optional Prometheus metrics handler
}

// NewServer creates a new API server with Huma v2 using Go 1.22+ native routing
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	config := huma.DefaultConfig("MultiStrip API", "1.0.0")
	config.Info.Description = "Runtime LED bus switching driven by GPIO input lines"
	// Empty servers list will make OpenAPI use relative paths, working with any host
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
	}

	api := humago.New(mux, config)

	server := &Server{
		api:        api,
		mux:        mux,
		controller: opts.Controller,
		eventBus:   opts.EventBus,
		options:    opts,
		logger:     logging.GetLogger("api"),
		httpLogger: logging.GetLogger("http"),
	}
	mux.HandleFunc("OPTIONS /", server.preflight)

	api.UseMiddleware(server.cors)
	api.UseMiddleware(server.logRequest)
	if opts.AuthUsername != "" && opts.AuthPassword != "" {
		api.UseMiddleware(server.basicAuthMiddleware(opts.AuthUsername, opts.AuthPassword))
	}

	// Registered on the mux directly: scrapers do not authenticate.
	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	server.registerRoutes()
	server.allowMethods = corsMethods(api)
	return server
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// GetAPI returns the Huma API instance
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Start starts the HTTP server on the specified address. It blocks until
// the server stops.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting MultiStrip API server", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	return s.httpServer.ListenAndServe()
}

// Stop closes the server without waiting for SSE clients to drain.
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"health"},
		Security:    []map[string][]string{}, // Empty security = no auth required
	}, func(_ context.Context, _ *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{
			Body: models.HealthData{
				Status:  "ok",
				Message: "API is healthy",
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*models.VersionResponse, error) {
		v := version.Get()
		return &models.VersionResponse{
			Body: models.VersionData{
				Version:   v.Version,
				GitCommit: v.GitCommit,
				BuildDate: v.BuildDate,
				Modified:  v.Modified,
				GoVersion: v.GoVersion,
				Platform:  v.Platform,
			},
		}, nil
	})

	s.registerStripRoutes()
	s.registerSSERoutes()
	s.registerLogRoutes()
}

// withAuth returns security requirement for basic auth
func withAuth() []map[string][]string {
	return []map[string][]string{
		{"basicAuth": {}},
	}
}
