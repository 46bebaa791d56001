// Package server serves family diagrams over HTTP.
//
// A server is bound to one family file, which is reloaded (through the
// pipeline cache) on every request, so edits show up without a restart.
//
//	GET /healthz             build information
//	GET /metrics             Prometheus metrics
//	GET /people              everyone in the family file
//	GET /diagram/{name}      a diagram, e.g. /diagram/ada.svg?year=1840
//
// The diagram name is a person ID followed by a format extension: .svg,
// .chart.svg, .png, .pdf, .dot or .json. Query parameters override the
// server's layout options using their JSON names (year, today, max_nodes,
// related_multiplier, detailed, ...).
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/kintower/pkg/buildinfo"
	"github.com/matzehuels/kintower/pkg/errors"
	"github.com/matzehuels/kintower/pkg/observability"
	"github.com/matzehuels/kintower/pkg/pipeline"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP front end of a [pipeline.Runner].
type Server struct {
	runner   *pipeline.Runner
	path     string
	defaults pipeline.Options
	logger   *log.Logger
	gatherer prometheus.Gatherer
	router   chi.Router
}

// New returns a server for the family file at path. defaults are the layout
// options every request starts from and must not be validated yet. Metrics
// are served from gatherer; a nil gatherer disables /metrics.
func New(runner *pipeline.Runner, path string, defaults pipeline.Options, gatherer prometheus.Gatherer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:   runner,
		path:     path,
		defaults: defaults,
		logger:   logger,
		gatherer: gatherer,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/people", s.handlePeople)
	r.Get("/diagram/{name}", s.handleDiagram)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "family", s.path)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// instrument reports every request to the HTTP hooks under its route
// pattern and logs it.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

type personInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Birth  string `json:"birth,omitempty"`
	Death  string `json:"death,omitempty"`
	Living bool   `json:"living,omitempty"`
}

func (s *Server) handlePeople(w http.ResponseWriter, r *http.Request) {
	g, _, err := s.runner.Load(r.Context(), s.path)
	if err != nil {
		s.writeError(w, err)
		return
	}

	people := make([]personInfo, 0, g.Len())
	for _, p := range g.People() {
		info := personInfo{ID: p.ID, Name: p.FullName(), Living: p.Living}
		if !p.Birth.IsZero() {
			info.Birth = p.Birth.String()
		}
		if !p.Death.IsZero() {
			info.Death = p.Death.String()
		}
		people = append(people, info)
	}
	writeJSON(w, http.StatusOK, people)
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, format, err := splitName(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts.Primary = id
	opts.Formats = []string{format}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, err)
		return
	}

	g, _, err := s.runner.Load(ctx, s.path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	l, layoutHit, err := s.runner.Layout(ctx, g, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	artifacts, renderHit, err := s.runner.Render(ctx, l, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set("X-Cache", cacheStatus(layoutHit && renderHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// requestOptions decodes the query string over the server defaults.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults
	query := r.URL.Query()
	if len(query) == 0 {
		return opts, nil
	}

	input := make(map[string]any, len(query))
	for k, v := range query {
		input[k] = v[len(v)-1]
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &opts,
	})
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeInternal, err, "create decoder")
	}
	if err := dec.Decode(input); err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidOptions, err, "invalid query")
	}
	return opts, nil
}

// splitName splits "ada.chart.svg" into the person ID and format. IDs may
// themselves contain dots, so the longest matching extension wins.
func splitName(name string) (id, format string, err error) {
	best := ""
	for f := range pipeline.ValidFormats {
		ext := "." + pipeline.Extension(f)
		if strings.HasSuffix(name, ext) && len(ext) > len(best) && len(name) > len(ext) {
			best, format = ext, f
		}
	}
	if best == "" {
		return "", "", errors.New(errors.ErrCodeInvalidFormat, "diagram name %q has no known extension", name)
	}
	id = strings.TrimSuffix(name, best)
	if err := errors.ValidatePersonID(id); err != nil {
		return "", "", err
	}
	return id, format, nil
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	writeJSON(w, status, errorBody{Error: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
