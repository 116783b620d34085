// Package devserver is a local REST backend for the back office. It serves
// every form collection and option source from one SQLite table, so the TUI
// can be used and tested without the production API.
//
//	GET    /{collection}        list
//	POST   /{collection}        create
//	GET    /{collection}/{id}   fetch
//	PATCH  /{collection}/{id}   merge update, optimistic "version" check
//	PUT    /{collection}/{id}   replace
//	DELETE /{collection}/{id}   delete
//
// Errors are returned as {"detail": "..."}.
package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/backoffice/internal/log"
	"github.com/zjrosen/backoffice/internal/tracing"
)

// DefaultCollections are served when no list is configured.
var DefaultCollections = []string{
	"contacts", "departments", "employees", "cleanings", "ledger", "markups",
}

// Server routes REST requests to a Store.
type Server struct {
	store       *Store
	token       string
	tracer      trace.Tracer
	collections map[string]bool
}

// Option configures a Server.
type Option func(*Server)

// WithToken requires "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithTracer records a server span per request.
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithCollections restricts the served collections.
func WithCollections(names ...string) Option {
	return func(s *Server) {
		s.collections = make(map[string]bool, len(names))
		for _, n := range names {
			s.collections[n] = true
		}
	}
}

// NewRouter returns the HTTP handler for store.
func NewRouter(store *Store, opts ...Option) http.Handler {
	s := &Server{store: store}
	WithCollections(DefaultCollections...)(s)
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(tracing.Middleware(s.tracer))
	r.Use(requestLogger)
	r.Use(s.authenticate)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/{collection}", func(r chi.Router) {
		r.Use(s.knownCollection)
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Get("/{id}", s.get)
		r.Patch("/{id}", s.update(false))
		r.Put("/{id}", s.update(true))
		r.Delete("/{id}", s.remove)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug(log.CatDevServer, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", r.Header.Get(tracing.RequestIDHeader),
			"duration", time.Since(start).String())
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			writeError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) knownCollection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "collection")
		if !s.collections[name] {
			writeError(w, http.StatusNotFound, "unknown collection "+name)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context(), chi.URLParam(r, "collection"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	doc, err := s.store.Create(r.Context(), chi.URLParam(r, "collection"), body)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "collection"), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) update(replace bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		body, ok := decodeBody(w, r)
		if !ok {
			return
		}
		doc, err := s.store.Update(r.Context(), chi.URLParam(r, "collection"), id, body, replace)
		if err != nil {
			s.storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "collection"), id); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]json.Number{keyID: json.Number(strconv.FormatInt(id, 10))})
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrStaleVersion):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.ErrorErr(log.CatDevServer, "store failure", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id: "+raw)
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request) (Document, bool) {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil || doc == nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return nil, false
	}
	for k := range doc {
		if strings.TrimSpace(k) == "" {
			writeError(w, http.StatusBadRequest, "empty field name")
			return nil, false
		}
	}
	return doc, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorErr(log.CatDevServer, "encode response", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
