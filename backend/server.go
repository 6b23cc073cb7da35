// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/c2FmZQ/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ttbt-io/diamondtracker/backend/search"
	"github.com/ttbt-io/diamondtracker/scoreboard"
)

// Options represent server options.
type Options struct {
	Addr         string
	Cert         *tls.Certificate
	DataDir      string
	UseMockAuth  bool
	Debug        bool
	Storage      *storage.Storage
	SessionStore *SessionStore
	Listener     net.Listener

	// Scoreboard Options
	SettleDelay  time.Duration
	Highlights   int
	Clock        scoreboard.Clock
	TickInterval time.Duration

	// Auth Options
	AuthCookieName string
	AuthJWKSURL    string
	AuthSecret     string
}

func (o Options) authRequired() bool {
	return o.UseMockAuth || o.AuthJWKSURL != "" || o.AuthSecret != ""
}

// Server represents the running server instance.
type Server struct {
	httpServer *http.Server
	hubs       *HubManager
}

// Shutdown stops the HTTP server, then every session hub.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.hubs.Close()
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	return nil
}

// StartServer starts the web server and registers the API handlers.
func StartServer(opts Options) (*Server, error) {
	hubs, handler := NewServerHandler(opts)

	httpServer := &http.Server{
		Addr:    opts.Addr,
		Handler: handler,
	}
	if opts.Cert != nil {
		httpServer.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{*opts.Cert},
		}
	}

	ln := opts.Listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", opts.Addr); err != nil {
			return nil, fmt.Errorf("listen: %w", err)
		}
	}

	go func() {
		var err error
		if httpServer.TLSConfig != nil {
			log.Printf("Starting HTTPS server on %s...", ln.Addr())
			err = httpServer.ServeTLS(ln, "", "")
		} else {
			log.Printf("Starting HTTP server on %s...", ln.Addr())
			err = httpServer.Serve(ln)
		}
		if err != nil && !errors.Is(err, net.ErrClosed) && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	return &Server{httpServer: httpServer, hubs: hubs}, nil
}

// api holds what the handlers share.
type api struct {
	opts   Options
	store  *SessionStore
	hubs   *HubManager
	stats  *IntentMetrics
	debugf func(string, ...any)
}

// NewServerHandler creates and configures the HTTP handler for the server.
func NewServerHandler(opts Options) (*HubManager, http.Handler) {
	if opts.DataDir == "" {
		opts.DataDir = "data"
	}
	if opts.Storage == nil {
		opts.Storage = storage.New(opts.DataDir, nil)
	}
	store := opts.SessionStore
	if store == nil {
		store = NewSessionStore(opts.DataDir, opts.Storage)
	}
	store.Debug = opts.Debug

	debugf := func(string, ...any) {}
	if opts.Debug {
		debugf = func(f string, a ...any) {
			log.Printf("[DEBUG BACKEND] "+f, a...)
		}
	}

	stats := NewIntentMetrics()
	hubs := NewHubManager(store, HubConfig{
		SettleDelay:  opts.SettleDelay,
		Highlights:   opts.Highlights,
		Clock:        opts.Clock,
		TickInterval: opts.TickInterval,
		Metrics:      stats,
		Debugf:       debugf,
	})
	a := &api{opts: opts, store: store, hubs: hubs, stats: stats, debugf: debugf}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/metrics", a.metrics)
		r.Get("/ws/{id}", a.serveWS)
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", a.listSessions)
			r.Post("/", a.createSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.getSession)
				r.Delete("/", a.deleteSession)
				r.Post("/intents", a.postIntent)
				r.Get("/recap", a.recap)
				r.Get("/share/{target}", a.share)
				r.Get("/plays", a.plays)
			})
		})
	})

	handler := http.Handler(r)
	if opts.UseMockAuth {
		handler = mockAuthMiddleware(handler)
	} else {
		handler = jwtAuthMiddleware(opts, handler)
	}
	handler = loggingMiddleware(handler)
	handler = securityMiddleware(handler)
	handler = cacheControlMiddleware(handler)

	return hubs, handler
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Warning: failed to write response: %v", err)
	}
}

// writeError maps validation errors to 400 and everything else to 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case scoreboard.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, os.ErrNotExist):
		http.Error(w, "Session not found", http.StatusNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "Request cancelled", http.StatusServiceUnavailable)
	default:
		log.Printf("Error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// session resolves the {id} route parameter to its metadata. It writes the
// error response and returns nil when the session cannot be used.
func (a *api) session(w http.ResponseWriter, r *http.Request) *SessionMeta {
	id := chi.URLParam(r, "id")
	if !isValidUUID(id) {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return nil
	}
	meta, err := a.store.LoadMeta(id)
	if err != nil {
		writeError(w, err)
		return nil
	}
	return meta
}

func (a *api) access(r *http.Request, meta *SessionMeta) AccessLevel {
	return GetSessionAccess(getUserID(r), *meta, a.opts.authRequired())
}

func (a *api) forbid(w http.ResponseWriter, r *http.Request) {
	if getUserID(r) == "" {
		http.Error(w, "Unauthenticated: Login required", http.StatusUnauthorized)
		return
	}
	http.Error(w, "Forbidden", http.StatusForbidden)
}

func (a *api) do(w http.ResponseWriter, r *http.Request, id string, req HubRequest) (HubResponse, bool) {
	resp, err := a.hubs.GetHub(id).Do(r.Context(), req)
	if errors.Is(err, errHubClosed) {
		// The hub went idle between lookup and send; a fresh one picks up.
		resp, err = a.hubs.GetHub(id).Do(r.Context(), req)
	}
	if err != nil {
		writeError(w, err)
		return resp, false
	}
	return resp, true
}

func (a *api) createSession(w http.ResponseWriter, r *http.Request) {
	userId := getUserID(r)
	if a.opts.authRequired() && userId == "" {
		a.forbid(w, r)
		return
	}
	meta := SessionMeta{ID: uuid.NewString(), OwnerID: userId}
	if err := a.store.Create(meta); err != nil {
		writeError(w, err)
		return
	}
	resp, ok := a.do(w, r, meta.ID, HubRequest{Type: ReqTypeView})
	if !ok {
		return
	}
	a.debugf("created session %s for %s", meta.ID, maskEmail(userId))
	writeJSON(w, http.StatusCreated, map[string]any{"id": meta.ID, "view": resp.View})
}

// listSessions returns the ids of the sessions the caller may change. Owners
// are never exposed.
func (a *api) listSessions(w http.ResponseWriter, r *http.Request) {
	userId := getUserID(r)
	required := a.opts.authRequired()
	if required && userId == "" {
		a.forbid(w, r)
		return
	}
	ids := make([]string, 0)
	for meta, err := range a.store.ListSessions() {
		if err != nil {
			writeError(w, err)
			return
		}
		if GetSessionAccess(userId, meta, required) < AccessWrite {
			continue
		}
		ids = append(ids, meta.ID)
	}
	writeJSON(w, http.StatusOK, ids)
}

func (a *api) getSession(w http.ResponseWriter, r *http.Request) {
	meta := a.session(w, r)
	if meta == nil {
		return
	}
	if resp, ok := a.do(w, r, meta.ID, HubRequest{Type: ReqTypeView}); ok {
		writeJSON(w, http.StatusOK, resp.View)
	}
}

func (a *api) deleteSession(w http.ResponseWriter, r *http.Request) {
	meta := a.session(w, r)
	if meta == nil {
		return
	}
	if a.access(r, meta) < AccessAdmin {
		a.forbid(w, r)
		return
	}
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, &scoreboard.ValidationError{Field: "confirm", Err: scoreboard.ErrConfirmationRequired})
		return
	}
	if err := a.store.DeleteSession(meta.ID); err != nil {
		writeError(w, err)
		return
	}
	a.hubs.RemoveHub(meta.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) postIntent(w http.ResponseWriter, r *http.Request) {
	meta := a.session(w, r)
	if meta == nil {
		return
	}
	if a.access(r, meta) < AccessWrite {
		a.forbid(w, r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageSize)
	var in Intent
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, &scoreboard.ValidationError{Field: "intent", Err: fmt.Errorf("malformed intent JSON")})
		return
	}
	resp, ok := a.do(w, r, meta.ID, HubRequest{Type: ReqTypeIntent, Intent: in})
	if !ok {
		return
	}
	out := map[string]any{"changed": resp.Changed, "view": resp.View}
	if resp.Settle > 0 {
		out["settleMs"] = resp.Settle.Milliseconds()
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *api) recap(w http.ResponseWriter, r *http.Request) {
	meta := a.session(w, r)
	if meta == nil {
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "full" && format != "terse" {
		writeError(w, &scoreboard.ValidationError{Field: "format", Err: fmt.Errorf("format must be full or terse")})
		return
	}
	resp, ok := a.do(w, r, meta.ID, HubRequest{Type: ReqTypeRecap, Terse: format == "terse"})
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(resp.Text))
}

func (a *api) share(w http.ResponseWriter, r *http.Request) {
	meta := a.session(w, r)
	if meta == nil {
		return
	}
	target := scoreboard.ShareTarget(strings.ToLower(chi.URLParam(r, "target")))
	resp, ok := a.do(w, r, meta.ID, HubRequest{Type: ReqTypeShare, Target: target})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"target": string(target), "uri": resp.Text})
}

func (a *api) plays(w http.ResponseWriter, r *http.Request) {
	meta := a.session(w, r)
	if meta == nil {
		return
	}
	m, err := search.CompilePlays(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	resp, ok := a.do(w, r, meta.ID, HubRequest{Type: ReqTypePlays})
	if !ok {
		return
	}
	rows := make([]scoreboard.PlayRow, 0)
	for _, p := range m.Filter(resp.Plays) {
		rows = append(rows, scoreboard.PlayRow{Text: p.Text, Meta: p.Meta()})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (a *api) metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.stats.Snapshot())
}

func (a *api) serveWS(w http.ResponseWriter, r *http.Request) {
	meta := a.session(w, r)
	if meta == nil {
		return
	}
	level := a.access(r, meta)
	a.debugf("socket for session %s opened by %s with %s access", meta.ID, maskEmail(getUserID(r)), level)
	a.hubs.ServeWS(w, r, meta.ID, level >= AccessWrite)
}

// cacheControlMiddleware keeps API responses out of shared caches.
func cacheControlMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "private, no-cache, no-transform")
		}
		next.ServeHTTP(w, r)
	})
}

// securityMiddleware adds HTTP security headers to responses.
func securityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs the method and URL path of every incoming HTTP request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Received request: %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
