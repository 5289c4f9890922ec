// Package preview serves a built site over HTTP for local authoring. It
// serves whatever currently sits in the output directory, so a failed
// rebuild keeps the last good site online.
package preview

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Server serves the output directory plus an optional /metrics endpoint.
type Server struct {
	dir     string
	addr    string
	metrics http.Handler
}

// New creates a preview server for the given output directory. metrics may
// be nil to disable the /metrics endpoint.
func New(dir, addr string, metrics http.Handler) *Server {
	return &Server{dir: dir, addr: addr, metrics: metrics}
}

// Handler returns the full route set.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	mux.HandleFunc("/", s.serveSite)
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("preview server listening", "addr", s.addr, "dir", s.dir)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// serveSite maps request paths onto the output tree. Directories serve
// their index.html; a directory path without a trailing slash redirects so
// relative links resolve. Anything missing gets the site's 404 page.
func (s *Server) serveSite(w http.ResponseWriter, r *http.Request) {
	// Clean under a rooted path so ".." cannot escape the output dir.
	clean := path.Clean("/" + r.URL.Path)
	full := filepath.Join(s.dir, filepath.FromSlash(strings.TrimPrefix(clean, "/")))

	info, err := os.Stat(full)
	if err == nil && info.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") && clean != "/" {
			http.Redirect(w, r, clean+"/", http.StatusMovedPermanently)
			return
		}
		full = filepath.Join(full, "index.html")
		info, err = os.Stat(full)
	}
	if err != nil || info.IsDir() {
		s.notFound(w, r)
		return
	}
	http.ServeFile(w, r, full)
}

// notFound serves the generated 404.html when present.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	body, err := os.ReadFile(filepath.Join(s.dir, "404.html"))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("reading 404 page failed", "error", err)
		}
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(body)
}
