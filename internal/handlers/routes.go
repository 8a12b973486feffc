package handlers

import (
	"net/http"
	"path"
	"strings"

	"github.com/gorilla/mux"
)

// RegisterRoutes adds the health, version and catalog API routes.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/movies", h.ListMovies).Methods("GET")
	// Registered before /movies/{id} so "search" is not taken as an id.
	api.HandleFunc("/movies/search", h.SearchMovies).Methods("GET")
	api.HandleFunc("/movies/ingest", h.IngestMovie).Methods("POST")
	api.HandleFunc("/movies/{id}", h.GetMovie).Methods("GET")
	api.HandleFunc("/movies/{id}", h.UpdateMovie).Methods("PUT")
	api.HandleFunc("/movies/{id}", h.DeleteMovie).Methods("DELETE")
	api.HandleFunc("/movies/{id}/preview", h.ReplacePreview).Methods("POST")
	api.HandleFunc("/stats", h.CatalogStats).Methods("GET")
	api.HandleFunc("/playback", h.PlaybackURL).Methods("GET")
	api.HandleFunc("/scan", h.TriggerScan).Methods("POST")
}

// RegisterFileRoutes serves the preview store under /previews/ and the web
// root (which holds the watched directory) for playback URLs. It must be
// registered after every other route.
func (h *Handlers) RegisterFileRoutes(r *mux.Router) {
	r.PathPrefix("/previews/").
		Handler(http.StripPrefix("/previews/", previewFiles(h.catalog.PreviewDir()))).
		Methods("GET", "HEAD")
	r.PathPrefix("/").
		Handler(staticFiles(h.catalog.ServedDir())).
		Methods("GET", "HEAD")
}

// staticFiles serves files under dir without directory listings.
// http.FileServer handles Range requests for seeking in movies.
func staticFiles(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") || strings.HasPrefix(path.Base(r.URL.Path), ".") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

// previewFiles serves preview assets. Asset names are never reused, so
// responses may be cached indefinitely.
func previewFiles(dir string) http.Handler {
	files := staticFiles(dir)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		files.ServeHTTP(w, r)
	})
}
