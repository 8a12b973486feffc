package handlers

import (
	"net/http"

	"movie-catalog/internal/catalog"

	"github.com/gorilla/mux"
)

type movieResponse struct {
	Success bool          `json:"success"`
	Movie   catalog.Entry `json:"movie"`
}

type moviesResponse struct {
	Success bool            `json:"success"`
	Movies  []catalog.Entry `json:"movies"`
	Count   int             `json:"count"`
}

// ListMovies rescans the watched directory and returns the whole catalog.
func (h *Handlers) ListMovies(w http.ResponseWriter, r *http.Request) {
	var movies []catalog.Entry
	err := h.withCatalog(func(svc *catalog.Service) error {
		var err error
		movies, err = svc.List(r.Context())
		return err
	})
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	respond(w, http.StatusOK, moviesResponse{Success: true, Movies: movies, Count: len(movies)})
}

// SearchMovies matches q against title, genre, description and year.
func (h *Handlers) SearchMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var movies []catalog.Entry
	err := h.withCatalog(func(svc *catalog.Service) error {
		var err error
		movies, err = svc.Search(r.Context(), query)
		return err
	})
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	respond(w, http.StatusOK, moviesResponse{Success: true, Movies: movies, Count: len(movies)})
}

// GetMovie returns one entry by id.
func (h *Handlers) GetMovie(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var movie catalog.Entry
	err := h.withCatalog(func(svc *catalog.Service) error {
		var err error
		movie, err = svc.Get(id)
		return err
	})
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	respond(w, http.StatusOK, movieResponse{Success: true, Movie: movie})
}

// updateMovieBody is the edit form. Omitted fields keep their current value.
type updateMovieBody struct {
	Title       formValue `json:"title"`
	Genre       formValue `json:"genre"`
	Year        formValue `json:"year"`
	Rating      formValue `json:"rating"`
	Description formValue `json:"description"`
}

func (b updateMovieBody) request(current catalog.Entry) catalog.UpdateRequest {
	req := catalog.UpdateRequest{
		Title:       current.Title,
		Genre:       current.Genre,
		Year:        string(current.ReleaseYear),
		Description: current.Description,
	}
	if b.Title.set {
		req.Title = b.Title.value
	}
	if b.Genre.set {
		req.Genre = b.Genre.value
	}
	if b.Year.set {
		req.Year = b.Year.value
	}
	if b.Rating.set {
		rating := b.Rating.value
		req.Rating = &rating
	}
	if b.Description.set {
		req.Description = b.Description.value
	}
	return req
}

// UpdateMovie applies the edit form to one entry.
func (h *Handlers) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body updateMovieBody
	if err := decodeBody(w, r, &body); err != nil {
		writeCatalogError(w, r, err)
		return
	}

	var movie catalog.Entry
	err := h.withCatalog(func(svc *catalog.Service) error {
		current, err := svc.Get(id)
		if err != nil {
			return err
		}
		movie, err = svc.Update(r.Context(), id, body.request(current))
		return err
	})
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	respond(w, http.StatusOK, movieResponse{Success: true, Movie: movie})
}

type deleteResponse struct {
	Success  bool     `json:"success"`
	Warnings []string `json:"warnings,omitempty"`
}

// DeleteMovie removes the entry together with its file and preview. Files
// that could not be removed are reported as warnings.
func (h *Handlers) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var report catalog.DeleteReport
	err := h.withCatalog(func(svc *catalog.Service) error {
		var err error
		report, err = svc.Delete(r.Context(), id)
		return err
	})
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	respond(w, http.StatusOK, deleteResponse{Success: true, Warnings: errorStrings(report.CleanupErrors)})
}

type ingestBody struct {
	Path string `json:"path"`
}

// IngestMovie copies a file from the server's filesystem into the watched
// directory and catalogs it.
func (h *Handlers) IngestMovie(w http.ResponseWriter, r *http.Request) {
	var body ingestBody
	if err := decodeBody(w, r, &body); err != nil {
		writeCatalogError(w, r, err)
		return
	}
	if body.Path == "" {
		writeJSONError(w, "path is required", http.StatusBadRequest)
		return
	}

	var movie catalog.Entry
	err := h.withCatalog(func(svc *catalog.Service) error {
		var err error
		movie, err = svc.Ingest(r.Context(), body.Path)
		return err
	})
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, movieResponse{Success: true, Movie: movie})
}

type previewBody struct {
	Image string `json:"image"`
}

// ReplacePreview renders an image file as the entry's preview.
func (h *Handlers) ReplacePreview(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body previewBody
	if err := decodeBody(w, r, &body); err != nil {
		writeCatalogError(w, r, err)
		return
	}
	if body.Image == "" {
		writeJSONError(w, "image is required", http.StatusBadRequest)
		return
	}

	var movie catalog.Entry
	err := h.withCatalog(func(svc *catalog.Service) error {
		var err error
		movie, err = svc.ReplacePreview(r.Context(), id, body.Image)
		return err
	})
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	respond(w, http.StatusOK, movieResponse{Success: true, Movie: movie})
}

type statsResponse struct {
	Success bool `json:"success"`
	catalog.Stats
}

// CatalogStats returns totals over the catalog.
func (h *Handlers) CatalogStats(w http.ResponseWriter, _ *http.Request) {
	var st catalog.Stats
	_ = h.withCatalog(func(svc *catalog.Service) error {
		st = svc.Stats()
		return nil
	})
	respond(w, http.StatusOK, statsResponse{Success: true, Stats: st})
}

type playbackResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// PlaybackURL resolves ?path= to the URL the file is served at.
func (h *Handlers) PlaybackURL(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSONError(w, "path is required", http.StatusBadRequest)
		return
	}

	var url string
	err := h.withCatalog(func(svc *catalog.Service) error {
		var err error
		url, err = svc.PlaybackURL(path)
		return err
	})
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	respond(w, http.StatusOK, playbackResponse{Success: true, URL: url})
}

type scanResponse struct {
	Success       bool     `json:"success"`
	Total         int      `json:"total"`
	Added         int      `json:"added"`
	Removed       int      `json:"removed"`
	Degraded      []string `json:"degraded"`
	CleanupErrors []string `json:"cleanup_errors"`
}

// TriggerScan reconciles the watched directory on demand.
func (h *Handlers) TriggerScan(w http.ResponseWriter, r *http.Request) {
	report, err := h.Scan(r.Context())
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	respond(w, http.StatusOK, scanResponse{
		Success:       true,
		Total:         report.Total,
		Added:         report.Added,
		Removed:       report.Removed,
		Degraded:      errorStrings(report.Degraded),
		CleanupErrors: errorStrings(report.CleanupErrors),
	})
}
