package handlers

import (
	"net/http"
	"time"

	"movie-catalog/internal/startup"
)

type versionResponse struct {
	startup.BuildInfo
	StartedAt string `json:"startedAt,omitempty"`
}

// GetVersion reports the build and, once the server runs, its start time.
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	resp := versionResponse{BuildInfo: startup.GetBuildInfo()}
	if !h.startTime.IsZero() {
		resp.StartedAt = h.startTime.UTC().Format(time.RFC3339)
	}

	w.Header().Set("Cache-Control", "no-cache")
	respond(w, http.StatusOK, resp)
}
