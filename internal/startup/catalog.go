package startup

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"movie-catalog/internal/catalog"
	"movie-catalog/internal/database"
	"movie-catalog/internal/filesystem"
	"movie-catalog/internal/media"
	"movie-catalog/internal/probe"
)

// OpenStore opens the configured catalog backend. For sqlite, an existing
// JSON document next to the database (same name, .json extension) seeds an
// empty database.
func OpenStore(ctx context.Context, cfg *Config) (catalog.Store, error) {
	switch cfg.CatalogBackend {
	case BackendJSON:
		return catalog.NewJSONStore(cfg.CatalogPath), nil
	case BackendSQLite:
		db, err := database.New(ctx, cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		legacy := catalog.NewJSONStore(jsonSibling(cfg.CatalogPath))
		if _, err := db.ImportFrom(ctx, legacy); err != nil {
			db.Close()
			return nil, fmt.Errorf("import %s: %w", legacy.Path(), err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.CatalogBackend)
	}
}

func jsonSibling(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
}

// NewCatalog wires a catalog service to the store and the ffprobe/ffmpeg
// tools named in cfg and loads the stored catalog. throttle may be nil.
func NewCatalog(cfg *Config, store catalog.Store, throttle catalog.Throttle) (*catalog.Service, error) {
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		filesystem.VolumeWatched:  cfg.WatchDir,
		filesystem.VolumePreviews: cfg.PreviewDir,
		filesystem.VolumeCatalog:  cfg.CatalogPath,
	}))

	start := time.Now()
	svc, err := catalog.New(catalog.Options{
		WatchedDir: cfg.WatchDir,
		PreviewDir: cfg.PreviewDir,
		ServedDir:  cfg.ServeDir,
		Store:      store,
		Prober:     probe.NewFFProbe(cfg.FFprobePath),
		Previewer:  media.NewPreviewGenerator(cfg.FFmpegPath, cfg.PreviewUseVips),
		Paths:      cfg.Paths,
		Retry:      filesystem.DefaultRetryConfig(),
		Throttle:   throttle,
	})
	if err != nil {
		return nil, err
	}
	svc.Load()
	LogCatalogInit(store.Name(), svc.Len(), time.Since(start))
	return svc, nil
}
