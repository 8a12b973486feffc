package main

import (
	"context"
	"fmt"

	"movie-catalog/internal/catalog"
	"movie-catalog/internal/startup"
)

// session is an open catalog. Commands run one operation and close it.
type session struct {
	svc   *catalog.Service
	store catalog.Store
}

func (s *session) Close() error {
	return s.store.Close()
}

// opener opens the catalog the command operates on.
type opener func(ctx context.Context) (*session, error)

// openConfiguredCatalog reads the same configuration as the server.
func openConfiguredCatalog(ctx context.Context) (*session, error) {
	cfg, err := startup.ReadConfig()
	if err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	if err := startup.PrepareDirectories(cfg); err != nil {
		return nil, err
	}

	store, err := startup.OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc, err := startup.NewCatalog(cfg, store, nil)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &session{svc: svc, store: store}, nil
}
