package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/tranche/internal/common"
	"github.com/Veraticus/tranche/internal/engine"
	"github.com/Veraticus/tranche/internal/model"
	"github.com/Veraticus/tranche/internal/service"
	"github.com/Veraticus/tranche/internal/storage"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func closeStorage(store service.Storage) {
	if err := store.Close(); err != nil {
		slog.Error("failed to close storage", "error", err)
	}
}

// newEngine builds an engine over the configured pattern library.
func newEngine() (*engine.Engine, error) {
	lib, err := cfg.Library()
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern library: %w", err)
	}
	slog.Debug("Pattern library ready", "version", lib.Version)
	return engine.New(lib), nil
}

// parseTypeFlag maps --type to a document type; "auto" and "" mean detect.
func parseTypeFlag(value string) (model.DocumentType, error) {
	if value == "" || value == "auto" {
		return "", nil
	}
	docType, ok := model.ParseDocumentType(value)
	if !ok {
		return "", common.NewUserError("use --type auto, new-issue or surveillance", fmt.Errorf("%w: document type %q", common.ErrInvalidConfig, value))
	}
	return docType, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
