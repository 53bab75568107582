// Package testutil provides shared test helpers: an in-memory database and
// document fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/tranche/internal/model"
	"github.com/Veraticus/tranche/internal/service"
	"github.com/Veraticus/tranche/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new migrated in-memory test database. It is closed
// automatically when the test finishes.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Deals          []model.NewIssueDeal
	Reports        []model.SurveillanceReport
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	// Create in-memory SQLite storage
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	ctx := context.Background()

	// Register cleanup
	t.Cleanup(func() {
		_ = store.Close()
	})

	// Run migrations unless skipped
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Seed records
	for i := range opts.Deals {
		if err := store.SaveDeal(ctx, &opts.Deals[i]); err != nil {
			t.Fatalf("failed to seed deal %q: %v", opts.Deals[i].DealName, err)
		}
	}
	for i := range opts.Reports {
		if err := store.SaveSurveillance(ctx, &opts.Reports[i]); err != nil {
			t.Fatalf("failed to seed report %q: %v", opts.Reports[i].DealIdentifier, err)
		}
	}

	// Run custom setup
	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// MustGetDeal returns the stored deal with the given ID or fails the test.
func (db *TestDB) MustGetDeal(id string) *model.NewIssueDeal {
	db.t.Helper()
	deal, err := db.Storage.GetDeal(context.Background(), id)
	if err != nil {
		db.t.Fatalf("failed to get deal %s: %v", id, err)
	}
	return deal
}

// MustListDeals returns every stored deal or fails the test.
func (db *TestDB) MustListDeals() []model.NewIssueDeal {
	db.t.Helper()
	deals, err := db.Storage.ListDeals(context.Background(), service.DealFilter{})
	if err != nil {
		db.t.Fatalf("failed to list deals: %v", err)
	}
	return deals
}

// MustListReports returns every stored surveillance report or fails the test.
func (db *TestDB) MustListReports() []model.SurveillanceReport {
	db.t.Helper()
	reports, err := db.Storage.ListSurveillance(context.Background(), service.ReportFilter{})
	if err != nil {
		db.t.Fatalf("failed to list reports: %v", err)
	}
	return reports
}
