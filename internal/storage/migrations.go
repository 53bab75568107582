package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema for new-issue deals",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS deals (
					id TEXT PRIMARY KEY,
					deal_name TEXT NOT NULL DEFAULT '',
					issuer TEXT NOT NULL DEFAULT '',
					deal_type TEXT NOT NULL DEFAULT '',
					issuance_date TEXT NOT NULL DEFAULT '',
					total_deal_size REAL NOT NULL DEFAULT 0,
					deal_size REAL NOT NULL DEFAULT 0,
					currency TEXT NOT NULL DEFAULT '',
					asset_type TEXT NOT NULL DEFAULT '',
					originator TEXT NOT NULL DEFAULT '',
					servicer TEXT NOT NULL DEFAULT '',
					trustee TEXT NOT NULL DEFAULT '',
					rating_agency TEXT NOT NULL DEFAULT '',
					sector TEXT NOT NULL DEFAULT '',
					class_a_advance_rate REAL NOT NULL DEFAULT 0,
					initial_oc REAL NOT NULL DEFAULT 0,
					expected_cnl_low REAL NOT NULL DEFAULT 0,
					expected_cnl_high REAL NOT NULL DEFAULT 0,
					reserve_account REAL NOT NULL DEFAULT 0,
					avg_seasoning INTEGER NOT NULL DEFAULT 0,
					top_obligor_conc REAL NOT NULL DEFAULT 0,
					stated_class_count INTEGER NOT NULL DEFAULT 0,
					confidence_score INTEGER NOT NULL DEFAULT 0,
					issues TEXT NOT NULL DEFAULT '[]',
					source_identifier TEXT NOT NULL DEFAULT '',
					extracted_at DATETIME NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS note_classes (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					deal_id TEXT NOT NULL,
					class_id TEXT NOT NULL,
					original_balance REAL NOT NULL DEFAULT 0,
					current_balance REAL NOT NULL DEFAULT 0,
					interest_rate REAL NOT NULL DEFAULT 0,
					expected_maturity TEXT NOT NULL DEFAULT '',
					legal_final_maturity TEXT NOT NULL DEFAULT '',
					rating TEXT NOT NULL DEFAULT '',
					subordination_level INTEGER NOT NULL DEFAULT 5,
					payment_priority INTEGER NOT NULL DEFAULT 5,
					enhancement_level REAL NOT NULL DEFAULT 0,
					confidence INTEGER NOT NULL DEFAULT 0,
					UNIQUE(deal_id, class_id),
					FOREIGN KEY (deal_id) REFERENCES deals(id) ON DELETE CASCADE
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add surveillance reports and per-class performance",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS surveillance_reports (
					id TEXT PRIMARY KEY,
					deal_identifier TEXT NOT NULL DEFAULT '',
					report_date TEXT NOT NULL DEFAULT '',
					collection_period TEXT NOT NULL DEFAULT '',
					pool_balance REAL NOT NULL DEFAULT 0,
					collections_amount REAL NOT NULL DEFAULT 0,
					charge_offs_amount REAL NOT NULL DEFAULT 0,
					delinquency_30 REAL NOT NULL DEFAULT 0,
					delinquency_60 REAL NOT NULL DEFAULT 0,
					delinquency_90 REAL NOT NULL DEFAULT 0,
					cumulative_losses REAL NOT NULL DEFAULT 0,
					loss_rate REAL NOT NULL DEFAULT 0,
					prepayment_rate REAL NOT NULL DEFAULT 0,
					credit_enhancement_level REAL NOT NULL DEFAULT 0,
					covenant_compliance TEXT NOT NULL DEFAULT 'Unknown',
					confidence_score INTEGER NOT NULL DEFAULT 0,
					issues TEXT NOT NULL DEFAULT '[]',
					source_identifier TEXT NOT NULL DEFAULT '',
					extracted_at DATETIME NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS note_class_performance (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					report_id TEXT NOT NULL,
					class_id TEXT NOT NULL,
					rating TEXT NOT NULL DEFAULT '',
					beginning_balance REAL NOT NULL DEFAULT 0,
					ending_balance REAL NOT NULL DEFAULT 0,
					principal_paid REAL NOT NULL DEFAULT 0,
					interest_rate REAL NOT NULL DEFAULT 0,
					enhancement_level REAL NOT NULL DEFAULT 0,
					confidence INTEGER NOT NULL DEFAULT 0,
					UNIQUE(report_id, class_id),
					FOREIGN KEY (report_id) REFERENCES surveillance_reports(id) ON DELETE CASCADE
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Add lookup indexes",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_deals_sector ON deals(sector)`,
				`CREATE INDEX IF NOT EXISTS idx_deals_source ON deals(source_identifier)`,
				`CREATE INDEX IF NOT EXISTS idx_note_classes_deal_id ON note_classes(deal_id)`,
				`CREATE INDEX IF NOT EXISTS idx_surveillance_deal ON surveillance_reports(deal_identifier)`,
				`CREATE INDEX IF NOT EXISTS idx_surveillance_report_date ON surveillance_reports(report_date)`,
				`CREATE INDEX IF NOT EXISTS idx_performance_report_id ON note_class_performance(report_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
