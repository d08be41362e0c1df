package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS organizations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	contact TEXT,
	phone TEXT
);
CREATE TABLE IF NOT EXISTS objects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	org_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	address TEXT,
	FOREIGN KEY (org_id) REFERENCES organizations(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS constructions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	object_id INTEGER NOT NULL,
	pour_date TEXT NOT NULL,
	element TEXT,
	concrete_class TEXT,
	frost_resistance TEXT,
	water_resistance TEXT,
	supplier TEXT,
	concrete_passport TEXT,
	volume_concrete REAL,
	cubes_count INTEGER,
	cones_count INTEGER,
	slump TEXT,
	temperature TEXT,
	temp_measurements INTEGER,
	executor TEXT,
	act_number TEXT,
	request_number TEXT,
	invoice TEXT,
	FOREIGN KEY (object_id) REFERENCES objects(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_objects_org ON objects(org_id);
CREATE INDEX IF NOT EXISTS idx_constructions_object ON constructions(object_id);`

// column is an additive migration step: the column is added only if absent
type column struct {
	table      string
	name       string
	definition string
}

// Older databases were created without these columns.
var additiveColumns = []column{
	{table: "constructions", name: "request_number", definition: "TEXT"},
	{table: "constructions", name: "invoice", definition: "TEXT"},
}

func migrate(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	if _, err := db.ExecContext(ctx, createTablesSQL); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	for _, c := range additiveColumns {
		exists, err := hasColumn(ctx, db, c.table, c.name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.name, c.definition)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add column %s.%s: %w", c.table, c.name, err)
		}
		logger.Info("Added column", zap.String("table", c.table), zap.String("column", c.name))
	}
	return nil
}

func hasColumn(ctx context.Context, db *sqlx.DB, table, name string) (bool, error) {
	var columns []struct {
		CID        int     `db:"cid"`
		Name       string  `db:"name"`
		Type       string  `db:"type"`
		NotNull    int     `db:"notnull"`
		Default    *string `db:"dflt_value"`
		PrimaryKey int     `db:"pk"`
	}
	if err := db.SelectContext(ctx, &columns, fmt.Sprintf("PRAGMA table_info(%s)", table)); err != nil {
		return false, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	for _, c := range columns {
		if c.Name == name {
			return true, nil
		}
	}
	return false, nil
}
