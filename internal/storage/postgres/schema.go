package postgres

import "github.com/steveyegge/partsbin/internal/storage/migrations"

// schemaMigrations mirrors the SQLite schema with PostgreSQL types.
var schemaMigrations = []migrations.Migration{
	{
		Version:     1,
		Description: "Create components table",
		Up: `
			CREATE TABLE IF NOT EXISTS components (
			    id BIGSERIAL PRIMARY KEY,
			    name TEXT NOT NULL CHECK (char_length(name) <= 500),
			    category TEXT NOT NULL DEFAULT 'Uncategorized',
			    specifications TEXT NOT NULL DEFAULT '',
			    source TEXT NOT NULL DEFAULT '',
			    quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 0),
			    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_components_category ON components(category);
		`,
		Down: `DROP TABLE IF EXISTS components;`,
	},
	{
		Version:     2,
		Description: "Add storage location column",
		Up: `
			ALTER TABLE components ADD COLUMN IF NOT EXISTS storage TEXT NOT NULL DEFAULT '';

			CREATE INDEX IF NOT EXISTS idx_components_category_name ON components(category, name);
			CREATE INDEX IF NOT EXISTS idx_components_created_at ON components(created_at);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_components_created_at;
			DROP INDEX IF EXISTS idx_components_category_name;
			ALTER TABLE components DROP COLUMN IF EXISTS storage;
		`,
	},
	{
		Version:     3,
		Description: "Create component exclusions table",
		Up: `
			CREATE TABLE IF NOT EXISTS component_exclusions (
			    low_id BIGINT NOT NULL,
			    high_id BIGINT NOT NULL,
			    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			    PRIMARY KEY (low_id, high_id),
			    CHECK (low_id < high_id)
			);

			CREATE INDEX IF NOT EXISTS idx_component_exclusions_high ON component_exclusions(high_id);
		`,
		Down: `DROP TABLE IF EXISTS component_exclusions;`,
	},
	{
		Version:     4,
		Description: "Create merge history table",
		Up: `
			CREATE TABLE IF NOT EXISTS merge_history (
			    id TEXT PRIMARY KEY,
			    source_id BIGINT NOT NULL,
			    target_id BIGINT NOT NULL,
			    source_name TEXT NOT NULL,
			    source_quantity INTEGER NOT NULL,
			    merged_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_merge_history_source ON merge_history(source_id);
			CREATE INDEX IF NOT EXISTS idx_merge_history_target ON merge_history(target_id);
		`,
		Down: `DROP TABLE IF EXISTS merge_history;`,
	},
	{
		Version:     5,
		Description: "Widen quantities to BIGINT",
		// SQLite integers are 64-bit; merged quantities must not overflow here first.
		Up: `
			ALTER TABLE components ALTER COLUMN quantity TYPE BIGINT;
			ALTER TABLE merge_history ALTER COLUMN source_quantity TYPE BIGINT;
		`,
		Down: `
			ALTER TABLE merge_history ALTER COLUMN source_quantity TYPE INTEGER;
			ALTER TABLE components ALTER COLUMN quantity TYPE INTEGER;
		`,
	},
}
