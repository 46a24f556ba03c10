package sqlite

import "github.com/steveyegge/partsbin/internal/storage/migrations"

// schemaMigrations builds the inventory schema. Versions are append-only:
// never edit a migration that has shipped, add a new one.
var schemaMigrations = []migrations.Migration{
	{
		Version:     1,
		Description: "Create components table",
		Up: `
			CREATE TABLE IF NOT EXISTS components (
			    id INTEGER PRIMARY KEY AUTOINCREMENT,
			    name TEXT NOT NULL CHECK(length(name) <= 500),
			    category TEXT NOT NULL DEFAULT 'Uncategorized',
			    specifications TEXT NOT NULL DEFAULT '',
			    source TEXT NOT NULL DEFAULT '',
			    quantity INTEGER NOT NULL DEFAULT 1 CHECK(quantity >= 0),
			    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);

			CREATE INDEX IF NOT EXISTS idx_components_category ON components(category);
		`,
		Down: `DROP TABLE IF EXISTS components;`,
	},
	{
		Version:     2,
		Description: "Add storage location column",
		Up: `
			ALTER TABLE components ADD COLUMN storage TEXT NOT NULL DEFAULT '';

			CREATE INDEX IF NOT EXISTS idx_components_category_name ON components(category, name);
			CREATE INDEX IF NOT EXISTS idx_components_created_at ON components(created_at);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_components_created_at;
			DROP INDEX IF EXISTS idx_components_category_name;
			ALTER TABLE components DROP COLUMN storage;
		`,
	},
	{
		Version:     3,
		Description: "Create component exclusions table",
		// No foreign keys: rows may outlive a merged-away component and are
		// pruned explicitly.
		Up: `
			CREATE TABLE IF NOT EXISTS component_exclusions (
			    low_id INTEGER NOT NULL,
			    high_id INTEGER NOT NULL,
			    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
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
			    source_id INTEGER NOT NULL,
			    target_id INTEGER NOT NULL,
			    source_name TEXT NOT NULL,
			    source_quantity INTEGER NOT NULL,
			    merged_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);

			CREATE INDEX IF NOT EXISTS idx_merge_history_source ON merge_history(source_id);
			CREATE INDEX IF NOT EXISTS idx_merge_history_target ON merge_history(target_id);
		`,
		Down: `DROP TABLE IF EXISTS merge_history;`,
	},
}
