package db

import "fmt"

// Folder and history ids come from sequences so they stay unique across
// deletes, like the portal's integer primary keys.
var schemaStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS folder_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS history_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS folders (
	id         BIGINT PRIMARY KEY DEFAULT nextval('folder_id_seq'),
	name       VARCHAR NOT NULL,
	parent_id  BIGINT,
	created_at TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS histories (
	id               BIGINT PRIMARY KEY DEFAULT nextval('history_id_seq'),
	folder_id        BIGINT,
	name             VARCHAR,
	calculation_type VARCHAR NOT NULL,
	input            VARCHAR NOT NULL,
	output           VARCHAR NOT NULL,
	timestamp        TIMESTAMP NOT NULL,
	size             BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS account (
	id                INTEGER PRIMARY KEY,
	username          VARCHAR NOT NULL,
	email             VARCHAR NOT NULL,
	is_admin          BOOLEAN NOT NULL,
	subscription_end  TIMESTAMP,
	storage_used      BIGINT NOT NULL,
	storage_limit     BIGINT NOT NULL,
	default_folder_id BIGINT
)`,
}

// accountID is the key of the single account row
const accountID = 1

// InitializeSchema creates the tables if they do not exist yet. Existing
// data is kept.
func (db *DB) InitializeSchema() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, stmt := range schemaStatements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// VerifyTablesExist checks that every table of the schema is present
func (db *DB) VerifyTablesExist() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, table := range []string{"folders", "histories", "account"} {
		var n int
		err := db.conn.QueryRow(
			`SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?`, table,
		).Scan(&n)
		if err != nil {
			return fmt.Errorf("failed to look up table %s: %w", table, err)
		}
		if n == 0 {
			return fmt.Errorf("required table %s does not exist", table)
		}
	}
	return nil
}
