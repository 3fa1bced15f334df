package library

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible
// build and must be migrated or recreated manually.
var ErrSchemaMismatch = errors.New("library database schema version mismatch")

func (s *Store) initSchema() error {
	var hasVersionTable bool
	row := s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`)
	var count int
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("check schema version table: %w", err)
	}
	hasVersionTable = count > 0

	if hasVersionTable {
		var version int
		if err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version); err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("read schema version: %w", err)
			}
			version = 0
		}
		if version != 0 && version != schemaVersion {
			return fmt.Errorf("%w: found %d, need %d", ErrSchemaMismatch, version, schemaVersion)
		}
	}

	if err := s.createSchema(); err != nil {
		return err
	}
	return s.migrateColumns()
}

func (s *Store) createSchema() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM schema_version`); err != nil {
		return fmt.Errorf("reset schema version: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// migrateColumns adds columns introduced after the first release to
// databases created before them. Additive only; existing data is preserved.
func (s *Store) migrateColumns() error {
	migrations := []struct {
		column string
		ddl    string
	}{
		{"target_path", `ALTER TABLE movies ADD COLUMN target_path TEXT`},
		{"state", `ALTER TABLE movies ADD COLUMN state TEXT NOT NULL DEFAULT 'ok'`},
	}
	for _, m := range migrations {
		exists, err := s.columnExists("movies", m.column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := s.db.Exec(m.ddl); err != nil {
			return fmt.Errorf("add column %s: %w", m.column, err)
		}
	}
	return nil
}

func (s *Store) columnExists(table, column string) (bool, error) {
	rows, err := s.db.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return false, fmt.Errorf("inspect table %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name       string
			ctype      string
			notNull    int
			defaultVal sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &defaultVal, &primaryKey); err != nil {
			return false, fmt.Errorf("scan table info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
