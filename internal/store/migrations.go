package store

import (
	"database/sql"
	"fmt"

	"shopchat/internal/logging"
)

// Migration adds a column that older databases lack.
type Migration struct {
	Table  string
	Column string
	Def    string
}

// pendingMigrations lists columns added after the first schema. initialize
// does not create them; new and old databases both get them here.
var pendingMigrations = []Migration{
	{"categories", "image", "TEXT NOT NULL DEFAULT ''"},
	{"products", "image", "TEXT NOT NULL DEFAULT ''"},
}

// RunMigrations applies pending column migrations. Missing tables and
// existing columns are skipped.
func RunMigrations(db *sql.DB) error {
	timer := logging.StartTimer(logging.CategoryStore, "RunMigrations")
	defer timer.Stop()

	applied, skipped := 0, 0
	for _, m := range pendingMigrations {
		if !tableExists(db, m.Table) {
			logging.StoreDebug("Table missing, skipping migration: %s.%s", m.Table, m.Column)
			skipped++
			continue
		}
		if columnExists(db, m.Table, m.Column) {
			skipped++
			continue
		}

		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		logging.StoreDebug("Executing migration: %s", query)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("migration %s.%s failed: %w", m.Table, m.Column, err)
		}
		applied++
	}

	logging.Store("Schema migrations complete: applied=%d, skipped=%d", applied, skipped)
	return nil
}

// columnExists checks if a column exists in a table using PRAGMA table_info.
func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		logging.StoreDebug("PRAGMA table_info(%s) failed: %v", table, err)
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var cid, notnull, pk int
		var name, ctype string
		var dflt interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}

// tableExists checks if a table exists in the database.
func tableExists(db *sql.DB, table string) bool {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
	if err != nil {
		logging.StoreDebug("Table existence check failed for %s: %v", table, err)
		return false
	}
	return count > 0
}
