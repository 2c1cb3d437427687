// Package store persists the storefront catalog in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"shopchat/internal/catalog"
	"shopchat/internal/logging"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

const (
	// DriverCGO is mattn/go-sqlite3.
	DriverCGO = "sqlite3"
	// DriverPure is modernc.org/sqlite, usable without cgo.
	DriverPure = "sqlite"
)

var _ catalog.Writer = (*LocalStore)(nil)

// LocalStore is the SQLite-backed catalog: users, categories, products,
// their links, and orders with items.
type LocalStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
	driver string
	now    func() time.Time
}

// NewLocalStore opens the database at path with the cgo driver.
func NewLocalStore(path string) (*LocalStore, error) {
	return Open(DriverCGO, path)
}

// Open opens (creating if needed) the database at path with the named driver
// and applies the schema.
func Open(driver, path string) (*LocalStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	logging.Store("Opening LocalStore (%s) at %s", driver, path)

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logging.StoreError("Failed to create directory %s: %v", dir, err)
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		logging.StoreError("Failed to open database at %s: %v", path, err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			logging.StoreDebug("%s failed: %v", pragma, err)
		}
	}

	s := &LocalStore{db: db, dbPath: path, driver: driver, now: time.Now}
	if err := s.initialize(); err != nil {
		logging.StoreError("Failed to initialize schema: %v", err)
		db.Close()
		return nil, err
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("LocalStore ready")
	return s, nil
}

// DB exposes the underlying handle.
func (s *LocalStore) DB() *sql.DB {
	return s.db
}

// Path returns the database location.
func (s *LocalStore) Path() string {
	return s.dbPath
}

// Close closes the database.
func (s *LocalStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func (s *LocalStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		slug TEXT NOT NULL UNIQUE,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		price INTEGER NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS category_product (
		category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		PRIMARY KEY (category_id, product_id)
	);
	CREATE INDEX IF NOT EXISTS idx_category_product_product ON category_product(product_id);

	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		total_amount INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);

	CREATE TABLE IF NOT EXISTS order_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL,
		price INTEGER NOT NULL,
		total_amount INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *LocalStore) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		logging.StoreDebug("Unparseable timestamp %q: %v", v, err)
		return time.Time{}
	}
	return t
}
