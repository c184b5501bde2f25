// Package cache implements MiniC's compilation cache (component C10): a
// content-addressed store, keyed by a blake2b digest of the source text,
// holding the TAC listing and generated assembly for that source so a
// repeat compilation can skip straight to the cached artifacts.
//
// Backend selection follows the driver-name-from-DSN-scheme pattern of the
// teacher's internal/database package: the DSN's scheme picks the SQL
// driver, the remainder is passed to sql.Open verbatim (a postgres DSN is
// passed whole, scheme included). Caching is purely
// additive — a hit must return byte-for-byte what a miss would have
// recomputed (spec §5's determinism invariant), it never changes results.
package cache

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/blake2b"
)

// Artifacts are the cacheable results of one pipeline run.
type Artifacts struct {
	TAC      string
	Assembly string
}

// Cache stores Artifacts under a content hash of the source that produced
// them.
type Cache struct {
	db *sql.DB
}

// Open parses dsn's leading scheme ("sqlite3://", "mysql://", "postgres://",
// "sqlserver://") to choose a driver, opens the connection, and ensures the
// backing table exists. A bare path with no scheme is treated as sqlite3,
// matching the teacher's "database is the file path" sqlite convention.
func Open(dsn string) (*Cache, error) {
	driver, source := splitDSN(dsn)
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", driver, err)
	}
	c := &Cache{db: db}
	if err := c.ensureSchema(driver); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func splitDSN(dsn string) (driver, source string) {
	if idx := strings.Index(dsn, "://"); idx >= 0 {
		scheme := dsn[:idx]
		rest := dsn[idx+3:]
		switch scheme {
		case "mysql":
			return "mysql", rest
		case "postgres", "postgresql":
			return "postgres", dsn
		case "sqlserver", "mssql":
			return "sqlserver", rest
		default:
			return "sqlite3", rest
		}
	}
	return "sqlite3", dsn
}

func (c *Cache) ensureSchema(driver string) error {
	ddl := `CREATE TABLE IF NOT EXISTS compile_cache (
		digest TEXT PRIMARY KEY,
		tac TEXT NOT NULL,
		assembly TEXT NOT NULL
	)`
	if driver == "postgres" {
		ddl = `CREATE TABLE IF NOT EXISTS compile_cache (
			digest TEXT PRIMARY KEY,
			tac TEXT NOT NULL,
			assembly TEXT NOT NULL
		)`
	}
	_, err := c.db.Exec(ddl)
	return err
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Digest computes the cache key for a source text.
func Digest(source string) string {
	sum := blake2b.Sum256([]byte(source))
	return fmt.Sprintf("%x", sum)
}

// Lookup returns the cached Artifacts for digest, if present.
func (c *Cache) Lookup(digest string) (Artifacts, bool, error) {
	var a Artifacts
	row := c.db.QueryRow(`SELECT tac, assembly FROM compile_cache WHERE digest = ?`, digest)
	err := row.Scan(&a.TAC, &a.Assembly)
	if err == sql.ErrNoRows {
		return Artifacts{}, false, nil
	}
	if err != nil {
		return Artifacts{}, false, err
	}
	return a, true, nil
}

// Store records Artifacts under digest, replacing any prior entry.
func (c *Cache) Store(digest string, a Artifacts) error {
	_, err := c.db.Exec(`DELETE FROM compile_cache WHERE digest = ?`, digest)
	if err != nil {
		return err
	}
	_, err = c.db.Exec(`INSERT INTO compile_cache (digest, tac, assembly) VALUES (?, ?, ?)`, digest, a.TAC, a.Assembly)
	return err
}
