package abbrev

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Cache is a persistent journal-abbreviation cache so repeated runs do not
// hit the network for names already resolved.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the cache database at the given path.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS journals (
			name TEXT PRIMARY KEY,
			abbrev TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Get returns the cached abbreviation for a journal name.
func (c *Cache) Get(name string) (string, bool, error) {
	var abbrev string
	err := c.db.QueryRow("SELECT abbrev FROM journals WHERE name = ?", name).Scan(&abbrev)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying cache: %w", err)
	}
	return abbrev, true, nil
}

// Put stores an abbreviation, replacing any previous value.
func (c *Cache) Put(name, abbrev string) error {
	_, err := c.db.Exec(
		"INSERT INTO journals (name, abbrev, fetched_at) VALUES (?, ?, ?) ON CONFLICT(name) DO UPDATE SET abbrev = excluded.abbrev, fetched_at = excluded.fetched_at",
		name, abbrev, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Entries returns all cached journal/abbreviation pairs, ordered by name.
func (c *Cache) Entries() (map[string]string, error) {
	rows, err := c.db.Query("SELECT name, abbrev FROM journals ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing cache: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var name, abbrev string
		if err := rows.Scan(&name, &abbrev); err != nil {
			return nil, err
		}
		out[name] = abbrev
	}
	return out, rows.Err()
}
