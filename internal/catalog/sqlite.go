package catalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/priceparty/priceparty-server/internal/game"
)

// SQLiteSource reads the scraped product catalog from a local sqlite file.
type SQLiteSource struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	price    REAL NOT NULL,
	image_url TEXT NOT NULL,
	provider TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_provider ON products(provider);
`

// OpenSQLite opens (and if needed initializes) the catalog database.
func OpenSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init catalog schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Insert adds a product to the catalog. Used by the scraper import path and
// by tests seeding fixtures.
func (s *SQLiteSource) Insert(ctx context.Context, p game.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO products (id, name, price, image_url, provider)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Price, p.ImageURL, p.Provider)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *SQLiteSource) Providers() []string {
	rows, err := s.db.Query(`SELECT DISTINCT provider FROM products ORDER BY provider`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var providers []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return providers
		}
		providers = append(providers, p)
	}
	return providers
}

func (s *SQLiteSource) Fetch(ctx context.Context, provider string, count int) ([]game.Product, error) {
	if provider == ProviderAll || provider == "" {
		return fetchAll(ctx, s, count)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price, image_url, provider
		FROM products
		WHERE provider = ?
		ORDER BY RANDOM()
		LIMIT ?
	`, provider, count)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]game.Product, 0, count)
	for rows.Next() {
		var p game.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.ImageURL, &p.Provider); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	if len(products) < count {
		return nil, fmt.Errorf("%w: %s has %d, wanted %d", ErrNotEnough, provider, len(products), count)
	}
	return products, nil
}
