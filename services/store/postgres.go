package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore implements ProductStore on PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the connection and verifies it with a ping
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// CreateTables creates the necessary tables if they don't exist
func (s *PostgresStore) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT DEFAULT '',
			current_price DECIMAL(12,2) DEFAULT 0,
			last_lowest_price DECIMAL(12,2) DEFAULT 0,
			is_price_dropped BOOLEAN DEFAULT FALSE,
			image_url TEXT DEFAULT '',
			deep_link TEXT DEFAULT '',
			platform TEXT DEFAULT '',
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS price_history (
			id SERIAL PRIMARY KEY,
			product_id TEXT REFERENCES products(id) ON DELETE CASCADE,
			price DECIMAL(12,2) NOT NULL,
			platform TEXT DEFAULT '',
			observed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_history_product ON price_history(product_id, observed_at DESC)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// GetByID returns the product with the given id, or ErrNotFound
func (s *PostgresStore) GetByID(id string) (*Product, error) {
	query := `
		SELECT id, name, description, current_price, last_lowest_price, is_price_dropped, image_url, deep_link, platform, updated_at
		FROM products
		WHERE id = $1
	`

	var p Product
	err := s.db.QueryRow(query, id).Scan(
		&p.ID, &p.Name, &p.Description,
		&p.CurrentPrice, &p.LastLowestPrice, &p.IsPriceDropped,
		&p.ImageURL, &p.DeepLink, &p.Platform, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// GetByName returns the first case-insensitive name match, or ErrNotFound
func (s *PostgresStore) GetByName(name string) (*Product, error) {
	query := `
		SELECT id, name, description, current_price, last_lowest_price, is_price_dropped, image_url, deep_link, platform, updated_at
		FROM products
		WHERE LOWER(name) = LOWER($1)
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var p Product
	err := s.db.QueryRow(query, name).Scan(
		&p.ID, &p.Name, &p.Description,
		&p.CurrentPrice, &p.LastLowestPrice, &p.IsPriceDropped,
		&p.ImageURL, &p.DeepLink, &p.Platform, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// Save upserts the product and appends a price-history point
func (s *PostgresStore) Save(product *Product) error {
	product.UpdatedAt = time.Now()

	query := `
		INSERT INTO products (id, name, description, current_price, last_lowest_price, is_price_dropped, image_url, deep_link, platform, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			current_price = EXCLUDED.current_price,
			last_lowest_price = EXCLUDED.last_lowest_price,
			is_price_dropped = EXCLUDED.is_price_dropped,
			image_url = EXCLUDED.image_url,
			deep_link = EXCLUDED.deep_link,
			platform = EXCLUDED.platform,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.Exec(query,
		product.ID, product.Name, product.Description,
		product.CurrentPrice, product.LastLowestPrice, product.IsPriceDropped,
		product.ImageURL, product.DeepLink, product.Platform, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	if product.CurrentPrice > 0 {
		historyQuery := `
			INSERT INTO price_history (product_id, price, platform, observed_at)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := s.db.Exec(historyQuery, product.ID, product.CurrentPrice, product.Platform, product.UpdatedAt); err != nil {
			return fmt.Errorf("failed to record price history: %w", err)
		}
	}
	return nil
}

// List returns all tracked products, most recently updated first
func (s *PostgresStore) List() ([]Product, error) {
	query := `
		SELECT id, name, description, current_price, last_lowest_price, is_price_dropped, image_url, deep_link, platform, updated_at
		FROM products
		ORDER BY updated_at DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		err := rows.Scan(
			&p.ID, &p.Name, &p.Description,
			&p.CurrentPrice, &p.LastLowestPrice, &p.IsPriceDropped,
			&p.ImageURL, &p.DeepLink, &p.Platform, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// History returns the recorded price points for a product, newest first
func (s *PostgresStore) History(id string, limit int) ([]PricePoint, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT product_id, price, platform, observed_at
		FROM price_history
		WHERE product_id = $1
		ORDER BY observed_at DESC
		LIMIT $2
	`

	rows, err := s.db.Query(query, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}
	defer rows.Close()

	var points []PricePoint
	for rows.Next() {
		var pt PricePoint
		if err := rows.Scan(&pt.ProductID, &pt.Price, &pt.Platform, &pt.ObservedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		points = append(points, pt)
	}
	return points, rows.Err()
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
