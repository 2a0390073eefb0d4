package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"MetroScraper/internal/models"
	"MetroScraper/utils"

	_ "modernc.org/sqlite"
)

// DBRepository is a thin layer over the products database.
type DBRepository struct {
	DB *sql.DB
}

const createProductsTableSQL = `
CREATE TABLE IF NOT EXISTS products (
	"id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	"article" TEXT NOT NULL,
	"name" TEXT,
	"link" TEXT NOT NULL,
	"regular_price" TEXT,
	"promo_price" TEXT,
	"regular_price_value" REAL,
	"promo_price_value" REAL,
	"brand_name" TEXT,
	"city" TEXT NOT NULL,
	"scraped_at" DATETIME,
	UNIQUE ("link", "city")
);
CREATE INDEX IF NOT EXISTS idx_products_city ON products ("city");`

// InitDB opens (creating if needed) the database at filepath and ensures the schema exists.
func InitDB(filepath string) (*DBRepository, error) {
	db, err := sql.Open("sqlite", filepath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	// SQLite allows a single writer; one connection avoids "database is locked".
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(createProductsTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating products table: %w", err)
	}
	return &DBRepository{DB: db}, nil
}

// Close closes the database connection.
func (repo *DBRepository) Close() error {
	return repo.DB.Close()
}

const upsertProductSQL = `
	INSERT INTO products (
		article, name, link, regular_price, promo_price,
		regular_price_value, promo_price_value, brand_name, city, scraped_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(link, city) DO UPDATE SET
		article=excluded.article,
		name=excluded.name,
		regular_price=excluded.regular_price,
		promo_price=excluded.promo_price,
		regular_price_value=excluded.regular_price_value,
		promo_price_value=excluded.promo_price_value,
		brand_name=excluded.brand_name,
		scraped_at=excluded.scraped_at;`

// SaveProducts upserts a batch of products in one transaction. A product already stored for
// the same link and city is overwritten with the fresh data.
func (repo *DBRepository) SaveProducts(ctx context.Context, products []models.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	tx, err := repo.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err := insertProducts(ctx, tx, products); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(products), nil
}

// ReplaceCityProducts makes products the complete stock of city: rows of that city missing
// from products are removed and the rest are stored in the given order. An empty slice
// clears the city.
func (repo *DBRepository) ReplaceCityProducts(ctx context.Context, city string, products []models.Product) (int, error) {
	tx, err := repo.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM products WHERE city = ?", city); err != nil {
		return 0, fmt.Errorf("failed to clear products for %s: %w", city, err)
	}

	stamped := make([]models.Product, len(products))
	for i, p := range products {
		p.City = city
		stamped[i] = p
	}
	if err := insertProducts(ctx, tx, stamped); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(products), nil
}

func insertProducts(ctx context.Context, tx *sql.Tx, products []models.Product) error {
	stmt, err := tx.PrepareContext(ctx, upsertProductSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range products {
		scrapedAt := p.ScrapedAt
		if scrapedAt.IsZero() {
			scrapedAt = time.Now()
		}
		_, err := stmt.ExecContext(ctx,
			p.ID, p.Name, p.Link, p.RegularPrice, p.PromoPrice,
			utils.ParsePrice(p.RegularPrice), utils.ParsePrice(p.PromoPrice),
			p.BrandName, p.City, scrapedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to save product %s: %w", p.Link, err)
		}
	}
	return nil
}

// whereClause builds the filter conditions shared by GetProducts and CountProducts.
func whereClause(filters models.ProductFilters) (string, []interface{}) {
	var args []interface{}
	var conditions []string

	if filters.City != "" {
		conditions = append(conditions, "city = ?")
		args = append(args, filters.City)
	}
	if filters.Brand != "" {
		conditions = append(conditions, "brand_name = ? COLLATE NOCASE")
		args = append(args, filters.Brand)
	}
	if filters.MinPrice > 0 {
		conditions = append(conditions, "promo_price_value >= ?")
		args = append(args, filters.MinPrice)
	}
	if filters.MaxPrice > 0 {
		conditions = append(conditions, "promo_price_value <= ?")
		args = append(args, filters.MaxPrice)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// GetProducts retrieves products matching filters, in insertion order, paginated.
func (repo *DBRepository) GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, error) {
	where, args := whereClause(filters)
	query := `SELECT article, name, link, regular_price, promo_price, brand_name, city, scraped_at
	          FROM products` + where + ` ORDER BY id`
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
		if filters.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filters.Offset)
		}
	}

	rows, err := repo.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute filtered query: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Link, &p.RegularPrice, &p.PromoPrice,
			&p.BrandName, &p.City, &p.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning product row: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountProducts returns the number of products matching filters, ignoring pagination.
func (repo *DBRepository) CountProducts(ctx context.Context, filters models.ProductFilters) (int, error) {
	where, args := whereClause(filters)
	var count int
	err := repo.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+where, args...).Scan(&count)
	return count, err
}

// GetCities lists the cities that have stored products.
func (repo *DBRepository) GetCities(ctx context.Context) ([]string, error) {
	rows, err := repo.DB.QueryContext(ctx, "SELECT DISTINCT city FROM products ORDER BY city")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}
