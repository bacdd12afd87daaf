package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
)

// BrandRepository reads brands.
type BrandRepository struct {
	conn
}

// NewBrandRepository creates a new BrandRepository instance.
func NewBrandRepository(db *sql.DB) *BrandRepository {
	return &BrandRepository{conn: conn{db: db}}
}

// FindByID retrieves a single brand by ID.
func (r *BrandRepository) FindByID(ctx context.Context, id int64) (*model.Brand, error) {
	stmt, err := r.prepare(ctx, `SELECT id, name, country_code FROM brands WHERE id = $1`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var brand model.Brand
	err = stmt.QueryRowContext(ctx, id).Scan(&brand.ID, &brand.Name, &brand.CountryCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("brand %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query brand: %w", err)
	}

	return &brand, nil
}
