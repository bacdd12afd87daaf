package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/lib/pq"
)

const productColumns = `p.id, p.name, p.rating, p.featured, p.created_at, p.expiration_date, p.receipt_date,
	p.items_in_stock, b.id, b.name, b.country_code`

// ProductRepository implements repository.ProductRepository on PostgreSQL.
type ProductRepository struct {
	conn
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{conn: conn{db: db}}
}

// Create inserts a new product with its category associations and assigns its ID.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	if product.CreatedAt.IsZero() {
		product.InitMeta()
	}

	query := `INSERT INTO products (name, rating, featured, created_at, expiration_date, receipt_date, brand_id, items_in_stock)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	stmt, err := r.prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx,
		product.Name, product.Rating, product.Featured, product.CreatedAt,
		product.ExpirationDate, product.ReceiptDate, product.Brand.ID, product.ItemsInStock,
	).Scan(&product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", translateError(err))
	}

	if err := r.insertCategories(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Update overwrites the stored product row and replaces its category associations.
func (r *ProductRepository) Update(ctx context.Context, product *model.Product) (*model.Product, error) {
	query := `UPDATE products
	          SET name = $1, rating = $2, featured = $3, expiration_date = $4, receipt_date = $5,
	              brand_id = $6, items_in_stock = $7
	          WHERE id = $8`

	stmt, err := r.prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		product.Name, product.Rating, product.Featured, product.ExpirationDate, product.ReceiptDate,
		product.Brand.ID, product.ItemsInStock, product.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", translateError(err))
	}

	if err := requireAffected(result, product.ID); err != nil {
		return nil, err
	}

	if err := r.deleteCategories(ctx, product.ID); err != nil {
		return nil, err
	}
	if err := r.insertCategories(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// List retrieves every product ordered by ID, optionally filtered by the featured flag.
func (r *ProductRepository) List(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + productColumns + " FROM products p JOIN brands b ON b.id = p.brand_id WHERE 1=1")

	var args []interface{}
	if featured, ok := query.Featured(); ok {
		args = append(args, featured)
		queryBuilder.WriteString(fmt.Sprintf(" AND p.featured = $%d", len(args)))
	}
	queryBuilder.WriteString(" ORDER BY p.id")

	stmt, err := r.prepare(ctx, queryBuilder.String())
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if err := r.loadCategories(ctx, products...); err != nil {
		return nil, err
	}

	return products, nil
}

// FindByID retrieves a single product with its brand and categories.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	query := "SELECT " + productColumns + " FROM products p JOIN brands b ON b.id = p.brand_id WHERE p.id = $1"

	stmt, err := r.prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	product, err := scanProduct(stmt.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
		}
		return nil, err
	}

	if err := r.loadCategories(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// DeleteByID deletes a product. Category associations are removed by the cascade.
func (r *ProductRepository) DeleteByID(ctx context.Context, product *model.Product) error {
	stmt, err := r.prepare(ctx, `DELETE FROM products WHERE id = $1`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return requireAffected(result, product.ID)
}

func (r *ProductRepository) insertCategories(ctx context.Context, product *model.Product) error {
	if len(product.Categories) == 0 {
		return nil
	}

	query := `INSERT INTO products_categories (product_id, category_id)
	          SELECT $1, unnest($2::bigint[])`

	stmt, err := r.prepare(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, product.ID, pq.Array(product.CategoryIDs())); err != nil {
		return fmt.Errorf("failed to insert product categories: %w", translateError(err))
	}
	return nil
}

func (r *ProductRepository) deleteCategories(ctx context.Context, productID int64) error {
	stmt, err := r.prepare(ctx, `DELETE FROM products_categories WHERE product_id = $1`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, productID); err != nil {
		return fmt.Errorf("failed to delete product categories: %w", err)
	}
	return nil
}

// loadCategories fills the categories of all given products with one query.
func (r *ProductRepository) loadCategories(ctx context.Context, products ...*model.Product) error {
	if len(products) == 0 {
		return nil
	}

	byID := make(map[int64]*model.Product, len(products))
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	query := `SELECT pc.product_id, c.id, c.name
	          FROM products_categories pc JOIN categories c ON c.id = pc.category_id
	          WHERE pc.product_id = ANY($1)
	          ORDER BY pc.product_id, c.id`

	stmt, err := r.prepare(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query product categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var category model.Category
		if err := rows.Scan(&productID, &category.ID, &category.Name); err != nil {
			return fmt.Errorf("failed to scan product category: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Categories = append(p.Categories, category)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var product model.Product
	var expirationDate, receiptDate sql.NullTime
	err := row.Scan(
		&product.ID, &product.Name, &product.Rating, &product.Featured, &product.CreatedAt,
		&expirationDate, &receiptDate, &product.ItemsInStock,
		&product.Brand.ID, &product.Brand.Name, &product.Brand.CountryCode,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if expirationDate.Valid {
		t := expirationDate.Time.UTC()
		product.ExpirationDate = &t
	}
	if receiptDate.Valid {
		t := receiptDate.Time.UTC()
		product.ReceiptDate = &t
	}
	product.CreatedAt = product.CreatedAt.UTC()

	return &product, nil
}

func requireAffected(result sql.Result, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
	}

	return nil
}
