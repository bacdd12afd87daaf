package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iyhunko/product-catalog/internal/model"
)

// TransactionalRepository writes a product change and its outbox event in a single transaction.
type TransactionalRepository struct {
	db *sql.DB
}

// NewTransactionalRepository creates a new TransactionalRepository
func NewTransactionalRepository(db *sql.DB) *TransactionalRepository {
	return &TransactionalRepository{db: db}
}

// CreateProductWithEvent inserts the product and a product.created event.
func (tr *TransactionalRepository) CreateProductWithEvent(ctx context.Context, product *model.Product) (*model.Product, error) {
	var created *model.Product
	err := withinTransaction(ctx, tr.db, func(c conn) error {
		var err error
		created, err = (&ProductRepository{conn: c}).Create(ctx, product)
		if err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return writeEvent(ctx, c, model.EventProductCreated, created)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateProductWithEvent stores the product and a product.updated event.
func (tr *TransactionalRepository) UpdateProductWithEvent(ctx context.Context, product *model.Product) (*model.Product, error) {
	var updated *model.Product
	err := withinTransaction(ctx, tr.db, func(c conn) error {
		var err error
		updated, err = (&ProductRepository{conn: c}).Update(ctx, product)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return writeEvent(ctx, c, model.EventProductUpdated, updated)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProductWithEvent deletes the product and records a product.deleted event.
func (tr *TransactionalRepository) DeleteProductWithEvent(ctx context.Context, product *model.Product) error {
	return withinTransaction(ctx, tr.db, func(c conn) error {
		if err := (&ProductRepository{conn: c}).DeleteByID(ctx, product); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return writeEvent(ctx, c, model.EventProductDeleted, product)
	})
}

func writeEvent(ctx context.Context, c conn, eventType string, product *model.Product) error {
	event, err := model.NewProductEvent(eventType, product)
	if err != nil {
		return err
	}
	if _, err := (&EventRepository{conn: c}).Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}
