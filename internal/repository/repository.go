package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
)

// ErrNotFound is returned when a looked up row does not exist.
var ErrNotFound = errors.New("resource not found")

// ProductRepository persists products together with their category associations.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) (*model.Product, error)
	List(ctx context.Context, query Query) ([]*model.Product, error)
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	DeleteByID(ctx context.Context, product *model.Product) error
}

// BrandRepository reads brand reference data.
type BrandRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Brand, error)
}

// CategoryRepository reads category reference data.
type CategoryRepository interface {
	// FindByIDs returns the categories that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []int64) ([]model.Category, error)
}

// EventRepository stores outbox events.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	List(ctx context.Context, query Query) ([]*model.Event, error)
	UpdateStatus(ctx context.Context, eventID uuid.UUID, status model.EventStatus) error
}

// ProductEventWriter commits a product change and its outbox event atomically.
type ProductEventWriter interface {
	CreateProductWithEvent(ctx context.Context, product *model.Product) (*model.Product, error)
	UpdateProductWithEvent(ctx context.Context, product *model.Product) (*model.Product, error)
	DeleteProductWithEvent(ctx context.Context, product *model.Product) error
}

// UniqueConstraintError represents a database unique constraint violation error.
type UniqueConstraintError struct {
	Detail string
}

func (u *UniqueConstraintError) Error() string {
	return "resource must be unique: " + u.Detail
}

// ForeignKeyError represents a write referencing a row that does not exist.
type ForeignKeyError struct {
	Constraint string
	Detail     string
}

func (f *ForeignKeyError) Error() string {
	return "referenced resource does not exist: " + f.Detail
}

// Key extracts the referenced value from a detail such as
// "Key (brand_id)=(3) is not present in table "brands"." It returns "?" when absent.
func (f *ForeignKeyError) Key() string {
	_, rest, ok := strings.Cut(f.Detail, ")=(")
	if !ok {
		return "?"
	}
	key, _, ok := strings.Cut(rest, ")")
	if !ok {
		return "?"
	}
	return key
}
