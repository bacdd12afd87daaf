package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iyhunko/product-catalog/internal/apperror"
	"github.com/iyhunko/product-catalog/internal/metrics"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/iyhunko/product-catalog/internal/schema"
)

// ProductService runs product payloads through validation, reference resolution and
// reconciliation before persisting them together with their outbox event.
type ProductService struct {
	products  repository.ProductRepository
	writer    repository.ProductEventWriter
	resolver  *Resolver
	validator *schema.Validator
}

func NewProductService(
	products repository.ProductRepository,
	writer repository.ProductEventWriter,
	resolver *Resolver,
	validator *schema.Validator,
) *ProductService {
	return &ProductService{
		products:  products,
		writer:    writer,
		resolver:  resolver,
		validator: validator,
	}
}

func (ps *ProductService) ListProducts(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	return ps.products.List(ctx, query)
}

// GetProduct returns the product or a NotFoundError naming it.
func (ps *ProductService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	product, err := ps.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Product", id)
		}
		return nil, err
	}
	return product, nil
}

func (ps *ProductService) CreateProduct(ctx context.Context, body []byte) (*model.Product, error) {
	payload, err := ps.validator.ValidateCreate(body)
	if err != nil {
		metrics.ValidationFailures.WithLabelValues("create").Inc()
		return nil, err
	}

	refs, err := ps.resolve(ctx, &payload.BrandID, payload.CategoryIDs)
	if err != nil {
		return nil, err
	}

	product := model.NewProduct(model.ProductData{
		Name:           payload.Name,
		Rating:         payload.Rating,
		Featured:       payload.Featured,
		ReceiptDate:    payload.ReceiptDate,
		ExpirationDate: payload.ExpirationDate,
		Brand:          *refs.Brand,
		Categories:     refs.Categories,
		ItemsInStock:   payload.ItemsInStock,
		Set:            payload.Fields(),
	})

	created, err := ps.writer.CreateProductWithEvent(ctx, product)
	if err != nil {
		return nil, referenceError(err)
	}

	metrics.ProductsCreated.Inc()
	slog.Info("Product created", slog.Int64("product_id", created.ID), slog.Bool("featured", created.Featured))

	return created, nil
}

// UpdateProduct applies a partial payload. The body is validated and its references resolved
// before the product is looked up, so a bad body or a missing reference is reported even for
// an unknown id.
func (ps *ProductService) UpdateProduct(ctx context.Context, id int64, body []byte) (*model.Product, error) {
	payload, err := ps.validator.ValidateUpdate(body)
	if err != nil {
		metrics.ValidationFailures.WithLabelValues("update").Inc()
		return nil, err
	}

	var brandID *int64
	if payload.Has(model.FieldBrand) {
		brandID = payload.BrandID
	}
	var categoryIDs []int64
	if payload.Has(model.FieldCategories) {
		categoryIDs = payload.CategoryIDs
	}

	refs, err := ps.resolve(ctx, brandID, categoryIDs)
	if err != nil {
		return nil, err
	}

	product, err := ps.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Update(updateData(payload, refs))

	updated, err := ps.writer.UpdateProductWithEvent(ctx, product)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Product", id)
		}
		return nil, referenceError(err)
	}

	metrics.ProductsUpdated.Inc()
	slog.Info("Product updated", slog.Int64("product_id", updated.ID), slog.Any("fields", payload.Fields()))

	return updated, nil
}

func (ps *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	product, err := ps.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := ps.writer.DeleteProductWithEvent(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Product", id)
		}
		return err
	}

	metrics.ProductsDeleted.Inc()
	slog.Info("Product deleted", slog.Int64("product_id", id))

	return nil
}

func (ps *ProductService) resolve(ctx context.Context, brandID *int64, categoryIDs []int64) (Resolution, error) {
	refs, err := ps.resolver.Resolve(ctx, brandID, categoryIDs)
	if nf, ok := apperror.AsNotFound(err); ok {
		for _, r := range nf.Resources {
			kind, _, _ := strings.Cut(r, "[")
			metrics.UnresolvedReferences.WithLabelValues(kind).Inc()
		}
	}
	return refs, err
}

func updateData(payload schema.Update, refs Resolution) model.ProductData {
	data := model.ProductData{
		Featured:       payload.Featured,
		ReceiptDate:    payload.ReceiptDate,
		ExpirationDate: payload.ExpirationDate,
		Categories:     refs.Categories,
		Set:            payload.Fields(),
	}
	if payload.Name != nil {
		data.Name = *payload.Name
	}
	if payload.Rating != nil {
		data.Rating = *payload.Rating
	}
	if payload.ItemsInStock != nil {
		data.ItemsInStock = *payload.ItemsInStock
	}
	if refs.Brand != nil {
		data.Brand = *refs.Brand
	}
	return data
}

// referenceError reports a reference that vanished between resolution and commit as not found.
func referenceError(err error) error {
	var fkErr *repository.ForeignKeyError
	if !errors.As(err, &fkErr) {
		return err
	}

	kind := "Category"
	if strings.Contains(fkErr.Constraint, "brand") {
		kind = "Brand"
	}
	return &apperror.NotFoundError{Resources: []string{fmt.Sprintf("%s[%s]", kind, fkErr.Key())}}
}
