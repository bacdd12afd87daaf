package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iyhunko/product-catalog/internal/apperror"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Resolver turns brand and category ids into the persisted reference data.
type Resolver struct {
	brands     repository.BrandRepository
	categories repository.CategoryRepository
}

// NewResolver creates a new Resolver.
func NewResolver(brands repository.BrandRepository, categories repository.CategoryRepository) *Resolver {
	return &Resolver{
		brands:     brands,
		categories: categories,
	}
}

// Resolution holds the looked up references. Nil and empty values mean the reference was not requested.
type Resolution struct {
	Brand      *model.Brand
	Categories []model.Category
}

// Resolve looks up the brand (when brandID is not nil) and the categories (when ids is not empty)
// concurrently. Every missing reference is reported in a single *apperror.NotFoundError,
// brand first, then the categories in request order.
func (r *Resolver) Resolve(ctx context.Context, brandID *int64, categoryIDs []int64) (Resolution, error) {
	var (
		res             Resolution
		missingBrand    *apperror.NotFoundError
		missingCategory *apperror.NotFoundError
	)

	g, gctx := errgroup.WithContext(ctx)
	if brandID != nil {
		g.Go(func() error {
			brand, err := r.ResolveBrand(gctx, *brandID)
			if nf, ok := apperror.AsNotFound(err); ok {
				missingBrand = nf
				return nil
			}
			res.Brand = brand
			return err
		})
	}
	if len(categoryIDs) > 0 {
		g.Go(func() error {
			categories, err := r.ResolveCategories(gctx, categoryIDs)
			if nf, ok := apperror.AsNotFound(err); ok {
				missingCategory = nf
				return nil
			}
			res.Categories = categories
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Resolution{}, err
	}

	if missingBrand != nil || missingCategory != nil {
		nf := &apperror.NotFoundError{}
		nf.Merge(missingBrand)
		nf.Merge(missingCategory)
		return Resolution{}, nf
	}

	return res, nil
}

// ResolveBrand returns the brand or a NotFoundError naming it.
func (r *Resolver) ResolveBrand(ctx context.Context, id int64) (*model.Brand, error) {
	brand, err := r.brands.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Brand", id)
		}
		return nil, fmt.Errorf("failed to resolve brand: %w", err)
	}
	return brand, nil
}

// ResolveCategories returns the categories in the order of ids. If any id does not exist
// the whole lookup fails with a NotFoundError listing every missing id.
func (r *Resolver) ResolveCategories(ctx context.Context, ids []int64) ([]model.Category, error) {
	found, err := r.categories.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve categories: %w", err)
	}

	byID := make(map[int64]model.Category, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	categories := make([]model.Category, 0, len(ids))
	var missing []int64
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		categories = append(categories, c)
	}
	if len(missing) > 0 {
		return nil, apperror.NotFound("Category", missing...)
	}

	return categories, nil
}
