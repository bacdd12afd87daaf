package model_test

import (
	"testing"
	"time"

	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func createData(rating float64) model.ProductData {
	return model.ProductData{
		Name:         "Milk",
		Rating:       rating,
		Brand:        model.Brand{ID: 1, Name: "Farm", CountryCode: "SI"},
		Categories:   []model.Category{{ID: 1, Name: "Dairy"}},
		ItemsInStock: 3,
		Set: []model.Field{
			model.FieldName, model.FieldRating, model.FieldBrand,
			model.FieldCategories, model.FieldItemsInStock,
		},
	}
}

func TestNewProduct(t *testing.T) {
	t.Run("rating above threshold promotes featured", func(t *testing.T) {
		p := model.NewProduct(createData(model.FeaturedThreshold + 1))
		assert.True(t, p.Featured)
	})

	t.Run("rating below threshold keeps featured false", func(t *testing.T) {
		p := model.NewProduct(createData(model.FeaturedThreshold - 1))
		assert.False(t, p.Featured)
	})

	t.Run("rating equal to threshold is not promoted", func(t *testing.T) {
		p := model.NewProduct(createData(model.FeaturedThreshold))
		assert.False(t, p.Featured)
	})

	t.Run("explicit featured is honored below threshold", func(t *testing.T) {
		d := createData(5)
		d.Featured = boolPtr(true)
		d.Set = append(d.Set, model.FieldFeatured)

		p := model.NewProduct(d)
		assert.True(t, p.Featured)
	})

	t.Run("promotion overrides explicit false above threshold", func(t *testing.T) {
		d := createData(model.FeaturedThreshold + 1)
		d.Featured = boolPtr(false)
		d.Set = append(d.Set, model.FieldFeatured)

		p := model.NewProduct(d)
		assert.True(t, p.Featured)
	})

	t.Run("null featured is promoted", func(t *testing.T) {
		d := createData(9.5)
		d.Set = append(d.Set, model.FieldFeatured)

		p := model.NewProduct(d)
		assert.True(t, p.Featured)
	})

	t.Run("copies fields and stamps creation time", func(t *testing.T) {
		before := time.Now().UTC()
		d := createData(5)
		p := model.NewProduct(d)

		assert.Equal(t, "Milk", p.Name)
		assert.Equal(t, 5.0, p.Rating)
		assert.Equal(t, d.Brand, p.Brand)
		assert.Equal(t, []int64{1}, p.CategoryIDs())
		assert.Equal(t, 3, p.ItemsInStock)
		assert.Nil(t, p.ExpirationDate)
		assert.Nil(t, p.ReceiptDate)
		assert.False(t, p.CreatedAt.Before(before))
	})
}

func TestProduct_Update(t *testing.T) {
	existing := func() *model.Product {
		receipt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		expiration := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		return &model.Product{
			ID:             10,
			Name:           "Milk",
			Rating:         9,
			Featured:       true,
			CreatedAt:      time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
			ReceiptDate:    &receipt,
			ExpirationDate: &expiration,
			Brand:          model.Brand{ID: 1, Name: "Farm", CountryCode: "SI"},
			Categories:     []model.Category{{ID: 1, Name: "Dairy"}, {ID: 2, Name: "Fresh"}},
			ItemsInStock:   4,
		}
	}

	t.Run("name only leaves every other field untouched", func(t *testing.T) {
		p := existing()
		want := existing()
		want.Name = "X"

		p.Update(model.ProductData{Name: "X", Set: []model.Field{model.FieldName}})

		assert.Equal(t, want, p)
	})

	t.Run("featured stays true when rating drops", func(t *testing.T) {
		p := existing()

		p.Update(model.ProductData{Rating: 2, Set: []model.Field{model.FieldRating}})

		assert.Equal(t, 2.0, p.Rating)
		assert.True(t, p.Featured)
	})

	t.Run("null featured is skipped", func(t *testing.T) {
		p := existing()
		p.Rating = 1

		p.Update(model.ProductData{Set: []model.Field{model.FieldFeatured}})

		assert.True(t, p.Featured)
	})

	t.Run("explicit false is honored at a low rating", func(t *testing.T) {
		p := existing()
		p.Rating = 4

		p.Update(model.ProductData{Featured: boolPtr(false), Set: []model.Field{model.FieldFeatured}})

		assert.False(t, p.Featured)
	})

	t.Run("explicit false is re-promoted above threshold", func(t *testing.T) {
		p := existing()

		p.Update(model.ProductData{Featured: boolPtr(false), Set: []model.Field{model.FieldFeatured}})

		assert.True(t, p.Featured)
	})

	t.Run("raising rating promotes a non featured product", func(t *testing.T) {
		p := existing()
		p.Featured = false
		p.Rating = 3

		p.Update(model.ProductData{Rating: 8.5, Set: []model.Field{model.FieldRating}})

		assert.True(t, p.Featured)
	})

	t.Run("null dates clear the stored value", func(t *testing.T) {
		p := existing()

		p.Update(model.ProductData{Set: []model.Field{model.FieldReceiptDate, model.FieldExpirationDate}})

		assert.Nil(t, p.ReceiptDate)
		assert.Nil(t, p.ExpirationDate)
	})

	t.Run("categories and brand are replaced", func(t *testing.T) {
		p := existing()
		brand := model.Brand{ID: 2, Name: "Other", CountryCode: "DE"}
		categories := []model.Category{{ID: 3, Name: "Frozen"}}

		p.Update(model.ProductData{
			Brand:      brand,
			Categories: categories,
			Set:        []model.Field{model.FieldBrand, model.FieldCategories},
		})

		assert.Equal(t, brand, p.Brand)
		require.Len(t, p.Categories, 1)
		assert.Equal(t, int64(3), p.Categories[0].ID)
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		p := existing()
		want := existing()

		p.Update(model.ProductData{Set: []model.Field{"price"}})

		assert.Equal(t, want, p)
	})
}
