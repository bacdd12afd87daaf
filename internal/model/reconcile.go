package model

import (
	"slices"
	"time"
)

// FeaturedThreshold is the rating above which a product is promoted to featured.
const FeaturedThreshold = 8

// Field names a mergeable product attribute. The values match the payload keys.
type Field string

const (
	FieldName           Field = "name"
	FieldRating         Field = "rating"
	FieldFeatured       Field = "featured"
	FieldReceiptDate    Field = "receipt_date"
	FieldExpirationDate Field = "expiration_date"
	FieldBrand          Field = "brand"
	FieldCategories     Field = "categories"
	FieldItemsInStock   Field = "items_in_stock"
)

// Fields lists every product field in payload order.
var Fields = []Field{
	FieldName,
	FieldRating,
	FieldFeatured,
	FieldReceiptDate,
	FieldExpirationDate,
	FieldBrand,
	FieldCategories,
	FieldItemsInStock,
}

// ProductData is a validated payload whose brand and category references are resolved.
// Set lists the fields the caller supplied; only those are merged.
type ProductData struct {
	Name           string
	Rating         float64
	Featured       *bool
	ReceiptDate    *time.Time
	ExpirationDate *time.Time
	Brand          Brand
	Categories     []Category
	ItemsInStock   int

	Set []Field
}

// Has reports whether the field was supplied.
func (d ProductData) Has(f Field) bool {
	return slices.Contains(d.Set, f)
}

type setter func(p *Product, d ProductData)

// productSetters is the whitelist of mergeable fields. Keys without a setter are ignored.
var productSetters = map[Field]setter{
	FieldName:   func(p *Product, d ProductData) { p.Name = d.Name },
	FieldRating: func(p *Product, d ProductData) { p.Rating = d.Rating },
	FieldFeatured: func(p *Product, d ProductData) {
		if d.Featured != nil {
			p.Featured = *d.Featured
		}
	},
	FieldReceiptDate:    func(p *Product, d ProductData) { p.ReceiptDate = d.ReceiptDate },
	FieldExpirationDate: func(p *Product, d ProductData) { p.ExpirationDate = d.ExpirationDate },
	FieldBrand:          func(p *Product, d ProductData) { p.Brand = d.Brand },
	FieldCategories: func(p *Product, d ProductData) {
		p.Categories = slices.Clone(d.Categories)
	},
	FieldItemsInStock: func(p *Product, d ProductData) { p.ItemsInStock = d.ItemsInStock },
}

// NewProduct builds a product from a fully resolved create payload.
func NewProduct(d ProductData) *Product {
	p := &Product{}
	p.InitMeta()
	p.merge(d)
	return p
}

// Update merges the supplied fields of d into the product.
// A null featured value is skipped so it never clears the stored flag.
func (p *Product) Update(d ProductData) {
	p.merge(d)
}

func (p *Product) merge(d ProductData) {
	for _, f := range d.Set {
		if set, ok := productSetters[f]; ok {
			set(p, d)
		}
	}
	p.applyFeaturedRule()
}

// applyFeaturedRule runs after the merge, so an explicit false survives only while the
// rating stays at or below the threshold. It only ever turns the flag on.
func (p *Product) applyFeaturedRule() {
	if p.Rating > FeaturedThreshold {
		p.Featured = true
	}
}
