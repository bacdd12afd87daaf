package controller

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/apperror"
	"github.com/iyhunko/product-catalog/internal/http/middleware"
	"github.com/iyhunko/product-catalog/internal/model"
)

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Errors []apperror.FieldError `json:"errors"`
}

// StatusResponse acknowledges a request without a resource body.
type StatusResponse struct {
	Status string `json:"status"`
}

// ListResponse wraps a collection.
type ListResponse[T any] struct {
	Results []T `json:"results"`
}

// BrandView is the wire form of a brand.
type BrandView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
}

// CategoryView is the wire form of a category.
type CategoryView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductView is the wire form of a product. Dates use the RFC 1123 GMT layout.
type ProductView struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Rating         float64        `json:"rating"`
	Featured       bool           `json:"featured"`
	ItemsInStock   int            `json:"items_in_stock"`
	ReceiptDate    *string        `json:"receipt_date"`
	ExpirationDate *string        `json:"expiration_date"`
	CreatedAt      string         `json:"created_at"`
	Brand          BrandView      `json:"brand"`
	Categories     []CategoryView `json:"categories"`
}

func toProductView(p *model.Product) ProductView {
	categories := make([]CategoryView, 0, len(p.Categories))
	for _, c := range p.Categories {
		categories = append(categories, CategoryView{ID: c.ID, Name: c.Name})
	}

	return ProductView{
		ID:             p.ID,
		Name:           p.Name,
		Rating:         p.Rating,
		Featured:       p.Featured,
		ItemsInStock:   p.ItemsInStock,
		ReceiptDate:    formatDate(p.ReceiptDate),
		ExpirationDate: formatDate(p.ExpirationDate),
		CreatedAt:      p.CreatedAt.UTC().Format(http.TimeFormat),
		Brand: BrandView{
			ID:          p.Brand.ID,
			Name:        p.Brand.Name,
			CountryCode: p.Brand.CountryCode,
		},
		Categories: categories,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(http.TimeFormat)
	return &s
}

// renderError writes the error envelope with the status matching err.
func renderError(c *gin.Context, err error) {
	if ve, ok := apperror.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: ve.Errors})
		return
	}
	if nf, ok := apperror.AsNotFound(err); ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Errors: nf.Entries()})
		return
	}

	middleware.LoggerFromContext(c.Request.Context()).Error("Request failed",
		slog.String("path", c.Request.URL.Path),
		slog.String("method", c.Request.Method),
		slog.Any("err", err),
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Errors: []apperror.FieldError{{Msg: http.StatusText(http.StatusInternalServerError), Type: "internal_error"}},
	})
}
