package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/apperror"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
)

// ProductService is the product use case layer consumed by ProductController.
type ProductService interface {
	ListProducts(ctx context.Context, query repository.Query) ([]*model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, body []byte) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, body []byte) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ListProducts handles GET /products. An optional featured=true|false narrows the result.
func (pc *ProductController) ListProducts(c *gin.Context) {
	query := repository.NewQuery()
	if featured, ok := c.GetQuery(string(repository.FeaturedField)); ok {
		query.With(repository.FeaturedField, featured)
	}

	products, err := pc.productService.ListProducts(c.Request.Context(), *query)
	if err != nil {
		renderError(c, err)
		return
	}

	results := make([]ProductView, 0, len(products))
	for _, product := range products {
		results = append(results, toProductView(product))
	}

	c.JSON(http.StatusOK, ListResponse[ProductView]{Results: results})
}

// GetProduct handles GET /products/:id.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := pc.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductView(product))
}

// CreateProduct handles POST /products.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	product, err := pc.productService.CreateProduct(c.Request.Context(), body)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProductView(product))
}

// UpdateProduct handles PATCH /products/:id.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}

	product, err := pc.productService.UpdateProduct(c.Request.Context(), id, body)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductView(product))
}

// DeleteProduct handles DELETE /products/:id.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	if err := pc.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// productID parses the path id. Anything but a positive integer matches no product.
func productID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		renderError(c, &apperror.NotFoundError{Resources: []string{"Product[" + raw + "]"}})
		return 0, false
	}
	return id, true
}

// MaxBodyBytes bounds product payloads.
const MaxBodyBytes = 1 << 20

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Errors: []apperror.FieldError{{
				Loc:  []string{"body"},
				Msg:  fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				Type: "value_error.body.too_large",
			}}})
			return nil, false
		}

		ve := &apperror.ValidationError{}
		ve.Add("could not read request body", "value_error.body", "body")
		renderError(c, ve)
		return nil, false
	}
	return body, true
}
