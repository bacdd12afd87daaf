package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductCounters(t *testing.T) {
	t.Run("validation failures are counted per operation", func(t *testing.T) {
		// given
		before := testutil.ToFloat64(metrics.ValidationFailures.WithLabelValues("create"))

		// when
		metrics.ValidationFailures.WithLabelValues("create").Inc()

		// then
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.ValidationFailures.WithLabelValues("create")))
	})

	t.Run("product counters increase", func(t *testing.T) {
		// given
		before := testutil.ToFloat64(metrics.ProductsUpdated)

		// when
		metrics.ProductsUpdated.Inc()

		// then
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.ProductsUpdated))
	})
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("records requests by route template", func(t *testing.T) {
		// given
		router := gin.New()
		router.Use(metrics.Middleware())
		router.GET("/products/:id", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		// when
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/products/42", nil)
		router.ServeHTTP(w, req)

		// then
		assert.Equal(t, http.StatusOK, w.Code)

		rec := httptest.NewRecorder()
		metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		body := rec.Body.String()
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.Contains(body, `http_requests_total{code="200",method="GET",path="/products/:id"}`))
		assert.NotContains(t, body, `path="/products/42"`)
	})
}
