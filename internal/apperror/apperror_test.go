package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/iyhunko/product-catalog/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFound(t *testing.T) {
	t.Run("formats one entry per id", func(t *testing.T) {
		err := apperror.NotFound("Category", 3, 7)

		assert.Equal(t, []string{"Category[3]", "Category[7]"}, err.Resources)
		assert.Equal(t, "resource not found: Category[3], Category[7]", err.Error())
	})

	t.Run("merge keeps order and ignores nil", func(t *testing.T) {
		err := apperror.NotFound("Brand", 1)
		err.Merge(nil)
		err.Merge(apperror.NotFound("Category", 2))

		assert.Equal(t, []string{"Brand[1]", "Category[2]"}, err.Resources)
	})

	t.Run("entries carry the not_found type", func(t *testing.T) {
		entries := apperror.NotFound("Product", 5).Entries()

		require.Len(t, entries, 1)
		assert.Equal(t, "resource not found: Product[5]", entries[0].Msg)
		assert.Equal(t, "not_found", entries[0].Type)
		assert.Empty(t, entries[0].Loc)
	})
}

func TestValidationError(t *testing.T) {
	ve := &apperror.ValidationError{}
	assert.True(t, ve.Empty())

	ve.Add("field required", "value_error.missing", "name")
	ve.Add("value is not a valid integer", "type_error.integer", "categories", "0")

	assert.False(t, ve.Empty())
	assert.Equal(t, "validation failed: name: field required; categories.0: value is not a valid integer", ve.Error())
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "validation", err: &apperror.ValidationError{}, want: http.StatusBadRequest},
		{name: "wrapped validation", err: fmt.Errorf("failed to validate: %w", &apperror.ValidationError{}), want: http.StatusBadRequest},
		{name: "not found", err: apperror.NotFound("Brand", 1), want: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("failed to resolve: %w", apperror.NotFound("Brand", 1)), want: http.StatusNotFound},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperror.StatusCode(tt.err))
		})
	}
}
