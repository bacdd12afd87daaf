package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForeignKeyError_Key(t *testing.T) {
	t.Run("should extract the referenced key from the detail", func(t *testing.T) {
		// given
		err := &ForeignKeyError{Detail: `Key (brand_id)=(3) is not present in table "brands".`}

		// when
		key := err.Key()

		// then
		assert.Equal(t, "3", key)
	})

	t.Run("should return placeholder for an unknown detail", func(t *testing.T) {
		// given
		err := &ForeignKeyError{Detail: "something else"}

		// then
		assert.Equal(t, "?", err.Key())
		assert.Contains(t, err.Error(), "something else")
	})
}
