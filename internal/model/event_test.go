package model_test

import (
	"encoding/json"
	"testing"

	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductEvent(t *testing.T) {
	// given
	p := &model.Product{
		ID:         42,
		Name:       "Cheese",
		Rating:     9,
		Featured:   true,
		Brand:      model.Brand{ID: 3},
		Categories: []model.Category{{ID: 1}, {ID: 4}},
	}

	// when
	event, err := model.NewProductEvent(model.EventProductUpdated, p)

	// then
	require.NoError(t, err)
	assert.Equal(t, model.EventProductUpdated, event.EventType)
	assert.Equal(t, model.EventStatusPending, event.Status)

	var payload model.ProductEvent
	require.NoError(t, json.Unmarshal(event.EventData, &payload))
	assert.Equal(t, model.ProductEvent{
		Action:      "updated",
		ProductID:   42,
		Name:        "Cheese",
		Rating:      9,
		Featured:    true,
		BrandID:     3,
		CategoryIDs: []int64{1, 4},
	}, payload)
}

func TestEvent_InitMeta(t *testing.T) {
	event := &model.Event{}
	event.InitMeta()

	assert.NotEmpty(t, event.ID.String())
	assert.False(t, event.CreatedAt.IsZero())
	assert.Equal(t, model.EventStatusPending, event.Status)

	failed := &model.Event{Status: model.EventStatusFailed}
	failed.InitMeta()
	assert.Equal(t, model.EventStatusFailed, failed.Status)
}
