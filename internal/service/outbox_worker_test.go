package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/iyhunko/product-catalog/internal/service"
	"github.com/iyhunko/product-catalog/internal/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPendingEvent(t *testing.T, eventType string, p *model.Product) *model.Event {
	t.Helper()
	event, err := model.NewProductEvent(eventType, p)
	require.NoError(t, err)
	event.InitMeta()
	return event
}

func TestOutboxWorker_ProcessPending(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes pending events and marks them processed", func(t *testing.T) {
		// given
		events := new(MockEventRepository)
		publisher := new(MockPublisher)
		product := &model.Product{ID: 7, Name: "Milk", Rating: 9, Featured: true, Brand: model.Brand{ID: 2},
			Categories: []model.Category{{ID: 3}}}
		event := newPendingEvent(t, model.EventProductCreated, product)

		events.On("List", ctx, mock.MatchedBy(func(q repository.Query) bool {
			return q.Values[repository.StatusField] == string(model.EventStatusPending) && q.Limit == service.OutboxBatchSize
		})).Return([]*model.Event{event}, nil)
		publisher.On("PublishProductMessage", ctx, sqs.ProductMessage{
			Action:      "created",
			ProductID:   7,
			Name:        "Milk",
			Rating:      9,
			Featured:    true,
			BrandID:     2,
			CategoryIDs: []int64{3},
		}).Return(nil)
		events.On("UpdateStatus", ctx, event.ID, model.EventStatusProcessed).Return(nil)

		worker := service.NewOutboxWorker(events, publisher, time.Second)

		// when
		published := worker.ProcessPending(ctx)

		// then
		assert.Equal(t, 1, published)
		events.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("marks events that fail to publish as failed", func(t *testing.T) {
		// given
		events := new(MockEventRepository)
		publisher := new(MockPublisher)
		ok := newPendingEvent(t, model.EventProductUpdated, &model.Product{ID: 1})
		failing := newPendingEvent(t, model.EventProductDeleted, &model.Product{ID: 2})

		events.On("List", ctx, mock.Anything).Return([]*model.Event{ok, failing}, nil)
		publisher.On("PublishProductMessage", ctx, mock.MatchedBy(func(m sqs.ProductMessage) bool { return m.ProductID == 1 })).
			Return(nil)
		publisher.On("PublishProductMessage", ctx, mock.MatchedBy(func(m sqs.ProductMessage) bool { return m.ProductID == 2 })).
			Return(errors.New("queue unavailable"))
		events.On("UpdateStatus", ctx, ok.ID, model.EventStatusProcessed).Return(nil)
		events.On("UpdateStatus", ctx, failing.ID, model.EventStatusFailed).Return(nil)

		worker := service.NewOutboxWorker(events, publisher, time.Second)

		// when
		published := worker.ProcessPending(ctx)

		// then
		assert.Equal(t, 1, published)
		events.AssertExpectations(t)
	})

	t.Run("marks undecodable events as failed without publishing", func(t *testing.T) {
		// given
		events := new(MockEventRepository)
		publisher := new(MockPublisher)
		event := &model.Event{ID: uuid.New(), EventType: model.EventProductCreated, EventData: json.RawMessage(`"oops"`)}

		events.On("List", ctx, mock.Anything).Return([]*model.Event{event}, nil)
		events.On("UpdateStatus", ctx, event.ID, model.EventStatusFailed).Return(nil)

		worker := service.NewOutboxWorker(events, publisher, time.Second)

		// when
		published := worker.ProcessPending(ctx)

		// then
		assert.Zero(t, published)
		publisher.AssertNotCalled(t, "PublishProductMessage", mock.Anything, mock.Anything)
		events.AssertExpectations(t)
	})

	t.Run("does nothing when listing fails", func(t *testing.T) {
		// given
		events := new(MockEventRepository)
		publisher := new(MockPublisher)
		events.On("List", ctx, mock.Anything).Return(nil, errors.New("connection refused"))

		worker := service.NewOutboxWorker(events, publisher, time.Second)

		// when
		published := worker.ProcessPending(ctx)

		// then
		assert.Zero(t, published)
		events.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOutboxWorker_StartStop(t *testing.T) {
	t.Run("worker can be stopped gracefully", func(t *testing.T) {
		// given
		events := new(MockEventRepository)
		events.On("List", mock.Anything, mock.Anything).Return([]*model.Event{}, nil)
		worker := service.NewOutboxWorker(events, new(MockPublisher), 10*time.Millisecond)

		done := make(chan struct{})
		go func() {
			worker.Start(context.Background())
			close(done)
		}()

		// when
		time.Sleep(30 * time.Millisecond)
		worker.Stop()
		worker.Stop()

		// then
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("worker did not stop")
		}
	})

	t.Run("worker stops when the context is cancelled", func(t *testing.T) {
		// given
		worker := service.NewOutboxWorker(new(MockEventRepository), new(MockPublisher), time.Hour)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			worker.Start(ctx)
			close(done)
		}()

		// when
		cancel()

		// then
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("worker did not stop")
		}
	})
}
