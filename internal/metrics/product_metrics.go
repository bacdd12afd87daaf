package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductsCreated is a Prometheus counter for tracking the total number of products created.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "The total number of products created",
	})

	// ProductsUpdated is a Prometheus counter for tracking the total number of products updated.
	ProductsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_updated_total",
		Help: "The total number of products updated",
	})

	// ProductsDeleted is a Prometheus counter for tracking the total number of products deleted.
	ProductsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_deleted_total",
		Help: "The total number of products deleted",
	})

	// ValidationFailures counts rejected payloads by operation (create, update).
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_validation_failures_total",
		Help: "The total number of product payloads rejected by validation",
	}, []string{"operation"})

	// UnresolvedReferences counts missing brand and category references by resource kind.
	UnresolvedReferences = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_unresolved_references_total",
		Help: "The total number of brand and category references that did not exist",
	}, []string{"resource"})

	// OutboxEventsPublished counts outbox events delivered to the queue.
	OutboxEventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "The total number of outbox events published",
	})

	// OutboxEventsFailed counts outbox events that could not be delivered.
	OutboxEventsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "The total number of outbox events that failed to publish",
	})

	// NotificationsConsumed counts queue messages by action and outcome (handled, dropped, retried).
	NotificationsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_notifications_consumed_total",
		Help: "The total number of product messages taken from the queue",
	}, []string{"action", "outcome"})
)
