package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventStatus is the delivery state of an outbox event.
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusProcessed EventStatus = "processed"
	EventStatusFailed    EventStatus = "failed"
)

// Product event types written to the outbox.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// Event is an outbox row committed together with the product change it describes.
type Event struct {
	ID          uuid.UUID
	EventType   string
	EventData   json.RawMessage
	Status      EventStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// InitMeta initializes the event id, creation time and default status.
func (e *Event) InitMeta() {
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()
	if e.Status == "" {
		e.Status = EventStatusPending
	}
}

// ProductEvent is the payload of a product outbox event.
type ProductEvent struct {
	Action      string  `json:"action"`
	ProductID   int64   `json:"product_id"`
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	Featured    bool    `json:"featured"`
	BrandID     int64   `json:"brand_id"`
	CategoryIDs []int64 `json:"category_ids"`
}

// NewProductEvent builds a pending event of eventType describing p.
func NewProductEvent(eventType string, p *Product) (*Event, error) {
	payload := ProductEventFor(eventType, p)
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	return &Event{
		EventType: eventType,
		EventData: data,
		Status:    EventStatusPending,
	}, nil
}

// ProductEventFor returns the event payload of eventType for p.
func ProductEventFor(eventType string, p *Product) ProductEvent {
	return ProductEvent{
		Action:      actionOf(eventType),
		ProductID:   p.ID,
		Name:        p.Name,
		Rating:      p.Rating,
		Featured:    p.Featured,
		BrandID:     p.Brand.ID,
		CategoryIDs: p.CategoryIDs(),
	}
}

func actionOf(eventType string) string {
	switch eventType {
	case EventProductCreated:
		return "created"
	case EventProductUpdated:
		return "updated"
	case EventProductDeleted:
		return "deleted"
	default:
		return eventType
	}
}
