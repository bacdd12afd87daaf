package sqs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Product message actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ErrUnknownAction is returned for a message whose action is not a product action.
var ErrUnknownAction = errors.New("unknown product action")

// ErrInvalidMessage is returned for a message that can never be handled, e.g. one without a product id.
var ErrInvalidMessage = errors.New("invalid product message")

// Handler reacts to a decoded product message.
type Handler interface {
	HandleProductMessage(ctx context.Context, msg ProductMessage) error
}

// FeaturedTransition describes how a message changed the featured flag.
type FeaturedTransition string

const (
	FeaturedUnchanged FeaturedTransition = "unchanged"
	FeaturedPromoted  FeaturedTransition = "promoted"
	FeaturedDemoted   FeaturedTransition = "demoted"
	// FeaturedUnknown is reported for updates of products the notifier has not seen before.
	FeaturedUnknown FeaturedTransition = "unknown"
)

// Notification is what the Notifier derived from one product message.
type Notification struct {
	Action            string
	ProductID         int64
	Featured          FeaturedTransition
	AddedCategories   []int64
	RemovedCategories []int64
}

// Notifier logs product changes. It remembers the last message per product so updates
// report featured transitions and category changes.
type Notifier struct {
	logger *slog.Logger

	mu   sync.Mutex
	seen map[int64]ProductMessage
}

// NewNotifier creates a Notifier logging through logger, or the default logger when nil.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger: logger,
		seen:   make(map[int64]ProductMessage),
	}
}

// HandleProductMessage implements Handler.
func (n *Notifier) HandleProductMessage(_ context.Context, msg ProductMessage) error {
	_, err := n.Notify(msg)
	return err
}

// Notify records msg and logs the change it describes.
func (n *Notifier) Notify(msg ProductMessage) (Notification, error) {
	if msg.ProductID <= 0 {
		return Notification{}, fmt.Errorf("%w: product id %d", ErrInvalidMessage, msg.ProductID)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	note := Notification{Action: msg.Action, ProductID: msg.ProductID}
	log := n.logger.With(slog.String("action", msg.Action), slog.Int64("product_id", msg.ProductID))

	switch msg.Action {
	case ActionCreated:
		note.Featured = FeaturedUnchanged
		if msg.Featured {
			note.Featured = FeaturedPromoted
		}
		note.AddedCategories = slices.Clone(msg.CategoryIDs)
		n.seen[msg.ProductID] = msg

		log.Info("Product created",
			slog.String("name", msg.Name),
			slog.Float64("rating", msg.Rating),
			slog.Bool("featured", msg.Featured),
			slog.Int64("brand_id", msg.BrandID),
			slog.Any("category_ids", msg.CategoryIDs),
		)

	case ActionUpdated:
		prev, known := n.seen[msg.ProductID]
		if known {
			note.Featured = featuredTransition(prev.Featured, msg.Featured)
			note.AddedCategories = difference(msg.CategoryIDs, prev.CategoryIDs)
			note.RemovedCategories = difference(prev.CategoryIDs, msg.CategoryIDs)
		} else {
			note.Featured = FeaturedUnknown
		}
		n.seen[msg.ProductID] = msg

		log.Info("Product updated",
			slog.Float64("rating", msg.Rating),
			slog.String("featured", string(note.Featured)),
			slog.Any("added_category_ids", note.AddedCategories),
			slog.Any("removed_category_ids", note.RemovedCategories),
		)
		if note.Featured == FeaturedPromoted {
			log.Info("Product promoted to featured", slog.Float64("rating", msg.Rating))
		}

	case ActionDeleted:
		delete(n.seen, msg.ProductID)
		note.RemovedCategories = slices.Clone(msg.CategoryIDs)

		log.Info("Product deleted", slog.String("name", msg.Name))

	default:
		return Notification{}, fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}

	return note, nil
}

func featuredTransition(before, after bool) FeaturedTransition {
	switch {
	case !before && after:
		return FeaturedPromoted
	case before && !after:
		return FeaturedDemoted
	default:
		return FeaturedUnchanged
	}
}

// difference returns the ids of a missing from b, in the order of a.
func difference(a, b []int64) []int64 {
	var out []int64
	for _, id := range a {
		if !slices.Contains(b, id) {
			out = append(out, id)
		}
	}
	return out
}
