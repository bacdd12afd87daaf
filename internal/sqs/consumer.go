package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/iyhunko/product-catalog/internal/metrics"
)

const (
	defaultBatchSize    = 10
	defaultWaitTime     = 20 * time.Second
	defaultErrorBackoff = time.Second
)

// Message outcomes.
const (
	outcomeHandled = "handled"
	outcomeDropped = "dropped"
	outcomeRetried = "retried"
)

// ConsumerAPI defines the SQS operations used by Consumer.
type ConsumerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Consumer long-polls the product queue and passes each decoded message to a Handler.
//
// A handled message is deleted. A message that can never be handled (undecodable body,
// unknown action, no product id) is deleted as well so it is not redelivered forever.
// Any other handler error leaves the message on the queue for redelivery.
type Consumer struct {
	client   ConsumerAPI
	queueURL string
	handler  Handler

	batchSize    int32
	waitTime     time.Duration
	errorBackoff time.Duration
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

// WithWaitTime sets the long-poll duration of a receive call. SQS caps it at 20 seconds.
func WithWaitTime(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		c.waitTime = d
	}
}

// WithErrorBackoff sets the pause after a failed receive call.
func WithErrorBackoff(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		c.errorBackoff = d
	}
}

// NewConsumer creates a Consumer reading queueURL.
func NewConsumer(client ConsumerAPI, queueURL string, handler Handler, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		client:       client,
		queueURL:     queueURL,
		handler:      handler,
		batchSize:    defaultBatchSize,
		waitTime:     defaultWaitTime,
		errorBackoff: defaultErrorBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start polls until ctx is cancelled and then returns ctx.Err().
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("Starting SQS consumer", slog.String("queueURL", c.queueURL))

	for {
		if _, err := c.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Error("Error receiving messages", slog.Any("err", err))

			select {
			case <-ctx.Done():
			case <-time.After(c.errorBackoff):
			}
		}
		if ctx.Err() != nil {
			break
		}
	}

	slog.Info("Stopping SQS consumer")
	return ctx.Err()
}

// Poll runs one receive call and dispatches the batch. It returns the number of handled messages.
func (c *Consumer) Poll(ctx context.Context) (int, error) {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.queueURL),
		MaxNumberOfMessages:   c.batchSize,
		WaitTimeSeconds:       int32(c.waitTime / time.Second),
		MessageAttributeNames: []string{actionAttribute},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to receive messages: %w", err)
	}

	handled := 0
	for _, message := range result.Messages {
		if c.dispatch(ctx, message) == outcomeHandled {
			handled++
		}
	}
	return handled, nil
}

func (c *Consumer) dispatch(ctx context.Context, message types.Message) string {
	msg, err := decodeMessage(message)
	if err == nil {
		err = c.handler.HandleProductMessage(ctx, msg)
	}

	outcome := outcomeHandled
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidMessage), errors.Is(err, ErrUnknownAction):
		outcome = outcomeDropped
		slog.Warn("Dropping product message", slog.String("action", msg.Action), slog.Any("err", err))
	default:
		outcome = outcomeRetried
		slog.Error("Error handling product message",
			slog.String("action", msg.Action),
			slog.Int64("product_id", msg.ProductID),
			slog.Any("err", err),
		)
	}
	metrics.NotificationsConsumed.WithLabelValues(actionLabel(msg.Action), outcome).Inc()

	if outcome != outcomeRetried {
		if err := c.deleteMessage(ctx, message); err != nil {
			slog.Error("Error deleting message", slog.Any("err", err))
		}
	}
	return outcome
}

// decodeMessage reads the product message from the body. The action attribute is the
// fallback for bodies that carry no action.
func decodeMessage(message types.Message) (ProductMessage, error) {
	var msg ProductMessage
	if message.Body == nil {
		return msg, fmt.Errorf("%w: message body is nil", ErrInvalidMessage)
	}
	if err := json.Unmarshal([]byte(*message.Body), &msg); err != nil {
		return msg, fmt.Errorf("%w: failed to unmarshal message: %v", ErrInvalidMessage, err)
	}
	if msg.Action == "" {
		if attr, ok := message.MessageAttributes[actionAttribute]; ok && attr.StringValue != nil {
			msg.Action = *attr.StringValue
		}
	}
	return msg, nil
}

// actionLabel bounds the metric label to the known actions.
func actionLabel(action string) string {
	switch action {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return action
	default:
		return "unknown"
	}
}

func (c *Consumer) deleteMessage(ctx context.Context, message types.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
