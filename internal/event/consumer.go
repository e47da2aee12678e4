package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/slug"
)

// Kafka topics the storefront listens to. Producers use the topic name as
// the event type.
const (
	TopicProductUpdated = "ecommerce.product.updated"
	TopicProductDeleted = "ecommerce.product.deleted"
)

// Topics lists every topic the invalidation consumer subscribes to.
var Topics = []string{TopicProductUpdated, TopicProductDeleted}

// ProductEventData is the subset of a product event payload needed to find
// the cached view.
type ProductEventData struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

// Invalidator drops cached product views.
type Invalidator interface {
	Invalidate(ctx context.Context, slug string) error
}

// Consumer invalidates cached product views when the catalog changes.
type Consumer struct {
	views  Invalidator
	logger *slog.Logger
}

// NewConsumer creates a new cache invalidation consumer.
func NewConsumer(views Invalidator, logger *slog.Logger) *Consumer {
	return &Consumer{views: views, logger: logger}
}

// Handle processes a Kafka event based on its type. Unknown types are
// ignored so new producer events never block the consumer group.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicProductUpdated, TopicProductDeleted:
		return c.invalidate(ctx, event)
	default:
		c.log(ctx).DebugContext(ctx, "ignoring event type",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *Consumer) invalidate(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductEventData
	if err := event.UnmarshalData(&data); err != nil {
		c.log(ctx).WarnContext(ctx, "skipping product event with unreadable data",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	key := data.Slug
	if key == "" {
		key = event.Metadata["slug"]
	}
	// Views are cached under the canonical slug the HTTP layer resolves.
	key = slug.Canonical(key)
	if key == "" {
		c.log(ctx).WarnContext(ctx, "skipping product event without slug",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
			slog.String("product_id", data.ID),
		)
		return nil
	}

	if err := c.views.Invalidate(ctx, key); err != nil {
		return fmt.Errorf("invalidate view from %s event: %w", event.EventType, err)
	}

	c.log(ctx).InfoContext(ctx, "invalidated product view",
		slog.String("event_type", event.EventType),
		slog.String("slug", key),
		slog.String("product_id", data.ID),
	)
	return nil
}

func (c *Consumer) log(ctx context.Context) *slog.Logger {
	if l := logger.FromContext(ctx); l != slog.Default() {
		return l
	}
	return c.logger
}

// NewConsumers builds the Kafka consumer for the invalidation topics.
func NewConsumers(brokers []string, group string, handler *Consumer, logger *slog.Logger) []*pkgkafka.Consumer {
	cfg := pkgkafka.ConsumerConfig{
		Brokers:  brokers,
		GroupID:  group,
		Topics:   Topics,
		MinBytes: 1,
		MaxBytes: 10e6,
	}
	return []*pkgkafka.Consumer{pkgkafka.NewConsumer(cfg, handler.Handle, logger)}
}
