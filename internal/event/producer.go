package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/kssweets/sweetshop/internal/domain"
	pkgkafka "github.com/kssweets/sweetshop/pkg/kafka"
	"github.com/kssweets/sweetshop/pkg/logger"
)

// Topics for catalog domain events.
var (
	TopicCategoryCreated       = pkgkafka.Topic(AggregateTypeCategory, "created")
	TopicCategoryUpdated       = pkgkafka.Topic(AggregateTypeCategory, "updated")
	TopicCategoryDeleted       = pkgkafka.Topic(AggregateTypeCategory, "deleted")
	TopicCategoryStatusChanged = pkgkafka.Topic(AggregateTypeCategory, "status_changed")
	TopicProductCreated        = pkgkafka.Topic(AggregateTypeProduct, "created")
	TopicProductUpdated        = pkgkafka.Topic(AggregateTypeProduct, "updated")
	TopicProductDeleted        = pkgkafka.Topic(AggregateTypeProduct, "deleted")
	TopicOrderStatusChanged    = pkgkafka.Topic(AggregateTypeOrder, "status_changed")
)

// Aggregate type constants.
const (
	AggregateTypeCategory = "category"
	AggregateTypeProduct  = "product"
	AggregateTypeOrder    = "order"
)

// Source identifier for events originating from this service.
const SourceSweetshop = "sweetshop"

// CategoryData is the payload for category.created and category.updated events.
type CategoryData struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsActive    bool    `json:"is_active"`
}

// CategoryDeletedData is the payload for a category.deleted event.
type CategoryDeletedData struct {
	ID int64 `json:"id"`
}

// CategoryStatusData is the payload for a category.status_changed event.
type CategoryStatusData struct {
	IDs      []int64 `json:"ids"`
	IsActive bool    `json:"is_active"`
}

// ProductData is the payload for product.created and product.updated events.
type ProductData struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	Price      int64  `json:"price"`
	CategoryID int64  `json:"category_id"`
}

// ProductDeletedData is the payload for a product.deleted event.
type ProductDeletedData struct {
	ID int64 `json:"id"`
}

// OrderStatusData is the payload for an order.status_changed event.
type OrderStatusData struct {
	ID     int64  `json:"id"`
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// send stamps the event with the request's correlation ID, if any, and
// hands it to the Kafka producer.
func (p *Producer) send(ctx context.Context, topic string, event *pkgkafka.Event) error {
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}
	return p.kafka.Publish(ctx, topic, event)
}

// PublishCategoryCreated publishes a category.created event.
func (p *Producer) PublishCategoryCreated(ctx context.Context, c *domain.Category) error {
	return p.publishCategory(ctx, TopicCategoryCreated, c)
}

// PublishCategoryUpdated publishes a category.updated event.
func (p *Producer) PublishCategoryUpdated(ctx context.Context, c *domain.Category) error {
	return p.publishCategory(ctx, TopicCategoryUpdated, c)
}

func (p *Producer) publishCategory(ctx context.Context, topic string, c *domain.Category) error {
	data := CategoryData{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		IsActive:    c.IsActive,
	}

	event, err := pkgkafka.NewEvent(topic, formatID(c.ID), AggregateTypeCategory, SourceSweetshop, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.send(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published category event",
		slog.String("topic", topic),
		slog.Int64("category_id", c.ID),
		slog.String("slug", c.Slug),
	)

	return nil
}

// PublishCategoryDeleted publishes a category.deleted event.
func (p *Producer) PublishCategoryDeleted(ctx context.Context, id int64) error {
	event, err := pkgkafka.NewEvent(TopicCategoryDeleted, formatID(id), AggregateTypeCategory, SourceSweetshop, CategoryDeletedData{ID: id})
	if err != nil {
		return fmt.Errorf("create category.deleted event: %w", err)
	}

	if err := p.send(ctx, TopicCategoryDeleted, event); err != nil {
		return fmt.Errorf("publish category.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published category.deleted event",
		slog.Int64("category_id", id),
	)

	return nil
}

// PublishCategoryStatusChanged publishes a category.status_changed event for
// one or more categories toggled together.
func (p *Producer) PublishCategoryStatusChanged(ctx context.Context, ids []int64, isActive bool) error {
	if len(ids) == 0 {
		return nil
	}

	data := CategoryStatusData{IDs: ids, IsActive: isActive}

	event, err := pkgkafka.NewEvent(TopicCategoryStatusChanged, formatID(ids[0]), AggregateTypeCategory, SourceSweetshop, data)
	if err != nil {
		return fmt.Errorf("create category.status_changed event: %w", err)
	}

	if err := p.send(ctx, TopicCategoryStatusChanged, event); err != nil {
		return fmt.Errorf("publish category.status_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published category.status_changed event",
		slog.Int("count", len(ids)),
		slog.Bool("is_active", isActive),
	)

	return nil
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, prod *domain.Product) error {
	return p.publishProduct(ctx, TopicProductCreated, prod)
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, prod *domain.Product) error {
	return p.publishProduct(ctx, TopicProductUpdated, prod)
}

func (p *Producer) publishProduct(ctx context.Context, topic string, prod *domain.Product) error {
	data := ProductData{
		ID:         prod.ID,
		Name:       prod.Name,
		Slug:       prod.Slug,
		Price:      prod.Price,
		CategoryID: prod.CategoryID,
	}

	event, err := pkgkafka.NewEvent(topic, formatID(prod.ID), AggregateTypeProduct, SourceSweetshop, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.send(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published product event",
		slog.String("topic", topic),
		slog.Int64("product_id", prod.ID),
	)

	return nil
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id int64) error {
	event, err := pkgkafka.NewEvent(TopicProductDeleted, formatID(id), AggregateTypeProduct, SourceSweetshop, ProductDeletedData{ID: id})
	if err != nil {
		return fmt.Errorf("create product.deleted event: %w", err)
	}

	if err := p.send(ctx, TopicProductDeleted, event); err != nil {
		return fmt.Errorf("publish product.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.deleted event",
		slog.Int64("product_id", id),
	)

	return nil
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, o *domain.OrderHeader) error {
	data := OrderStatusData{ID: o.ID, UserID: o.UserID, Status: o.OrderStatus}

	event, err := pkgkafka.NewEvent(TopicOrderStatusChanged, formatID(o.ID), AggregateTypeOrder, SourceSweetshop, data)
	if err != nil {
		return fmt.Errorf("create order.status_changed event: %w", err)
	}

	if err := p.send(ctx, TopicOrderStatusChanged, event); err != nil {
		return fmt.Errorf("publish order.status_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.status_changed event",
		slog.Int64("order_id", o.ID),
		slog.String("status", o.OrderStatus),
	)

	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
