package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Brodino96/TasteTracker/internal/domain"
	pkgkafka "github.com/Brodino96/TasteTracker/pkg/kafka"
)

// Kafka topics for TasteTracker domain events.
var (
	TopicReviewSubmitted   = pkgkafka.Topic("review", "submitted")
	TopicRestaurantCreated = pkgkafka.Topic("restaurant", "created")
	TopicRestaurantUpdated = pkgkafka.Topic("restaurant", "updated")
	TopicDishCreated       = pkgkafka.Topic("dish", "created")
)

// Aggregate type constants.
const (
	AggregateTypeRestaurant = "restaurant"
	AggregateTypeDish       = "dish"
)

// Source identifies events produced by this service.
const Source = "tastetracker-api"

// ReviewSubmittedData is the payload for review.submitted. DishReviewCount
// and DishMean describe the dish after the review was applied.
type ReviewSubmittedData struct {
	ID              string    `json:"id"`
	DishID          string    `json:"dish_id"`
	AuthorID        string    `json:"author_id"`
	Rating          int       `json:"rating"`
	HasNote         bool      `json:"has_note"`
	CreatedAt       time.Time `json:"created_at"`
	DishReviewCount int       `json:"dish_review_count"`
	DishMean        *float64  `json:"dish_mean"`
}

// RestaurantData is the payload for restaurant.created and restaurant.updated.
type RestaurantData struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	ImageURL  *string `json:"image_url,omitempty"`
	CreatedBy string  `json:"created_by"`
}

// DishCreatedData is the payload for dish.created.
type DishCreatedData struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurant_id"`
	Name         string `json:"name"`
	PriceCents   *int64 `json:"price_cents,omitempty"`
	CreatedBy    string `json:"created_by"`
}

// Publisher is the part of the Kafka producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes TasteTracker domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewSubmitted publishes a review.submitted event.
func (p *Producer) PublishReviewSubmitted(ctx context.Context, r *domain.Review, agg domain.Aggregate) error {
	data := ReviewSubmittedData{
		ID:              r.ID,
		DishID:          r.DishID,
		AuthorID:        r.AuthorID,
		Rating:          r.Rating.Int(),
		HasNote:         r.Note != nil,
		CreatedAt:       r.CreatedAt,
		DishReviewCount: agg.Count,
		DishMean:        agg.Mean,
	}
	return p.publish(ctx, TopicReviewSubmitted, r.DishID, AggregateTypeDish, data)
}

// PublishRestaurantCreated publishes a restaurant.created event.
func (p *Producer) PublishRestaurantCreated(ctx context.Context, r *domain.Restaurant) error {
	return p.publish(ctx, TopicRestaurantCreated, r.ID, AggregateTypeRestaurant, restaurantData(r))
}

// PublishRestaurantUpdated publishes a restaurant.updated event.
func (p *Producer) PublishRestaurantUpdated(ctx context.Context, r *domain.Restaurant) error {
	return p.publish(ctx, TopicRestaurantUpdated, r.ID, AggregateTypeRestaurant, restaurantData(r))
}

// PublishDishCreated publishes a dish.created event.
func (p *Producer) PublishDishCreated(ctx context.Context, d *domain.Dish) error {
	data := DishCreatedData{
		ID:           d.ID,
		RestaurantID: d.RestaurantID,
		Name:         d.Name,
		PriceCents:   d.PriceCents,
		CreatedBy:    d.CreatedBy,
	}
	return p.publish(ctx, TopicDishCreated, d.ID, AggregateTypeDish, data)
}

// publish sends one event keyed by aggregateID. Review events use the dish
// id so a dish's reviews stay ordered on one partition.
func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(ctx, topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.InfoContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("event_id", evt.EventID),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

func restaurantData(r *domain.Restaurant) RestaurantData {
	return RestaurantData{
		ID:        r.ID,
		Name:      r.Name,
		Address:   r.Address,
		ImageURL:  r.ImageURL,
		CreatedBy: r.CreatedBy,
	}
}
