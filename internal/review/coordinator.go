package review

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Brodino96/TasteTracker/internal/domain"
	"github.com/Brodino96/TasteTracker/pkg/tracing"
)

const tracerName = "github.com/Brodino96/TasteTracker/internal/review"

// Publisher announces accepted reviews.
type Publisher interface {
	PublishReviewSubmitted(ctx context.Context, review *domain.Review, agg domain.Aggregate) error
}

// SubmitInput is one review submission as received from a user.
type SubmitInput struct {
	DishID   string
	AuthorID string
	Rating   any
	Note     string
}

// SubmitResult is the reconciled state after a successful submission.
type SubmitResult struct {
	Review    *domain.Review
	Reviews   []domain.Review
	Aggregate domain.Aggregate
}

// Coordinator validates, persists and reconciles review submissions.
type Coordinator struct {
	store     Store
	guard     Guard
	publisher Publisher
	logger    *slog.Logger
}

// NewCoordinator creates a Coordinator. A nil guard defaults to a
// MemoryGuard; a nil publisher disables events.
func NewCoordinator(store Store, guard Guard, publisher Publisher, logger *slog.Logger) *Coordinator {
	if guard == nil {
		guard = NewMemoryGuard()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:     store,
		guard:     guard,
		publisher: publisher,
		logger:    logger,
	}
}

// Submit stores a review and returns current with the author's previous
// reviews of the dish replaced by the new one, plus the recomputed
// aggregate. On any error current is left as it was.
func (c *Coordinator) Submit(ctx context.Context, in SubmitInput, current []domain.Review) (_ *SubmitResult, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "review.Submit",
		attribute.String("dish.id", in.DishID),
	)
	defer func() { tracing.EndSpan(span, err) }()

	if in.AuthorID == "" {
		return nil, unauthenticated()
	}
	rating, err := domain.ParseRating(in.Rating)
	if err != nil {
		return nil, invalidRating()
	}
	note := domain.NormalizeNote(in.Note)

	release, err := c.guard.Acquire(ctx, GuardKey(in.DishID, in.AuthorID))
	switch {
	case errors.Is(err, ErrGuardHeld):
		return nil, submissionInProgress()
	case err != nil:
		// The guard only prevents double submits; the store still accepts
		// the review without it.
		c.logger.WarnContext(ctx, "submission guard unavailable",
			slog.String("dish_id", in.DishID),
			slog.String("error", err.Error()),
		)
		release = func() {}
	}
	defer release()

	created, err := c.store.InsertReview(ctx, in.DishID, in.AuthorID, rating, note)
	if err != nil {
		c.logger.WarnContext(ctx, "review insert failed",
			slog.String("dish_id", in.DishID),
			slog.String("author_id", in.AuthorID),
			slog.String("error", err.Error()),
		)
		return nil, persistenceFailure(err)
	}

	reviews := Merge(current, *created)
	agg := Aggregate(reviews)

	c.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", created.ID),
		slog.String("dish_id", created.DishID),
		slog.String("author_id", created.AuthorID),
		slog.Int("rating", created.Rating.Int()),
		slog.Int("review_count", agg.Count),
	)

	if c.publisher != nil {
		if err := c.publisher.PublishReviewSubmitted(ctx, created, agg); err != nil {
			c.logger.ErrorContext(ctx, "failed to publish review submitted event",
				slog.String("review_id", created.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return &SubmitResult{Review: created, Reviews: reviews, Aggregate: agg}, nil
}
