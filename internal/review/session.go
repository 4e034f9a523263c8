package review

import (
	"context"
	"fmt"
	"sync"

	"github.com/Brodino96/TasteTracker/internal/domain"
)

// FormState is the pending, unsubmitted review input.
type FormState struct {
	Rating any
	Note   string
}

// DishSession owns the review collection shown for one dish and the review
// form attached to it. The aggregate is always derived from the collection
// it is read with.
type DishSession struct {
	dishID string
	store  Store
	coord  *Coordinator

	mu         sync.Mutex
	reviews    []domain.Review
	form       FormState
	submitting bool
}

// NewDishSession creates a session for dishID with an empty collection.
func NewDishSession(dishID string, store Store, coord *Coordinator) *DishSession {
	return &DishSession{dishID: dishID, store: store, coord: coord}
}

// DishID returns the dish the session displays.
func (s *DishSession) DishID() string { return s.dishID }

// Load replaces the collection with the store's current, deduplicated list.
func (s *DishSession) Load(ctx context.Context) error {
	reviews, err := s.store.ListReviews(ctx, s.dishID)
	if err != nil {
		return fmt.Errorf("load reviews for dish %s: %w", s.dishID, err)
	}
	reviews = Dedup(reviews)

	s.mu.Lock()
	s.reviews = reviews
	s.mu.Unlock()
	return nil
}

// Reviews returns a copy of the displayed collection.
func (s *DishSession) Reviews() []domain.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Review(nil), s.reviews...)
}

// Aggregate computes the aggregate of the displayed collection.
func (s *DishSession) Aggregate() domain.Aggregate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Aggregate(s.reviews)
}

// SetRating records the selected rating.
func (s *DishSession) SetRating(v any) {
	s.mu.Lock()
	s.form.Rating = v
	s.mu.Unlock()
}

// SetNote records the note text as typed.
func (s *DishSession) SetNote(note string) {
	s.mu.Lock()
	s.form.Note = note
	s.mu.Unlock()
}

// Form returns the pending form input.
func (s *DishSession) Form() FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Submitting reports whether a submission is in flight.
func (s *DishSession) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Submit sends the form as authorID's review. On success the collection is
// replaced and the form reset; on failure nothing changes so the user can
// retry. A second Submit while one is in flight fails immediately.
func (s *DishSession) Submit(ctx context.Context, authorID string) (*domain.Review, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, submissionInProgress()
	}
	s.submitting = true
	form := s.form
	current := s.reviews
	s.mu.Unlock()

	res, err := s.coord.Submit(ctx, SubmitInput{
		DishID:   s.dishID,
		AuthorID: authorID,
		Rating:   form.Rating,
		Note:     form.Note,
	}, current)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		return nil, err
	}
	s.reviews = res.Reviews
	s.form = FormState{}
	return res.Review, nil
}
