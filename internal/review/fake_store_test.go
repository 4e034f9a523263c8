package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Brodino96/TasteTracker/internal/domain"
)

// memoryStore is an in-memory Store. insertHook, when set, runs inside
// InsertReview before anything is stored.
type memoryStore struct {
	mu         sync.Mutex
	reviews    []domain.Review
	users      map[string]domain.UserProfile
	seq        int
	clock      time.Time
	insertErr  error
	listErr    error
	insertHook func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users: make(map[string]domain.UserProfile),
		clock: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memoryStore) InsertReview(_ context.Context, dishID, authorID string, rating domain.Rating, note *string) (*domain.Review, error) {
	if s.insertHook != nil {
		s.insertHook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	s.seq++
	s.clock = s.clock.Add(time.Minute)
	r := domain.Review{
		ID:        fmt.Sprintf("rev-%d", s.seq),
		DishID:    dishID,
		AuthorID:  authorID,
		Rating:    rating,
		Note:      note,
		CreatedAt: s.clock,
	}
	s.reviews = append(s.reviews, r)
	return &r, nil
}

func (s *memoryStore) ListReviews(_ context.Context, dishID string) ([]domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.Review
	for _, r := range s.reviews {
		if r.DishID == dishID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryStore) ListUsersByIDs(_ context.Context, ids []string) (map[string]domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.UserProfile, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reviews)
}

var _ Store = (*memoryStore)(nil)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) PublishReviewSubmitted(_ context.Context, r *domain.Review, _ domain.Aggregate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, r.ID)
	return p.err
}

type brokenGuard struct{}

func (brokenGuard) Acquire(context.Context, string) (func(), error) {
	return nil, errors.New("redis: connection refused")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rev(dish, author string, rating int) domain.Review {
	return domain.Review{ID: dish + "-" + author, DishID: dish, AuthorID: author, Rating: domain.Rating(rating)}
}
