package review

import (
	"context"
	"errors"
	"sync"
)

// ErrGuardHeld is returned by Guard.Acquire while another holder has the key.
var ErrGuardHeld = errors.New("guard held")

// Guard serializes submissions for one (dish, author) pair.
type Guard interface {
	// Acquire takes the key or fails with ErrGuardHeld. The returned release
	// function must be called once the submission resolves.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// GuardKey names the guard for one author's submission on one dish.
func GuardKey(dishID, authorID string) string {
	return dishID + ":" + authorID
}

// MemoryGuard is an in-process Guard.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryGuard creates an empty MemoryGuard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]struct{})}
}

// Acquire implements Guard.
func (g *MemoryGuard) Acquire(_ context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[key]; busy {
		return nil, ErrGuardHeld
	}
	g.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, nil
}
