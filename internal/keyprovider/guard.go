package keyprovider

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/keksclan/goIDVerify/internal/jwk"
)

// exclusive is implemented by providers that already serialize GetKey.
type exclusive interface {
	exclusive()
}

// lock is a context aware mutex. Callers waiting on it give up when their
// context ends.
type lock struct {
	sem *semaphore.Weighted
}

func newLock() lock { return lock{sem: semaphore.NewWeighted(1)} }

func (l lock) acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("wait for key provider: %w", err)
	}
	return nil
}

func (l lock) release() { l.sem.Release(1) }

type guarded struct {
	p  Provider
	mu lock
}

func (*guarded) exclusive() {}

// Guard returns p wrapped in an exclusive guard. Providers that already
// serialize their lookups are returned unchanged.
func Guard(p Provider) Provider {
	if _, ok := p.(exclusive); ok {
		return p
	}
	return &guarded{p: p, mu: newLock()}
}

func (g *guarded) GetKey(ctx context.Context, kid string) (jwk.SigningKey, bool, error) {
	if err := g.mu.acquire(ctx); err != nil {
		return jwk.SigningKey{}, false, err
	}
	defer g.mu.release()
	return g.p.GetKey(ctx, kid)
}
