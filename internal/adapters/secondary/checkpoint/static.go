package checkpoint

import (
	"context"
	"sync"

	"experiment-model-registry/internal/core/ports/output"
)

// StaticResolver resolves references without a checkpoint store. With no
// known refs it accepts every non-empty reference; otherwise only the refs it
// was given (or later Added).
type StaticResolver struct {
	mu    sync.RWMutex
	known map[string]struct{}
}

func NewStaticResolver(refs ...string) *StaticResolver {
	r := &StaticResolver{}
	if len(refs) > 0 {
		r.known = make(map[string]struct{}, len(refs))
		for _, ref := range refs {
			r.known[ref] = struct{}{}
		}
	}
	return r
}

var _ ports.CheckpointResolver = (*StaticResolver)(nil)

func (r *StaticResolver) Add(ref string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.known == nil {
		r.known = make(map[string]struct{})
	}
	r.known[ref] = struct{}{}
}

func (r *StaticResolver) Resolve(ctx context.Context, ref string) (bool, error) {
	if ref == "" {
		return false, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.known == nil {
		return true, nil
	}
	_, ok := r.known[ref]
	return ok, nil
}
