package checkpoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"experiment-model-registry/internal/config"
)

func newCheckpointServer(t *testing.T, known map[string]bool, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		ref := r.URL.Path[len("/api/v1/checkpoints/"):]
		switch {
		case ref == "broken":
			w.WriteHeader(http.StatusInternalServerError)
		case known[ref]:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"uuid":"` + ref + `"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPResolver_Resolve(t *testing.T) {
	var calls atomic.Int32
	srv := newCheckpointServer(t, map[string]bool{"ckpt-1": true}, &calls)
	r := NewHTTPResolver(&config.CheckpointConfig{URL: srv.URL + "/"})

	ok, err := r.Resolve(context.Background(), "ckpt-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Resolve(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.Resolve(context.Background(), "broken")
	assert.Error(t, err)
}

func TestHTTPResolver_CachesPositiveAnswers(t *testing.T) {
	var calls atomic.Int32
	srv := newCheckpointServer(t, map[string]bool{"ckpt-1": true}, &calls)
	r := NewHTTPResolver(&config.CheckpointConfig{URL: srv.URL})

	for i := 0; i < 3; i++ {
		ok, err := r.Resolve(context.Background(), "ckpt-1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, int32(1), calls.Load())

	for i := 0; i < 2; i++ {
		ok, err := r.Resolve(context.Background(), "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, int32(3), calls.Load(), "negative answers are not cached")
}

func TestHTTPResolver_CancelledCallerDoesNotFailSharedLookup(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	r := NewHTTPResolver(&config.CheckpointConfig{URL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctx, "ckpt-1")
		firstErr <- err
	}()
	<-started

	type result struct {
		ok  bool
		err error
	}
	second := make(chan result, 1)
	go func() {
		ok, err := r.Resolve(context.Background(), "ckpt-1")
		second <- result{ok, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.True(t, res.ok)

	// The lookup finished despite the cancellation, so the answer is cached.
	ok, err := r.Resolve(context.Background(), "ckpt-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHTTPResolver_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r := NewHTTPResolver(&config.CheckpointConfig{URL: url})
	_, err := r.Resolve(context.Background(), "ckpt")
	assert.Error(t, err)
}

func TestStaticResolver(t *testing.T) {
	open := NewStaticResolver()
	ok, err := open.Resolve(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = open.Resolve(context.Background(), "")
	assert.False(t, ok)

	closed := NewStaticResolver("a")
	ok, _ = closed.Resolve(context.Background(), "b")
	assert.False(t, ok)

	closed.Add("b")
	ok, _ = closed.Resolve(context.Background(), "b")
	assert.True(t, ok)
}
