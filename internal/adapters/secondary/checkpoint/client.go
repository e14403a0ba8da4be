package checkpoint

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"experiment-model-registry/internal/config"
	"experiment-model-registry/internal/core/ports/output"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 5 * time.Minute
)

// HTTPResolver checks checkpoint references against the checkpoint store's
// REST API. Only positive answers are cached: a checkpoint that exists stays
// valid, while one that is missing may appear later.
type HTTPResolver struct {
	httpClient *http.Client
	baseURL    string
	cache      *gocache.Cache
	group      singleflight.Group
}

func NewHTTPResolver(cfg *config.CheckpointConfig) ports.CheckpointResolver {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &HTTPResolver{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(cfg.URL, "/"),
		cache:   gocache.New(ttl, 2*ttl),
	}
}

func (c *HTTPResolver) Resolve(ctx context.Context, ref string) (bool, error) {
	if _, found := c.cache.Get(ref); found {
		return true, nil
	}

	// The shared lookup outlives any single caller; the client timeout bounds it.
	lookupCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(ref, func() (interface{}, error) {
		exists, err := c.lookup(lookupCtx, ref)
		if err == nil && exists {
			c.cache.SetDefault(ref, struct{}{})
		}
		return exists, err
	})

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		return res.Val.(bool), nil
	}
}

func (c *HTTPResolver) lookup(ctx context.Context, ref string) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/v1/checkpoints/%s", c.baseURL, url.PathEscape(ref))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("create checkpoint request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.WithFields(log.Fields{
		"checkpoint": ref,
		"url":        endpoint,
	}).Debug("resolving checkpoint")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("checkpoint request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("checkpoint store returned status %d", resp.StatusCode)
	}
}
