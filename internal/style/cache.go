package style

import (
	"context"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes the custom style set. The first Get fetches; later calls
// reuse the result, including an empty one after a failed fetch, until
// Invalidate is called.
type Cache struct {
	fetch func(ctx context.Context) ([]Style, error)
	log   zerolog.Logger

	group singleflight.Group

	mu     sync.Mutex
	styles []Style
	loaded bool
	gen    uint64
}

func NewCache(fetch func(ctx context.Context) ([]Style, error), log zerolog.Logger) *Cache {
	return &Cache{fetch: fetch, log: log}
}

func (c *Cache) Get(ctx context.Context) []Style {
	c.mu.Lock()
	if c.loaded {
		out := c.styles
		c.mu.Unlock()
		return out
	}
	gen := c.gen
	c.mu.Unlock()

	v, _, _ := c.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		c.mu.Lock()
		if c.loaded && c.gen == gen {
			out := c.styles
			c.mu.Unlock()
			return out, nil
		}
		c.mu.Unlock()

		styles, err := c.fetch(ctx)
		if err != nil {
			c.log.Warn().Err(err).Msg("fetch custom styles failed")
			styles = nil
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		// an Invalidate during the fetch makes this result stale
		if c.gen == gen {
			c.styles = styles
			c.loaded = true
		}
		return styles, nil
	})
	styles, _ := v.([]Style)
	return styles
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.styles = nil
	c.loaded = false
	c.gen++
	c.mu.Unlock()
}

// Refresh drops the cached set and fetches it again.
func (c *Cache) Refresh(ctx context.Context) []Style {
	c.Invalidate()
	return c.Get(ctx)
}
