package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/specmodel/internal/textbuf"
	"github.com/mvp-joe/specmodel/internal/textsource"
)

// BufferCache keeps reconstructed text buffers between runs, keyed by path,
// size, modification time and tolerance. A changed file misses the cache.
type BufferCache struct {
	cache otter.Cache[string, *textbuf.Buffer]
}

// NewBufferCache returns a cache holding up to capacity buffers. A capacity of
// zero or less returns nil, which disables caching.
func NewBufferCache(capacity int) (*BufferCache, error) {
	if capacity <= 0 {
		return nil, nil
	}
	builder, err := otter.NewBuilder[string, *textbuf.Buffer](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to configure buffer cache: %w", err)
	}
	cache, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build buffer cache: %w", err)
	}
	return &BufferCache{cache: cache}, nil
}

// Load returns the buffer for path, reconstructing it from src on a miss.
func (c *BufferCache) Load(ctx context.Context, path string, src textsource.Source, tolerance float64) (*textbuf.Buffer, error) {
	if c == nil {
		return textbuf.Load(ctx, src, tolerance)
	}
	key, ok := cacheKey(path, tolerance)
	if ok {
		if buf, hit := c.cache.Get(key); hit {
			log.Debugf("buffer cache hit for %s", path)
			return buf, nil
		}
	}
	buf, err := textbuf.Load(ctx, src, tolerance)
	if err != nil {
		return nil, err
	}
	if ok {
		c.cache.Set(key, buf)
	}
	return buf, nil
}

// Len returns the number of cached buffers.
func (c *BufferCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Size()
}

// Close releases the cache.
func (c *BufferCache) Close() {
	if c != nil {
		c.cache.Close()
	}
}

func cacheKey(path string, tolerance float64) (string, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s|%d|%d|%g", path, info.Size(), info.ModTime().UnixNano(), tolerance), true
}
