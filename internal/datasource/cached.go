package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
)

// CachedSource wraps a BarSource and memoizes identical queries.
// A sweep or a signal run over several strategies hits the upstream once per range.
type CachedSource struct {
	underlying BarSource
	bars       map[string][]types.Bar
	errs       map[string]error
	mu         sync.RWMutex
}

// NewCachedSource wraps underlying.
func NewCachedSource(underlying BarSource) *CachedSource {
	return &CachedSource{
		underlying: underlying,
		bars:       make(map[string][]types.Bar),
		errs:       make(map[string]error),
	}
}

// ClearCache drops every cached result.
func (c *CachedSource) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bars = make(map[string][]types.Bar)
	c.errs = make(map[string]error)
}

// Bars implements BarSource. Callers receive a copy so they may mutate it freely.
func (c *CachedSource) Bars(ctx context.Context, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	key := buildKey(symbol, start, end)

	c.mu.RLock()
	if data, ok := c.bars[key]; ok {
		err := c.errs[key]
		c.mu.RUnlock()

		return clone(data), err
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if data, ok := c.bars[key]; ok {
		return clone(data), c.errs[key]
	}

	data, err := c.underlying.Bars(ctx, symbol, start, end)
	if err != nil && ctx.Err() != nil {
		// a cancelled caller must not poison the cache
		return nil, err
	}

	c.bars[key] = data
	c.errs[key] = err

	return clone(data), err
}

// Close implements BarSource by closing the underlying source.
func (c *CachedSource) Close() error {
	return c.underlying.Close()
}

func clone(bars []types.Bar) []types.Bar {
	if bars == nil {
		return nil
	}

	out := make([]types.Bar, len(bars))
	copy(out, bars)

	return out
}

func buildKey(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) string {
	format := func(t optional.Option[time.Time]) string {
		if t.IsNone() {
			return "none"
		}

		return fmt.Sprintf("%d", t.Unwrap().UnixNano())
	}

	return fmt.Sprintf("%s|%s|%s", symbol, format(start), format(end))
}
