package render

import (
	"github.com/benoitkugler/geoverlay/layer"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultStyleCacheSize is the number of resolved paints kept by default.
const DefaultStyleCacheSize = 4096

// styleKey identifies one style evaluation. Style functions are pure,
// so the generation, the feature and the zoom fully determine the paint.
type styleKey struct {
	generation uint64
	layer      int
	feature    int
	zoom       float64
}

// styleCache memoizes style evaluations. A nil cache is disabled.
type styleCache struct {
	lru *lru.Cache[styleKey, layer.Paint]
}

func newStyleCache(size int) *styleCache {
	if size <= 0 {
		return nil
	}
	c, _ := lru.New[styleKey, layer.Paint](size)
	return &styleCache{lru: c}
}

func (c *styleCache) get(k styleKey) (layer.Paint, bool) {
	if c == nil {
		return layer.Paint{}, false
	}
	return c.lru.Get(k)
}

func (c *styleCache) add(k styleKey, p layer.Paint) {
	if c == nil {
		return
	}
	c.lru.Add(k, p)
}

func (c *styleCache) purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

func (c *styleCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// reachKey identifies the reach of one layer at one zoom.
type reachKey struct {
	generation uint64
	layer      int
	zoom       float64
}

// reachCacheSize bounds the number of (layer, zoom) pairs remembered,
// since continuous zooming produces many distinct zoom values.
const reachCacheSize = 256

type reachCache struct {
	lru *lru.Cache[reachKey, float64]
}

func newReachCache() *reachCache {
	c, _ := lru.New[reachKey, float64](reachCacheSize)
	return &reachCache{lru: c}
}

func (c *reachCache) get(k reachKey) (float64, bool) { return c.lru.Get(k) }

func (c *reachCache) add(k reachKey, v float64) { c.lru.Add(k, v) }

func (c *reachCache) purge() { c.lru.Purge() }
