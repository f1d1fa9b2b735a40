package fluid

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize 物性缓存默认容量
const DefaultCacheSize = 4096

type cacheKey struct {
	name string
	p, t float64
}

// Cached 带 LRU 缓存的物性源,仅缓存成功结果
type Cached struct {
	base  Provider
	cache *lru.Cache[cacheKey, Properties]
}

// NewCached 包装物性源,size <= 0 时使用 DefaultCacheSize
func NewCached(base Provider, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[cacheKey, Properties](size)
	if err != nil {
		return nil, err
	}
	return &Cached{base: base, cache: c}, nil
}

// Properties 实现 Provider
func (c *Cached) Properties(name string, p, t float64) (Properties, error) {
	k := cacheKey{name: name, p: p, t: t}
	if v, ok := c.cache.Get(k); ok {
		return v, nil
	}
	v, err := c.base.Properties(name, p, t)
	if err != nil {
		return Properties{}, err
	}
	c.cache.Add(k, v)
	return v, nil
}

// StorageTemperature 实现 Storer
func (c *Cached) StorageTemperature(name string) (float64, bool) {
	if s, ok := c.base.(Storer); ok {
		return s.StorageTemperature(name)
	}
	return 0, false
}

// Len 当前缓存条目数
func (c *Cached) Len() int { return c.cache.Len() }
