package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// Cache 带默认过期时间的键值缓存（统计聚合等）
type Cache struct {
	store *cache.Cache
}

// NewCache 创建缓存，defaultTTL 为默认过期时间，cleanup 为清理间隔
func NewCache(defaultTTL, cleanup time.Duration) *Cache {
	return &Cache{store: cache.New(defaultTTL, cleanup)}
}

// Get 获取缓存值
func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

// Set 设置缓存值，duration 为 0 时使用默认过期时间
func (c *Cache) Set(key string, value any, duration time.Duration) {
	if duration == 0 {
		duration = cache.DefaultExpiration
	}
	c.store.Set(key, value, duration)
}

// Delete 删除缓存
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// Flush 清空所有缓存
func (c *Cache) Flush() {
	c.store.Flush()
}

// Remember 命中则返回缓存，否则调用 load 并写入
// load 失败时不缓存
func Remember[T any](c *Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v, ttl)
	return v, nil
}

// CacheItem 包装实际的数据，增加过期时间
type CacheItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// TTLCache 有容量上限的 LRU 缓存，条目带过期时间
type TTLCache[T any] struct {
	storage *lru.Cache[string, CacheItem[T]]
	ttl     time.Duration
	now     func() time.Time
}

// NewTTLCache size 是最大缓存条数，ttl 是数据有效期
func NewTTLCache[T any](size int, ttl time.Duration) *TTLCache[T] {
	if size <= 0 {
		size = 128
	}
	// lru.New 是线程安全的
	c, _ := lru.New[string, CacheItem[T]](size)
	return &TTLCache[T]{
		storage: c,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Set LRU 中 Add 会自动处理更新
func (c *TTLCache[T]) Set(key string, value T) {
	c.storage.Add(key, CacheItem[T]{
		Value:     value,
		ExpiredAt: c.now().Add(c.ttl),
	})
}

// Get 带过期检查
func (c *TTLCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}
	if c.now().After(item.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}
	return item.Value, true
}

// Delete 删除
func (c *TTLCache[T]) Delete(key string) {
	c.storage.Remove(key)
}

// Clear 清空
func (c *TTLCache[T]) Clear() {
	c.storage.Purge()
}

// Len 当前条数（包含尚未被访问到的过期条目）
func (c *TTLCache[T]) Len() int {
	return c.storage.Len()
}
