package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache 基于 go-cache 的进程内 KV 实现，用于单实例部署与测试
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemory 创建进程内缓存，cleanupInterval 为过期清理周期
func NewMemory(cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		store: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// Get 获取缓存值
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	obj, found := m.store.Get(key)
	if !found {
		return nil, false, nil
	}
	val, ok := obj.([]byte)
	if !ok {
		return nil, false, nil
	}
	return val, true, nil
}

// Put 设置缓存值，值被复制以避免调用方后续修改
func (m *MemoryCache) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	m.store.Set(key, cp, ttl)
	return nil
}

// Delete 删除缓存
func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.store.Delete(k)
	}
	return nil
}

// ListByPrefix 列出未过期且匹配前缀的 key
func (m *MemoryCache) ListByPrefix(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range m.store.Items() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
