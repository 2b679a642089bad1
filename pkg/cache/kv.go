// Package cache 提供键值缓存能力接口及其 Redis / 内存实现，以及读穿透缓存层与带版本的值编码
package cache

import (
	"context"
	"time"
)

// KV 键值缓存能力，由调用方通过构造函数注入，不存在全局单例
type KV interface {
	// Get 返回 key 对应的值，found 为 false 表示未缓存
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Put 写入整值并设置过期时间，ttl <= 0 表示不过期
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete 删除一个或多个 key，不存在的 key 忽略
	Delete(ctx context.Context, keys ...string) error
	// ListByPrefix 列出以 prefix 开头的所有 key，仅用于批量失效
	ListByPrefix(ctx context.Context, prefix string) ([]string, error)
}
