package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wyfcoding/scamreport/pkg/logger"
)

// Recorder 记录读穿透缓存的命中情况，namespace 为 key 第一个 ':' 之前的部分
type Recorder interface {
	CacheHit(namespace string)
	CacheMiss(namespace string)
	CacheError(namespace, op string)
}

type nopRecorder struct{}

func (nopRecorder) CacheHit(string)           {}
func (nopRecorder) CacheMiss(string)          {}
func (nopRecorder) CacheError(string, string) {}

// ReadThrough 构建在 KV 之上的读穿透缓存层
// 缓存只是优化层，读写缓存失败都会被记录后吞掉
type ReadThrough struct {
	kv  KV
	rec Recorder
}

// NewReadThrough 创建读穿透缓存层，rec 可为 nil
func NewReadThrough(kv KV, rec Recorder) *ReadThrough {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &ReadThrough{kv: kv, rec: rec}
}

// KV 返回底层键值缓存
func (r *ReadThrough) KV() KV {
	return r.kv
}

// ComputeFunc 从持久存储计算值，found 为 false 表示结果不存在
type ComputeFunc[T any] func(ctx context.Context) (value T, found bool, err error)

// GetOrCompute 命中时直接返回缓存值；未命中时调用 compute 并以 ttl 回填
// 不存在的结果同样以"不存在"标记缓存，compute 的错误不会被缓存
func GetOrCompute[T any](ctx context.Context, r *ReadThrough, key string, ttl time.Duration, codec Codec[T], compute ComputeFunc[T]) (T, bool, error) {
	ns := Namespace(key)

	raw, hit, err := r.kv.Get(ctx, key)
	switch {
	case err != nil:
		r.rec.CacheError(ns, "get")
		logger.Warn(ctx, "cache get failed, falling back to store", "key", key, "error", err)
	case hit:
		v, found, decErr := codec.Decode(raw)
		if decErr == nil {
			r.rec.CacheHit(ns)
			logger.Debug(ctx, "cache hit", "key", key, "present", found)
			return v, found, nil
		}
		r.rec.CacheError(ns, "decode")
		logger.Warn(ctx, "cache entry has unexpected shape, recomputing", "key", key, "error", decErr)
	}

	r.rec.CacheMiss(ns)
	logger.Debug(ctx, "cache miss", "key", key)

	v, found, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}

	if encoded, encErr := codec.Encode(v, found); encErr != nil {
		r.rec.CacheError(ns, "encode")
		logger.Warn(ctx, "cache encode failed", "key", key, "error", encErr)
	} else if putErr := r.kv.Put(ctx, key, encoded, ttl); putErr != nil {
		r.rec.CacheError(ns, "put")
		logger.Warn(ctx, "cache put failed", "key", key, "error", putErr)
	}

	return v, found, nil
}

// Set 直接覆盖缓存值，用于强制刷新
func Set[T any](ctx context.Context, r *ReadThrough, key string, ttl time.Duration, codec Codec[T], v T) error {
	encoded, err := codec.Encode(v, true)
	if err != nil {
		return err
	}
	if err := r.kv.Put(ctx, key, encoded, ttl); err != nil {
		r.rec.CacheError(Namespace(key), "put")
		return err
	}
	return nil
}

// Delete 精确删除若干 key
func (r *ReadThrough) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.kv.Delete(ctx, keys...); err != nil {
		r.rec.CacheError(Namespace(keys[0]), "delete")
		return err
	}
	return nil
}

// FlushPrefix 删除以 prefix 开头的整个命名空间，返回删除的 key 数量
// 这是显式的过度失效操作，代价与命名空间内的 key 数量成正比
func (r *ReadThrough) FlushPrefix(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, errors.New("cache: refusing to flush empty prefix")
	}
	keys, err := r.kv.ListByPrefix(ctx, prefix)
	if err != nil {
		r.rec.CacheError(Namespace(prefix), "list")
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := r.kv.Delete(ctx, keys...); err != nil {
		r.rec.CacheError(Namespace(prefix), "delete")
		return 0, err
	}
	return len(keys), nil
}

// Namespace 返回 key 的命名空间
func Namespace(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
