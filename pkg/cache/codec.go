package cache

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCodecMismatch 缓存值的类型标签或版本与当前 schema 不一致，调用方应视为未命中
var ErrCodecMismatch = errors.New("cache: codec mismatch")

// envelope 每个 key 命名空间一个 schema，Present=false 表示"已缓存为不存在"
type envelope struct {
	Kind    string          `json:"kind"`
	Version int             `json:"v"`
	Present bool            `json:"present"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Codec 为某一 key 命名空间的值类型 T 提供带标签与版本的序列化
type Codec[T any] struct {
	Kind    string
	Version int
}

// NewCodec 创建编码器
func NewCodec[T any](kind string, version int) Codec[T] {
	return Codec[T]{Kind: kind, Version: version}
}

// Encode 编码值，present 为 false 时只写入"不存在"标记
func (c Codec[T]) Encode(v T, present bool) ([]byte, error) {
	env := envelope{Kind: c.Kind, Version: c.Version, Present: present}
	if present {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("cache: encode %s: %w", c.Kind, err)
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// Decode 解码缓存值，形状不符时返回 ErrCodecMismatch
func (c Codec[T]) Decode(raw []byte) (T, bool, error) {
	var zero T
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, false, fmt.Errorf("%w: %s: %v", ErrCodecMismatch, c.Kind, err)
	}
	if env.Kind != c.Kind || env.Version != c.Version {
		return zero, false, fmt.Errorf("%w: want %s/v%d, got %s/v%d", ErrCodecMismatch, c.Kind, c.Version, env.Kind, env.Version)
	}
	if !env.Present {
		return zero, false, nil
	}

	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return zero, false, fmt.Errorf("%w: %s: %v", ErrCodecMismatch, c.Kind, err)
	}
	return v, true, nil
}
