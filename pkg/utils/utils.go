// Package utils 提供 hash、分页等通用工具
package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex 计算字节内容的 SHA-256，返回小写十六进制
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Pagination 基于 limit/offset 的分页参数
type Pagination struct {
	Limit  int
	Offset int
}

// NewPagination 规范化分页参数：limit <= 0 使用默认值，超过上限截断，offset 不小于 0
func NewPagination(limit, offset, defaultLimit, maxLimit int) Pagination {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}

// Int64Ptr 返回 int64 指针
func Int64Ptr(i int64) *int64 {
	return &i
}
