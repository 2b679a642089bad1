// Package domain 证据文件领域模型：按内容寻址的上传与去重
package domain

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"slices"
	"strings"
	"time"
)

const (
	// BlobPrefix 对象存储中证据文件的 key 前缀
	BlobPrefix = "file/"
	// CachePrefix 摘要到存储 key 映射的缓存前缀
	CachePrefix = "file:"

	// 默认单文件上限 10MB
	DefaultMaxFileSize = 10 << 20
	// 默认单次最多 5 个文件
	DefaultMaxFiles = 5
)

var (
	// ErrEmptyFile 文件为空
	ErrEmptyFile = errors.New("file cannot be empty")
	// ErrFileTooLarge 文件超过上限
	ErrFileTooLarge = errors.New("file is too large")
	// ErrUnsupportedType content-type 不在允许列表中
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrNoFiles 请求中没有文件
	ErrNoFiles = errors.New("no files provided")
	// ErrTooManyFiles 文件数超过上限
	ErrTooManyFiles = errors.New("too many files")
	// ErrBlobNotFound 对象不存在
	ErrBlobNotFound = errors.New("blob not found")
)

// DefaultAllowedTypes 默认允许的 content-type
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif", "application/pdf"}

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

// FileInput 待上传的文件
type FileInput struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size 文件字节数
func (f *FileInput) Size() int64 {
	return int64(len(f.Data))
}

// UploadedFile 上传结果，不作为实体持久化；相同内容的文件解析为同一个 Key
type UploadedFile struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	Hash        string    `json:"hash"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// UploadError 单个文件的失败原因
type UploadError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// BatchResult 批量上传结果，不做整体回滚
type BatchResult struct {
	Uploaded []*UploadedFile `json:"uploaded"`
	Errors   []UploadError   `json:"errors"`
}

// Policy 上传校验策略
type Policy struct {
	MaxFileSize  int64
	MaxFiles     int
	AllowedTypes []string
}

// DefaultPolicy 默认策略
func DefaultPolicy() Policy {
	return Policy{MaxFileSize: DefaultMaxFileSize, MaxFiles: DefaultMaxFiles, AllowedTypes: DefaultAllowedTypes}
}

// Validate 在计算摘要之前校验单个文件，contentType 为已规范化的类型
func (p Policy) Validate(size int64, contentType string) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if p.MaxFileSize > 0 && size > p.MaxFileSize {
		return fmt.Errorf("%w: file size must be less than %dMB", ErrFileTooLarge, p.MaxFileSize>>20)
	}
	if !slices.Contains(p.AllowedTypes, contentType) {
		return fmt.Errorf("%w: allowed %s", ErrUnsupportedType, strings.Join(p.AllowedTypes, ", "))
	}
	return nil
}

// NormalizeContentType 去掉参数并转为小写，"image/jpeg; q=1" -> "image/jpeg"
func NormalizeContentType(ct string) string {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return strings.ToLower(ct)
}

// ExtensionFor 允许类型对应的文件扩展名，未知类型返回空串
func ExtensionFor(contentType string) string {
	return extensions[contentType]
}

// BlobKey file/<digest>_<unix-ms><ext>
func BlobKey(digest string, at time.Time, ext string) string {
	return fmt.Sprintf("%s%s_%d%s", BlobPrefix, digest, at.UnixMilli(), ext)
}

// CacheKey file:<digest>
func CacheKey(digest string) string {
	return CachePrefix + digest
}

// Blob 对象存储中的文件
type Blob struct {
	Key         string
	ContentType string
	Metadata    map[string]string
	Data        []byte
}

// BlobStore 对象存储，写入后不可变
type BlobStore interface {
	// Put 写入对象及其 content-type 与自定义元数据
	Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error
	// Get 读取对象，不存在返回 ErrBlobNotFound
	Get(ctx context.Context, key string) (*Blob, error)
	// ListByPrefix 按前缀列出对象 key
	ListByPrefix(ctx context.Context, prefix string) ([]string, error)
}
