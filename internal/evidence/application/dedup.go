// Package application 证据文件上传与内容去重
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sourcegraph/conc/iter"
	"github.com/wyfcoding/scamreport/internal/evidence/domain"
	"github.com/wyfcoding/scamreport/pkg/cache"
	"github.com/wyfcoding/scamreport/pkg/logger"
	"github.com/wyfcoding/scamreport/pkg/utils"
)

// DefaultFileTTL 摘要映射缓存 30 天
const DefaultFileTTL = 30 * 24 * time.Hour

// 去重结果来源，用于指标
const (
	SourceCache = "cache"
	SourceBlob  = "blob"
	SourceNew   = "new"
)

// Recorder 记录去重与上传失败指标
type Recorder interface {
	RecordDedup(source string)
	RecordUploadFailure()
}

type nopRecorder struct{}

func (nopRecorder) RecordDedup(string)   {}
func (nopRecorder) RecordUploadFailure() {}

// DedupService 按内容寻址的上传服务，相同字节的文件只写入一次对象存储
// 并发上传相同内容时可能各自写入一个对象，两者都有效
type DedupService struct {
	blobs  domain.BlobStore
	kv     cache.KV
	policy domain.Policy
	ttl    time.Duration
	rec    Recorder
	now    func() time.Time
}

// NewDedupService 创建去重服务，rec 可为 nil
func NewDedupService(blobs domain.BlobStore, kv cache.KV, policy domain.Policy, ttl time.Duration, rec Recorder) *DedupService {
	if rec == nil {
		rec = nopRecorder{}
	}
	if ttl <= 0 {
		ttl = DefaultFileTTL
	}
	return &DedupService{
		blobs:  blobs,
		kv:     kv,
		policy: policy,
		ttl:    ttl,
		rec:    rec,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// MaxFiles 单次请求允许的文件数
func (s *DedupService) MaxFiles() int {
	return s.policy.MaxFiles
}

// Upload 校验、计算摘要并解析为存储 key
func (s *DedupService) Upload(ctx context.Context, f *domain.FileInput) (*domain.UploadedFile, error) {
	contentType := s.resolveContentType(f)
	if err := s.policy.Validate(f.Size(), contentType); err != nil {
		return nil, err
	}

	digest := utils.SHA256Hex(f.Data)
	logger.Debug(ctx, "evidence file received", "name", f.Name, "size", f.Size(), "hash", digest[:16])

	key, source, err := s.resolve(ctx, digest, f, contentType)
	if err != nil {
		return nil, err
	}
	s.rec.RecordDedup(source)

	return &domain.UploadedFile{
		Key:         key,
		Name:        f.Name,
		Size:        f.Size(),
		ContentType: contentType,
		Hash:        digest,
		UploadedAt:  s.now(),
	}, nil
}

// resolve 依次查询缓存、对象存储前缀，均未命中时写入新对象
func (s *DedupService) resolve(ctx context.Context, digest string, f *domain.FileInput, contentType string) (string, string, error) {
	cacheKey := domain.CacheKey(digest)

	raw, hit, err := s.kv.Get(ctx, cacheKey)
	if err != nil {
		logger.Warn(ctx, "dedup cache lookup failed, checking blob store", "hash", digest, "error", err)
	} else if hit && len(raw) > 0 {
		logger.Debug(ctx, "duplicate found in cache", "hash", digest)
		return string(raw), SourceCache, nil
	}

	existing, err := s.blobs.ListByPrefix(ctx, domain.BlobPrefix+digest)
	if err != nil {
		return "", "", fmt.Errorf("failed to list blobs: %w", err)
	}
	if len(existing) > 0 {
		key := existing[0]
		logger.Debug(ctx, "duplicate found in blob store", "hash", digest, "key", key)
		s.remember(ctx, cacheKey, key)
		return key, SourceBlob, nil
	}

	now := s.now()
	key := domain.BlobKey(digest, now, domain.ExtensionFor(contentType))
	meta := map[string]string{
		"originalName": f.Name,
		"hash":         digest,
		"uploadedAt":   now.Format(time.RFC3339),
	}
	if err := s.blobs.Put(ctx, key, f.Data, contentType, meta); err != nil {
		return "", "", fmt.Errorf("failed to store blob: %w", err)
	}
	s.remember(ctx, cacheKey, key)

	logger.Info(ctx, "evidence file stored", "key", key, "size", f.Size())
	return key, SourceNew, nil
}

// remember 写入摘要映射，失败只记录日志，对象存储才是事实来源
func (s *DedupService) remember(ctx context.Context, cacheKey, key string) {
	if err := s.kv.Put(ctx, cacheKey, []byte(key), s.ttl); err != nil {
		logger.Warn(ctx, "failed to cache file mapping", "cache_key", cacheKey, "error", err)
	}
}

// resolveContentType 声明类型缺失或为通用二进制时按内容嗅探
func (s *DedupService) resolveContentType(f *domain.FileInput) string {
	ct := domain.NormalizeContentType(f.ContentType)
	if (ct == "" || ct == "application/octet-stream") && len(f.Data) > 0 {
		ct = domain.NormalizeContentType(mimetype.Detect(f.Data).String())
	}
	return ct
}

type outcome struct {
	file *domain.UploadedFile
	err  error
}

// UploadBatch 并发处理多个文件，结果分为成功与失败两部分
func (s *DedupService) UploadBatch(ctx context.Context, files []*domain.FileInput) (*domain.BatchResult, error) {
	if len(files) == 0 {
		return nil, domain.ErrNoFiles
	}
	if s.policy.MaxFiles > 0 && len(files) > s.policy.MaxFiles {
		return nil, fmt.Errorf("%w: maximum %d files allowed", domain.ErrTooManyFiles, s.policy.MaxFiles)
	}

	outcomes := iter.Map(files, func(f **domain.FileInput) outcome {
		file, err := s.Upload(ctx, *f)
		return outcome{file: file, err: err}
	})

	res := &domain.BatchResult{Uploaded: []*domain.UploadedFile{}, Errors: []domain.UploadError{}}
	for i, o := range outcomes {
		if o.err != nil {
			s.rec.RecordUploadFailure()
			logger.Warn(ctx, "evidence upload failed", "name", files[i].Name, "error", o.err)
			res.Errors = append(res.Errors, domain.UploadError{Name: files[i].Name, Error: o.err.Error()})
			continue
		}
		res.Uploaded = append(res.Uploaded, o.file)
	}

	logger.Info(ctx, "batch upload finished", "uploaded", len(res.Uploaded), "errors", len(res.Errors))
	return res, nil
}

// Open 读取已上传的证据文件
func (s *DedupService) Open(ctx context.Context, key string) (*domain.Blob, error) {
	return s.blobs.Get(ctx, key)
}
