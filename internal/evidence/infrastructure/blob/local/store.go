// Package local 基于文件系统的对象存储，用于开发与测试环境
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/wyfcoding/scamreport/internal/evidence/domain"
)

const metaSuffix = ".meta.json"

type sidecar struct {
	ContentType string            `json:"contentType"`
	Metadata    map[string]string `json:"metadata"`
}

// Store 对象以文件形式保存在 baseDir 下，元数据写入同名 .meta.json 文件
type Store struct {
	fs      afero.Fs
	baseDir string
}

// New 创建本地对象存储
func New(fs afero.Fs, baseDir string) *Store {
	return &Store{fs: fs, baseDir: filepath.Clean(baseDir)}
}

// NewOS 使用操作系统文件系统
func NewOS(baseDir string) *Store {
	return New(afero.NewOsFs(), baseDir)
}

func (s *Store) pathFor(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || strings.HasSuffix(key, metaSuffix) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(clean[1:])), nil
}

// Put 实现 domain.BlobStore
func (s *Store) Put(_ context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create blob dir: %w", err)
	}

	meta, err := json.Marshal(sidecar{ContentType: contentType, Metadata: metadata})
	if err != nil {
		return err
	}
	if err := afero.WriteFile(s.fs, p+metaSuffix, meta, 0o644); err != nil {
		return fmt.Errorf("failed to write blob metadata: %w", err)
	}
	if err := afero.WriteFile(s.fs, p, data, 0o644); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	return nil
}

// Get 实现 domain.BlobStore
func (s *Store) Get(_ context.Context, key string) (*domain.Blob, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	blob := &domain.Blob{Key: key, Data: data}
	if raw, err := afero.ReadFile(s.fs, p+metaSuffix); err == nil {
		var sc sidecar
		if json.Unmarshal(raw, &sc) == nil {
			blob.ContentType = sc.ContentType
			blob.Metadata = sc.Metadata
		}
	}
	return blob, nil
}

// ListByPrefix 实现 domain.BlobStore，结果按 key 排序
// 只遍历前缀所在目录，如 file/<digest> 只遍历 file/
func (s *Store) ListByPrefix(_ context.Context, prefix string) ([]string, error) {
	root := s.prefixDir(prefix)
	exists, err := afero.DirExists(s.fs, root)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	var keys []string
	err = afero.Walk(s.fs, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.HasSuffix(p, metaSuffix) {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) prefixDir(prefix string) string {
	i := strings.LastIndex(prefix, "/")
	if i < 0 {
		return s.baseDir
	}
	clean := path.Clean("/" + prefix[:i])
	if clean == "/" {
		return s.baseDir
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(clean[1:]))
}
