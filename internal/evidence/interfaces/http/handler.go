package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/scamreport/internal/evidence/application"
	"github.com/wyfcoding/scamreport/internal/evidence/domain"
	"github.com/wyfcoding/scamreport/pkg/logger"
	"github.com/wyfcoding/scamreport/pkg/response"
)

// UploadHandler 证据文件上传处理器
type UploadHandler struct {
	svc         *application.DedupService
	maxFileSize int64
}

// NewUploadHandler 创建上传处理器，maxFileSize 用于限制单个文件的读取量
func NewUploadHandler(svc *application.DedupService, maxFileSize int64) *UploadHandler {
	if maxFileSize <= 0 {
		maxFileSize = domain.DefaultMaxFileSize
	}
	return &UploadHandler{svc: svc, maxFileSize: maxFileSize}
}

// RegisterRoutes 注册路由，api 为 /api/v1
func (h *UploadHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/uploads", h.Upload)
	api.GET("/uploads/*key", h.Download)
}

// Upload 处理 multipart 上传，表单中所有文件字段都会被处理
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}

	var headers []*multipart.FileHeader
	for _, fhs := range form.File {
		headers = append(headers, fhs...)
	}
	if limit := h.svc.MaxFiles(); limit > 0 && len(headers) > limit {
		response.ErrorWithStatus(c, http.StatusBadRequest, "File validation failed",
			[]domain.UploadError{{Name: "files", Error: fmt.Sprintf("Maximum %d files allowed", limit)}})
		return
	}

	inputs := make([]*domain.FileInput, 0, len(headers))
	for _, fh := range headers {
		in, err := h.read(fh)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "failed to read file", err.Error())
			return
		}
		inputs = append(inputs, in)
	}

	res, err := h.svc.UploadBatch(c.Request.Context(), inputs)
	if err != nil {
		if errors.Is(err, domain.ErrNoFiles) || errors.Is(err, domain.ErrTooManyFiles) {
			response.ErrorWithStatus(c, http.StatusBadRequest, "File validation failed", err.Error())
			return
		}
		logger.Error(c.Request.Context(), "failed to process upload", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "Failed to process upload", err.Error())
		return
	}

	if len(res.Uploaded) == 0 && len(res.Errors) > 0 {
		response.ErrorWithStatus(c, http.StatusBadRequest, "All files failed to upload", res.Errors)
		return
	}

	response.SuccessWithStatus(c, http.StatusCreated, res,
		fmt.Sprintf("Uploaded %d file(s), %d error(s)", len(res.Uploaded), len(res.Errors)))
}

// read 最多读取 maxFileSize+1 字节，超限由校验阶段拒绝
func (h *UploadHandler) read(fh *multipart.FileHeader) (*domain.FileInput, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxFileSize+1))
	if err != nil {
		return nil, err
	}
	return &domain.FileInput{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// Download 读取已上传的证据文件
func (h *UploadHandler) Download(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if !strings.HasPrefix(key, domain.BlobPrefix) {
		response.ErrorWithStatus(c, http.StatusNotFound, "File not found", "")
		return
	}

	blob, err := h.svc.Open(c.Request.Context(), key)
	if errors.Is(err, domain.ErrBlobNotFound) {
		response.ErrorWithStatus(c, http.StatusNotFound, "File not found", "")
		return
	}
	if err != nil {
		logger.Error(c.Request.Context(), "failed to read file", "key", key, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "Failed to read file", "")
		return
	}

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, contentType, blob.Data)
}
