package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/scamreport/internal/evidence/application"
	"github.com/wyfcoding/scamreport/internal/evidence/domain"
	"github.com/wyfcoding/scamreport/internal/evidence/infrastructure/blob/local"
	"github.com/wyfcoding/scamreport/pkg/cache"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type part struct {
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+p.name+`"`)
		h.Set("Content-Type", p.contentType)
		fw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func setupRouter() *gin.Engine {
	svc := application.NewDedupService(local.New(afero.NewMemMapFs(), "/blobs"),
		cache.NewMemory(time.Minute), domain.DefaultPolicy(), 0, nil)
	r := gin.New()
	NewUploadHandler(svc, 0).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func post(r *gin.Engine, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type uploadResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Error   string             `json:"error"`
	Data    domain.BatchResult `json:"data"`
}

func TestUploadDeduplicatesAndServes(t *testing.T) {
	r := setupRouter()

	body, ct := multipartBody(t,
		part{name: "a.png", contentType: "image/png", data: pngBytes},
		part{name: "b.txt", contentType: "text/plain", data: []byte("hi")},
	)
	w := post(r, body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Uploaded 1 file(s), 1 error(s)", resp.Message)
	require.Len(t, resp.Data.Uploaded, 1)
	require.Len(t, resp.Data.Errors, 1)
	key := resp.Data.Uploaded[0].Key

	body, ct = multipartBody(t, part{name: "again.png", contentType: "image/png", data: pngBytes})
	w = post(r, body, ct)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, key, resp.Data.Uploaded[0].Key)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/uploads/"+key, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, rec.Body.Bytes())
}

func TestUploadAllFailed(t *testing.T) {
	r := setupRouter()

	body, ct := multipartBody(t, part{name: "a.txt", contentType: "text/plain", data: []byte("hi")})
	w := post(r, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "All files failed to upload", resp.Error)
}

func TestUploadTooManyFiles(t *testing.T) {
	r := setupRouter()

	parts := make([]part, 6)
	for i := range parts {
		parts[i] = part{name: "a.png", contentType: "image/png", data: pngBytes}
	}
	body, ct := multipartBody(t, parts...)
	w := post(r, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadMissing(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/uploads/file/missing.png", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
