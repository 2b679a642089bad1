package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/wyfcoding/scamreport/internal/bank/application"
	"github.com/wyfcoding/scamreport/internal/bank/domain"
	"github.com/wyfcoding/scamreport/pkg/cache"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubDirectory struct {
	err error
}

func (s *stubDirectory) FetchBanks(context.Context) ([]domain.Bank, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Bank{{ID: 17, Code: "VCB"}}, nil
}

func setup(dir domain.Directory) *gin.Engine {
	svc := application.NewBankService(dir, cache.NewReadThrough(cache.NewMemory(time.Minute), nil), 0)
	h := NewBankHandler(svc)
	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	h.RegisterAdminRoutes(api.Group("/admin"))
	return r
}

func request(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestBankRoutes(t *testing.T) {
	r := setup(&stubDirectory{})

	w := request(r, http.MethodGet, "/api/v1/banks")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"VCB"`)

	assert.Equal(t, http.StatusOK, request(r, http.MethodPost, "/api/v1/admin/banks/refresh").Code)
	assert.Equal(t, http.StatusOK, request(r, http.MethodDelete, "/api/v1/admin/banks/cache").Code)
}

func TestBankUpstreamFailure(t *testing.T) {
	r := setup(&stubDirectory{err: errors.New("timeout")})

	w := request(r, http.MethodGet, "/api/v1/banks")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to fetch banks")
}
