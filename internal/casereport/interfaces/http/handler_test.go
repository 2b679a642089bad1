package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/scamreport/internal/casereport/application"
	"github.com/wyfcoding/scamreport/internal/casereport/domain"
	"github.com/wyfcoding/scamreport/internal/casereport/infrastructure/messaging"
	"github.com/wyfcoding/scamreport/pkg/cache"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubStore 最小化的内存仓储
type stubStore struct {
	mu    sync.Mutex
	cases map[int64]*domain.Case
	stats map[string]*domain.ScammerStats
}

func (s *stubStore) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (s *stubStore) Insert(_ context.Context, c *domain.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = int64(len(s.cases) + 1)
	cp := *c
	s.cases[c.ID] = &cp
	return nil
}

func (s *stubStore) GetByID(_ context.Context, id int64) (*domain.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cases[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (s *stubStore) UpdateStatus(_ context.Context, u domain.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[u.ID]
	if !ok {
		return domain.ErrCaseNotFound
	}
	if c.Status != domain.StatusPending {
		return domain.ErrInvalidTransition
	}
	c.Status = u.To
	return nil
}

func (s *stubStore) List(_ context.Context, f domain.CaseFilter) ([]*domain.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Case{}
	for _, c := range s.cases {
		if c.Status != domain.StatusApproved {
			continue
		}
		if f.AccountIdentifier != "" && c.AccountIdentifier != f.AccountIdentifier {
			continue
		}
		if f.Text != "" && !strings.Contains(strings.ToLower(c.ScammerName), strings.ToLower(f.Text)) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *stubStore) Count(_ context.Context, status domain.CaseStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, c := range s.cases {
		if status == "" || c.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *stubStore) ListRecentApproved(ctx context.Context, account, bankCode string, limit int) ([]*domain.Case, error) {
	return s.List(ctx, domain.CaseFilter{AccountIdentifier: account, BankCode: bankCode, Limit: limit})
}

func (s *stubStore) Get(_ context.Context, account, bankCode string) (*domain.ScammerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats[account+"|"+bankCode], nil
}

func (s *stubStore) UpsertIncrement(_ context.Context, inc domain.StatsIncrement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := inc.AccountIdentifier + "|" + inc.BankCode
	st, ok := s.stats[key]
	if !ok {
		st = &domain.ScammerStats{}
		s.stats[key] = st
	}
	if st.TotalCases == 0 {
		st.AccountIdentifier, st.BankCode = inc.AccountIdentifier, inc.BankCode
		st.FirstReportedAt = inc.ReportedAt
	}
	st.TotalCases++
	st.TotalAmountLost += inc.Amount
	st.BankName, st.ScammerName, st.BankAccountName = inc.BankName, inc.ScammerName, inc.BankAccountName
	st.LastReportedAt = inc.ReportedAt
	st.LastUpdatedAt = inc.UpdatedAt
	return nil
}

func (s *stubStore) Search(_ context.Context, text, bankCode string) (*domain.ScammerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.stats {
		if st.BankCode == bankCode && strings.Contains(strings.ToLower(st.ScammerName), strings.ToLower(text)) {
			return st, nil
		}
	}
	return nil, nil
}

func setupRouter() *gin.Engine {
	store := &stubStore{cases: map[int64]*domain.Case{}, stats: map[string]*domain.ScammerStats{}}
	rt := cache.NewReadThrough(cache.NewMemory(time.Minute), nil)
	cmd := application.NewCaseCommandService(store, application.NewStatsAggregator(store),
		application.NewInvalidator(rt, nil), messaging.NoopEventPublisher{}, nil)
	query := application.NewCaseQueryService(store, store, rt, application.DefaultCacheTTL())

	h := NewCaseHandler(cmd, query)
	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	h.RegisterAdminRoutes(api.Group("/admin"))
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func submitBody() map[string]any {
	return map[string]any{
		"scammerName":       "Nguyen Van A",
		"bankAccountName":   "NGUYEN VAN A",
		"bankCode":          "VCB",
		"bankName":          "Vietcombank",
		"accountIdentifier": "0123456789",
		"scamDescription":   strings.Repeat("Sold a phone online and never shipped it. ", 2),
		"amountLost":        500,
		"evidenceFiles":     []map[string]any{{"key": "file/ab_1.png", "name": "a.png", "size": 12}},
	}
}

func TestSubmitReviewAndRead(t *testing.T) {
	r := setupRouter()

	w := do(r, http.MethodPost, "/api/v1/cases", submitBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env := decode(t, w)
	assert.Equal(t, "Case submitted successfully and pending review", env.Message)

	var created struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "pending", created.Status)

	w = do(r, http.MethodGet, "/api/v1/cases/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Case not found", decode(t, w).Error)

	w = do(r, http.MethodPatch, "/api/v1/admin/cases/1/status", map[string]any{"status": "approved", "reviewedByAdmin": "admin1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodPatch, "/api/v1/admin/cases/1/status", map[string]any{"status": "rejected", "reviewedByAdmin": "admin1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodGet, "/api/v1/cases/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/cases/search?input=nguyen&bankCode=VCB", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var profile struct {
		TotalCases      int64             `json:"totalCases"`
		TotalAmountLost int64             `json:"totalAmountLost"`
		RecentCases     []json.RawMessage `json:"recentCases"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &profile))
	assert.Equal(t, int64(1), profile.TotalCases)
	assert.Equal(t, int64(500), profile.TotalAmountLost)
	assert.Len(t, profile.RecentCases, 1)

	w = do(r, http.MethodGet, "/api/v1/cases/account/0123456789/VCB?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
		Limit int `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &list))
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, 10, list.Limit)

	w = do(r, http.MethodGet, "/api/v1/cases/stats/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var count struct {
		Count application.CaseCount `json:"count"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &count))
	assert.Equal(t, int64(1), count.Count.Total)
	assert.Equal(t, int64(1), count.Count.Approved)

	w = do(r, http.MethodGet, "/api/v1/stats/0123456789/VCB", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidationErrors(t *testing.T) {
	r := setupRouter()

	body := submitBody()
	body["scamDescription"] = "short"
	w := do(r, http.MethodPost, "/api/v1/cases", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "Validation failed", env.Error)
	assert.Contains(t, string(env.Details), "scamDescription")

	w = do(r, http.MethodGet, "/api/v1/cases/search?input=x&bankCode=V", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/cases/account/0123456789/VCB?limit=101", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/cases/account/0123456789/VCB?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/cases/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPatch, "/api/v1/admin/cases/1/status", map[string]any{"status": "pending", "reviewedByAdmin": "admin1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPatch, "/api/v1/admin/cases/99/status", map[string]any{"status": "approved", "reviewedByAdmin": "admin1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchNotFound(t *testing.T) {
	r := setupRouter()

	w := do(r, http.MethodGet, "/api/v1/cases/search?input=nobody&bankCode=VCB", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No scammer found", decode(t, w).Error)
}
