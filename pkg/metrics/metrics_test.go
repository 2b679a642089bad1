package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordersUpdateCounters(t *testing.T) {
	m := New("scamreport")
	require.NoError(t, m.Register())

	m.CacheHit("case")
	m.CacheHit("case")
	m.CacheMiss("case")
	m.CacheError("count", "get")
	m.RecordInvalidation("cases", 3, nil)
	m.RecordInvalidation("search", 0, errors.New("scan failed"))
	m.RecordDedup("cache")
	m.RecordReview("approved")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("case", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("case", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheErrorsTotal.WithLabelValues("count", "get")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.InvalidatedKeysTotal.WithLabelValues("cases")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InvalidationFailuresTotal.WithLabelValues("search")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DedupResolutionsTotal.WithLabelValues("cache")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CaseReviewsTotal.WithLabelValues("approved")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New("scamreport")
	require.NoError(t, m.Register())
	m.RecordSubmission()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `scamreport_cases_submitted_total{service="scamreport"} 1`)
}
