package vietqr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchBanks(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"code":"00","desc":"ok","data":[
		{"id":17,"name":"Ngân hàng TMCP Ngoại Thương Việt Nam","code":"VCB","bin":"970436","shortName":"Vietcombank","logo":"https://api.vietqr.io/img/VCB.png","swift_code":"BFTVVNVX"},
		{"id":4,"name":"Ngân hàng TMCP Đầu tư và Phát triển Việt Nam","code":"BIDV","bin":"970418","shortName":"BIDV","logo":"https://api.vietqr.io/img/BIDV.png","swift_code":null}
	]}`)

	banks, err := New(srv.URL, time.Second).FetchBanks(context.Background())
	require.NoError(t, err)
	require.Len(t, banks, 2)
	assert.Equal(t, "VCB", banks[0].Code)
	require.NotNil(t, banks[0].SwiftCode)
	assert.Equal(t, "BFTVVNVX", *banks[0].SwiftCode)
	assert.Nil(t, banks[1].SwiftCode)
}

func TestFetchBanksErrors(t *testing.T) {
	ctx := context.Background()

	srv := serve(t, http.StatusOK, `{"code":"11","desc":"maintenance","data":[]}`)
	_, err := New(srv.URL, time.Second).FetchBanks(ctx)
	assert.ErrorContains(t, err, "maintenance")

	srv = serve(t, http.StatusBadGateway, `{}`)
	_, err = New(srv.URL, time.Second).FetchBanks(ctx)
	assert.ErrorContains(t, err, "502")

	srv = serve(t, http.StatusOK, `{"unexpected":true}`)
	_, err = New(srv.URL, time.Second).FetchBanks(ctx)
	assert.ErrorContains(t, err, "invalid response structure")
}
