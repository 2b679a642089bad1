// Package vietqr VietQR 银行目录客户端
package vietqr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wyfcoding/scamreport/internal/bank/domain"
)

// DefaultURL VietQR 银行列表接口
const DefaultURL = "https://api.vietqr.io/v2/banks"

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"

type banksResponse struct {
	Code string        `json:"code"`
	Desc string        `json:"desc"`
	Data []domain.Bank `json:"data"`
}

// Client 实现 domain.Directory
type Client struct {
	http *resty.Client
	url  string
}

// New 创建客户端，timeout <= 0 时使用 10 秒
func New(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	return &Client{http: c, url: url}
}

// FetchBanks 拉取银行列表，响应 code 必须为 "00"
func (c *Client) FetchBanks(ctx context.Context) ([]domain.Bank, error) {
	var body banksResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch banks from VietQR API: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("VietQR API error: %d", resp.StatusCode())
	}
	if body.Code == "" && body.Data == nil {
		return nil, errors.New("invalid response structure from VietQR API")
	}
	if body.Code != "00" {
		return nil, fmt.Errorf("VietQR API returned error: %s", body.Desc)
	}
	return body.Data, nil
}
