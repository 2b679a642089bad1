// Package application 银行目录查询，读穿透缓存
package application

import (
	"context"
	"time"

	"github.com/wyfcoding/scamreport/internal/bank/domain"
	"github.com/wyfcoding/scamreport/pkg/cache"
	"github.com/wyfcoding/scamreport/pkg/logger"
)

// CacheKey 银行目录缓存 key
const CacheKey = "bank:"

// DefaultTTL 银行目录缓存一天
const DefaultTTL = 24 * time.Hour

var banksCodec = cache.NewCodec[[]domain.Bank]("bank", 1)

// BankService 银行目录服务
type BankService struct {
	dir domain.Directory
	rt  *cache.ReadThrough
	ttl time.Duration
}

// NewBankService 创建银行目录服务
func NewBankService(dir domain.Directory, rt *cache.ReadThrough, ttl time.Duration) *BankService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &BankService{dir: dir, rt: rt, ttl: ttl}
}

// GetBanks 优先从缓存读取
func (s *BankService) GetBanks(ctx context.Context) ([]domain.Bank, error) {
	banks, _, err := cache.GetOrCompute(ctx, s.rt, CacheKey, s.ttl, banksCodec,
		func(ctx context.Context) ([]domain.Bank, bool, error) {
			banks, err := s.dir.FetchBanks(ctx)
			if err != nil {
				return nil, false, err
			}
			return banks, true, nil
		})
	if err != nil {
		logger.Error(ctx, "failed to fetch banks", "error", err)
		return nil, err
	}
	return banks, nil
}

// Refresh 强制从上游拉取并覆盖缓存
func (s *BankService) Refresh(ctx context.Context) ([]domain.Bank, error) {
	banks, err := s.dir.FetchBanks(ctx)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, s.rt, CacheKey, s.ttl, banksCodec, banks); err != nil {
		logger.Warn(ctx, "failed to refresh banks cache", "error", err)
	}
	logger.Info(ctx, "banks cache refreshed", "count", len(banks))
	return banks, nil
}

// Clear 删除缓存
func (s *BankService) Clear(ctx context.Context) error {
	return s.rt.Delete(ctx, CacheKey)
}
