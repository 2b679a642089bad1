package application

import (
	"context"
	"strings"

	"github.com/wyfcoding/scamreport/internal/casereport/domain"
	"github.com/wyfcoding/scamreport/pkg/cache"
	"github.com/wyfcoding/scamreport/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// CaseQueryService 案件读操作，全部经过读穿透缓存
type CaseQueryService struct {
	cases domain.CaseRepository
	stats domain.StatsRepository
	rt    *cache.ReadThrough
	ttl   CacheTTL
}

// NewCaseQueryService 创建案件查询服务
func NewCaseQueryService(cases domain.CaseRepository, stats domain.StatsRepository, rt *cache.ReadThrough, ttl CacheTTL) *CaseQueryService {
	return &CaseQueryService{cases: cases, stats: stats, rt: rt, ttl: ttl}
}

// GetCaseByID 获取已审核案件，待审核或被拒绝的案件视为不存在
func (s *CaseQueryService) GetCaseByID(ctx context.Context, id int64) (*domain.Case, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("id", "must be a positive integer")
	}

	c, _, err := cache.GetOrCompute(ctx, s.rt, CaseKey(id), s.ttl.Lookup, caseCodec,
		func(ctx context.Context) (*domain.Case, bool, error) {
			c, err := s.cases.GetByID(ctx, id)
			if err != nil {
				return nil, false, err
			}
			if c == nil || !c.IsPublic() {
				return nil, false, nil
			}
			return c, true, nil
		})
	return c, err
}

// GetCasesByAccount 获取某 (账号, 银行) 的已审核案件，结果可能为空列表
func (s *CaseQueryService) GetCasesByAccount(ctx context.Context, q AccountQuery) ([]*domain.Case, error) {
	q.AccountIdentifier = domain.CanonicalAccount(q.AccountIdentifier)
	q.BankCode = domain.CanonicalBankCode(q.BankCode)
	if err := validateStruct(q); err != nil {
		return nil, err
	}
	page := utils.NewPagination(q.Limit, q.Offset, defaultListLimit, maxListLimit)

	key := CasesByAccountKey(q.AccountIdentifier, q.BankCode, page.Limit, page.Offset)
	list, _, err := cache.GetOrCompute(ctx, s.rt, key, s.ttl.Lookup, casesCodec,
		func(ctx context.Context) ([]*domain.Case, bool, error) {
			list, err := s.cases.List(ctx, domain.CaseFilter{
				AccountIdentifier: q.AccountIdentifier,
				BankCode:          q.BankCode,
				Status:            domain.StatusApproved,
				Limit:             page.Limit,
				Offset:            page.Offset,
			})
			if err != nil {
				return nil, false, err
			}
			return list, true, nil
		})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*domain.Case{}
	}
	return list, nil
}

// SearchCases 按姓名、收款账户名或账号模糊搜索已审核案件
func (s *CaseQueryService) SearchCases(ctx context.Context, q SearchQuery) ([]*domain.Case, error) {
	q.Input = strings.TrimSpace(q.Input)
	q.BankCode = domain.CanonicalBankCode(q.BankCode)
	if err := validateStruct(q); err != nil {
		return nil, err
	}
	page := utils.NewPagination(q.Limit, q.Offset, defaultListLimit, maxListLimit)

	key := SearchKey(q.Input, q.BankCode, page.Limit, page.Offset)
	list, _, err := cache.GetOrCompute(ctx, s.rt, key, s.ttl.Lookup, searchCodec,
		func(ctx context.Context) ([]*domain.Case, bool, error) {
			list, err := s.cases.List(ctx, domain.CaseFilter{
				Text:     q.Input,
				BankCode: q.BankCode,
				Status:   domain.StatusApproved,
				Limit:    page.Limit,
				Offset:   page.Offset,
			})
			if err != nil {
				return nil, false, err
			}
			return list, true, nil
		})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*domain.Case{}
	}
	return list, nil
}

// CountCases 并发获取总数与已审核数，两者分别缓存
func (s *CaseQueryService) CountCases(ctx context.Context) (*CaseCount, error) {
	var out CaseCount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.count(gctx, countTotalKey, "")
		out.Total = n
		return err
	})
	g.Go(func() error {
		n, err := s.count(gctx, countApprovedKey, domain.StatusApproved)
		out.Approved = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CaseQueryService) count(ctx context.Context, key string, status domain.CaseStatus) (int64, error) {
	n, _, err := cache.GetOrCompute(ctx, s.rt, key, s.ttl.Count, countCodec,
		func(ctx context.Context) (int64, bool, error) {
			n, err := s.cases.Count(ctx, status)
			if err != nil {
				return 0, false, err
			}
			return n, true, nil
		})
	return n, err
}

// GetStats 精确获取某 (账号, 银行) 的聚合统计，不存在返回 nil
func (s *CaseQueryService) GetStats(ctx context.Context, account, bankCode string) (*domain.ScammerStats, error) {
	account = domain.CanonicalAccount(account)
	bankCode = domain.CanonicalBankCode(bankCode)
	if account == "" || bankCode == "" {
		return nil, domain.NewValidationError("accountIdentifier", "account identifier and bank code are required")
	}

	st, _, err := cache.GetOrCompute(ctx, s.rt, StatsKey(account, bankCode), s.ttl.Lookup, statsCodec,
		func(ctx context.Context) (*domain.ScammerStats, bool, error) {
			st, err := s.stats.Get(ctx, account, bankCode)
			if err != nil {
				return nil, false, err
			}
			return st, st != nil, nil
		})
	return st, err
}

// SearchScammerStats 按姓名或账号搜索诈骗者统计，附带最近 5 条已审核案件
// 统计与最近案件作为一个整体缓存，未找到同样被缓存
func (s *CaseQueryService) SearchScammerStats(ctx context.Context, q StatsSearchQuery) (*domain.ScammerProfile, error) {
	q.Input = strings.TrimSpace(q.Input)
	q.BankCode = domain.CanonicalBankCode(q.BankCode)
	if err := validateStruct(q); err != nil {
		return nil, err
	}

	profile, _, err := cache.GetOrCompute(ctx, s.rt, StatsSearchKey(q.Input, q.BankCode), s.ttl.Lookup, profileCodec,
		func(ctx context.Context) (*domain.ScammerProfile, bool, error) {
			st, err := s.stats.Search(ctx, q.Input, q.BankCode)
			if err != nil {
				return nil, false, err
			}
			if st == nil {
				return nil, false, nil
			}

			recent, err := s.cases.ListRecentApproved(ctx, st.AccountIdentifier, st.BankCode, recentCasesLimit)
			if err != nil {
				return nil, false, err
			}
			if recent == nil {
				recent = []*domain.Case{}
			}
			return &domain.ScammerProfile{ScammerStats: *st, RecentCases: recent}, true, nil
		})
	return profile, err
}
