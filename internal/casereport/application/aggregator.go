package application

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/scamreport/internal/casereport/domain"
)

// StatsAggregator 维护按 (账号, 银行) 的增量聚合
type StatsAggregator struct {
	repo domain.StatsRepository
}

// NewStatsAggregator 创建聚合器
func NewStatsAggregator(repo domain.StatsRepository) *StatsAggregator {
	return &StatsAggregator{repo: repo}
}

// RecordApproval 将一次审核通过累加到聚合行，非 approved 的案件不产生任何变化
// 需要在案件状态更新的同一事务内调用，失败时整个状态更新回滚
func (a *StatsAggregator) RecordApproval(ctx context.Context, c *domain.Case, now time.Time) error {
	if c.Status != domain.StatusApproved {
		return nil
	}
	if err := a.repo.UpsertIncrement(ctx, domain.IncrementFor(c, now)); err != nil {
		return fmt.Errorf("aggregate stats for case %d: %w", c.ID, err)
	}
	return nil
}
