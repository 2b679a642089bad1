package application

import (
	"context"

	"github.com/wyfcoding/scamreport/internal/casereport/domain"
	"github.com/wyfcoding/scamreport/pkg/cache"
	"github.com/wyfcoding/scamreport/pkg/logger"
)

// InvalidationRecorder 记录失效步骤结果
type InvalidationRecorder interface {
	RecordInvalidation(target string, keys int, err error)
}

type nopInvalidationRecorder struct{}

func (nopInvalidationRecorder) RecordInvalidation(string, int, error) {}

// Invalidator 缓存失效协议
// 必须在持久化写入提交之后调用；每一步独立执行，失败只记录日志，不影响写操作的结果
type Invalidator struct {
	rt  *cache.ReadThrough
	rec InvalidationRecorder
}

// NewInvalidator 创建失效协议执行器，rec 可为 nil
func NewInvalidator(rt *cache.ReadThrough, rec InvalidationRecorder) *Invalidator {
	if rec == nil {
		rec = nopInvalidationRecorder{}
	}
	return &Invalidator{rt: rt, rec: rec}
}

// CaseReviewed 案件状态变更后的失效
// case:<id> 可以精确删除；列表、搜索类缓存的 key 无法从变更本身推导，按命名空间整体清除
func (i *Invalidator) CaseReviewed(ctx context.Context, c *domain.Case) {
	defer logger.LogDuration(ctx, "cache invalidated for reviewed case", "case_id", c.ID, "status", c.Status)()

	i.delete(ctx, "case", CaseKey(c.ID))
	i.flush(ctx, "cases", CasesByAccountPrefix(c.AccountIdentifier, c.BankCode))
	i.flush(ctx, "stats-search", statsSearchKeyPrefix)
	i.flush(ctx, "search", searchKeyPrefix)
	i.delete(ctx, "count", countApprovedKey)
	i.delete(ctx, "stats", StatsKey(c.AccountIdentifier, c.BankCode))
}

// CaseSubmitted 新案件提交只影响总数
func (i *Invalidator) CaseSubmitted(ctx context.Context) {
	i.delete(ctx, "count", countTotalKey)
}

func (i *Invalidator) delete(ctx context.Context, target, key string) {
	err := i.rt.Delete(ctx, key)
	i.rec.RecordInvalidation(target, 1, err)
	if err != nil {
		logger.Warn(ctx, "cache invalidation skipped", "key", key, "error", err)
	}
}

func (i *Invalidator) flush(ctx context.Context, target, prefix string) {
	n, err := i.rt.FlushPrefix(ctx, prefix)
	i.rec.RecordInvalidation(target, n, err)
	if err != nil {
		logger.Warn(ctx, "cache namespace flush skipped", "prefix", prefix, "error", err)
		return
	}
	logger.Debug(ctx, "cache namespace flushed", "prefix", prefix, "keys", n)
}
