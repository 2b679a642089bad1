package domain

import (
	"context"
	"time"
)

// CaseFilter 案件列表查询条件，空字符串表示不过滤
type CaseFilter struct {
	// Text 模糊匹配诈骗者姓名、收款账户名与账号
	Text string
	// AccountIdentifier 精确匹配账号
	AccountIdentifier string
	BankCode          string
	Status            CaseStatus
	Limit             int
	Offset            int
}

// StatusUpdate 条件状态更新参数
type StatusUpdate struct {
	ID         int64
	To         CaseStatus
	Reviewer   string
	Notes      *string
	ReviewedAt time.Time
}

// CaseRepository 案件仓储接口
type CaseRepository interface {
	// WithTx 在同一事务中执行 fn，事务通过 ctx 传递给仓储方法
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// Insert 插入案件并回填 ID
	Insert(ctx context.Context, c *Case) error
	// GetByID 根据 ID 获取案件，不存在返回 nil, nil
	GetByID(ctx context.Context, id int64) (*Case, error)
	// UpdateStatus 仅当案件仍为 pending 时更新；案件不存在返回 ErrCaseNotFound，已审核返回 ErrInvalidTransition
	UpdateStatus(ctx context.Context, u StatusUpdate) error
	// List 按条件查询，按提交时间倒序
	List(ctx context.Context, f CaseFilter) ([]*Case, error)
	// Count 统计案件数，status 为空统计全部
	Count(ctx context.Context, status CaseStatus) (int64, error)
	// ListRecentApproved 获取某 (账号, 银行) 最近提交的已审核案件
	ListRecentApproved(ctx context.Context, account, bankCode string, limit int) ([]*Case, error)
}

// StatsRepository 聚合统计仓储接口
type StatsRepository interface {
	// Get 精确获取统计行，不存在返回 nil, nil
	Get(ctx context.Context, account, bankCode string) (*ScammerStats, error)
	// UpsertIncrement 原子地插入或累加，由存储层计算新值
	UpsertIncrement(ctx context.Context, inc StatsIncrement) error
	// Search 按姓名/账号模糊匹配并精确匹配银行代码，返回最近被报告的一行
	Search(ctx context.Context, text, bankCode string) (*ScammerStats, error)
}
