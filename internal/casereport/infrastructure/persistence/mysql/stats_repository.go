package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wyfcoding/scamreport/internal/casereport/domain"
	pkgdb "github.com/wyfcoding/scamreport/pkg/db"
	"github.com/wyfcoding/scamreport/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// statsRepository 是 domain.StatsRepository 的 GORM 实现
type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建聚合统计仓储
func NewStatsRepository(db *gorm.DB) domain.StatsRepository {
	return &statsRepository{db: db}
}

// Get 实现 domain.StatsRepository.Get
func (r *statsRepository) Get(ctx context.Context, account, bankCode string) (*domain.ScammerStats, error) {
	var model StatsModel
	err := pkgdb.Conn(ctx, r.db).
		Where("account_identifier = ? AND bank_code = ?", account, bankCode).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "stats_repository.get failed", "account", account, "bank_code", bankCode, "error", err)
		return nil, fmt.Errorf("failed to get scammer stats: %w", err)
	}
	return toStats(&model), nil
}

// UpsertIncrement 实现 domain.StatsRepository.UpsertIncrement
// 单条 INSERT ... ON DUPLICATE KEY UPDATE / ON CONFLICT DO UPDATE，累加表达式由数据库计算
func (r *statsRepository) UpsertIncrement(ctx context.Context, inc domain.StatsIncrement) error {
	model := &StatsModel{
		AccountIdentifier: inc.AccountIdentifier,
		BankCode:          inc.BankCode,
		BankName:          inc.BankName,
		ScammerName:       inc.ScammerName,
		BankAccountName:   inc.BankAccountName,
		TotalCases:        1,
		TotalAmountLost:   inc.Amount,
		FirstReportedAt:   inc.ReportedAt,
		LastReportedAt:    inc.ReportedAt,
		LastUpdatedAt:     inc.UpdatedAt,
	}

	table := model.TableName()
	err := pkgdb.Conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_identifier"}, {Name: "bank_code"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_cases":       gorm.Expr(table+".total_cases + ?", 1),
			"total_amount_lost": gorm.Expr(table+".total_amount_lost + ?", inc.Amount),
			"first_reported_at": gorm.Expr("LEAST("+table+".first_reported_at, ?)", inc.ReportedAt),
			"last_reported_at":  gorm.Expr("GREATEST("+table+".last_reported_at, ?)", inc.ReportedAt),
			"scammer_name":      inc.ScammerName,
			"bank_account_name": inc.BankAccountName,
			"bank_name":         inc.BankName,
			"last_updated_at":   inc.UpdatedAt,
		}),
	}).Create(model).Error
	if err != nil {
		logger.Error(ctx, "stats_repository.upsert_increment failed",
			"account", inc.AccountIdentifier, "bank_code", inc.BankCode, "error", err)
		return fmt.Errorf("failed to upsert scammer stats: %w", err)
	}
	return nil
}

// Search 实现 domain.StatsRepository.Search
func (r *statsRepository) Search(ctx context.Context, text, bankCode string) (*domain.ScammerStats, error) {
	q := pkgdb.Conn(ctx, r.db).Model(&StatsModel{}).Where("bank_code = ?", bankCode)
	if text = strings.TrimSpace(text); text != "" {
		pattern := likePattern(text)
		q = q.Where("LOWER(scammer_name) LIKE ? OR LOWER(bank_account_name) LIKE ? OR LOWER(account_identifier) LIKE ?",
			pattern, pattern, pattern)
	}

	var model StatsModel
	if err := q.Order("last_reported_at DESC").Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "stats_repository.search failed", "bank_code", bankCode, "error", err)
		return nil, fmt.Errorf("failed to search scammer stats: %w", err)
	}
	return toStats(&model), nil
}
