// Package mysql 提供案件与聚合统计仓储的 GORM 实现，兼容 MySQL 与 PostgreSQL 方言
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
)

// caseRepository 是 domain.CaseRepository 的 GORM 实现
type caseRepository struct {
	db *gorm.DB
}

// NewCaseRepository 创建案件仓储
func NewCaseRepository(db *gorm.DB) domain.CaseRepository {
	return &caseRepository{db: db}
}

// WithTx 实现 domain.CaseRepository.WithTx
func (r *caseRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return pkgdb.WithTx(ctx, r.db, fn)
}

// Insert 实现 domain.CaseRepository.Insert
func (r *caseRepository) Insert(ctx context.Context, c *domain.Case) error {
	model := toCaseModel(c)
	if err := pkgdb.Conn(ctx, r.db).Create(model).Error; err != nil {
		logger.Error(ctx, "case_repository.insert failed", "account", c.AccountIdentifier, "error", err)
		return fmt.Errorf("failed to insert case: %w", err)
	}
	c.ID = model.ID
	return nil
}

// GetByID 实现 domain.CaseRepository.GetByID
func (r *caseRepository) GetByID(ctx context.Context, id int64) (*domain.Case, error) {
	var model CaseModel
	if err := pkgdb.Conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "case_repository.get failed", "case_id", id, "error", err)
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	return toCase(&model), nil
}

// UpdateStatus 实现 domain.CaseRepository.UpdateStatus
// 条件更新 WHERE status = 'pending' 保证并发审核只有一个成功
func (r *caseRepository) UpdateStatus(ctx context.Context, u domain.StatusUpdate) error {
	conn := pkgdb.Conn(ctx, r.db)
	res := conn.Model(&CaseModel{}).
		Where("id = ? AND status = ?", u.ID, string(domain.StatusPending)).
		Updates(map[string]any{
			"status":            string(u.To),
			"reviewed_by_admin": u.Reviewer,
			"reviewed_at":       u.ReviewedAt,
			"admin_notes":       u.Notes,
			"updated_at":        u.ReviewedAt,
		})
	if res.Error != nil {
		logger.Error(ctx, "case_repository.update_status failed", "case_id", u.ID, "error", res.Error)
		return fmt.Errorf("failed to update case status: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var current CaseModel
	err := conn.Select("id", "status").Where("id = ?", u.ID).Take(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrCaseNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load case status: %w", err)
	}
	return domain.ErrInvalidTransition
}

// List 实现 domain.CaseRepository.List
func (r *caseRepository) List(ctx context.Context, f domain.CaseFilter) ([]*domain.Case, error) {
	q := pkgdb.Conn(ctx, r.db).Model(&CaseModel{})
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.AccountIdentifier != "" {
		q = q.Where("account_identifier = ?", f.AccountIdentifier)
	}
	if f.BankCode != "" {
		q = q.Where("bank_code = ?", f.BankCode)
	}
	if text := strings.TrimSpace(f.Text); text != "" {
		pattern := likePattern(text)
		q = q.Where("LOWER(scammer_name) LIKE ? OR LOWER(bank_account_name) LIKE ? OR LOWER(account_identifier) LIKE ?",
			pattern, pattern, pattern)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var models []CaseModel
	if err := q.Order("submitted_at DESC").Order("id DESC").Find(&models).Error; err != nil {
		logger.Error(ctx, "case_repository.list failed", "error", err)
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return toCases(models), nil
}

// Count 实现 domain.CaseRepository.Count
func (r *caseRepository) Count(ctx context.Context, status domain.CaseStatus) (int64, error) {
	q := pkgdb.Conn(ctx, r.db).Model(&CaseModel{})
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		logger.Error(ctx, "case_repository.count failed", "status", status, "error", err)
		return 0, fmt.Errorf("failed to count cases: %w", err)
	}
	return total, nil
}

// ListRecentApproved 实现 domain.CaseRepository.ListRecentApproved
func (r *caseRepository) ListRecentApproved(ctx context.Context, account, bankCode string, limit int) ([]*domain.Case, error) {
	return r.List(ctx, domain.CaseFilter{
		AccountIdentifier: account,
		BankCode:          bankCode,
		Status:            domain.StatusApproved,
		Limit:             limit,
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern 构造小写的包含匹配模式，转义通配符
func likePattern(text string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
}
