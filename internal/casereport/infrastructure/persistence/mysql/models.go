package mysql

import (
	"time"

	"github.com/wyfcoding/scamreport/internal/casereport/domain"
)

// CaseModel 案件表映射
type CaseModel struct {
	ID                int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	ScammerName       string                `gorm:"column:scammer_name;type:varchar(100);index:idx_scammer_name;not null"`
	BankAccountName   string                `gorm:"column:bank_account_name;type:varchar(100);index:idx_bank_account_name;not null"`
	BankCode          string                `gorm:"column:bank_code;type:varchar(32);not null"`
	BankName          string                `gorm:"column:bank_name;type:varchar(255);not null"`
	AccountIdentifier string                `gorm:"column:account_identifier;type:varchar(20);index:idx_account_identifier;not null"`
	Description       string                `gorm:"column:scam_description;type:text;not null"`
	AmountLost        *int64                `gorm:"column:amount_lost"`
	EvidenceFiles     []domain.EvidenceFile `gorm:"column:evidence_json;type:text;serializer:json"`
	SubmittedAt       time.Time             `gorm:"column:submitted_at;index:idx_submitted_at;index:idx_status_submitted,priority:2;not null"`
	Status            string                `gorm:"column:status;type:varchar(16);index:idx_status;index:idx_status_submitted,priority:1;not null;default:pending"`
	ReviewedByAdmin   *string               `gorm:"column:reviewed_by_admin;type:varchar(100)"`
	ReviewedAt        *time.Time            `gorm:"column:reviewed_at"`
	AdminNotes        *string               `gorm:"column:admin_notes;type:text"`
	CreatedAt         time.Time             `gorm:"column:created_at;not null"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (CaseModel) TableName() string { return "scam_cases" }

// StatsModel 聚合统计表映射，(account_identifier, bank_code) 为联合主键
type StatsModel struct {
	AccountIdentifier string    `gorm:"column:account_identifier;type:varchar(20);primaryKey"`
	BankCode          string    `gorm:"column:bank_code;type:varchar(32);primaryKey"`
	BankName          string    `gorm:"column:bank_name;type:varchar(255);not null"`
	ScammerName       string    `gorm:"column:scammer_name;type:varchar(100);not null"`
	BankAccountName   string    `gorm:"column:bank_account_name;type:varchar(100);not null"`
	TotalCases        int64     `gorm:"column:total_cases;not null;default:0"`
	TotalAmountLost   int64     `gorm:"column:total_amount_lost;not null;default:0"`
	FirstReportedAt   time.Time `gorm:"column:first_reported_at;not null"`
	LastReportedAt    time.Time `gorm:"column:last_reported_at;index:idx_last_reported;not null"`
	LastUpdatedAt     time.Time `gorm:"column:last_updated_at;not null"`
}

// TableName 指定表名
func (StatsModel) TableName() string { return "scammer_stats" }

// Models 需要自动迁移的模型
func Models() []any {
	return []any{&CaseModel{}, &StatsModel{}}
}

func toCaseModel(c *domain.Case) *CaseModel {
	return &CaseModel{
		ID:                c.ID,
		ScammerName:       c.ScammerName,
		BankAccountName:   c.BankAccountName,
		BankCode:          c.BankCode,
		BankName:          c.BankName,
		AccountIdentifier: c.AccountIdentifier,
		Description:       c.Description,
		AmountLost:        c.AmountLost,
		EvidenceFiles:     c.EvidenceFiles,
		SubmittedAt:       c.SubmittedAt,
		Status:            string(c.Status),
		ReviewedByAdmin:   c.ReviewedByAdmin,
		ReviewedAt:        c.ReviewedAt,
		AdminNotes:        c.AdminNotes,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func toCase(m *CaseModel) *domain.Case {
	evidence := m.EvidenceFiles
	if evidence == nil {
		evidence = []domain.EvidenceFile{}
	}
	return &domain.Case{
		ID:                m.ID,
		ScammerName:       m.ScammerName,
		BankAccountName:   m.BankAccountName,
		BankCode:          m.BankCode,
		BankName:          m.BankName,
		AccountIdentifier: m.AccountIdentifier,
		Description:       m.Description,
		AmountLost:        m.AmountLost,
		EvidenceFiles:     evidence,
		SubmittedAt:       m.SubmittedAt,
		Status:            domain.CaseStatus(m.Status),
		ReviewedByAdmin:   m.ReviewedByAdmin,
		ReviewedAt:        m.ReviewedAt,
		AdminNotes:        m.AdminNotes,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toCases(models []CaseModel) []*domain.Case {
	out := make([]*domain.Case, 0, len(models))
	for i := range models {
		out = append(out, toCase(&models[i]))
	}
	return out
}

func toStats(m *StatsModel) *domain.ScammerStats {
	return &domain.ScammerStats{
		AccountIdentifier: m.AccountIdentifier,
		BankCode:          m.BankCode,
		BankName:          m.BankName,
		ScammerName:       m.ScammerName,
		BankAccountName:   m.BankAccountName,
		TotalCases:        m.TotalCases,
		TotalAmountLost:   m.TotalAmountLost,
		FirstReportedAt:   m.FirstReportedAt,
		LastReportedAt:    m.LastReportedAt,
		LastUpdatedAt:     m.LastUpdatedAt,
	}
}
