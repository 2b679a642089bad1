// Package domain 诈骗案件报告领域模型：案件、审核状态机、按账户聚合的统计
package domain

import (
	"strings"
	"time"
)

// CaseStatus 案件审核状态
type CaseStatus string

const (
	StatusPending  CaseStatus = "pending"
	StatusApproved CaseStatus = "approved"
	StatusRejected CaseStatus = "rejected"
)

// Valid 是否为已知状态
func (s CaseStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal approved 与 rejected 为终态
func (s CaseStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// EvidenceFile 证据文件引用，多个案件可以引用同一个存储 key
type EvidenceFile struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Case 诈骗案件，审核通过后不可变
type Case struct {
	ID                int64          `json:"id"`
	ScammerName       string         `json:"scammerName"`
	BankAccountName   string         `json:"bankAccountName"`
	BankCode          string         `json:"bankCode"`
	BankName          string         `json:"bankName"`
	AccountIdentifier string         `json:"accountIdentifier"`
	Description       string         `json:"scamDescription"`
	AmountLost        *int64         `json:"amountLost"`
	EvidenceFiles     []EvidenceFile `json:"evidenceJson"`
	SubmittedAt       time.Time      `json:"submittedAt"`
	Status            CaseStatus     `json:"status"`
	ReviewedByAdmin   *string        `json:"reviewedByAdmin"`
	ReviewedAt        *time.Time     `json:"reviewedAt"`
	AdminNotes        *string        `json:"adminNotes"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// NewCaseParams 创建案件所需字段
type NewCaseParams struct {
	ScammerName       string
	BankAccountName   string
	BankCode          string
	BankName          string
	AccountIdentifier string
	Description       string
	AmountLost        *int64
	EvidenceFiles     []EvidenceFile
}

// CanonicalAccount 账号去除首尾空白并转为大写，存储、查询与缓存 key 都使用该形式
func CanonicalAccount(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// CanonicalBankCode 银行代码去除首尾空白并转为大写
func CanonicalBankCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NewCase 创建待审核案件，文本字段去除首尾空白，账号与银行代码规范化
func NewCase(p NewCaseParams, now time.Time) *Case {
	evidence := make([]EvidenceFile, len(p.EvidenceFiles))
	copy(evidence, p.EvidenceFiles)

	return &Case{
		ScammerName:       strings.TrimSpace(p.ScammerName),
		BankAccountName:   strings.TrimSpace(p.BankAccountName),
		BankCode:          CanonicalBankCode(p.BankCode),
		BankName:          strings.TrimSpace(p.BankName),
		AccountIdentifier: CanonicalAccount(p.AccountIdentifier),
		Description:       strings.TrimSpace(p.Description),
		AmountLost:        p.AmountLost,
		EvidenceFiles:     evidence,
		SubmittedAt:       now,
		Status:            StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Review 将待审核案件迁移到终态
func (c *Case) Review(to CaseStatus, reviewer string, notes *string, at time.Time) error {
	if !to.IsTerminal() {
		return ErrInvalidStatus
	}
	if c.Status != StatusPending {
		return ErrInvalidTransition
	}
	c.Status = to
	c.ReviewedByAdmin = &reviewer
	c.ReviewedAt = &at
	c.AdminNotes = notes
	c.UpdatedAt = at
	return nil
}

// Amount 损失金额，未填写视为 0
func (c *Case) Amount() int64 {
	if c.AmountLost == nil {
		return 0
	}
	return *c.AmountLost
}

// IsPublic 只有审核通过的案件对外可见
func (c *Case) IsPublic() bool {
	return c.Status == StatusApproved
}
