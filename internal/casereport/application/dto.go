package application

import (
	"strings"
	"time"

	"github.com/wyfcoding/scamreport/internal/casereport/domain"
)

// EvidenceRef 提交案件时引用的已上传文件
type EvidenceRef struct {
	Key  string `json:"key" validate:"required"`
	Name string `json:"name" validate:"required"`
	Size int64  `json:"size" validate:"gte=0"`
}

// SubmitCaseCommand 提交案件命令
type SubmitCaseCommand struct {
	ScammerName       string        `json:"scammerName" validate:"required,min=2,max=100"`
	BankAccountName   string        `json:"bankAccountName" validate:"required,min=2,max=100"`
	BankCode          string        `json:"bankCode" validate:"required,min=2"`
	BankName          string        `json:"bankName" validate:"required,min=2"`
	AccountIdentifier string        `json:"accountIdentifier" validate:"required,min=6,max=20,alphanum"`
	Description       string        `json:"scamDescription" validate:"required,min=50,max=5000"`
	AmountLost        *int64        `json:"amountLost" validate:"omitempty,gt=0"`
	EvidenceFiles     []EvidenceRef `json:"evidenceFiles" validate:"required,min=1,max=5,dive"`
}

func (c *SubmitCaseCommand) normalize() {
	c.ScammerName = strings.TrimSpace(c.ScammerName)
	c.BankAccountName = strings.TrimSpace(c.BankAccountName)
	c.BankCode = domain.CanonicalBankCode(c.BankCode)
	c.BankName = strings.TrimSpace(c.BankName)
	c.AccountIdentifier = domain.CanonicalAccount(c.AccountIdentifier)
	c.Description = strings.TrimSpace(c.Description)
}

func (c SubmitCaseCommand) params() domain.NewCaseParams {
	files := make([]domain.EvidenceFile, 0, len(c.EvidenceFiles))
	for _, f := range c.EvidenceFiles {
		files = append(files, domain.EvidenceFile{Key: f.Key, Name: f.Name, Size: f.Size})
	}
	return domain.NewCaseParams{
		ScammerName:       c.ScammerName,
		BankAccountName:   c.BankAccountName,
		BankCode:          c.BankCode,
		BankName:          c.BankName,
		AccountIdentifier: c.AccountIdentifier,
		Description:       c.Description,
		AmountLost:        c.AmountLost,
		EvidenceFiles:     files,
	}
}

// UpdateStatusCommand 管理员审核命令
type UpdateStatusCommand struct {
	ID       int64   `json:"id" validate:"gt=0"`
	Status   string  `json:"status" validate:"required"`
	Reviewer string  `json:"reviewedByAdmin" validate:"required,max=100"`
	Notes    *string `json:"adminNotes" validate:"omitempty,max=2000"`
}

// AccountQuery 按 (账号, 银行) 查询已审核案件
type AccountQuery struct {
	AccountIdentifier string `json:"accountIdentifier" validate:"required,min=6,max=20,alphanum"`
	BankCode          string `json:"bankCode" validate:"required,min=2"`
	Limit             int    `json:"limit" validate:"gte=0,max=100"`
	Offset            int    `json:"offset" validate:"gte=0"`
}

// SearchQuery 自由文本搜索已审核案件，所有条件可选
type SearchQuery struct {
	Input    string `json:"input" validate:"max=100"`
	BankCode string `json:"bankCode" validate:"max=20"`
	Limit    int    `json:"limit" validate:"gte=0,max=100"`
	Offset   int    `json:"offset" validate:"gte=0"`
}

// StatsSearchQuery 诈骗者统计搜索
type StatsSearchQuery struct {
	Input    string `json:"input" validate:"required,min=1,max=100"`
	BankCode string `json:"bankCode" validate:"required,min=2"`
}

// CaseCount 案件计数
type CaseCount struct {
	Total    int64 `json:"total"`
	Approved int64 `json:"approved"`
}

// SubmittedCaseDTO 提交结果
type SubmittedCaseDTO struct {
	ID          int64             `json:"id"`
	Status      domain.CaseStatus `json:"status"`
	SubmittedAt time.Time         `json:"submittedAt"`
}
