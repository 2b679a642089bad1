package domain

import (
	"context"
	"time"
)

const (
	EventCaseSubmitted     = "case.submitted"
	EventCaseStatusChanged = "case.status_changed"
)

// CaseSubmittedEvent 案件提交事件
type CaseSubmittedEvent struct {
	CaseID            int64     `json:"caseId"`
	AccountIdentifier string    `json:"accountIdentifier"`
	BankCode          string    `json:"bankCode"`
	EvidenceCount     int       `json:"evidenceCount"`
	SubmittedAt       time.Time `json:"submittedAt"`
}

// CaseStatusChangedEvent 案件审核事件
type CaseStatusChangedEvent struct {
	CaseID            int64      `json:"caseId"`
	AccountIdentifier string     `json:"accountIdentifier"`
	BankCode          string     `json:"bankCode"`
	From              CaseStatus `json:"from"`
	To                CaseStatus `json:"to"`
	Reviewer          string     `json:"reviewer"`
	AmountLost        int64      `json:"amountLost"`
	ReviewedAt        time.Time  `json:"reviewedAt"`
}

// EventPublisher 事件发布者接口，发布失败不影响已提交的写操作
type EventPublisher interface {
	// PublishCaseSubmitted 发布案件提交事件
	PublishCaseSubmitted(ctx context.Context, event CaseSubmittedEvent) error
	// PublishCaseStatusChanged 发布案件审核事件
	PublishCaseStatusChanged(ctx context.Context, event CaseStatusChangedEvent) error
}
