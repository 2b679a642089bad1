package domain

import "time"

// ScammerStats 按 (账号, 银行代码) 聚合的统计行，首次审核通过时创建，之后只增量更新，不删除
type ScammerStats struct {
	AccountIdentifier string    `json:"accountIdentifier"`
	BankCode          string    `json:"bankCode"`
	BankName          string    `json:"bankName"`
	ScammerName       string    `json:"scammerName"`
	BankAccountName   string    `json:"bankAccountName"`
	TotalCases        int64     `json:"totalCases"`
	TotalAmountLost   int64     `json:"totalAmountLost"`
	FirstReportedAt   time.Time `json:"firstReportedAt"`
	LastReportedAt    time.Time `json:"lastReportedAt"`
	LastUpdatedAt     time.Time `json:"lastUpdatedAt"`
}

// StatsIncrement 一次审核通过对聚合行的增量
type StatsIncrement struct {
	AccountIdentifier string
	BankCode          string
	BankName          string
	ScammerName       string
	BankAccountName   string
	Amount            int64
	ReportedAt        time.Time
	UpdatedAt         time.Time
}

// IncrementFor 由审核通过的案件构造增量
func IncrementFor(c *Case, now time.Time) StatsIncrement {
	return StatsIncrement{
		AccountIdentifier: c.AccountIdentifier,
		BankCode:          c.BankCode,
		BankName:          c.BankName,
		ScammerName:       c.ScammerName,
		BankAccountName:   c.BankAccountName,
		Amount:            c.Amount(),
		ReportedAt:        c.SubmittedAt,
		UpdatedAt:         now,
	}
}

// ScammerProfile 统计行与最近 5 条已审核案件，作为一个整体缓存
type ScammerProfile struct {
	ScammerStats
	RecentCases []*Case `json:"recentCases"`
}
