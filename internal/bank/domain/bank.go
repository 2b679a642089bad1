// Package domain 银行目录
package domain

import "context"

// Bank VietQR 银行目录条目
type Bank struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Code      string  `json:"code"`
	Bin       string  `json:"bin"`
	ShortName string  `json:"shortName"`
	Logo      string  `json:"logo"`
	SwiftCode *string `json:"swift_code"`
}

// Directory 外部银行目录数据源
type Directory interface {
	FetchBanks(ctx context.Context) ([]Bank, error)
}
