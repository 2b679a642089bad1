package application

import (
	"strconv"
	"strings"
	"time"

	"github.com/wyfcoding/scamreport/internal/casereport/domain"
	"github.com/wyfcoding/scamreport/pkg/cache"
)

// 缓存 key 格式需与其他实现保持一致，不得随意修改
const (
	caseKeyPrefix        = "case:"
	casesKeyPrefix       = "cases:"
	statsKeyPrefix       = "stats:"
	searchKeyPrefix      = "search::"
	statsSearchKeyPrefix = "stats-search::"

	countApprovedKey = "count:approved"
	countTotalKey    = "count:total"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
	recentCasesLimit = 5
)

// CacheTTL 读穿透缓存的过期时间
type CacheTTL struct {
	// Lookup 案件、列表、统计
	Lookup time.Duration
	// Count 计数
	Count time.Duration
}

// DefaultCacheTTL 默认 TTL：查询 3600s，计数 600s
func DefaultCacheTTL() CacheTTL {
	return CacheTTL{Lookup: time.Hour, Count: 10 * time.Minute}
}

// 每个 key 命名空间一个 schema
var (
	caseCodec    = cache.NewCodec[*domain.Case]("case", 1)
	casesCodec   = cache.NewCodec[[]*domain.Case]("cases", 1)
	searchCodec  = cache.NewCodec[[]*domain.Case]("search", 1)
	countCodec   = cache.NewCodec[int64]("count", 1)
	statsCodec   = cache.NewCodec[*domain.ScammerStats]("stats", 1)
	profileCodec = cache.NewCodec[*domain.ScammerProfile]("stats-search", 1)
)

// CaseKey case:<id>
func CaseKey(id int64) string {
	return caseKeyPrefix + strconv.FormatInt(id, 10)
}

// CasesByAccountPrefix cases:<account>:<bankCode>:，失效时按此前缀整体清除
func CasesByAccountPrefix(account, bankCode string) string {
	return casesKeyPrefix + domain.CanonicalAccount(account) + ":" + domain.CanonicalBankCode(bankCode) + ":"
}

// CasesByAccountKey cases:<account>:<bankCode>:<limit>:<offset>
func CasesByAccountKey(account, bankCode string, limit, offset int) string {
	return CasesByAccountPrefix(account, bankCode) + strconv.Itoa(limit) + ":" + strconv.Itoa(offset)
}

// SearchKey search::input:<x>::bank:<y>::limit:<l>::offset:<o>，空条件省略
func SearchKey(input, bankCode string, limit, offset int) string {
	parts := []string{"search"}
	if v := normalizeText(input); v != "" {
		parts = append(parts, "input:"+v)
	}
	if v := domain.CanonicalBankCode(bankCode); v != "" {
		parts = append(parts, "bank:"+v)
	}
	parts = append(parts, "limit:"+strconv.Itoa(limit), "offset:"+strconv.Itoa(offset))
	return strings.Join(parts, "::")
}

// StatsSearchKey stats-search::input:<lowercased-trimmed>::bank:<canonical>
func StatsSearchKey(input, bankCode string) string {
	return statsSearchKeyPrefix + "input:" + normalizeText(input) + "::bank:" + domain.CanonicalBankCode(bankCode)
}

// StatsKey stats:<account>:<bankCode>
func StatsKey(account, bankCode string) string {
	return statsKeyPrefix + domain.CanonicalAccount(account) + ":" + domain.CanonicalBankCode(bankCode)
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
