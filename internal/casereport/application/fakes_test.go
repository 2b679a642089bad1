package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wyfcoding/scamreport/internal/casereport/domain"
)

// memStore 同时实现 CaseRepository 与 StatsRepository
// 事务串行执行，失败时恢复快照；账号与银行代码按不区分大小写比较，与 MySQL 默认排序规则一致
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID int64
	cases  map[int64]*domain.Case
	stats  map[string]*domain.ScammerStats

	caseReads  atomic.Int64
	statsReads atomic.Int64
	upsertErr  error
}

func newMemStore() *memStore {
	return &memStore{cases: map[int64]*domain.Case{}, stats: map[string]*domain.ScammerStats{}}
}

func cloneCase(c *domain.Case) *domain.Case {
	cp := *c
	cp.EvidenceFiles = append([]domain.EvidenceFile(nil), c.EvidenceFiles...)
	return &cp
}

func (m *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	cases := make(map[int64]*domain.Case, len(m.cases))
	for id, c := range m.cases {
		cases[id] = cloneCase(c)
	}
	stats := make(map[string]*domain.ScammerStats, len(m.stats))
	for k, s := range m.stats {
		cp := *s
		stats[k] = &cp
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.cases, m.stats = cases, stats
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) Insert(_ context.Context, c *domain.Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	m.cases[c.ID] = cloneCase(c)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*domain.Case, error) {
	m.caseReads.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, nil
	}
	return cloneCase(c), nil
}

func (m *memStore) UpdateStatus(_ context.Context, u domain.StatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[u.ID]
	if !ok {
		return domain.ErrCaseNotFound
	}
	if c.Status != domain.StatusPending {
		return domain.ErrInvalidTransition
	}
	reviewer := u.Reviewer
	at := u.ReviewedAt
	c.Status = u.To
	c.ReviewedByAdmin = &reviewer
	c.ReviewedAt = &at
	c.AdminNotes = u.Notes
	c.UpdatedAt = at
	return nil
}

func (m *memStore) List(_ context.Context, f domain.CaseFilter) ([]*domain.Case, error) {
	m.caseReads.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()

	text := strings.ToLower(f.Text)
	var out []*domain.Case
	for _, c := range m.cases {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.AccountIdentifier != "" && !strings.EqualFold(c.AccountIdentifier, f.AccountIdentifier) {
			continue
		}
		if f.BankCode != "" && !strings.EqualFold(c.BankCode, f.BankCode) {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(c.ScammerName), text) &&
			!strings.Contains(strings.ToLower(c.BankAccountName), text) &&
			!strings.Contains(strings.ToLower(c.AccountIdentifier), text) {
			continue
		}
		out = append(out, cloneCase(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	if f.Offset >= len(out) {
		return []*domain.Case{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memStore) Count(_ context.Context, status domain.CaseStatus) (int64, error) {
	m.caseReads.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.cases {
		if status == "" || c.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListRecentApproved(ctx context.Context, account, bankCode string, limit int) ([]*domain.Case, error) {
	return m.List(ctx, domain.CaseFilter{AccountIdentifier: account, BankCode: bankCode, Status: domain.StatusApproved, Limit: limit})
}

func (m *memStore) Get(_ context.Context, account, bankCode string) (*domain.ScammerStats, error) {
	m.statsReads.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stats[statsKey(account, bankCode)]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) UpsertIncrement(_ context.Context, inc domain.StatsIncrement) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := statsKey(inc.AccountIdentifier, inc.BankCode)
	s, ok := m.stats[key]
	if !ok {
		s = &domain.ScammerStats{}
		m.stats[key] = s
	}
	applyIncrement(s, inc)
	return nil
}

func (m *memStore) Search(_ context.Context, text, bankCode string) (*domain.ScammerStats, error) {
	m.statsReads.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	text = strings.ToLower(text)
	var best *domain.ScammerStats
	for _, s := range m.stats {
		if !strings.EqualFold(s.BankCode, bankCode) {
			continue
		}
		if !strings.Contains(strings.ToLower(s.ScammerName), text) &&
			!strings.Contains(strings.ToLower(s.BankAccountName), text) &&
			!strings.Contains(strings.ToLower(s.AccountIdentifier), text) {
			continue
		}
		if best == nil || s.LastReportedAt.After(best.LastReportedAt) {
			best = s
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func statsKey(account, bankCode string) string {
	return strings.ToLower(account) + "|" + strings.ToLower(bankCode)
}

// applyIncrement 内存版的原子 upsert：不存在时插入，存在时累加并推进首末上报时间
func applyIncrement(s *domain.ScammerStats, inc domain.StatsIncrement) {
	if s.TotalCases == 0 {
		s.AccountIdentifier = inc.AccountIdentifier
		s.BankCode = inc.BankCode
		s.FirstReportedAt = inc.ReportedAt
		s.LastReportedAt = inc.ReportedAt
	}
	s.TotalCases++
	s.TotalAmountLost += inc.Amount
	s.BankName = inc.BankName
	s.ScammerName = inc.ScammerName
	s.BankAccountName = inc.BankAccountName
	if inc.ReportedAt.Before(s.FirstReportedAt) {
		s.FirstReportedAt = inc.ReportedAt
	}
	if inc.ReportedAt.After(s.LastReportedAt) {
		s.LastReportedAt = inc.ReportedAt
	}
	s.LastUpdatedAt = inc.UpdatedAt
}

// seedPending 直接写入一条待审核案件
func (m *memStore) seedPending(account, bankCode, name string, amount *int64, submittedAt time.Time) int64 {
	c := domain.NewCase(domain.NewCaseParams{
		ScammerName:       name,
		BankAccountName:   strings.ToUpper(name),
		BankCode:          bankCode,
		BankName:          bankCode + " Bank",
		AccountIdentifier: account,
		Description:       strings.Repeat("d", 60),
		AmountLost:        amount,
		EvidenceFiles:     []domain.EvidenceFile{{Key: "file/abc_1.png", Name: "a.png", Size: 10}},
	}, submittedAt)
	_ = m.Insert(context.Background(), c)
	return c.ID
}

// brokenKV 所有操作均失败，模拟缓存不可用
type brokenKV struct{}

var errCacheDown = errors.New("cache unavailable")

func (brokenKV) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errCacheDown }
func (brokenKV) Put(context.Context, string, []byte, time.Duration) error {
	return errCacheDown
}
func (brokenKV) Delete(context.Context, ...string) error { return errCacheDown }
func (brokenKV) ListByPrefix(context.Context, string) ([]string, error) {
	return nil, errCacheDown
}

// recordingPublisher 记录发布的事件，可配置为失败
type recordingPublisher struct {
	mu        sync.Mutex
	submitted []domain.CaseSubmittedEvent
	changed   []domain.CaseStatusChangedEvent
	err       error
}

func (p *recordingPublisher) PublishCaseSubmitted(_ context.Context, e domain.CaseSubmittedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitted = append(p.submitted, e)
	return p.err
}

func (p *recordingPublisher) PublishCaseStatusChanged(_ context.Context, e domain.CaseStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, e)
	return p.err
}
