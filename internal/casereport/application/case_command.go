package application

import (
	"context"
	"time"

	"github.com/wyfcoding/scamreport/internal/casereport/domain"
	"github.com/wyfcoding/scamreport/pkg/logger"
)

// CommandRecorder 记录写操作指标
type CommandRecorder interface {
	RecordSubmission()
	RecordReview(status string)
}

type nopCommandRecorder struct{}

func (nopCommandRecorder) RecordSubmission()   {}
func (nopCommandRecorder) RecordReview(string) {}

// CaseCommandService 案件写操作：提交与审核
type CaseCommandService struct {
	cases       domain.CaseRepository
	aggregator  *StatsAggregator
	invalidator *Invalidator
	publisher   domain.EventPublisher
	rec         CommandRecorder
	now         func() time.Time
}

// NewCaseCommandService 创建案件命令服务，publisher 与 rec 可为 nil
func NewCaseCommandService(
	cases domain.CaseRepository,
	aggregator *StatsAggregator,
	invalidator *Invalidator,
	publisher domain.EventPublisher,
	rec CommandRecorder,
) *CaseCommandService {
	if rec == nil {
		rec = nopCommandRecorder{}
	}
	return &CaseCommandService{
		cases:       cases,
		aggregator:  aggregator,
		invalidator: invalidator,
		publisher:   publisher,
		rec:         rec,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SubmitCase 提交待审核案件
// 待审核案件对外不可见，只需失效总数
func (s *CaseCommandService) SubmitCase(ctx context.Context, cmd SubmitCaseCommand) (*SubmittedCaseDTO, error) {
	cmd.normalize()
	if err := validateStruct(cmd); err != nil {
		return nil, err
	}

	c := domain.NewCase(cmd.params(), s.now())
	if err := s.cases.Insert(ctx, c); err != nil {
		logger.Error(ctx, "failed to submit case", "account", c.AccountIdentifier, "bank_code", c.BankCode, "error", err)
		return nil, err
	}

	s.invalidator.CaseSubmitted(ctx)
	s.rec.RecordSubmission()

	if s.publisher != nil {
		event := domain.CaseSubmittedEvent{
			CaseID:            c.ID,
			AccountIdentifier: c.AccountIdentifier,
			BankCode:          c.BankCode,
			EvidenceCount:     len(c.EvidenceFiles),
			SubmittedAt:       c.SubmittedAt,
		}
		if err := s.publisher.PublishCaseSubmitted(ctx, event); err != nil {
			logger.Warn(ctx, "failed to publish case submitted event", "case_id", c.ID, "error", err)
		}
	}

	logger.Info(ctx, "case submitted", "case_id", c.ID, "evidence", len(c.EvidenceFiles))
	return &SubmittedCaseDTO{ID: c.ID, Status: c.Status, SubmittedAt: c.SubmittedAt}, nil
}

// UpdateStatus 审核案件
// 状态更新与聚合累加在同一事务中完成，提交后再执行缓存失效
func (s *CaseCommandService) UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) (*domain.Case, error) {
	if err := validateStruct(cmd); err != nil {
		return nil, err
	}
	to := domain.CaseStatus(cmd.Status)
	if !to.IsTerminal() {
		return nil, domain.ErrInvalidStatus
	}

	now := s.now()
	var (
		reviewed *domain.Case
		from     domain.CaseStatus
	)
	err := s.cases.WithTx(ctx, func(txCtx context.Context) error {
		c, err := s.cases.GetByID(txCtx, cmd.ID)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrCaseNotFound
		}

		from = c.Status
		if err := c.Review(to, cmd.Reviewer, cmd.Notes, now); err != nil {
			return err
		}

		if err := s.cases.UpdateStatus(txCtx, domain.StatusUpdate{
			ID:         c.ID,
			To:         to,
			Reviewer:   cmd.Reviewer,
			Notes:      cmd.Notes,
			ReviewedAt: now,
		}); err != nil {
			return err
		}

		if err := s.aggregator.RecordApproval(txCtx, c, now); err != nil {
			return err
		}

		reviewed = c
		return nil
	})
	if err != nil {
		logger.Warn(ctx, "case review rejected", "case_id", cmd.ID, "status", to, "error", err)
		return nil, err
	}

	s.invalidator.CaseReviewed(ctx, reviewed)
	s.rec.RecordReview(string(to))

	if s.publisher != nil {
		event := domain.CaseStatusChangedEvent{
			CaseID:            reviewed.ID,
			AccountIdentifier: reviewed.AccountIdentifier,
			BankCode:          reviewed.BankCode,
			From:              from,
			To:                to,
			Reviewer:          cmd.Reviewer,
			AmountLost:        reviewed.Amount(),
			ReviewedAt:        now,
		}
		if err := s.publisher.PublishCaseStatusChanged(ctx, event); err != nil {
			logger.Warn(ctx, "failed to publish case status changed event", "case_id", reviewed.ID, "error", err)
		}
	}

	logger.Info(ctx, "case reviewed", "case_id", reviewed.ID, "from", from, "to", to, "reviewer", cmd.Reviewer)
	return reviewed, nil
}
