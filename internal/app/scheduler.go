package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/redress/internal/config"
	"github.com/example/redress/internal/ports/primary"
	"github.com/example/redress/internal/ports/secondary"
)

// SchedulerServiceImpl implements the SchedulerService interface. Each
// sweep fires due triggers on a bounded worker pool; triggers for the same
// execution serialize through the shared lock table.
type SchedulerServiceImpl struct {
	triggerRepo secondary.TriggerRepository
	execRepo    secondary.ExecutionRepository
	selection   primary.SelectionService
	submitter   secondary.ActionSubmitter
	notifier    secondary.NotificationSink
	clock       secondary.Clock
	cfg         *config.Config
	locks       *ExecutionLocks
	logger      *slog.Logger
}

// NewSchedulerService creates a SchedulerService with injected dependencies.
func NewSchedulerService(
	triggerRepo secondary.TriggerRepository,
	execRepo secondary.ExecutionRepository,
	selection primary.SelectionService,
	submitter secondary.ActionSubmitter,
	notifier secondary.NotificationSink,
	clock secondary.Clock,
	cfg *config.Config,
	locks *ExecutionLocks,
	logger *slog.Logger,
) *SchedulerServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchedulerServiceImpl{
		triggerRepo: triggerRepo,
		execRepo:    execRepo,
		selection:   selection,
		submitter:   submitter,
		notifier:    notifier,
		clock:       clock,
		cfg:         cfg,
		locks:       locks,
		logger:      logger.With("component", "scheduler"),
	}
}

// Sweep processes every trigger due at now. Each (trigger, dueAt) pair
// fires exactly once: the atomic fire in the store rejects duplicate
// deliveries, so a crash-and-redeliver produces one transition, not two.
func (s *SchedulerServiceImpl) Sweep(ctx context.Context, now time.Time) (*primary.SweepResult, error) {
	due, err := s.triggerRepo.ListDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due triggers: %w", err)
	}

	result := &primary.SweepResult{Due: len(due)}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.cfg.WorkerCount)

	for _, trigger := range due {
		wg.Add(1)
		sem <- struct{}{}
		go func(t *secondary.TriggerRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			fired, err := s.handle(ctx, t, now)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Errors = append(result.Errors, fmt.Sprintf("trigger %s: %v", t.ID, err))
			case fired:
				result.Fired++
			default:
				result.Skipped++
			}
		}(trigger)
	}
	wg.Wait()

	s.logger.Info("sweep complete", "due", result.Due, "fired", result.Fired,
		"skipped", result.Skipped, "errors", len(result.Errors))
	return result, nil
}

// Run sweeps on the configured poll interval until ctx is cancelled.
func (s *SchedulerServiceImpl) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.cfg.PollInterval)
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx, s.clock.Now()); err != nil {
				s.logger.Error("sweep failed", "error", err)
			}
		}
	}
}

// handle fires one due trigger. Returns false when the trigger turned out
// to be a duplicate delivery.
func (s *SchedulerServiceImpl) handle(ctx context.Context, trigger *secondary.TriggerRecord, now time.Time) (bool, error) {
	fired, err := s.triggerRepo.Fire(ctx, trigger.ID, trigger.DueAt, now)
	if err != nil {
		return false, fmt.Errorf("failed to fire: %w", err)
	}
	if !fired {
		return false, nil
	}

	release := s.locks.Acquire(trigger.ExecutionID)
	defer release()

	record, err := s.execRepo.GetByID(ctx, trigger.ExecutionID)
	if err != nil {
		return true, fmt.Errorf("execution not found: %w", err)
	}

	// A response may have landed, or the execution may have been cancelled
	// or failed, between scheduling and firing. The timer is already
	// retired; nothing to escalate.
	if record.Status != primary.ExecutionStatusRunning || record.ResponseRecordedAt != nil {
		return true, nil
	}

	switch trigger.Type {
	case secondary.TriggerFollowUp:
		return true, s.handleFollowUp(ctx, record)
	case secondary.TriggerEscalateRegulatory:
		return true, s.handleEscalateRegulatory(ctx, record)
	case secondary.TriggerAdvanceRound:
		return true, s.handleAdvanceRound(ctx, record)
	default:
		return true, fmt.Errorf("unknown trigger type %q", trigger.Type)
	}
}

// handleFollowUp sends a status request after the silent response window
// and arms the regulatory escalation relative to the original submission.
func (s *SchedulerServiceImpl) handleFollowUp(ctx context.Context, record *secondary.ExecutionRecord) error {
	started := s.clock.Now()
	result, submitErr := s.submitAction(ctx, record, secondary.ActionStatusRequest,
		fmt.Sprintf("status request for unanswered dispute %s", record.ID))

	done := s.clock.Now()
	if submitErr != nil {
		// The escalation ladder is time-gated from the original
		// submission; a failed status request does not stop it.
		appendStep(record, "follow-up", primary.StepStatusFailed, started, &done, "", submitErr.Error())
		s.logger.Warn("follow-up submission failed", "execution", record.ID, "error", submitErr)
	} else {
		appendStep(record, "follow-up", primary.StepStatusCompleted, started, &done, result, "")
	}

	if err := s.execRepo.Save(ctx, record); err != nil {
		return err
	}

	dueAt := record.SubmittedAt.AddDate(0, 0, s.cfg.RegulatoryDays)
	if err := s.schedule(ctx, record.ID, secondary.TriggerEscalateRegulatory, dueAt); err != nil {
		return err
	}

	s.notifier.Notify(ctx, record.SubjectID,
		fmt.Sprintf("No response to dispute %s after %d days; a status request was sent", record.ID, s.cfg.FollowUpDays))
	return nil
}

// handleEscalateRegulatory files a regulatory complaint for a counterparty
// still silent at the regulatory threshold and arms round advancement.
func (s *SchedulerServiceImpl) handleEscalateRegulatory(ctx context.Context, record *secondary.ExecutionRecord) error {
	started := s.clock.Now()
	result, submitErr := s.submitAction(ctx, record, secondary.ActionRegulatoryComplaint,
		fmt.Sprintf("consumer protection complaint for unanswered dispute %s", record.ID))

	done := s.clock.Now()
	if submitErr != nil {
		appendStep(record, "escalate-regulatory", primary.StepStatusFailed, started, &done, "", submitErr.Error())
		s.logger.Warn("regulatory escalation submission failed", "execution", record.ID, "error", submitErr)
	} else {
		appendStep(record, "escalate-regulatory", primary.StepStatusCompleted, started, &done, result, "")
	}

	if err := s.execRepo.Save(ctx, record); err != nil {
		return err
	}

	dueAt := record.SubmittedAt.AddDate(0, 0, s.cfg.AdvanceDays)
	if err := s.schedule(ctx, record.ID, secondary.TriggerAdvanceRound, dueAt); err != nil {
		return err
	}

	s.notifier.Notify(ctx, record.SubjectID,
		fmt.Sprintf("Dispute %s unanswered at day %d; a regulatory complaint was filed", record.ID, s.cfg.RegulatoryDays))
	return nil
}

// handleAdvanceRound exhausts the current tactic: it bumps the round,
// asks the scoring engine what to try next, and completes the execution.
func (s *SchedulerServiceImpl) handleAdvanceRound(ctx context.Context, record *secondary.ExecutionRecord) error {
	started := s.clock.Now()
	record.Round++

	if record.Round >= s.cfg.RoundCap {
		failure := &TerminalStrategyFailure{ExecutionID: record.ID, Round: record.Round}
		done := s.clock.Now()
		appendStep(record, "advance-round", primary.StepStatusCompleted, started, &done,
			"escalation exhausted at round cap; no further automatic action", "")
		record.Status = primary.ExecutionStatusCompleted
		record.CurrentStep = primary.StepRecommendNext
		record.CompletedAt = &done
		if err := s.execRepo.Save(ctx, record); err != nil {
			return err
		}
		s.notifier.Notify(ctx, record.SubjectID,
			fmt.Sprintf("Dispute %s: %v. Please review remaining options with an advisor.", record.ID, failure))
		return nil
	}

	record.CurrentStep = primary.StepRecommendNext
	recs, err := s.selection.Recommend(ctx, primary.RecommendRequest{
		ItemID:    record.ItemID,
		SubjectID: record.SubjectID,
		Limit:     1,
	})

	done := s.clock.Now()
	if err != nil {
		appendStep(record, "advance-round", primary.StepStatusFailed, started, &done, "", err.Error())
	} else if len(recs) == 0 {
		appendStep(record, "advance-round", primary.StepStatusCompleted, started, &done,
			fmt.Sprintf("round advanced to %d; no further strategies applicable", record.Round), "")
	} else {
		record.NextStrategyID = recs[0].StrategyID
		appendStep(record, "advance-round", primary.StepStatusCompleted, started, &done,
			fmt.Sprintf("round advanced to %d; next recommended strategy: %s", record.Round, recs[0].StrategyID), "")
	}

	record.Status = primary.ExecutionStatusCompleted
	record.CompletedAt = &done
	if err := s.execRepo.Save(ctx, record); err != nil {
		return err
	}

	if record.NextStrategyID != "" {
		s.notifier.Notify(ctx, record.SubjectID,
			fmt.Sprintf("Dispute %s closed after no resolution; recommended next step: %s", record.ID, record.NextStrategyID))
	} else {
		s.notifier.Notify(ctx, record.SubjectID,
			fmt.Sprintf("Dispute %s closed after no resolution; no further strategies are applicable", record.ID))
	}
	return nil
}

func (s *SchedulerServiceImpl) submitAction(ctx context.Context, record *secondary.ExecutionRecord, kind, summary string) (string, error) {
	submitCtx, cancel := context.WithTimeout(ctx, s.cfg.SubmitTimeout)
	defer cancel()

	receipt, err := s.submitter.Submit(submitCtx, secondary.Action{
		Kind:        kind,
		ExecutionID: record.ID,
		SubjectID:   record.SubjectID,
		ItemID:      record.ItemID,
		StrategyID:  record.StrategyID,
		Round:       record.Round,
		Summary:     summary,
	})
	if err != nil {
		return "", &ExternalServiceError{Op: kind, Err: err}
	}
	return "submitted, receipt " + receipt.Ref, nil
}

func (s *SchedulerServiceImpl) schedule(ctx context.Context, executionID, triggerType string, dueAt time.Time) error {
	trigger := &secondary.TriggerRecord{
		ID:          uuid.NewString(),
		ExecutionID: executionID,
		Type:        triggerType,
		DueAt:       dueAt,
		Enabled:     true,
	}
	if err := s.triggerRepo.Schedule(ctx, trigger); err != nil {
		return fmt.Errorf("failed to schedule %s trigger: %w", triggerType, err)
	}
	return nil
}

// Ensure SchedulerServiceImpl implements the interface
var _ primary.SchedulerService = (*SchedulerServiceImpl)(nil)
