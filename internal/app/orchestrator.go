// Package app contains the engine services: eligibility, scoring,
// orchestration and escalation scheduling.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/example/redress/internal/catalog"
	"github.com/example/redress/internal/config"
	coreexec "github.com/example/redress/internal/core/execution"
	"github.com/example/redress/internal/ports/primary"
	"github.com/example/redress/internal/ports/secondary"
)

// ExecutionServiceImpl implements the ExecutionService interface. It owns
// every mutation of execution records; all transitions for one execution
// are serialized through the shared lock table.
type ExecutionServiceImpl struct {
	execRepo    secondary.ExecutionRepository
	triggerRepo secondary.TriggerRepository
	store       secondary.RecordStore
	catalog     catalog.Catalog
	predicates  *PredicateRegistry
	selection   primary.SelectionService
	submitter   secondary.ActionSubmitter
	notifier    secondary.NotificationSink
	clock       secondary.Clock
	cfg         *config.Config
	locks       *ExecutionLocks
	logger      *slog.Logger
	validate    *validator.Validate
}

// NewExecutionService creates an ExecutionService with injected dependencies.
func NewExecutionService(
	execRepo secondary.ExecutionRepository,
	triggerRepo secondary.TriggerRepository,
	store secondary.RecordStore,
	cat catalog.Catalog,
	predicates *PredicateRegistry,
	selection primary.SelectionService,
	submitter secondary.ActionSubmitter,
	notifier secondary.NotificationSink,
	clock secondary.Clock,
	cfg *config.Config,
	locks *ExecutionLocks,
	logger *slog.Logger,
) *ExecutionServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecutionServiceImpl{
		execRepo:    execRepo,
		triggerRepo: triggerRepo,
		store:       store,
		catalog:     cat,
		predicates:  predicates,
		selection:   selection,
		submitter:   submitter,
		notifier:    notifier,
		clock:       clock,
		cfg:         cfg,
		locks:       locks,
		logger:      logger.With("component", "orchestrator"),
		validate:    validator.New(),
	}
}

// Start commits a subject to a strategy for an item and drives the new
// execution through submission into the awaiting-response sub-state.
func (s *ExecutionServiceImpl) Start(ctx context.Context, req primary.StartExecutionRequest) (*primary.Execution, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	item, err := s.store.GetItem(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("item not found: %w", err)
	}
	if _, err := s.store.GetSubjectProfile(ctx, req.SubjectID); err != nil {
		return nil, fmt.Errorf("subject not found: %w", err)
	}
	strategy, err := s.catalog.ByID(req.StrategyID)
	if err != nil {
		return nil, err
	}
	if !strategy.Active {
		return nil, &ValidationError{Msg: fmt.Sprintf("strategy %s is inactive", strategy.ID)}
	}
	if !strategy.Targets(item.Type) {
		return nil, &ValidationError{Msg: fmt.Sprintf("strategy %s does not target %s items", strategy.ID, item.Type)}
	}

	attempted, err := s.store.AttemptedStrategies(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempted strategies: %w", err)
	}
	for _, id := range attempted {
		if id == strategy.ID {
			return nil, &ValidationError{Msg: fmt.Sprintf("strategy %s was already attempted against item %s", strategy.ID, req.ItemID)}
		}
	}

	now := s.clock.Now()
	record := &secondary.ExecutionRecord{
		ID:         uuid.NewString(),
		ItemID:     req.ItemID,
		StrategyID: req.StrategyID,
		SubjectID:  req.SubjectID,
		Status:     coreexec.InitialStatus(),
		Round:      len(attempted),
		CreatedAt:  now,
	}
	if err := s.execRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create execution: %w", err)
	}
	if err := s.store.RecordAttempt(ctx, req.SubjectID, req.ItemID, req.StrategyID); err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	release := s.locks.Acquire(record.ID)
	defer release()

	if err := s.runPipeline(ctx, record, strategy); err != nil {
		// The execution carries the failure in its step history; surface
		// the error alongside the state we reached.
		return recordToExecution(record), err
	}
	return recordToExecution(record), nil
}

// Get retrieves an execution with its step history.
func (s *ExecutionServiceImpl) Get(ctx context.Context, executionID string) (*primary.Execution, error) {
	record, err := s.execRepo.GetByID(ctx, executionID)
	if err != nil {
		return nil, err
	}
	return recordToExecution(record), nil
}

// List lists executions with optional filters.
func (s *ExecutionServiceImpl) List(ctx context.Context, filters primary.ExecutionFilters) ([]*primary.Execution, error) {
	records, err := s.execRepo.List(ctx, secondary.ExecutionFilters{
		SubjectID: filters.SubjectID,
		ItemID:    filters.ItemID,
		Status:    filters.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	executions := make([]*primary.Execution, len(records))
	for i, r := range records {
		executions[i] = recordToExecution(r)
	}
	return executions, nil
}

// ListTriggers returns all triggers scheduled for an execution, newest first.
func (s *ExecutionServiceImpl) ListTriggers(ctx context.Context, executionID string) ([]*primary.Trigger, error) {
	records, err := s.triggerRepo.ListByExecution(ctx, executionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list triggers: %w", err)
	}

	triggers := make([]*primary.Trigger, len(records))
	for i, r := range records {
		triggers[i] = &primary.Trigger{
			ID:          r.ID,
			ExecutionID: r.ExecutionID,
			Type:        r.Type,
			DueAt:       r.DueAt,
			Enabled:     r.Enabled,
			FiredAt:     r.FiredAt,
			CreatedAt:   r.CreatedAt,
		}
	}
	return triggers, nil
}

// Cancel cancels a pending or running execution. The per-execution lock
// guarantees no step is in flight when the transition happens, so
// cancellation is always between steps.
func (s *ExecutionServiceImpl) Cancel(ctx context.Context, executionID string) error {
	release := s.locks.Acquire(executionID)
	defer release()

	record, err := s.execRepo.GetByID(ctx, executionID)
	if err != nil {
		return err
	}
	if guard := coreexec.CanCancel(stateContext(record)); !guard.Allowed {
		return &ValidationError{Msg: guard.Reason}
	}

	if err := s.applyCancel(ctx, record); err != nil {
		if !errors.Is(err, secondary.ErrStateConflict) {
			return err
		}
		// Another writer got there first: reload and re-evaluate once.
		record, err = s.execRepo.GetByID(ctx, executionID)
		if err != nil {
			return err
		}
		if guard := coreexec.CanCancel(stateContext(record)); !guard.Allowed {
			return &ValidationError{Msg: guard.Reason}
		}
		return s.applyCancel(ctx, record)
	}
	return nil
}

func (s *ExecutionServiceImpl) applyCancel(ctx context.Context, record *secondary.ExecutionRecord) error {
	transition := coreexec.ApplyStatusTransition(primary.ExecutionStatusCancelled, s.clock.Now())
	record.Status = transition.NewStatus
	record.CancelRequested = true
	record.CompletedAt = transition.CompletedAt
	if err := s.execRepo.Save(ctx, record); err != nil {
		return err
	}
	if err := s.triggerRepo.DisableForExecution(ctx, record.ID); err != nil {
		return fmt.Errorf("failed to disable triggers: %w", err)
	}
	return nil
}

// Retry re-runs a running execution from its recorded step after a
// transient external failure.
func (s *ExecutionServiceImpl) Retry(ctx context.Context, executionID string) (*primary.Execution, error) {
	release := s.locks.Acquire(executionID)
	defer release()

	record, err := s.execRepo.GetByID(ctx, executionID)
	if err != nil {
		return nil, err
	}
	if guard := coreexec.CanRetry(stateContext(record)); !guard.Allowed {
		return nil, &ValidationError{Msg: guard.Reason}
	}

	strategy, err := s.catalog.ByID(record.StrategyID)
	if err != nil {
		return nil, err
	}

	if err := s.runPipeline(ctx, record, strategy); err != nil {
		return recordToExecution(record), err
	}
	return recordToExecution(record), nil
}

// Fail explicitly marks a stalled running execution failed.
func (s *ExecutionServiceImpl) Fail(ctx context.Context, executionID, reason string) error {
	release := s.locks.Acquire(executionID)
	defer release()

	record, err := s.execRepo.GetByID(ctx, executionID)
	if err != nil {
		return err
	}
	if guard := coreexec.CanFail(stateContext(record)); !guard.Allowed {
		return &ValidationError{Msg: guard.Reason}
	}

	now := s.clock.Now()
	transition := coreexec.ApplyStatusTransition(primary.ExecutionStatusFailed, now)
	record.Status = transition.NewStatus
	record.CompletedAt = transition.CompletedAt
	appendStep(record, record.CurrentStep, primary.StepStatusFailed, now, &now, "", reason)
	if err := s.execRepo.Save(ctx, record); err != nil {
		return err
	}
	return s.triggerRepo.DisableForExecution(ctx, executionID)
}

// RecordResponse records a counterparty response and drives the execution
// through outcome evaluation to completion.
func (s *ExecutionServiceImpl) RecordResponse(ctx context.Context, req primary.RecordResponseRequest) (*primary.Execution, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	release := s.locks.Acquire(req.ExecutionID)
	defer release()

	record, err := s.execRepo.GetByID(ctx, req.ExecutionID)
	if err != nil {
		return nil, err
	}
	if guard := coreexec.CanRecordResponse(stateContext(record)); !guard.Allowed {
		return nil, &ValidationError{Msg: guard.Reason}
	}

	now := s.clock.Now()
	record.ResponseRecordedAt = &now

	// evaluate-outcome
	record.CurrentStep = primary.StepEvaluateOutcome
	result := "outcome: " + req.Outcome
	if req.Detail != "" {
		result += " (" + req.Detail + ")"
	}
	done := s.clock.Now()
	appendStep(record, primary.StepEvaluateOutcome, primary.StepStatusCompleted, now, &done, result, "")

	// A verified or unchanged item means the tactic is spent; recommend
	// what to try next. Deletion or correction ends the matter.
	if req.Outcome == primary.OutcomeVerified || req.Outcome == primary.OutcomeNoChange {
		s.recommendNext(ctx, record)
	}

	record.Status = primary.ExecutionStatusCompleted
	record.CompletedAt = &done
	if err := s.execRepo.Save(ctx, record); err != nil {
		return nil, err
	}
	if err := s.triggerRepo.DisableForExecution(ctx, record.ID); err != nil {
		return nil, fmt.Errorf("failed to disable triggers: %w", err)
	}

	s.notifier.Notify(ctx, record.SubjectID,
		fmt.Sprintf("Response recorded for dispute %s: %s", record.ID, req.Outcome))

	return recordToExecution(record), nil
}

// runPipeline drives the execution from its current step through entry
// into the awaiting-response sub-state. Transient external failures leave
// the execution running at the failed step for the caller to retry;
// everything else fails the execution.
func (s *ExecutionServiceImpl) runPipeline(ctx context.Context, record *secondary.ExecutionRecord, strategy *catalog.Strategy) error {
	if record.Status == primary.ExecutionStatusPending {
		record.Status = primary.ExecutionStatusRunning
	}

	start := coreexec.StepIndex(record.CurrentStep)

	item, err := s.store.GetItem(ctx, record.ItemID)
	if err != nil {
		return s.failPipeline(ctx, record, coreexec.PipelineOrder[start], fmt.Errorf("item not found: %w", err))
	}
	profile, err := s.store.GetSubjectProfile(ctx, record.SubjectID)
	if err != nil {
		return s.failPipeline(ctx, record, coreexec.PipelineOrder[start], fmt.Errorf("subject not found: %w", err))
	}

	for i := start; i < len(coreexec.PipelineOrder); i++ {
		if record.CancelRequested {
			transition := coreexec.ApplyStatusTransition(primary.ExecutionStatusCancelled, s.clock.Now())
			record.Status = transition.NewStatus
			record.CompletedAt = transition.CompletedAt
			if err := s.execRepo.Save(ctx, record); err != nil {
				return err
			}
			return s.triggerRepo.DisableForExecution(ctx, record.ID)
		}

		name := coreexec.PipelineOrder[i]
		record.CurrentStep = name
		started := s.clock.Now()

		var result string
		var stepErr error
		switch name {
		case primary.StepValidatePrerequisites:
			result, stepErr = s.stepValidatePrerequisites(strategy, item, profile, started)
		case primary.StepAcquireFreshContext:
			item, result, stepErr = s.stepAcquireFreshContext(ctx, record)
		case primary.StepPerformAction:
			result, stepErr = s.stepPerformAction(ctx, record, strategy)
		case primary.StepAwaitResponse:
			result, stepErr = s.stepAwaitResponse(ctx, record)
		}

		done := s.clock.Now()
		if stepErr != nil {
			appendStep(record, name, primary.StepStatusFailed, started, &done, "", stepErr.Error())

			var ext *ExternalServiceError
			if errors.As(stepErr, &ext) {
				// Transient: stay running at this step; caller retries.
				if err := s.execRepo.Save(ctx, record); err != nil {
					return err
				}
				return stepErr
			}
			return s.failPipelineSaved(ctx, record, stepErr)
		}

		appendStep(record, name, primary.StepStatusCompleted, started, &done, result, "")
		if err := s.execRepo.Save(ctx, record); err != nil {
			return err
		}
	}

	s.notifier.Notify(ctx, record.SubjectID,
		fmt.Sprintf("Dispute %s submitted; follow-up scheduled in %d days if no response", record.ID, s.cfg.FollowUpDays))
	return nil
}

func (s *ExecutionServiceImpl) stepValidatePrerequisites(strategy *catalog.Strategy, item *secondary.Item, profile *secondary.SubjectProfile, now time.Time) (string, error) {
	for _, name := range strategy.Prerequisites {
		if !s.predicates.Evaluate(name, item, profile, now) {
			return "", fmt.Errorf("prerequisite %q unmet for item %s", name, item.ID)
		}
	}
	if !strategy.Targets(item.Type) {
		return "", fmt.Errorf("strategy %s does not target %s items", strategy.ID, item.Type)
	}
	return fmt.Sprintf("%d prerequisites satisfied", len(strategy.Prerequisites)), nil
}

func (s *ExecutionServiceImpl) stepAcquireFreshContext(ctx context.Context, record *secondary.ExecutionRecord) (*secondary.Item, string, error) {
	item, err := s.store.GetItem(ctx, record.ItemID)
	if err != nil {
		return nil, "", &ExternalServiceError{Op: "acquire-fresh-context", Err: err}
	}
	return item, fmt.Sprintf("item %s refreshed (status: %s)", item.ID, item.PaymentStatus), nil
}

func (s *ExecutionServiceImpl) stepPerformAction(ctx context.Context, record *secondary.ExecutionRecord, strategy *catalog.Strategy) (string, error) {
	submitCtx, cancel := context.WithTimeout(ctx, s.cfg.SubmitTimeout)
	defer cancel()

	receipt, err := s.submitter.Submit(submitCtx, secondary.Action{
		Kind:        secondary.ActionDispute,
		ExecutionID: record.ID,
		SubjectID:   record.SubjectID,
		ItemID:      record.ItemID,
		StrategyID:  record.StrategyID,
		Round:       record.Round,
		Summary:     fmt.Sprintf("%s against item %s", strategy.Name, record.ItemID),
	})
	if err != nil {
		return "", &ExternalServiceError{Op: "perform-action", Err: err}
	}

	record.SubmissionReceipt = receipt.Ref
	record.SubmittedAt = &receipt.SubmittedAt
	return "submitted, receipt " + receipt.Ref, nil
}

// stepAwaitResponse arms the follow-up timer; the execution then parks in
// the awaiting-response sub-state until a response or the scheduler moves it.
func (s *ExecutionServiceImpl) stepAwaitResponse(ctx context.Context, record *secondary.ExecutionRecord) (string, error) {
	dueAt := record.SubmittedAt.AddDate(0, 0, s.cfg.FollowUpDays)
	trigger := &secondary.TriggerRecord{
		ID:          uuid.NewString(),
		ExecutionID: record.ID,
		Type:        secondary.TriggerFollowUp,
		DueAt:       dueAt,
		Enabled:     true,
	}
	if err := s.triggerRepo.Schedule(ctx, trigger); err != nil {
		return "", fmt.Errorf("failed to schedule follow-up trigger: %w", err)
	}
	return fmt.Sprintf("awaiting response; follow-up due %s", dueAt.Format(time.DateOnly)), nil
}

// recommendNext asks the scoring engine for the next strategy to try and
// stores the answer on the execution. Zero recommendations is a valid
// outcome and leaves NextStrategyID empty.
func (s *ExecutionServiceImpl) recommendNext(ctx context.Context, record *secondary.ExecutionRecord) {
	started := s.clock.Now()
	record.CurrentStep = primary.StepRecommendNext

	recs, err := s.selection.Recommend(ctx, primary.RecommendRequest{
		ItemID:    record.ItemID,
		SubjectID: record.SubjectID,
		Limit:     1,
	})
	done := s.clock.Now()
	if err != nil {
		appendStep(record, primary.StepRecommendNext, primary.StepStatusFailed, started, &done, "", err.Error())
		return
	}

	if len(recs) == 0 {
		appendStep(record, primary.StepRecommendNext, primary.StepStatusCompleted, started, &done, "no further strategies applicable", "")
		return
	}

	record.NextStrategyID = recs[0].StrategyID
	appendStep(record, primary.StepRecommendNext, primary.StepStatusCompleted, started, &done,
		fmt.Sprintf("next recommended strategy: %s (%.0f%% adjusted)", recs[0].StrategyID, recs[0].AdjustedSuccessProbability*100), "")
}

func (s *ExecutionServiceImpl) failPipeline(ctx context.Context, record *secondary.ExecutionRecord, step string, cause error) error {
	now := s.clock.Now()
	appendStep(record, step, primary.StepStatusFailed, now, &now, "", cause.Error())
	return s.failPipelineSaved(ctx, record, cause)
}

// failPipelineSaved marks the execution failed after the failing step has
// already been appended, and disables any pending trigger.
func (s *ExecutionServiceImpl) failPipelineSaved(ctx context.Context, record *secondary.ExecutionRecord, cause error) error {
	transition := coreexec.ApplyStatusTransition(primary.ExecutionStatusFailed, s.clock.Now())
	record.Status = transition.NewStatus
	record.CompletedAt = transition.CompletedAt
	if err := s.execRepo.Save(ctx, record); err != nil {
		return err
	}
	if err := s.triggerRepo.DisableForExecution(ctx, record.ID); err != nil {
		return fmt.Errorf("failed to disable triggers: %w", err)
	}
	return cause
}

// stateContext projects the record fields the transition guards evaluate.
func stateContext(record *secondary.ExecutionRecord) coreexec.StateContext {
	lastFailed := len(record.Steps) > 0 && record.Steps[len(record.Steps)-1].Status == primary.StepStatusFailed
	return coreexec.StateContext{
		ExecutionID:    record.ID,
		Status:         record.Status,
		CurrentStep:    record.CurrentStep,
		LastStepFailed: lastFailed,
	}
}

func appendStep(record *secondary.ExecutionRecord, name, status string, started time.Time, completed *time.Time, result, stepErr string) {
	record.Steps = append(record.Steps, secondary.StepRecord{
		Seq:         len(record.Steps) + 1,
		Name:        name,
		Status:      status,
		StartedAt:   started,
		CompletedAt: completed,
		Result:      result,
		Error:       stepErr,
	})
}

func recordToExecution(r *secondary.ExecutionRecord) *primary.Execution {
	steps := make([]primary.Step, len(r.Steps))
	for i, st := range r.Steps {
		steps[i] = primary.Step{
			Seq:         st.Seq,
			Name:        st.Name,
			Status:      st.Status,
			StartedAt:   st.StartedAt,
			CompletedAt: st.CompletedAt,
			Result:      st.Result,
			Error:       st.Error,
		}
	}
	return &primary.Execution{
		ID:                 r.ID,
		ItemID:             r.ItemID,
		StrategyID:         r.StrategyID,
		SubjectID:          r.SubjectID,
		Status:             r.Status,
		CurrentStep:        r.CurrentStep,
		Round:              r.Round,
		NextStrategyID:     r.NextStrategyID,
		SubmissionReceipt:  r.SubmissionReceipt,
		SubmittedAt:        r.SubmittedAt,
		ResponseRecordedAt: r.ResponseRecordedAt,
		CreatedAt:          r.CreatedAt,
		CompletedAt:        r.CompletedAt,
		Steps:              steps,
	}
}

// Ensure ExecutionServiceImpl implements the interface
var _ primary.ExecutionService = (*ExecutionServiceImpl)(nil)
