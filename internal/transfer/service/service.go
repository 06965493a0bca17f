// Package service implements the ownership transfer workflow: apply locks a
// land and opens a Pending transfer, approve moves ownership, reject closes
// the transfer and releases the lock. Every operation runs in one
// transaction so the transfer record and the land record change together.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	landmodels "malpot/internal/land/models"
	"malpot/internal/transfer/metrics"
	"malpot/internal/transfer/models"
	usermodels "malpot/internal/users/models"
	id "malpot/pkg/domain"
	dErrors "malpot/pkg/domain-errors"
	"malpot/pkg/platform/audit"
	"malpot/pkg/platform/retry"
	"malpot/pkg/platform/sentinel"
	"malpot/pkg/platform/tracing"
	"malpot/pkg/platform/tx"
	"malpot/pkg/requestcontext"
)

const tracerName = "malpot/transfer"

// LandStore is the slice of the land store the workflow mutates. Execute must
// run validate and mutate under a per-land lock.
type LandStore interface {
	FindByID(ctx context.Context, landID id.LandID) (*landmodels.Land, error)
	Execute(ctx context.Context, landID id.LandID, validate func(*landmodels.Land) error, mutate func(*landmodels.Land)) (*landmodels.Land, error)
	ReleaseTransferLock(ctx context.Context, landID id.LandID, now time.Time) error
}

type TransferStore interface {
	Create(ctx context.Context, transfer *models.Transfer) error
	FindByID(ctx context.Context, transferID id.TransferID) (*models.Transfer, error)
	Execute(ctx context.Context, transferID id.TransferID, validate func(*models.Transfer) error, mutate func(*models.Transfer)) (*models.Transfer, error)
	ListByLand(ctx context.Context, landID id.LandID) ([]*models.Transfer, error)
}

// ReviewerDirectory resolves reviewer display details for history.
type ReviewerDirectory interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// RejectPolicy selects how Reject treats transfers that are no longer
// Pending.
type RejectPolicy string

const (
	// RejectStrict refuses to reject a decided transfer.
	RejectStrict RejectPolicy = "strict"
	// RejectLegacy rejects whatever the current status, overwriting an
	// earlier decision.
	RejectLegacy RejectPolicy = "legacy"
)

const defaultReviewerConcurrency = 8

// ApplyCommand is the input for Apply. The applicant comes from the request
// context.
type ApplyCommand struct {
	LandID        id.LandID
	PreviousOwner landmodels.Owner
	NewOwner      landmodels.Owner
	Documents     models.Documents
}

// ReviewerInfo is the display projection of the user who decided a
// transfer.
type ReviewerInfo struct {
	ID      id.UserID `json:"id"`
	Name    string    `json:"name"`
	Contact string    `json:"contact"`
}

// TransferRecord is one entry of a land's transfer history.
type TransferRecord struct {
	*models.Transfer
	Reviewer *ReviewerInfo `json:"reviewer,omitempty"`
}

type Service struct {
	lands               LandStore
	transfers           TransferStore
	tx                  tx.Runner
	reviewers           ReviewerDirectory
	audit               AuditPublisher
	logger              *slog.Logger
	metrics             *metrics.Metrics
	retry               retry.Policy
	rejectPolicy        RejectPolicy
	reviewerConcurrency int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.audit = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Service) {
		s.retry = p
	}
}

func WithReviewerDirectory(d ReviewerDirectory) Option {
	return func(s *Service) {
		s.reviewers = d
	}
}

// WithRejectPolicy sets the reject policy. Unknown values keep RejectStrict.
func WithRejectPolicy(p RejectPolicy) Option {
	return func(s *Service) {
		if p == RejectLegacy || p == RejectStrict {
			s.rejectPolicy = p
		}
	}
}

// WithReviewerConcurrency bounds parallel reviewer lookups in History.
func WithReviewerConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.reviewerConcurrency = n
		}
	}
}

func New(lands LandStore, transfers TransferStore, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		lands:               lands,
		transfers:           transfers,
		tx:                  runner,
		logger:              slog.Default(),
		retry:               retry.DefaultPolicy(),
		rejectPolicy:        RejectStrict,
		reviewerConcurrency: defaultReviewerConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply opens a transfer for a land. The lock check, the owner check and the
// document check run against the locked land row; the lock and the Pending
// transfer are committed together.
func (s *Service) Apply(ctx context.Context, cmd ApplyCommand) (_ *models.Transfer, err error) {
	start := time.Now()
	ctx, span := tracing.Start(ctx, tracerName, "transfer.apply",
		attribute.String("land.id", cmd.LandID.String()))
	defer func() {
		tracing.End(span, err)
		s.observe("apply", err, start)
	}()

	applicant := requestcontext.UserID(ctx)
	if applicant.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	if _, err := retry.Read(ctx, s.retry, func(ctx context.Context) (land *landmodels.Land, err error) {
		err = s.tx.View(ctx, func(viewCtx context.Context) error {
			land, err = s.lands.FindByID(viewCtx, cmd.LandID)
			return err
		})
		return land, err
	}); err != nil {
		return nil, translateStoreErr(err, "land not found", "failed to load land")
	}

	now := requestcontext.Now(ctx)
	params := models.NewTransferParams{
		LandID:        cmd.LandID,
		PreviousOwner: cmd.PreviousOwner,
		NewOwner:      cmd.NewOwner,
		Documents:     cmd.Documents,
		CreatedBy:     applicant,
	}

	var transfer *models.Transfer
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		_, err := s.lands.Execute(txCtx, cmd.LandID,
			func(l *landmodels.Land) error {
				if err := l.CanLockForTransfer(cmd.PreviousOwner.NationalID); err != nil {
					return err
				}
				return params.ValidateApplication()
			},
			func(l *landmodels.Land) {
				l.ApplyTransferLock(now)
			},
		)
		if err != nil {
			return translateStoreErr(err, "land not found", "failed to lock land")
		}

		t, err := models.NewTransfer(id.NewTransferID(), params, now)
		if err != nil {
			return err
		}
		if err := s.transfers.Create(txCtx, t); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "transfer already in progress for this land")
			}
			return translateStoreErr(err, "land not found", "failed to create transfer")
		}
		transfer = t

		return s.emit(txCtx, audit.EventTransferApplied, applicant, t)
	})
	if err != nil {
		s.logFailure(ctx, "transfer application failed", err, "land_id", cmd.LandID)
		return nil, err
	}

	s.logger.InfoContext(ctx, "transfer applied",
		"transfer_id", transfer.ID,
		"land_id", transfer.LandID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return transfer, nil
}

// Approve moves ownership to the transfer's new owner. The transfer status,
// the land owner, the land history and the lock flag change in one
// transaction; on any failure neither record changes.
func (s *Service) Approve(ctx context.Context, transferID id.TransferID, reviewerID id.UserID) (_ *models.Transfer, err error) {
	start := time.Now()
	ctx, span := tracing.Start(ctx, tracerName, "transfer.approve",
		attribute.String("transfer.id", transferID.String()))
	defer func() {
		tracing.End(span, err)
		s.observe("approve", err, start)
	}()

	if reviewerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "reviewer required")
	}
	now := requestcontext.Now(ctx)

	var approved *models.Transfer
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		t, err := s.transfers.Execute(txCtx, transferID,
			(*models.Transfer).CanDecide,
			func(t *models.Transfer) {
				t.ApplyApproval(reviewerID, now)
			},
		)
		if err != nil {
			return translateDecisionErr(err, "transfer not found")
		}

		_, err = s.lands.Execute(txCtx, t.LandID, nil, func(l *landmodels.Land) {
			l.ApplyOwnershipTransfer(t.NewOwner, t.ID, now)
		})
		if err != nil {
			return translateDecisionErr(err, "land not found")
		}
		approved = t

		return s.emit(txCtx, audit.EventTransferApproved, reviewerID, t)
	})
	if err != nil {
		s.logFailure(ctx, "transfer approval failed", err, "transfer_id", transferID)
		return nil, err
	}

	s.logger.InfoContext(ctx, "transfer approved",
		"transfer_id", approved.ID,
		"land_id", approved.LandID,
		"reviewer_id", reviewerID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return approved, nil
}

// Reject closes a transfer and clears the land's lock flag. Under
// RejectStrict only a Pending transfer can be rejected; under RejectLegacy
// any transfer can, and the lock is cleared even if it guards another
// transfer.
func (s *Service) Reject(ctx context.Context, transferID id.TransferID, reviewerID id.UserID, reason string) (_ *models.Transfer, err error) {
	start := time.Now()
	ctx, span := tracing.Start(ctx, tracerName, "transfer.reject",
		attribute.String("transfer.id", transferID.String()),
		attribute.String("transfer.reject_policy", string(s.rejectPolicy)))
	defer func() {
		tracing.End(span, err)
		s.observe("reject", err, start)
	}()

	if reviewerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "reviewer required")
	}
	now := requestcontext.Now(ctx)

	var validate func(*models.Transfer) error
	if s.rejectPolicy == RejectStrict {
		validate = (*models.Transfer).CanDecide
	}

	var rejected *models.Transfer
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		t, err := s.transfers.Execute(txCtx, transferID, validate, func(t *models.Transfer) {
			t.ApplyRejection(reviewerID, reason, now)
		})
		if err != nil {
			return translateDecisionErr(err, "transfer not found")
		}

		if err := s.lands.ReleaseTransferLock(txCtx, t.LandID, now); err != nil {
			if !errors.Is(err, sentinel.ErrNotFound) {
				return translateDecisionErr(err, "land not found")
			}
			s.logger.WarnContext(ctx, "rejected transfer references a missing land",
				"transfer_id", t.ID,
				"land_id", t.LandID,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		rejected = t

		return s.emit(txCtx, audit.EventTransferRejected, reviewerID, t)
	})
	if err != nil {
		s.logFailure(ctx, "transfer rejection failed", err, "transfer_id", transferID)
		return nil, err
	}

	s.logger.InfoContext(ctx, "transfer rejected",
		"transfer_id", rejected.ID,
		"land_id", rejected.LandID,
		"reviewer_id", reviewerID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return rejected, nil
}

// Get returns a single transfer.
func (s *Service) Get(ctx context.Context, transferID id.TransferID) (_ *models.Transfer, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "transfer.get",
		attribute.String("transfer.id", transferID.String()))
	defer func() { tracing.End(span, err) }()

	t, err := retry.Read(ctx, s.retry, func(ctx context.Context) (t *models.Transfer, err error) {
		err = s.tx.View(ctx, func(viewCtx context.Context) error {
			t, err = s.transfers.FindByID(viewCtx, transferID)
			return err
		})
		return t, err
	})
	if err != nil {
		return nil, translateStoreErr(err, "transfer not found", "failed to load transfer")
	}
	return t, nil
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, actor id.UserID, t *models.Transfer) error {
	if s.audit == nil {
		return nil
	}
	e := audit.Event{
		ActorID:       actor,
		Action:        string(event),
		AggregateType: "transfer",
		AggregateID:   t.ID.String(),
		LandID:        t.LandID,
		Decision:      string(t.Status),
		Reason:        t.RejectionReason,
	}
	if err := s.audit.Emit(ctx, e); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to record audit event")
	}
	return nil
}

func (s *Service) observe(operation string, err error, start time.Time) {
	outcome := "ok"
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
	}
	s.metrics.Observe(operation, outcome, time.Since(start))
}

func (s *Service) logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	attrs = append(attrs, "error", err, "request_id", requestcontext.RequestID(ctx))
	if tracing.IsBusinessError(err) {
		s.logger.InfoContext(ctx, msg, attrs...)
		return
	}
	s.logger.ErrorContext(ctx, msg, attrs...)
}

func isDomainError(err error) bool {
	var de *dErrors.Error
	return errors.As(err, &de)
}

// translateStoreErr maps sentinel store errors for reads and apply.
func translateStoreErr(err error, notFoundMsg, msg string) error {
	switch {
	case isDomainError(err):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "storage temporarily unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

// translateDecisionErr maps store errors inside approve and reject. Any
// failure that is not a domain outcome rolls the decision back and is
// reported as unavailable so the caller may retry.
func translateDecisionErr(err error, notFoundMsg string) error {
	switch {
	case isDomainError(err):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "transfer decision could not be stored; no changes were applied")
	}
}
