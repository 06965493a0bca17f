// Package service registers and reads land records. Ownership, the transfer
// lock and the transfer history are changed only by the transfer workflow.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"malpot/internal/land/models"
	"malpot/internal/platform/metrics"
	id "malpot/pkg/domain"
	dErrors "malpot/pkg/domain-errors"
	"malpot/pkg/platform/audit"
	"malpot/pkg/platform/retry"
	"malpot/pkg/platform/sentinel"
	"malpot/pkg/platform/tracing"
	"malpot/pkg/platform/tx"
	"malpot/pkg/requestcontext"
)

const tracerName = "malpot/land"

type Store interface {
	Create(ctx context.Context, land *models.Land) error
	FindByID(ctx context.Context, landID id.LandID) (*models.Land, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// RegisterCommand is the input for Register. CreatedBy comes from the
// request context.
type RegisterCommand struct {
	ParcelNumber      string
	Area              string
	AreaUnit          string
	Location          models.Location
	LandType          string
	Owner             models.Owner
	OwnershipDocument models.DocumentRef
}

type Service struct {
	lands   Store
	tx      tx.Runner
	audit   AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
	retry   retry.Policy
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

func New(lands Store, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		lands:  lands,
		tx:     runner,
		logger: slog.Default(),
		retry:  retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an unlocked land with an empty transfer history.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (_ *models.Land, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "land.register",
		attribute.String("land.parcel_number", cmd.ParcelNumber))
	defer func() { tracing.End(span, err) }()

	createdBy := requestcontext.UserID(ctx)
	if createdBy.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	land, err := models.NewLand(id.NewLandID(), models.NewLandParams{
		ParcelNumber:      cmd.ParcelNumber,
		Area:              cmd.Area,
		AreaUnit:          cmd.AreaUnit,
		Location:          cmd.Location,
		LandType:          cmd.LandType,
		Owner:             cmd.Owner,
		OwnershipDocument: cmd.OwnershipDocument,
		CreatedBy:         createdBy,
	}, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.lands.Create(txCtx, land); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "land with this parcel number is already registered")
			}
			return wrapStoreErr(err, "failed to register land")
		}
		return s.emit(txCtx, audit.Event{
			Action:        string(audit.EventLandRegistered),
			AggregateType: "land",
			AggregateID:   land.ID.String(),
			LandID:        land.ID,
		})
	})
	if err != nil {
		s.logger.WarnContext(ctx, "land registration failed",
			"parcel_number", land.ParcelNumber,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementLandsRegistered()
	}
	s.logger.InfoContext(ctx, "land registered",
		"land_id", land.ID,
		"parcel_number", land.ParcelNumber,
		"request_id", requestcontext.RequestID(ctx),
	)
	return land, nil
}

// Get returns a land record.
func (s *Service) Get(ctx context.Context, landID id.LandID) (_ *models.Land, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "land.get", attribute.String("land.id", landID.String()))
	defer func() { tracing.End(span, err) }()

	land, err := retry.Read(ctx, s.retry, func(ctx context.Context) (land *models.Land, err error) {
		err = s.tx.View(ctx, func(viewCtx context.Context) error {
			land, err = s.lands.FindByID(viewCtx, landID)
			return err
		})
		return land, err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "land not found")
		}
		return nil, wrapStoreErr(err, "failed to load land")
	}
	return land, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.audit == nil {
		return nil
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to record audit event")
	}
	return nil
}

func wrapStoreErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "storage temporarily unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
