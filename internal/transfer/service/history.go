package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"malpot/internal/transfer/models"
	id "malpot/pkg/domain"
	"malpot/pkg/platform/retry"
	"malpot/pkg/platform/sentinel"
	"malpot/pkg/platform/tracing"
	"malpot/pkg/requestcontext"
)

// History returns every transfer of a land, newest first, with the deciding
// reviewer resolved where one is set. A land without transfers yields an
// empty slice. Reviewers that cannot be resolved are left nil.
func (s *Service) History(ctx context.Context, landID id.LandID) (_ []TransferRecord, err error) {
	start := time.Now()
	ctx, span := tracing.Start(ctx, tracerName, "transfer.history",
		attribute.String("land.id", landID.String()))
	defer func() {
		tracing.End(span, err)
		s.observe("history", err, start)
	}()

	transfers, err := retry.Read(ctx, s.retry, func(ctx context.Context) ([]*models.Transfer, error) {
		var list []*models.Transfer
		err := s.tx.View(ctx, func(viewCtx context.Context) error {
			var err error
			list, err = s.transfers.ListByLand(viewCtx, landID)
			return err
		})
		return list, err
	})
	if err != nil {
		return nil, translateStoreErr(err, "land not found", "failed to list transfers")
	}

	records := make([]TransferRecord, len(transfers))
	for i, t := range transfers {
		records[i] = TransferRecord{Transfer: t}
	}
	s.resolveReviewers(ctx, records)
	return records, nil
}

// resolveReviewers fills Reviewer for decided transfers. Each distinct
// reviewer is looked up once.
func (s *Service) resolveReviewers(ctx context.Context, records []TransferRecord) {
	if s.reviewers == nil {
		return
	}

	var reviewerIDs []id.UserID
	seen := make(map[id.UserID]bool)
	for _, r := range records {
		if r.VerifiedBy == nil || seen[*r.VerifiedBy] {
			continue
		}
		seen[*r.VerifiedBy] = true
		reviewerIDs = append(reviewerIDs, *r.VerifiedBy)
	}
	if len(reviewerIDs) == 0 {
		return
	}

	resolved := make([]*ReviewerInfo, len(reviewerIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.reviewerConcurrency)
	for i, reviewerID := range reviewerIDs {
		g.Go(func() error {
			user, err := s.reviewers.FindByID(gctx, reviewerID)
			if err != nil {
				s.metrics.IncrementReviewerMiss()
				if !errors.Is(err, sentinel.ErrNotFound) {
					s.logger.WarnContext(ctx, "reviewer lookup failed",
						"reviewer_id", reviewerID,
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
				}
				return nil
			}
			resolved[i] = &ReviewerInfo{ID: user.ID, Name: user.Name, Contact: user.Contact()}
			return nil
		})
	}
	_ = g.Wait()

	byID := make(map[id.UserID]*ReviewerInfo, len(reviewerIDs))
	for i, reviewerID := range reviewerIDs {
		if resolved[i] != nil {
			byID[reviewerID] = resolved[i]
		}
	}
	for i := range records {
		if records[i].VerifiedBy != nil {
			records[i].Reviewer = byID[*records[i].VerifiedBy]
		}
	}
}
