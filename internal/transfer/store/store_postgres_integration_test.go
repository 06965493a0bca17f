//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	landmodels "malpot/internal/land/models"
	landstore "malpot/internal/land/store"
	"malpot/internal/transfer/models"
	"malpot/internal/transfer/store"
	id "malpot/pkg/domain"
	"malpot/pkg/platform/sentinel"
	"malpot/pkg/platform/tx"
	"malpot/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	lands     *landstore.PostgresStore
	transfers *store.PostgresStore
	land      *landmodels.Land
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.lands = landstore.NewPostgres(s.postgres.DB)
	s.transfers = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "outbox", "ownership_transfers", "lands"))

	land, err := landmodels.NewLand(id.NewLandID(), landmodels.NewLandParams{
		ParcelNumber:      "L1",
		Area:              "5",
		AreaUnit:          "ropani",
		Location:          landmodels.Location{District: "Kathmandu", Ward: "4"},
		LandType:          "residential",
		Owner:             landmodels.Owner{Name: "A", NationalID: "111"},
		OwnershipDocument: landmodels.DocumentRef{URL: "https://cdn.example.com/l1.pdf"},
		CreatedBy:         id.NewUserID(),
	}, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.lands.Create(ctx, land))
	s.land = land
}

func (s *PostgresStoreSuite) newTransfer(at time.Time) *models.Transfer {
	doc := landmodels.DocumentRef{PublicID: "doc", URL: "https://cdn.example.com/doc.pdf"}
	t, err := models.NewTransfer(id.NewTransferID(), models.NewTransferParams{
		LandID:        s.land.ID,
		PreviousOwner: s.land.Owner,
		NewOwner:      landmodels.Owner{Name: "B", NationalID: "222"},
		Documents:     models.Documents{Citizenship: doc, SaleDeed: doc, TaxClearance: doc},
		CreatedBy:     id.NewUserID(),
	}, at.UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	return t
}

func (s *PostgresStoreSuite) TestOnePendingPerLand() {
	ctx := context.Background()
	s.Require().NoError(s.transfers.Create(ctx, s.newTransfer(time.Now())))
	s.ErrorIs(s.transfers.Create(ctx, s.newTransfer(time.Now())), sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestApproveAcrossBothTables() {
	ctx := context.Background()
	transfer := s.newTransfer(time.Now())
	s.Require().NoError(s.transfers.Create(ctx, transfer))
	reviewer := id.NewUserID()

	err := tx.NewSQL(s.postgres.DB).RunInTx(ctx, func(ctx context.Context) error {
		approved, err := s.transfers.Execute(ctx, transfer.ID, (*models.Transfer).CanDecide, func(t *models.Transfer) {
			t.ApplyApproval(reviewer, time.Now())
		})
		if err != nil {
			return err
		}
		_, err = s.lands.Execute(ctx, s.land.ID, nil, func(l *landmodels.Land) {
			l.ApplyOwnershipTransfer(approved.NewOwner, approved.ID, time.Now())
		})
		return err
	})
	s.Require().NoError(err)

	found, err := s.transfers.FindByID(ctx, transfer.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, found.Status)
	s.Require().NotNil(found.VerifiedBy)
	s.Equal(reviewer, *found.VerifiedBy)

	land, err := s.lands.FindByID(ctx, s.land.ID)
	s.Require().NoError(err)
	s.Equal(id.NationalID("222"), land.Owner.NationalID)
	s.Equal([]id.TransferID{transfer.ID}, land.TransferHistory)
}

func (s *PostgresStoreSuite) TestListByLandNewestFirst() {
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	older := s.newTransfer(base)
	older.ApplyRejection(id.NewUserID(), "unsigned deed", base)
	s.Require().NoError(s.transfers.Create(ctx, older))
	newer := s.newTransfer(base.Add(30 * time.Minute))
	s.Require().NoError(s.transfers.Create(ctx, newer))

	list, err := s.transfers.ListByLand(ctx, s.land.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newer.ID, list[0].ID)
	s.Equal("unsigned deed", list[1].RejectionReason)

	empty, err := s.transfers.ListByLand(ctx, id.NewLandID())
	s.Require().NoError(err)
	s.Empty(empty)
}
