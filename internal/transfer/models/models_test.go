package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	landmodels "malpot/internal/land/models"
	id "malpot/pkg/domain"
	dErrors "malpot/pkg/domain-errors"
)

func doc(name string) landmodels.DocumentRef {
	return landmodels.DocumentRef{PublicID: "malpot/transfer-documents/" + name, URL: "https://cdn.example.com/" + name + ".pdf"}
}

func validParams() NewTransferParams {
	return NewTransferParams{
		LandID:        id.NewLandID(),
		PreviousOwner: landmodels.Owner{Name: "A", NationalID: "111"},
		NewOwner:      landmodels.Owner{Name: "B", NationalID: "222"},
		Documents: Documents{
			Citizenship:  doc("citizenship"),
			SaleDeed:     doc("sale-deed"),
			TaxClearance: doc("tax-clearance"),
		},
		CreatedBy: id.NewUserID(),
	}
}

func TestNewTransfer(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("valid application is pending", func(t *testing.T) {
		tr, err := NewTransfer(id.NewTransferID(), validParams(), now)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, tr.Status)
		assert.Nil(t, tr.VerifiedBy)
		assert.Nil(t, tr.VerifiedAt)
		assert.Equal(t, now, tr.CreatedAt)
	})

	tests := []struct {
		name    string
		mutate  func(p *NewTransferParams)
		message string
	}{
		{"missing citizenship", func(p *NewTransferParams) { p.Documents.Citizenship = landmodels.DocumentRef{} }, "citizenship document required"},
		{"missing sale deed", func(p *NewTransferParams) { p.Documents.SaleDeed.URL = " " }, "sale deed document required"},
		{"missing tax clearance", func(p *NewTransferParams) { p.Documents.TaxClearance = landmodels.DocumentRef{} }, "tax clearance document required"},
		{"missing new owner name", func(p *NewTransferParams) { p.NewOwner.Name = "" }, "new_owner.name is required"},
		{"missing new owner national id", func(p *NewTransferParams) { p.NewOwner.NationalID = "" }, "new_owner.national_id is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			_, err := NewTransfer(id.NewTransferID(), p, now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tt.message, dErrors.MessageOf(err))
		})
	}
}

func TestDecisions(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	reviewer := id.NewUserID()

	t.Run("approval stamps reviewer and time", func(t *testing.T) {
		tr, err := NewTransfer(id.NewTransferID(), validParams(), now)
		require.NoError(t, err)
		require.NoError(t, tr.CanDecide())

		tr.ApplyApproval(reviewer, now)
		assert.Equal(t, StatusApproved, tr.Status)
		require.NotNil(t, tr.VerifiedBy)
		assert.Equal(t, reviewer, *tr.VerifiedBy)
		assert.Equal(t, now, *tr.VerifiedAt)
		assert.Empty(t, tr.RejectionReason)

		err = tr.CanDecide()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("rejection stores the reason", func(t *testing.T) {
		tr, err := NewTransfer(id.NewTransferID(), validParams(), now)
		require.NoError(t, err)

		tr.ApplyRejection(reviewer, "sale deed unsigned", now)
		assert.Equal(t, StatusRejected, tr.Status)
		assert.Equal(t, "sale deed unsigned", tr.RejectionReason)
		assert.Error(t, tr.CanDecide())
	})

	t.Run("clone does not share reviewer pointers", func(t *testing.T) {
		tr, err := NewTransfer(id.NewTransferID(), validParams(), now)
		require.NoError(t, err)
		tr.ApplyApproval(reviewer, now)

		c := tr.Clone()
		*c.VerifiedBy = id.NewUserID()
		assert.Equal(t, reviewer, *tr.VerifiedBy)
	})
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusRejected.IsValid())
	assert.False(t, Status("Cancelled").IsValid())
}
