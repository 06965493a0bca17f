package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "malpot/pkg/domain"
	dErrors "malpot/pkg/domain-errors"
	"malpot/pkg/testutil"
)

func validParams() NewLandParams {
	return NewLandParams{
		ParcelNumber:      "L1",
		Area:              "5",
		AreaUnit:          "ropani",
		Location:          Location{District: "Kathmandu", Ward: "4"},
		LandType:          "residential",
		Owner:             Owner{Name: "A", NationalID: "111"},
		OwnershipDocument: DocumentRef{PublicID: "malpot/land-documents/l1", URL: "https://cdn.example.com/l1.pdf"},
		CreatedBy:         id.UserID(uuid.New()),
	}
}

func TestNewLand(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	testutil.Given(t, "valid registration input", func(t *testing.T) {
		land, err := NewLand(id.NewLandID(), validParams(), now)
		require.NoError(t, err)

		testutil.Then(t, "the land starts unlocked with empty history", func(t *testing.T) {
			assert.False(t, land.IsTransferLocked)
			assert.NotNil(t, land.TransferHistory)
			assert.Empty(t, land.TransferHistory)
			assert.Equal(t, now, land.CreatedAt)
		})
	})

	tests := []struct {
		name    string
		mutate  func(p *NewLandParams)
		message string
	}{
		{"missing parcel", func(p *NewLandParams) { p.ParcelNumber = " " }, "parcel number is required"},
		{"missing district", func(p *NewLandParams) { p.Location.District = "" }, "district is required"},
		{"missing ward", func(p *NewLandParams) { p.Location.Ward = "" }, "ward is required"},
		{"missing owner name", func(p *NewLandParams) { p.Owner.Name = "" }, "owner.name is required"},
		{"missing owner national id", func(p *NewLandParams) { p.Owner.NationalID = "" }, "owner.national_id is required"},
		{"missing document", func(p *NewLandParams) { p.OwnershipDocument = DocumentRef{} }, "ownership document required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			_, err := NewLand(id.NewLandID(), p, now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tt.message, dErrors.MessageOf(err))
		})
	}
}

func TestCanLockForTransfer(t *testing.T) {
	land, err := NewLand(id.NewLandID(), validParams(), time.Now())
	require.NoError(t, err)

	t.Run("matching owner on unlocked land", func(t *testing.T) {
		assert.NoError(t, land.CanLockForTransfer("111"))
	})

	t.Run("different owner is a mismatch", func(t *testing.T) {
		err := land.CanLockForTransfer("999")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMismatch))
	})

	t.Run("locked land conflicts before ownership is checked", func(t *testing.T) {
		locked := land.Clone()
		locked.ApplyTransferLock(time.Now())
		err := locked.CanLockForTransfer("999")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestApplyOwnershipTransfer(t *testing.T) {
	land, err := NewLand(id.NewLandID(), validParams(), time.Now())
	require.NoError(t, err)
	land.ApplyTransferLock(time.Now())

	transferID := id.NewTransferID()
	newOwner := Owner{Name: "B", NationalID: "222"}
	land.ApplyOwnershipTransfer(newOwner, transferID, time.Now())

	assert.Equal(t, newOwner, land.Owner)
	assert.False(t, land.IsTransferLocked)
	assert.Equal(t, []id.TransferID{transferID}, land.TransferHistory)
}

func TestCloneIsIndependent(t *testing.T) {
	land, err := NewLand(id.NewLandID(), validParams(), time.Now())
	require.NoError(t, err)

	c := land.Clone()
	c.ApplyOwnershipTransfer(Owner{Name: "B", NationalID: "222"}, id.NewTransferID(), time.Now())

	assert.Empty(t, land.TransferHistory)
	assert.Equal(t, "A", land.Owner.Name)
}
