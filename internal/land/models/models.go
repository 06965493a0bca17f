package models

import (
	"slices"
	"strings"
	"time"

	id "malpot/pkg/domain"
	dErrors "malpot/pkg/domain-errors"
)

// DocumentRef is an opaque reference to a document held by the upload
// service. Only its presence is ever checked.
type DocumentRef struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// Present reports whether the reference points at a stored document.
func (d DocumentRef) Present() bool {
	return strings.TrimSpace(d.URL) != ""
}

// Owner identifies a land owner by name and national (citizenship) id.
type Owner struct {
	Name       string        `json:"name"`
	NationalID id.NationalID `json:"national_id"`
}

// Validate checks that both name and national id are set.
func (o Owner) Validate(field string) error {
	if strings.TrimSpace(o.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, field+".name is required")
	}
	if o.NationalID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, field+".national_id is required")
	}
	return nil
}

type Location struct {
	District string `json:"district"`
	Ward     string `json:"ward"`
}

// Land is a registered parcel.
//
// Invariants:
//   - IsTransferLocked is true exactly while a Pending transfer exists
//   - TransferHistory is append-only and holds approved transfers only
//   - (District, Ward, ParcelNumber) identifies at most one land
//
// Owner, IsTransferLocked and TransferHistory change only through the
// Apply* methods below.
type Land struct {
	ID                id.LandID       `json:"id"`
	ParcelNumber      string          `json:"parcel_number"`
	Area              string          `json:"area"`
	AreaUnit          string          `json:"area_unit"`
	Location          Location        `json:"location"`
	LandType          string          `json:"land_type"`
	Owner             Owner           `json:"owner"`
	OwnershipDocument DocumentRef     `json:"ownership_document"`
	IsTransferLocked  bool            `json:"is_transfer_locked"`
	TransferHistory   []id.TransferID `json:"transfer_history"`
	CreatedBy         id.UserID       `json:"created_by"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewLandParams carries registration input.
type NewLandParams struct {
	ParcelNumber      string
	Area              string
	AreaUnit          string
	Location          Location
	LandType          string
	Owner             Owner
	OwnershipDocument DocumentRef
	CreatedBy         id.UserID
}

// NewLand validates registration input and returns an unlocked land with an
// empty transfer history.
func NewLand(landID id.LandID, p NewLandParams, now time.Time) (*Land, error) {
	p.ParcelNumber = strings.TrimSpace(p.ParcelNumber)
	p.Area = strings.TrimSpace(p.Area)
	p.AreaUnit = strings.TrimSpace(p.AreaUnit)
	p.Location.District = strings.TrimSpace(p.Location.District)
	p.Location.Ward = strings.TrimSpace(p.Location.Ward)
	p.LandType = strings.TrimSpace(p.LandType)
	p.Owner.Name = strings.TrimSpace(p.Owner.Name)

	switch {
	case p.ParcelNumber == "":
		return nil, dErrors.New(dErrors.CodeValidation, "parcel number is required")
	case p.Area == "":
		return nil, dErrors.New(dErrors.CodeValidation, "area is required")
	case p.AreaUnit == "":
		return nil, dErrors.New(dErrors.CodeValidation, "area unit is required")
	case p.Location.District == "":
		return nil, dErrors.New(dErrors.CodeValidation, "district is required")
	case p.Location.Ward == "":
		return nil, dErrors.New(dErrors.CodeValidation, "ward is required")
	case p.LandType == "":
		return nil, dErrors.New(dErrors.CodeValidation, "land type is required")
	}
	if err := p.Owner.Validate("owner"); err != nil {
		return nil, err
	}
	if !p.OwnershipDocument.Present() {
		return nil, dErrors.New(dErrors.CodeValidation, "ownership document required")
	}

	return &Land{
		ID:                landID,
		ParcelNumber:      p.ParcelNumber,
		Area:              p.Area,
		AreaUnit:          p.AreaUnit,
		Location:          p.Location,
		LandType:          p.LandType,
		Owner:             p.Owner,
		OwnershipDocument: p.OwnershipDocument,
		TransferHistory:   []id.TransferID{},
		CreatedBy:         p.CreatedBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// CanLockForTransfer checks that a transfer may be opened by the claimed
// previous owner. The lock is checked first, then ownership.
func (l *Land) CanLockForTransfer(previousOwner id.NationalID) error {
	if l.IsTransferLocked {
		return dErrors.New(dErrors.CodeConflict, "transfer already in progress for this land")
	}
	if l.Owner.NationalID != previousOwner {
		return dErrors.New(dErrors.CodeMismatch, "previous owner does not match land record")
	}
	return nil
}

// ApplyTransferLock marks the land as having a pending transfer.
// Call CanLockForTransfer first.
func (l *Land) ApplyTransferLock(now time.Time) {
	l.IsTransferLocked = true
	l.UpdatedAt = now
}

// ApplyOwnershipTransfer records an approved transfer: the owner changes,
// the transfer joins the history and the lock is released.
func (l *Land) ApplyOwnershipTransfer(newOwner Owner, transferID id.TransferID, now time.Time) {
	l.Owner = newOwner
	l.TransferHistory = append(l.TransferHistory, transferID)
	l.IsTransferLocked = false
	l.UpdatedAt = now
}

// ApplyTransferUnlock clears the lock without touching ownership.
func (l *Land) ApplyTransferUnlock(now time.Time) {
	l.IsTransferLocked = false
	l.UpdatedAt = now
}

// Clone returns a deep copy safe to hand out of a store.
func (l *Land) Clone() *Land {
	if l == nil {
		return nil
	}
	c := *l
	c.TransferHistory = slices.Clone(l.TransferHistory)
	if c.TransferHistory == nil {
		c.TransferHistory = []id.TransferID{}
	}
	return &c
}
