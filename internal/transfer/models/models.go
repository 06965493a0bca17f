package models

import (
	"time"

	landmodels "malpot/internal/land/models"
	id "malpot/pkg/domain"
	dErrors "malpot/pkg/domain-errors"
)

// Status is the lifecycle state of an ownership transfer.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Documents holds the three references every transfer application needs.
type Documents struct {
	Citizenship  landmodels.DocumentRef `json:"citizenship"`
	SaleDeed     landmodels.DocumentRef `json:"sale_deed"`
	TaxClearance landmodels.DocumentRef `json:"tax_clearance"`
}

// Validate reports the first missing document.
func (d Documents) Validate() error {
	switch {
	case !d.Citizenship.Present():
		return dErrors.New(dErrors.CodeValidation, "citizenship document required")
	case !d.SaleDeed.Present():
		return dErrors.New(dErrors.CodeValidation, "sale deed document required")
	case !d.TaxClearance.Present():
		return dErrors.New(dErrors.CodeValidation, "tax clearance document required")
	}
	return nil
}

// Transfer is a request to move a land from its current owner to a new one.
//
// Status moves Pending -> Approved or Pending -> Rejected. VerifiedBy and
// VerifiedAt are set by the decision; RejectionReason only by a rejection.
type Transfer struct {
	ID              id.TransferID    `json:"id"`
	LandID          id.LandID        `json:"land_id"`
	PreviousOwner   landmodels.Owner `json:"previous_owner"`
	NewOwner        landmodels.Owner `json:"new_owner"`
	Documents       Documents        `json:"documents"`
	Status          Status           `json:"status"`
	VerifiedBy      *id.UserID       `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time       `json:"verified_at,omitempty"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	CreatedBy       id.UserID        `json:"created_by"`
	CreatedAt       time.Time        `json:"created_at"`
}

type NewTransferParams struct {
	LandID        id.LandID
	PreviousOwner landmodels.Owner
	NewOwner      landmodels.Owner
	Documents     Documents
	CreatedBy     id.UserID
}

// ValidateApplication checks the documents and the new owner.
func (p NewTransferParams) ValidateApplication() error {
	if err := p.Documents.Validate(); err != nil {
		return err
	}
	return p.NewOwner.Validate("new_owner")
}

// NewTransfer returns a Pending transfer. The previous owner is a snapshot
// of the claimed owner at application time.
func NewTransfer(transferID id.TransferID, p NewTransferParams, now time.Time) (*Transfer, error) {
	if err := p.ValidateApplication(); err != nil {
		return nil, err
	}
	return &Transfer{
		ID:            transferID,
		LandID:        p.LandID,
		PreviousOwner: p.PreviousOwner,
		NewOwner:      p.NewOwner,
		Documents:     p.Documents,
		Status:        StatusPending,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     now,
	}, nil
}

func (t *Transfer) IsPending() bool {
	return t.Status == StatusPending
}

// CanDecide fails unless the transfer is still Pending.
func (t *Transfer) CanDecide() error {
	if !t.IsPending() {
		return dErrors.New(dErrors.CodeConflict, "transfer already processed")
	}
	return nil
}

// ApplyApproval marks the transfer approved by reviewer.
func (t *Transfer) ApplyApproval(reviewer id.UserID, now time.Time) {
	t.Status = StatusApproved
	t.stamp(reviewer, now)
}

// ApplyRejection marks the transfer rejected with reason. It does not check
// the current status.
func (t *Transfer) ApplyRejection(reviewer id.UserID, reason string, now time.Time) {
	t.Status = StatusRejected
	t.RejectionReason = reason
	t.stamp(reviewer, now)
}

func (t *Transfer) stamp(reviewer id.UserID, now time.Time) {
	r := reviewer
	at := now
	t.VerifiedBy = &r
	t.VerifiedAt = &at
}

// Clone returns a deep copy.
func (t *Transfer) Clone() *Transfer {
	if t == nil {
		return nil
	}
	c := *t
	if t.VerifiedBy != nil {
		v := *t.VerifiedBy
		c.VerifiedBy = &v
	}
	if t.VerifiedAt != nil {
		v := *t.VerifiedAt
		c.VerifiedAt = &v
	}
	return &c
}
