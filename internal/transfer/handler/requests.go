package handler

import (
	"strings"

	landmodels "malpot/internal/land/models"
	"malpot/internal/transfer/models"
	transferservice "malpot/internal/transfer/service"
	id "malpot/pkg/domain"
	dErrors "malpot/pkg/domain-errors"
)

// ApplyRequest is the body of POST /api/transfers. Documents were stored by
// the upload service beforehand; only their references are sent.
type ApplyRequest struct {
	LandID        string           `json:"land_id"`
	PreviousOwner PartyRequest     `json:"previous_owner"`
	NewOwner      PartyRequest     `json:"new_owner"`
	Documents     DocumentsRequest `json:"documents"`

	landID id.LandID
	prev   landmodels.Owner
	next   landmodels.Owner
}

type PartyRequest struct {
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
}

type DocumentsRequest struct {
	Citizenship  landmodels.DocumentRef `json:"citizenship"`
	SaleDeed     landmodels.DocumentRef `json:"sale_deed"`
	TaxClearance landmodels.DocumentRef `json:"tax_clearance"`
}

// Validate parses identifiers. Presence of the owners and the documents is
// left to the workflow so an owner mismatch is reported first; an empty
// previous owner never matches a registered land.
func (r *ApplyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	landID, err := id.ParseLandID(r.LandID)
	if err != nil {
		return err
	}
	r.landID = landID

	if r.prev, err = r.PreviousOwner.owner("previous_owner"); err != nil {
		return err
	}
	if r.next, err = r.NewOwner.owner("new_owner"); err != nil {
		return err
	}
	return nil
}

// owner trims the party and parses a non-empty national id.
func (p PartyRequest) owner(field string) (landmodels.Owner, error) {
	o := landmodels.Owner{Name: strings.TrimSpace(p.Name)}
	if strings.TrimSpace(p.NationalID) == "" {
		return o, nil
	}
	nationalID, err := id.ParseNationalID(p.NationalID)
	if err != nil {
		return landmodels.Owner{}, dErrors.New(dErrors.CodeValidation, field+".national_id is invalid")
	}
	o.NationalID = nationalID
	return o, nil
}

func (r *ApplyRequest) Command() transferservice.ApplyCommand {
	return transferservice.ApplyCommand{
		LandID:        r.landID,
		PreviousOwner: r.prev,
		NewOwner:      r.next,
		Documents: models.Documents{
			Citizenship:  r.Documents.Citizenship,
			SaleDeed:     r.Documents.SaleDeed,
			TaxClearance: r.Documents.TaxClearance,
		},
	}
}

const maxReasonLength = 1000

// RejectRequest is the body of POST /api/transfers/{transferID}/reject.
type RejectRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if len(r.Reason) > maxReasonLength {
		return dErrors.New(dErrors.CodeValidation, "reason is too long")
	}
	return nil
}
