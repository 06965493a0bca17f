package handler

import (
	"strings"

	"malpot/internal/land/models"
	landservice "malpot/internal/land/service"
	id "malpot/pkg/domain"
	dErrors "malpot/pkg/domain-errors"
)

// RegisterRequest is the HTTP request body for POST /api/land/register.
// The ownership document has already been stored by the upload service;
// only its reference is sent.
type RegisterRequest struct {
	ParcelNumber      string             `json:"parcel_number"`
	Area              string             `json:"area"`
	AreaUnit          string             `json:"area_unit"`
	District          string             `json:"district"`
	Ward              string             `json:"ward"`
	LandType          string             `json:"land_type"`
	Owner             OwnerRequest       `json:"owner"`
	OwnershipDocument models.DocumentRef `json:"ownership_document"`

	parsedOwner models.Owner
}

type OwnerRequest struct {
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
// Field presence is checked by the domain constructor.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	owner, err := r.Owner.Parse("owner")
	if err != nil {
		return err
	}
	r.parsedOwner = owner
	return nil
}

// Parse normalizes the owner and parses the national id.
func (o OwnerRequest) Parse(field string) (models.Owner, error) {
	name := strings.TrimSpace(o.Name)
	if name == "" {
		return models.Owner{}, dErrors.New(dErrors.CodeValidation, field+".name is required")
	}
	if strings.TrimSpace(o.NationalID) == "" {
		return models.Owner{}, dErrors.New(dErrors.CodeValidation, field+".national_id is required")
	}
	nationalID, err := id.ParseNationalID(o.NationalID)
	if err != nil {
		return models.Owner{}, dErrors.New(dErrors.CodeValidation, field+".national_id is invalid")
	}
	return models.Owner{Name: name, NationalID: nationalID}, nil
}

func (r *RegisterRequest) Command() landservice.RegisterCommand {
	return landservice.RegisterCommand{
		ParcelNumber:      r.ParcelNumber,
		Area:              r.Area,
		AreaUnit:          r.AreaUnit,
		Location:          models.Location{District: r.District, Ward: r.Ward},
		LandType:          r.LandType,
		Owner:             r.parsedOwner,
		OwnershipDocument: r.OwnershipDocument,
	}
}
