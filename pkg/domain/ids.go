// Package domain holds typed identifiers and small value objects shared by the
// land and transfer modules. Parse functions are the trust boundary: anything
// coming from a request must go through them.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "malpot/pkg/domain-errors"
)

// Typed IDs keep a LandID from being passed where a TransferID is expected.
type (
	LandID     uuid.UUID
	TransferID uuid.UUID
	UserID     uuid.UUID
)

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return parsed, nil
}

func ParseLandID(s string) (LandID, error) {
	u, err := parseUUID("land ID", s)
	return LandID(u), err
}

func ParseTransferID(s string) (TransferID, error) {
	u, err := parseUUID("transfer ID", s)
	return TransferID(u), err
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user ID", s)
	return UserID(u), err
}

func NewLandID() LandID         { return LandID(uuid.New()) }
func NewTransferID() TransferID { return TransferID(uuid.New()) }
func NewUserID() UserID         { return UserID(uuid.New()) }

func (id LandID) String() string     { return uuid.UUID(id).String() }
func (id TransferID) String() string { return uuid.UUID(id).String() }
func (id UserID) String() string     { return uuid.UUID(id).String() }

func (id LandID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id TransferID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

func (id LandID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id TransferID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id UserID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }

// UnmarshalText accepts any well-formed UUID, including the nil UUID of an
// unset field. Caller input goes through the Parse functions instead.
func (id *LandID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *TransferID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// NationalID is a citizenship number as printed on the identity document.
// Invariant: non-empty, at most 32 characters, digits, letters, '-' and '/'.
//
// Comparison is exact after trimming surrounding whitespace; the registry
// never normalizes separators because officers match against paper records.
type NationalID string

const maxNationalIDLength = 32

func ParseNationalID(s string) (NationalID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "national ID is required")
	}
	if len(s) > maxNationalIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "national ID is too long")
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '/':
		default:
			return "", dErrors.New(dErrors.CodeInvalidInput, "national ID contains invalid characters")
		}
	}
	return NationalID(s), nil
}

func (n NationalID) String() string { return string(n) }

func (n NationalID) IsNil() bool { return n == "" }
