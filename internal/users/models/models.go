package models

import (
	"strings"
	"time"

	id "malpot/pkg/domain"
	dErrors "malpot/pkg/domain-errors"
)

// Role values carried in access tokens.
const (
	RoleCitizen = "citizen"
	RoleOfficer = "officer"
)

// User is a registry account. Officers review transfers; their display
// details appear in transfer history.
type User struct {
	ID        id.UserID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUser(userID id.UserID, name, email, phone, role string, now time.Time) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	switch role {
	case RoleCitizen, RoleOfficer:
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "role must be citizen or officer")
	}
	return &User{
		ID:        userID,
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(phone),
		Role:      role,
		CreatedAt: now,
	}, nil
}

// Contact returns the preferred way to reach the user.
func (u *User) Contact() string {
	if u.Email != "" {
		return u.Email
	}
	return u.Phone
}
