package model

import (
	"strings"
	"time"

	apperrors "event-ticketing/pkg/apperrors"
)

type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleCustomer, UserRoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	Role      UserRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewUser validates the profile fields. Phone uniqueness is a store concern.
func NewUser(name, phone string, role UserRole) (*User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.ErrInvalidInput
	}
	if len(strings.TrimSpace(phone)) < 10 {
		return nil, apperrors.ErrInvalidInput
	}
	if !role.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}
	return &User{
		Name:  name,
		Phone: phone,
		Role:  role,
	}, nil
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// CreateUserRequest 建立使用者請求
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required,min=10"`
	Role  string `json:"role" binding:"required"`
}
