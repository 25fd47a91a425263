package dto

import (
	"time"

	"github.com/google/uuid"
)

// Wire formats for customer timestamps.
const (
	BirthDateLayout = time.RFC3339
	CreatedAtLayout = "2006-01-02T15:04:05.000000Z07:00"
)

type CustomerUserRequest struct {
	Email    *string `json:"email" binding:"required,email,max=254"`
	Name     *string `json:"name" binding:"required,notblank,max=50"`
	LastName *string `json:"last_name" binding:"required,notblank,max=50"`
}

type CreateCustomerRequest struct {
	SexTape   *string              `json:"sex_tape" binding:"required,oneof=Male Female"`
	DNI       *int64               `json:"dni" binding:"required"`
	BirthDate *string              `json:"birth_date" binding:"required,iso8601"`
	User      *CustomerUserRequest `json:"user" binding:"required"`
}

// UpdateCustomerUserRequest carries optional nested fields; nil means
// "leave unchanged".
type UpdateCustomerUserRequest struct {
	Email    *string `json:"email" binding:"omitnil,email,max=254"`
	Name     *string `json:"name" binding:"omitnil,notblank,max=50"`
	LastName *string `json:"last_name" binding:"omitnil,notblank,max=50"`
}

type UpdateCustomerRequest struct {
	SexTape   *string                    `json:"sex_tape" binding:"omitnil,oneof=Male Female"`
	DNI       *int64                     `json:"dni" binding:"omitnil"`
	BirthDate *string                    `json:"birth_date" binding:"omitnil,iso8601"`
	User      *UpdateCustomerUserRequest `json:"user"`
}

type CustomerUserResponse struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
}

type CustomerResponse struct {
	ID        uint                 `json:"id"`
	WalletID  uuid.UUID            `json:"wallet_id"`
	SexTape   string               `json:"sex_tape"`
	DNI       int64                `json:"dni"`
	BirthDate string               `json:"birth_date"`
	CreatedAt string               `json:"created_at"`
	User      CustomerUserResponse `json:"user"`
}

// CustomerFilter is the whitelisted set of list filters parsed from the
// query string. Nil fields are not applied.
type CustomerFilter struct {
	WalletID     *uuid.UUID
	SexTape      *string
	DNI          *int64
	UserEmail    *string
	UserName     *string
	UserLastName *string
	BirthDate    *time.Time
	BirthDateGTE *time.Time
	BirthDateLTE *time.Time
	CreatedAt    *time.Time
	CreatedAtGTE *time.Time
	CreatedAtLTE *time.Time
}

// OrderField is one entry of the list ordering.
type OrderField struct {
	Field      string
	Descending bool
}

type CustomerListQuery struct {
	Filter CustomerFilter
	Order  []OrderField
	Limit  int
	Offset int
}
