package domain

import (
	"context"
	"errors"
)

type CreateRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	MobileNumber *string `json:"mobile_number"`
}

type UpdateRequest struct {
	ID           string  `json:"id"`
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	MobileNumber *string `json:"mobile_number,omitempty"`
}

type ListRequest struct {
	Name  string `form:"name"`
	Email string `form:"email"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Customer, error)
	List(ctx context.Context, req ListRequest) ([]Customer, error)
	Get(ctx context.Context, id string) (Customer, error)
	Update(ctx context.Context, req UpdateRequest) (Customer, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID        = errors.New("invalid_customer_id")
	ErrInvalidName      = errors.New("invalid_customer_name")
	ErrInvalidEmail     = errors.New("invalid_customer_email")
	ErrCustomerNotFound = errors.New("customer_not_found")
)
