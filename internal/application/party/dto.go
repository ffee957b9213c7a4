package party

import (
	"time"

	"github.com/erp/realestate/internal/domain/party"
	"github.com/google/uuid"
)

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Code       string `json:"code" binding:"required,min=1,max=50"`
	Name       string `json:"name" binding:"required,min=1,max=200"`
	Phone      string `json:"phone" binding:"max=30"`
	Email      string `json:"email" binding:"omitempty,email,max=200"`
	Address    string `json:"address" binding:"max=500"`
	NationalID string `json:"national_id" binding:"max=50"`
	Notes      string `json:"notes"`
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=200"`
	Phone      string `json:"phone" binding:"max=30"`
	Email      string `json:"email" binding:"omitempty,email,max=200"`
	Address    string `json:"address" binding:"max=500"`
	NationalID string `json:"national_id" binding:"max=50"`
	Notes      string `json:"notes"`
	IsActive   *bool  `json:"is_active"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	Address    string    `json:"address"`
	NationalID string    `json:"national_id"`
	Notes      string    `json:"notes"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToCustomerResponse converts a domain customer to a response
func ToCustomerResponse(c *party.Customer) CustomerResponse {
	return CustomerResponse{
		ID:         c.ID,
		Code:       c.Code,
		Name:       c.Name,
		Phone:      c.Phone,
		Email:      c.Email,
		Address:    c.Address,
		NationalID: c.NationalID,
		Notes:      c.Notes,
		IsActive:   c.IsActive,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// CreateSupplierRequest represents a request to create a supplier
type CreateSupplierRequest struct {
	Code    string `json:"code" binding:"required,min=1,max=50"`
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Phone   string `json:"phone" binding:"max=30"`
	Address string `json:"address" binding:"max=500"`
	Notes   string `json:"notes"`
}

// UpdateSupplierRequest represents a request to update a supplier
type UpdateSupplierRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Phone    string `json:"phone" binding:"max=30"`
	Address  string `json:"address" binding:"max=500"`
	Notes    string `json:"notes"`
	IsActive *bool  `json:"is_active"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Notes     string    `json:"notes"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToSupplierResponse converts a domain supplier to a response
func ToSupplierResponse(s *party.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:        s.ID,
		Code:      s.Code,
		Name:      s.Name,
		Phone:     s.Phone,
		Address:   s.Address,
		Notes:     s.Notes,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
	}
}
