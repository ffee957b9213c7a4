package party

import (
	"regexp"
	"strings"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/google/uuid"
)

var phonePattern = regexp.MustCompile(`^[0-9+\-\s]+$`)

// ValidatePhone checks an optional phone number
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if !phonePattern.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Phone may only contain digits, spaces, '+' and '-'")
	}
	return nil
}

func validateCodeName(code, name string) error {
	if strings.TrimSpace(code) == "" {
		return shared.NewDomainError("INVALID_CODE", "Code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Code cannot exceed 50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}

// Customer is a buyer of units
type Customer struct {
	shared.TenantAggregateRoot
	Code       string
	Name       string
	Phone      string
	Email      string
	Address    string
	NationalID string
	Notes      string
	IsActive   bool
}

// CustomerDetails are the editable fields of a customer
type CustomerDetails struct {
	Name       string
	Phone      string
	Email      string
	Address    string
	NationalID string
	Notes      string
}

// NewCustomer creates an active customer
func NewCustomer(tenantID uuid.UUID, code string, details CustomerDetails) (*Customer, error) {
	if err := validateCodeName(code, details.Name); err != nil {
		return nil, err
	}
	if err := ValidatePhone(details.Phone); err != nil {
		return nil, err
	}
	c := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.TrimSpace(code),
		IsActive:            true,
	}
	c.apply(details)
	return c, nil
}

func (c *Customer) apply(d CustomerDetails) {
	c.Name = strings.TrimSpace(d.Name)
	c.Phone = d.Phone
	c.Email = d.Email
	c.Address = d.Address
	c.NationalID = d.NationalID
	c.Notes = d.Notes
}

// Update replaces the editable fields
func (c *Customer) Update(d CustomerDetails) error {
	if err := validateCodeName(c.Code, d.Name); err != nil {
		return err
	}
	if err := ValidatePhone(d.Phone); err != nil {
		return err
	}
	c.apply(d)
	c.Touch()
	c.IncrementVersion()
	return nil
}

// SetActive toggles the customer
func (c *Customer) SetActive(active bool) {
	c.IsActive = active
	c.Touch()
}

// Supplier is a vendor that receives payment vouchers and supplies items
type Supplier struct {
	shared.TenantAggregateRoot
	Code     string
	Name     string
	Phone    string
	Address  string
	Notes    string
	IsActive bool
}

// NewSupplier creates an active supplier
func NewSupplier(tenantID uuid.UUID, code, name, phone, address string) (*Supplier, error) {
	if err := validateCodeName(code, name); err != nil {
		return nil, err
	}
	if err := ValidatePhone(phone); err != nil {
		return nil, err
	}
	return &Supplier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.TrimSpace(code),
		Name:                strings.TrimSpace(name),
		Phone:               phone,
		Address:             address,
		IsActive:            true,
	}, nil
}

// Update replaces the editable supplier fields
func (s *Supplier) Update(name, phone, address, notes string) error {
	if err := validateCodeName(s.Code, name); err != nil {
		return err
	}
	if err := ValidatePhone(phone); err != nil {
		return err
	}
	s.Name = strings.TrimSpace(name)
	s.Phone = phone
	s.Address = address
	s.Notes = notes
	s.Touch()
	s.IncrementVersion()
	return nil
}

// SetActive toggles the supplier
func (s *Supplier) SetActive(active bool) {
	s.IsActive = active
	s.Touch()
}
