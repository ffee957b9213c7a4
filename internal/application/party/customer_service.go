package party

import (
	"context"

	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/party"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerService manages the buyers that contracts are signed with
type CustomerService struct {
	customers party.CustomerRepository
	contracts contract.ContractRepository
}

func NewCustomerService(customers party.CustomerRepository, contracts contract.ContractRepository) *CustomerService {
	return &CustomerService{customers: customers, contracts: contracts}
}

func (r CreateCustomerRequest) details() party.CustomerDetails {
	return party.CustomerDetails{
		Name:       r.Name,
		Phone:      r.Phone,
		Email:      r.Email,
		Address:    r.Address,
		NationalID: r.NationalID,
		Notes:      r.Notes,
	}
}

func (r UpdateCustomerRequest) details() party.CustomerDetails {
	return party.CustomerDetails{
		Name:       r.Name,
		Phone:      r.Phone,
		Email:      r.Email,
		Address:    r.Address,
		NationalID: r.NationalID,
		Notes:      r.Notes,
	}
}

func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	if err := claimCode(ctx, s.customers, tenantID, "customer", req.Code); err != nil {
		return nil, err
	}
	customer, err := party.NewCustomer(tenantID, req.Code, req.details())
	if err != nil {
		return nil, err
	}
	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, err
	}
	return ptr(ToCustomerResponse(customer)), nil
}

func (s *CustomerService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customers.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ptr(ToCustomerResponse(customer)), nil
}

func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]CustomerResponse, int64, error) {
	return page(ctx, s.customers, tenantID, filter, ToCustomerResponse)
}

// Update replaces the editable fields; IsActive is only changed when sent
func (s *CustomerService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customers.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := customer.Update(req.details()); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		customer.SetActive(*req.IsActive)
	}
	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, err
	}
	return ptr(ToCustomerResponse(customer)), nil
}

// Delete refuses customers that still have contracts
func (s *CustomerService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return removeUnreferenced(ctx, s.customers, tenantID, id,
		func(p *party.Customer) string { return "customer " + p.Name },
		"contracts", s.contracts.CountByCustomer)
}
