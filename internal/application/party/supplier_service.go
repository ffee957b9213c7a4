package party

import (
	"context"

	"github.com/erp/realestate/internal/domain/party"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/google/uuid"
)

// SupplierService manages the suppliers paid through payment vouchers
type SupplierService struct {
	suppliers party.SupplierRepository
	payments  treasury.PaymentVoucherRepository
}

func NewSupplierService(suppliers party.SupplierRepository, payments treasury.PaymentVoucherRepository) *SupplierService {
	return &SupplierService{suppliers: suppliers, payments: payments}
}

func (s *SupplierService) Create(ctx context.Context, tenantID uuid.UUID, req CreateSupplierRequest) (*SupplierResponse, error) {
	if err := claimCode(ctx, s.suppliers, tenantID, "supplier", req.Code); err != nil {
		return nil, err
	}
	supplier, err := party.NewSupplier(tenantID, req.Code, req.Name, req.Phone, req.Address)
	if err != nil {
		return nil, err
	}
	supplier.Notes = req.Notes
	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}
	return ptr(ToSupplierResponse(supplier)), nil
}

func (s *SupplierService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ptr(ToSupplierResponse(supplier)), nil
}

func (s *SupplierService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]SupplierResponse, int64, error) {
	return page(ctx, s.suppliers, tenantID, filter, ToSupplierResponse)
}

// Update replaces the editable fields; IsActive is only changed when sent
func (s *SupplierService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := supplier.Update(req.Name, req.Phone, req.Address, req.Notes); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		supplier.SetActive(*req.IsActive)
	}
	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}
	return ptr(ToSupplierResponse(supplier)), nil
}

// Delete refuses suppliers that have payment vouchers, cancelled ones included
func (s *SupplierService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return removeUnreferenced(ctx, s.suppliers, tenantID, id,
		func(p *party.Supplier) string { return "supplier " + p.Name },
		"payment vouchers", s.payments.CountBySupplier)
}
