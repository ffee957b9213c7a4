package realty

import (
	"context"

	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/realty"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/google/uuid"
)

// UnitService handles unit inventory
type UnitService struct {
	unitRepo     realty.UnitRepository
	groupRepo    equity.PartnersGroupRepository
	contractRepo contract.ContractRepository
}

// NewUnitService creates a new UnitService
func NewUnitService(unitRepo realty.UnitRepository, groupRepo equity.PartnersGroupRepository, contractRepo contract.ContractRepository) *UnitService {
	return &UnitService{
		unitRepo:     unitRepo,
		groupRepo:    groupRepo,
		contractRepo: contractRepo,
	}
}

// Create creates a new unit
func (s *UnitService) Create(ctx context.Context, tenantID uuid.UUID, req CreateUnitRequest) (*UnitResponse, error) {
	exists, err := s.unitRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Unit with this code already exists")
	}

	details := UpdateUnitRequest{
		Name:            req.Name,
		BuildingNo:      req.BuildingNo,
		UnitType:        req.UnitType,
		PriceTotal:      req.PriceTotal,
		Group:           req.Group,
		PartnersGroupID: req.PartnersGroupID,
		Notes:           req.Notes,
	}.details()
	if err := s.checkGroup(ctx, tenantID, details.PartnersGroupID); err != nil {
		return nil, err
	}

	unit, err := realty.NewUnit(tenantID, req.Code, details)
	if err != nil {
		return nil, err
	}
	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}
	response := ToUnitResponse(unit)
	return &response, nil
}

// GetByID retrieves a unit by ID
func (s *UnitService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*UnitResponse, error) {
	unit, err := s.unitRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToUnitResponse(unit)
	return &response, nil
}

// List retrieves units with pagination
func (s *UnitService) List(ctx context.Context, tenantID uuid.UUID, filter realty.UnitFilter) ([]UnitResponse, int64, error) {
	units, err := s.unitRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.unitRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]UnitResponse, len(units))
	for i := range units {
		out[i] = ToUnitResponse(&units[i])
	}
	return out, total, nil
}

// Update updates a unit
func (s *UnitService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateUnitRequest) (*UnitResponse, error) {
	unit, err := s.unitRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	details := req.details()
	if err := s.checkGroup(ctx, tenantID, details.PartnersGroupID); err != nil {
		return nil, err
	}
	if err := unit.Update(details); err != nil {
		return nil, err
	}
	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}
	response := ToUnitResponse(unit)
	return &response, nil
}

// Delete removes a unit that is not under contract
func (s *UnitService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.unitRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	sold, err := s.contractRepo.ExistsForUnit(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if sold {
		return shared.NewHasDependentsError("unit", "contracts")
	}
	return s.unitRepo.Delete(ctx, tenantID, id)
}

func (s *UnitService) checkGroup(ctx context.Context, tenantID uuid.UUID, groupID *uuid.UUID) error {
	if groupID == nil {
		return nil
	}
	_, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, *groupID)
	return err
}
