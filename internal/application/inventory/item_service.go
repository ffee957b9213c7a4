package inventory

import (
	"context"

	"github.com/erp/realestate/internal/domain/inventory"
	"github.com/erp/realestate/internal/domain/party"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ItemService handles the stock item master
type ItemService struct {
	itemRepo     inventory.ItemRepository
	moveRepo     inventory.StockMoveRepository
	supplierRepo party.SupplierRepository
}

// NewItemService creates a new ItemService
func NewItemService(itemRepo inventory.ItemRepository, moveRepo inventory.StockMoveRepository, supplierRepo party.SupplierRepository) *ItemService {
	return &ItemService{
		itemRepo:     itemRepo,
		moveRepo:     moveRepo,
		supplierRepo: supplierRepo,
	}
}

func (s *ItemService) checkSupplier(ctx context.Context, tenantID uuid.UUID, supplierID *uuid.UUID) error {
	if supplierID == nil {
		return nil
	}
	_, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, *supplierID)
	return err
}

// Create creates a new item
func (s *ItemService) Create(ctx context.Context, tenantID uuid.UUID, req CreateItemRequest) (*ItemResponse, error) {
	// Check if code already exists
	exists, err := s.itemRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Item with this code already exists")
	}
	if err := s.checkSupplier(ctx, tenantID, req.SupplierID); err != nil {
		return nil, err
	}

	item, err := inventory.NewItem(tenantID, req.Code, inventory.ItemDetails{
		Name:         req.Name,
		UOM:          req.UOM,
		UnitPrice:    valueobject.NewMoney(req.UnitPrice),
		MinimumStock: req.MinimumStock,
		SupplierID:   req.SupplierID,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		item.SetCreatedBy(*req.CreatedBy)
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// GetByID retrieves an item by ID
func (s *ItemService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// List retrieves items with pagination
func (s *ItemService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ItemResponse, int64, error) {
	items, err := s.itemRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.itemRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
	}
	return out, total, nil
}

// Update updates an item
func (s *ItemService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, tenantID, req.SupplierID); err != nil {
		return nil, err
	}
	err = item.Update(inventory.ItemDetails{
		Name:         req.Name,
		UOM:          req.UOM,
		UnitPrice:    valueobject.NewMoney(req.UnitPrice),
		MinimumStock: req.MinimumStock,
		SupplierID:   req.SupplierID,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// Delete removes an item that never moved
func (s *ItemService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	moves, err := s.moveRepo.CountByItem(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if moves > 0 {
		return shared.NewHasDependentsError("item", "stock moves")
	}
	return s.itemRepo.Delete(ctx, tenantID, id)
}
