package party

import (
	"context"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/google/uuid"
)

// Registry stores one kind of counterparty. Codes are unique per tenant.
type Registry[T any] interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*T, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]T, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	Save(ctx context.Context, party *T) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type (
	CustomerRepository = Registry[Customer]
	SupplierRepository = Registry[Supplier]
)
