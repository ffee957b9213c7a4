package party

import (
	"context"
	"fmt"

	"github.com/erp/realestate/internal/domain/party"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/google/uuid"
)

// claimCode fails with ALREADY_EXISTS when the tenant already uses code
func claimCode[T any](ctx context.Context, repo party.Registry[T], tenantID uuid.UUID, kind, code string) error {
	taken, err := repo.ExistsByCode(ctx, tenantID, code)
	if err != nil {
		return fmt.Errorf("check %s code: %w", kind, err)
	}
	if taken {
		return shared.NewDomainErrorf("ALREADY_EXISTS", "A %s with code %s already exists", kind, code)
	}
	return nil
}

// page returns one page of parties converted by view, plus the filter's total
func page[T, R any](ctx context.Context, repo party.Registry[T], tenantID uuid.UUID, filter shared.Filter, view func(*T) R) ([]R, int64, error) {
	rows, err := repo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := repo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]R, 0, len(rows))
	for i := range rows {
		out = append(out, view(&rows[i]))
	}
	return out, total, nil
}

// dependents counts rows that still reference a party
type dependents func(ctx context.Context, tenantID, id uuid.UUID) (int64, error)

// removeUnreferenced deletes a party only while nothing references it
func removeUnreferenced[T any](ctx context.Context, repo party.Registry[T], tenantID, id uuid.UUID, label func(*T) string, what string, refs dependents) error {
	p, err := repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	n, err := refs(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return shared.NewHasDependentsError(label(p), what)
	}
	return repo.Delete(ctx, tenantID, id)
}

func ptr[T any](v T) *T { return &v }
