package persistence

import (
	"context"
	"errors"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// row is a GORM model of M that converts back to its domain value D
type row[M, D any] interface {
	*M
	ToDomain() *D
}

// tenantRows holds the CRUD queries common to the coded master-data tables
// (customers, suppliers, units, items). Every statement is scoped by tenant_id.
type tenantRows[M, D any, P row[M, D]] struct {
	db       *gorm.DB
	toModel  func(*D) *M
	sortable map[string]bool
	order    string
}

func newTenantRows[M, D any, P row[M, D]](db *gorm.DB, toModel func(*D) *M, sortable map[string]bool, order string) tenantRows[M, D, P] {
	return tenantRows[M, D, P]{db: db, toModel: toModel, sortable: sortable, order: order}
}

func (t tenantRows[M, D, P]) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return t.db.WithContext(ctx).Model(new(M)).Where("tenant_id = ?", tenantID)
}

func (t tenantRows[M, D, P]) get(ctx context.Context, tenantID, id uuid.UUID) (*D, error) {
	return t.first(t.scoped(ctx, tenantID).Where("id = ?", id))
}

// getForUpdate holds a row lock on the record until the transaction ends
func (t tenantRows[M, D, P]) getForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*D, error) {
	return t.first(t.scoped(ctx, tenantID).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (t tenantRows[M, D, P]) first(q *gorm.DB) (*D, error) {
	var m M
	err := q.First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return P(&m).ToDomain(), nil
}

func (t tenantRows[M, D, P]) list(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, where func(*gorm.DB) *gorm.DB) ([]D, error) {
	q := where(t.scoped(ctx, tenantID))
	q = applyPagination(applyOrder(q, filter, t.sortable, t.order), filter)

	var ms []M
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]D, 0, len(ms))
	for i := range ms {
		out = append(out, *P(&ms[i]).ToDomain())
	}
	return out, nil
}

func (t tenantRows[M, D, P]) count(ctx context.Context, tenantID uuid.UUID, where func(*gorm.DB) *gorm.DB) (int64, error) {
	var n int64
	err := where(t.scoped(ctx, tenantID)).Count(&n).Error
	return n, err
}

func (t tenantRows[M, D, P]) codeTaken(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var n int64
	err := t.scoped(ctx, tenantID).Where("code = ?", code).Count(&n).Error
	return n > 0, err
}

func (t tenantRows[M, D, P]) save(ctx context.Context, d *D) error {
	return t.db.WithContext(ctx).Save(t.toModel(d)).Error
}

func (t tenantRows[M, D, P]) remove(ctx context.Context, tenantID, id uuid.UUID) error {
	res := t.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(new(M))
	switch {
	case res.Error != nil:
		return res.Error
	case res.RowsAffected == 0:
		return shared.ErrNotFound
	}
	return nil
}
