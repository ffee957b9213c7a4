// Package tenant keeps writes inside the tenant bound to the request context.
//
// Repositories always filter reads by an explicit tenant id. The guard covers
// the other direction: a row created or saved while a request for tenant A is
// in flight must carry tenant A's id.
package tenant

import (
	"errors"
	"reflect"

	"github.com/erp/realestate/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var (
	// ErrInvalidTenantID is returned when the context carries a malformed tenant id
	ErrInvalidTenantID = errors.New("invalid tenant_id format")
	// ErrTenantMismatch is returned when a row belongs to another tenant
	ErrTenantMismatch = errors.New("row tenant_id does not match the request tenant")
)

const column = "tenant_id"

// RegisterGuard installs the create and update callbacks
func RegisterGuard(db *gorm.DB) error {
	if err := db.Callback().Create().Before("gorm:create").Register("tenant:guard_create", guard); err != nil {
		return err
	}
	return db.Callback().Update().Before("gorm:update").Register("tenant:guard_update", guard)
}

func guard(db *gorm.DB) {
	if db.Error != nil || db.Statement.Schema == nil || db.Statement.Context == nil {
		return
	}
	raw := logger.GetTenantID(db.Statement.Context)
	if raw == "" {
		return
	}
	want, err := uuid.Parse(raw)
	if err != nil {
		_ = db.AddError(ErrInvalidTenantID)
		return
	}
	field := db.Statement.Schema.LookUpField(column)
	if field == nil {
		return
	}

	rv := reflect.Indirect(db.Statement.ReflectValue)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if !matches(db, field, reflect.Indirect(rv.Index(i)), want) {
				return
			}
		}
	case reflect.Struct:
		matches(db, field, rv, want)
	}
}

// matches reports false and records ErrTenantMismatch when the row names
// another tenant. Rows without a tenant id set are left alone.
func matches(db *gorm.DB, field *schema.Field, row reflect.Value, want uuid.UUID) bool {
	value, zero := field.ValueOf(db.Statement.Context, row)
	if zero {
		return true
	}
	got, ok := value.(uuid.UUID)
	if !ok || got == want {
		return true
	}
	_ = db.AddError(ErrTenantMismatch)
	return false
}
