package realty

import (
	"context"
	"strings"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitType classifies a property unit
type UnitType string

const (
	UnitResidential UnitType = "residential"
	UnitCommercial  UnitType = "commercial"
	UnitSchool      UnitType = "school"
	UnitOther       UnitType = "other"
)

// IsValid checks if the unit type is known
func (t UnitType) IsValid() bool {
	switch t {
	case UnitResidential, UnitCommercial, UnitSchool, UnitOther:
		return true
	}
	return false
}

// UnitGroup is the coarse residential/commercial grouping used in reports
type UnitGroup string

const (
	GroupResidential UnitGroup = "res"
	GroupCommercial  UnitGroup = "com"
)

// IsValid checks if the group is known
func (g UnitGroup) IsValid() bool {
	return g == GroupResidential || g == GroupCommercial
}

// Unit is a sellable property unit
type Unit struct {
	shared.TenantAggregateRoot
	Code            string
	Name            string
	BuildingNo      string
	UnitType        UnitType
	PriceTotal      decimal.Decimal
	Group           UnitGroup
	PartnersGroupID *uuid.UUID
	IsSold          bool
	Notes           string
}

// UnitDetails are the editable fields of a unit
type UnitDetails struct {
	Name            string
	BuildingNo      string
	UnitType        UnitType
	PriceTotal      valueobject.Money
	Group           UnitGroup
	PartnersGroupID *uuid.UUID
	Notes           string
}

func (d UnitDetails) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Unit name cannot be empty")
	}
	if !d.UnitType.IsValid() {
		return shared.NewDomainError("INVALID_UNIT_TYPE", "Unit type must be residential, commercial, school or other")
	}
	if !d.Group.IsValid() {
		return shared.NewDomainError("INVALID_UNIT_GROUP", "Unit group must be res or com")
	}
	if d.PriceTotal.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Unit price cannot be negative")
	}
	return nil
}

// NewUnit creates an unsold unit
func NewUnit(tenantID uuid.UUID, code string, d UnitDetails) (*Unit, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Unit code cannot be empty")
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	u := &Unit{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.TrimSpace(code),
	}
	u.apply(d)
	return u, nil
}

func (u *Unit) apply(d UnitDetails) {
	u.Name = strings.TrimSpace(d.Name)
	u.BuildingNo = d.BuildingNo
	u.UnitType = d.UnitType
	u.PriceTotal = d.PriceTotal.Amount()
	u.Group = d.Group
	u.PartnersGroupID = d.PartnersGroupID
	u.Notes = d.Notes
}

// Update replaces the editable fields
func (u *Unit) Update(d UnitDetails) error {
	if err := d.validate(); err != nil {
		return err
	}
	u.apply(d)
	u.Touch()
	u.IncrementVersion()
	return nil
}

// MarkSold flags the unit as sold under a contract
func (u *Unit) MarkSold() error {
	if u.IsSold {
		return shared.NewDomainErrorf("UNIT_ALREADY_SOLD", "Unit %s is already sold", u.Code)
	}
	u.IsSold = true
	u.Touch()
	return nil
}

// Release makes the unit available again after its contract is deleted
func (u *Unit) Release() {
	u.IsSold = false
	u.Touch()
}

// UnitFilter defines filtering options for unit queries
type UnitFilter struct {
	shared.Filter
	UnitType *UnitType
	Group    *UnitGroup
	IsSold   *bool
}

// UnitRepository defines persistence for units
type UnitRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Unit, error)
	// FindByIDForUpdate locks the unit row until the transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Unit, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter UnitFilter) ([]Unit, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter UnitFilter) (int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	Save(ctx context.Context, u *Unit) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
