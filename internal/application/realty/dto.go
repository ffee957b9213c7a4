package realty

import (
	"time"

	"github.com/erp/realestate/internal/domain/realty"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateUnitRequest represents a request to create a unit
type CreateUnitRequest struct {
	Code            string          `json:"code" binding:"required,min=1,max=50"`
	Name            string          `json:"name" binding:"required,min=1,max=200"`
	BuildingNo      string          `json:"building_no" binding:"max=50"`
	UnitType        string          `json:"unit_type" binding:"required,oneof=residential commercial school other"`
	PriceTotal      decimal.Decimal `json:"price_total" binding:"decimal_gte0"`
	Group           string          `json:"group" binding:"required,oneof=res com"`
	PartnersGroupID *uuid.UUID      `json:"partners_group_id"`
	Notes           string          `json:"notes"`
}

// UpdateUnitRequest represents a request to update a unit
type UpdateUnitRequest struct {
	Name            string          `json:"name" binding:"required,min=1,max=200"`
	BuildingNo      string          `json:"building_no" binding:"max=50"`
	UnitType        string          `json:"unit_type" binding:"required,oneof=residential commercial school other"`
	PriceTotal      decimal.Decimal `json:"price_total" binding:"decimal_gte0"`
	Group           string          `json:"group" binding:"required,oneof=res com"`
	PartnersGroupID *uuid.UUID      `json:"partners_group_id"`
	Notes           string          `json:"notes"`
}

func (r UpdateUnitRequest) details() realty.UnitDetails {
	return realty.UnitDetails{
		Name:            r.Name,
		BuildingNo:      r.BuildingNo,
		UnitType:        realty.UnitType(r.UnitType),
		PriceTotal:      valueobject.NewMoney(r.PriceTotal),
		Group:           realty.UnitGroup(r.Group),
		PartnersGroupID: r.PartnersGroupID,
		Notes:           r.Notes,
	}
}

// UnitResponse represents a unit in API responses
type UnitResponse struct {
	ID              uuid.UUID         `json:"id"`
	Code            string            `json:"code"`
	Name            string            `json:"name"`
	BuildingNo      string            `json:"building_no"`
	UnitType        realty.UnitType   `json:"unit_type"`
	PriceTotal      valueobject.Money `json:"price_total"`
	Group           realty.UnitGroup  `json:"group"`
	PartnersGroupID *uuid.UUID        `json:"partners_group_id,omitempty"`
	IsSold          bool              `json:"is_sold"`
	Notes           string            `json:"notes"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ToUnitResponse converts a domain unit to a response
func ToUnitResponse(u *realty.Unit) UnitResponse {
	return UnitResponse{
		ID:              u.ID,
		Code:            u.Code,
		Name:            u.Name,
		BuildingNo:      u.BuildingNo,
		UnitType:        u.UnitType,
		PriceTotal:      valueobject.NewMoney(u.PriceTotal),
		Group:           u.Group,
		PartnersGroupID: u.PartnersGroupID,
		IsSold:          u.IsSold,
		Notes:           u.Notes,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
