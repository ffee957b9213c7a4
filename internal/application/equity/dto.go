package equity

import (
	"time"

	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePartnerRequest represents a request to create a partner
type CreatePartnerRequest struct {
	Code           string          `json:"code" binding:"required,min=1,max=50"`
	Name           string          `json:"name" binding:"required,min=1,max=200"`
	Phone          string          `json:"phone" binding:"max=30"`
	SharePercent   decimal.Decimal `json:"share_percent" binding:"percent"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Notes          string          `json:"notes"`
	CreateWallet   bool            `json:"create_wallet"`
	CreatedBy      *uuid.UUID      `json:"-"`
}

// UpdatePartnerRequest represents a request to update a partner
type UpdatePartnerRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=200"`
	Phone          string          `json:"phone" binding:"max=30"`
	SharePercent   decimal.Decimal `json:"share_percent" binding:"percent"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Notes          string          `json:"notes"`
	IsActive       *bool           `json:"is_active"`
}

// PartnerResponse represents a partner in API responses
type PartnerResponse struct {
	ID             uuid.UUID         `json:"id"`
	Code           string            `json:"code"`
	Name           string            `json:"name"`
	Phone          string            `json:"phone"`
	SharePercent   decimal.Decimal   `json:"share_percent"`
	OpeningBalance valueobject.Money `json:"opening_balance"`
	Notes          string            `json:"notes"`
	IsActive       bool              `json:"is_active"`
	WalletID       *uuid.UUID        `json:"wallet_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ToPartnerResponse converts a domain partner to a response
func ToPartnerResponse(p *equity.Partner) PartnerResponse {
	return PartnerResponse{
		ID:             p.ID,
		Code:           p.Code,
		Name:           p.Name,
		Phone:          p.Phone,
		SharePercent:   p.SharePercent,
		OpeningBalance: valueobject.NewMoney(p.OpeningBalance),
		Notes:          p.Notes,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// MemberRequest is one partner's percent in a group
type MemberRequest struct {
	PartnerID uuid.UUID       `json:"partner_id" binding:"required"`
	Percent   decimal.Decimal `json:"percent" binding:"percent"`
}

// CreateGroupRequest represents a request to create a partners group
type CreateGroupRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=500"`
	Members     []MemberRequest `json:"members" binding:"dive"`
	Finalize    bool            `json:"finalize"`
	CreatedBy   *uuid.UUID      `json:"-"`
}

// UpdateGroupRequest represents a request to update a draft partners group
type UpdateGroupRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=500"`
	Members     []MemberRequest `json:"members" binding:"dive"`
}

// MemberResponse is one member of a group
type MemberResponse struct {
	PartnerID uuid.UUID       `json:"partner_id"`
	Name      string          `json:"name,omitempty"`
	Percent   decimal.Decimal `json:"percent"`
}

// GroupResponse represents a partners group in API responses
type GroupResponse struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Status       equity.GroupStatus `json:"status"`
	TotalPercent decimal.Decimal    `json:"total_percent"`
	Members      []MemberResponse   `json:"members"`
	FinalizedAt  *time.Time         `json:"finalized_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ToGroupResponse converts a domain group to a response; names maps partner ids to names
func ToGroupResponse(g *equity.PartnersGroup, names map[uuid.UUID]string) GroupResponse {
	r := GroupResponse{
		ID:           g.ID,
		Name:         g.Name,
		Description:  g.Description,
		Status:       g.Status,
		TotalPercent: g.TotalPercent(),
		Members:      make([]MemberResponse, 0, len(g.Members)),
		FinalizedAt:  g.FinalizedAt,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
	for _, m := range g.Members {
		r.Members = append(r.Members, MemberResponse{PartnerID: m.PartnerID, Name: names[m.PartnerID], Percent: m.Percent})
	}
	return r
}

// GeneralSafeLine is one general safe contributing to a partner balance
type GeneralSafeLine struct {
	SafeID  uuid.UUID         `json:"safe_id"`
	Name    string            `json:"name"`
	Balance valueobject.Money `json:"balance"`
}

// PartnerBalanceResponse is the derived position of a partner
type PartnerBalanceResponse struct {
	PartnerID        uuid.UUID         `json:"partner_id"`
	Name             string            `json:"name"`
	SharePercent     decimal.Decimal   `json:"share_percent"`
	OpeningBalance   valueobject.Money `json:"opening_balance"`
	WalletID         *uuid.UUID        `json:"wallet_id,omitempty"`
	WalletBalance    valueobject.Money `json:"wallet_balance"`
	GeneralSafeShare valueobject.Money `json:"general_safe_share"`
	Total            valueobject.Money `json:"total"`
	GeneralSafes     []GeneralSafeLine `json:"general_safes"`
}

// ShareEntryResponse is one line of the share ledger
type ShareEntryResponse struct {
	ID               uuid.UUID             `json:"id"`
	PartnerID        uuid.UUID             `json:"partner_id"`
	GroupID          uuid.UUID             `json:"group_id"`
	ContractID       *uuid.UUID            `json:"contract_id,omitempty"`
	ReceiptVoucherID uuid.UUID             `json:"receipt_voucher_id"`
	Kind             equity.ShareEntryKind `json:"kind"`
	Percent          decimal.Decimal       `json:"percent"`
	Amount           valueobject.Money     `json:"amount"`
	EntryDate        time.Time             `json:"entry_date"`
}

// ShareLedgerResponse lists share entries with the partner's net total
type ShareLedgerResponse struct {
	PartnerID uuid.UUID            `json:"partner_id"`
	GroupID   *uuid.UUID           `json:"group_id,omitempty"`
	Entries   []ShareEntryResponse `json:"entries"`
	Total     valueobject.Money    `json:"total"`
}

// SettlementBalanceResponse nets the completed settlements of a partner
type SettlementBalanceResponse struct {
	PartnerID uuid.UUID         `json:"partner_id"`
	GroupID   *uuid.UUID        `json:"group_id,omitempty"`
	Received  valueobject.Money `json:"received"`
	Paid      valueobject.Money `json:"paid"`
	Balance   valueobject.Money `json:"balance"`
}
