package equity

import (
	"strings"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Partner is an equity holder. SharePercent is the partner's stake in the
// general safes; group percentages govern per-contract distributions.
type Partner struct {
	shared.TenantAggregateRoot
	Code           string
	Name           string
	Phone          string
	SharePercent   decimal.Decimal
	OpeningBalance decimal.Decimal
	Notes          string
	IsActive       bool
}

// PartnerDetails are the editable fields of a partner
type PartnerDetails struct {
	Name           string
	Phone          string
	SharePercent   valueobject.Percentage
	OpeningBalance valueobject.Money
	Notes          string
}

// NewPartner creates an active partner
func NewPartner(tenantID uuid.UUID, code string, d PartnerDetails) (*Partner, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Partner code cannot be empty")
	}
	if strings.TrimSpace(d.Name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Partner name cannot be empty")
	}
	p := &Partner{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.TrimSpace(code),
		IsActive:            true,
	}
	p.apply(d)
	return p, nil
}

func (p *Partner) apply(d PartnerDetails) {
	p.Name = strings.TrimSpace(d.Name)
	p.Phone = d.Phone
	p.SharePercent = d.SharePercent.Value()
	p.OpeningBalance = d.OpeningBalance.Amount()
	p.Notes = d.Notes
}

// Update replaces the editable fields
func (p *Partner) Update(d PartnerDetails) error {
	if strings.TrimSpace(d.Name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Partner name cannot be empty")
	}
	p.apply(d)
	p.Touch()
	p.IncrementVersion()
	return nil
}

// SetActive toggles the partner
func (p *Partner) SetActive(active bool) {
	p.IsActive = active
	p.Touch()
}

// Share returns the partner's stake in the general safes
func (p *Partner) Share() valueobject.Percentage {
	share, err := valueobject.NewPercentage(p.SharePercent)
	if err != nil {
		return valueobject.Percentage{}
	}
	return share
}

// PartnerBalance is the derived position of a partner
type PartnerBalance struct {
	PartnerID        uuid.UUID
	OpeningBalance   valueobject.Money
	WalletBalance    valueobject.Money
	GeneralSafeShare valueobject.Money
	Total            valueobject.Money
}

// ComputeBalance derives the partner balance:
// opening + own wallet + Σ(general safe balance × share%/100), rounded once at the end.
func (p *Partner) ComputeBalance(wallet valueobject.Money, generalSafeBalances []valueobject.Money) PartnerBalance {
	general := valueobject.Sum(generalSafeBalances...)
	share := valueobject.NewMoney(valueobject.Round(general.Amount().Mul(p.SharePercent).Div(decimal.NewFromInt(100))))
	opening := valueobject.NewMoney(p.OpeningBalance)
	return PartnerBalance{
		PartnerID:        p.ID,
		OpeningBalance:   opening,
		WalletBalance:    wallet,
		GeneralSafeShare: share,
		Total:            opening.Add(wallet).Add(share),
	}
}
