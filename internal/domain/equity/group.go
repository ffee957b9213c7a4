package equity

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GroupStatus tracks whether a group's membership is final
type GroupStatus string

const (
	GroupDraft     GroupStatus = "DRAFT"     // Members may change, not usable for distribution
	GroupFinalized GroupStatus = "FINALIZED" // Percentages sum to 100, usable for distribution
)

// IsValid checks if the status is valid
func (s GroupStatus) IsValid() bool {
	return s == GroupDraft || s == GroupFinalized
}

var (
	fullShare        = decimal.NewFromInt(100)
	percentTolerance = decimal.RequireFromString("0.01")
)

// Member is one partner's stake in a group
type Member struct {
	PartnerID uuid.UUID
	Percent   decimal.Decimal
}

// PartnersGroup is a weighted set of partners that shares the proceeds of the
// contracts attached to it.
type PartnersGroup struct {
	shared.TenantAggregateRoot
	Name        string
	Description string
	Status      GroupStatus
	Members     []Member
	FinalizedAt *time.Time
}

// NewPartnersGroup creates an empty draft group
func NewPartnersGroup(tenantID uuid.UUID, name, description string) (*PartnersGroup, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Group name cannot be empty")
	}
	return &PartnersGroup{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		Description:         description,
		Status:              GroupDraft,
	}, nil
}

// Rename changes the group name and description
func (g *PartnersGroup) Rename(name, description string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Group name cannot be empty")
	}
	g.Name = strings.TrimSpace(name)
	g.Description = description
	g.Touch()
	g.IncrementVersion()
	return nil
}

// SetMembers replaces the membership. Only draft groups can change.
func (g *PartnersGroup) SetMembers(members []Member) error {
	if g.Status != GroupDraft {
		return shared.NewDomainError("GROUP_FINALIZED", "Members of a finalized group cannot change; reopen it first")
	}
	seen := make(map[uuid.UUID]struct{}, len(members))
	for _, m := range members {
		if m.PartnerID == uuid.Nil {
			return shared.NewDomainError("INVALID_PARTNER", "Member partner is required")
		}
		if _, dup := seen[m.PartnerID]; dup {
			return shared.NewDomainError("DUPLICATE_MEMBER", "A partner can appear only once in a group")
		}
		seen[m.PartnerID] = struct{}{}
		if !m.Percent.IsPositive() || m.Percent.GreaterThan(fullShare) {
			return shared.NewDomainError("INVALID_PERCENT", "Member percent must be greater than 0 and at most 100")
		}
		if !m.Percent.Equal(m.Percent.Round(2)) {
			return shared.NewDomainError("INVALID_PERCENT", "Member percent cannot have more than two decimal places")
		}
	}
	g.Members = append([]Member(nil), members...)
	g.Touch()
	g.IncrementVersion()
	return nil
}

// TotalPercent sums the member percentages
func (g *PartnersGroup) TotalPercent() decimal.Decimal {
	total := decimal.Zero
	for _, m := range g.Members {
		total = total.Add(m.Percent)
	}
	return total
}

// HasMember reports whether the partner belongs to the group
func (g *PartnersGroup) HasMember(partnerID uuid.UUID) bool {
	for _, m := range g.Members {
		if m.PartnerID == partnerID {
			return true
		}
	}
	return false
}

// Finalize locks the membership. Percentages must sum to exactly 100.00.
func (g *PartnersGroup) Finalize(at time.Time) error {
	if g.Status == GroupFinalized {
		return shared.NewDomainError("GROUP_FINALIZED", "Group is already finalized")
	}
	if len(g.Members) == 0 {
		return shared.NewDomainError("INVALID_PERCENT_SUM", "A group needs at least one member")
	}
	if total := g.TotalPercent(); !total.Equal(fullShare) {
		return shared.NewDomainError("INVALID_PERCENT_SUM",
			fmt.Sprintf("Member percentages must sum to 100.00, got %s", total.StringFixed(2)))
	}
	g.Status = GroupFinalized
	g.FinalizedAt = &at
	g.UpdatedAt = at
	g.IncrementVersion()
	return nil
}

// Reopen returns the group to draft so members can be corrected
func (g *PartnersGroup) Reopen() error {
	if g.Status != GroupFinalized {
		return shared.NewDomainError("INVALID_STATE", "Only finalized groups can be reopened")
	}
	g.Status = GroupDraft
	g.FinalizedAt = nil
	g.Touch()
	g.IncrementVersion()
	return nil
}

// EnsureFinalized returns an error unless the group can take distributions
func (g *PartnersGroup) EnsureFinalized() error {
	if g.Status != GroupFinalized {
		return shared.NewDomainErrorf("GROUP_NOT_FINALIZED", "Partners group %s is not finalized", g.Name)
	}
	return nil
}

// PercentDrift returns how far the member total is from 100, for audits
func (g *PartnersGroup) PercentDrift() decimal.Decimal {
	return g.TotalPercent().Sub(fullShare).Abs()
}

// IsPercentValid reports whether the member total is within a cent of 100
func (g *PartnersGroup) IsPercentValid() bool {
	return g.PercentDrift().LessThanOrEqual(percentTolerance)
}

// Share is one partner's cut of a distributed amount
type Share struct {
	PartnerID uuid.UUID
	Percent   decimal.Decimal
	Amount    valueobject.Money
}

// Distribute splits amount by member percent, each share rounded half-up to
// two places. Shares are not adjusted to absorb rounding residue, so their
// sum equals amount whenever every share is cent-exact.
func (g *PartnersGroup) Distribute(amount valueobject.Money) ([]Share, error) {
	if err := g.EnsureFinalized(); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Distributed amount must be positive")
	}
	shares := make([]Share, 0, len(g.Members))
	for _, m := range g.Members {
		pct, err := valueobject.NewPercentage(m.Percent)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_PERCENT", err.Error())
		}
		shares = append(shares, Share{
			PartnerID: m.PartnerID,
			Percent:   m.Percent,
			Amount:    pct.Of(amount),
		})
	}
	return shares, nil
}

// TotalShares sums share amounts
func TotalShares(shares []Share) valueobject.Money {
	total := valueobject.Zero()
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}
