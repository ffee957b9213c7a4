package equity

import (
	"context"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShareEntryKind marks a ledger entry as a distribution or its reversal
type ShareEntryKind string

const (
	ShareDistribution ShareEntryKind = "DISTRIBUTION"
	ShareReversal     ShareEntryKind = "REVERSAL"
)

// ShareEntry is an append-only line of the partner share ledger
type ShareEntry struct {
	shared.BaseEntity
	TenantID         uuid.UUID
	PartnerID        uuid.UUID
	GroupID          uuid.UUID
	ContractID       *uuid.UUID
	ReceiptVoucherID uuid.UUID
	Kind             ShareEntryKind
	Percent          decimal.Decimal
	Amount           decimal.Decimal
	EntryDate        time.Time
}

// NewDistributionEntries records the shares of a received payment
func NewDistributionEntries(g *PartnersGroup, shares []Share, voucherID uuid.UUID, contractID *uuid.UUID, date time.Time) []ShareEntry {
	return newEntries(g, shares, voucherID, contractID, date, ShareDistribution)
}

// NewReversalEntries negates earlier distribution entries of a cancelled voucher
func NewReversalEntries(original []ShareEntry, date time.Time) []ShareEntry {
	out := make([]ShareEntry, 0, len(original))
	for _, e := range original {
		if e.Kind != ShareDistribution {
			continue
		}
		out = append(out, ShareEntry{
			BaseEntity:       shared.NewBaseEntity(),
			TenantID:         e.TenantID,
			PartnerID:        e.PartnerID,
			GroupID:          e.GroupID,
			ContractID:       e.ContractID,
			ReceiptVoucherID: e.ReceiptVoucherID,
			Kind:             ShareReversal,
			Percent:          e.Percent,
			Amount:           e.Amount.Neg(),
			EntryDate:        shared.DateOf(date),
		})
	}
	return out
}

func newEntries(g *PartnersGroup, shares []Share, voucherID uuid.UUID, contractID *uuid.UUID, date time.Time, kind ShareEntryKind) []ShareEntry {
	out := make([]ShareEntry, 0, len(shares))
	for _, s := range shares {
		out = append(out, ShareEntry{
			BaseEntity:       shared.NewBaseEntity(),
			TenantID:         g.TenantID,
			PartnerID:        s.PartnerID,
			GroupID:          g.ID,
			ContractID:       contractID,
			ReceiptVoucherID: voucherID,
			Kind:             kind,
			Percent:          s.Percent,
			Amount:           s.Amount.Amount(),
			EntryDate:        shared.DateOf(date),
		})
	}
	return out
}

// ShareEntryFilter defines filtering options for ledger queries
type ShareEntryFilter struct {
	shared.Filter
	PartnerID *uuid.UUID
	GroupID   *uuid.UUID
	From      *time.Time
	To        *time.Time
}

// PartnerRepository defines persistence for partners
type PartnerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Partner, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Partner, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Partner, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	Save(ctx context.Context, p *Partner) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// PartnersGroupRepository defines persistence for partner groups and members
type PartnersGroupRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PartnersGroup, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PartnersGroup, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Save writes the group and replaces its member rows in the same transaction
	Save(ctx context.Context, g *PartnersGroup) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// CountGroupsWithPartner counts groups that list the partner as a member
	CountGroupsWithPartner(ctx context.Context, tenantID, partnerID uuid.UUID) (int64, error)
}

// ShareEntryRepository defines persistence for the share ledger
type ShareEntryRepository interface {
	SaveBatch(ctx context.Context, entries []ShareEntry) error
	FindByVoucher(ctx context.Context, tenantID, voucherID uuid.UUID) ([]ShareEntry, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ShareEntryFilter) ([]ShareEntry, error)
	SumByPartner(ctx context.Context, tenantID, partnerID uuid.UUID, groupID *uuid.UUID) (valueobject.Money, error)
}
