package treasury

import (
	"strings"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/google/uuid"
)

// Safe is a cash box. A partner wallet is a safe owned by exactly one partner;
// every other safe is a general safe whose balance is shared by all partners.
type Safe struct {
	shared.TenantAggregateRoot
	Name            string
	IsPartnerWallet bool
	PartnerID       *uuid.UUID
	Description     string
	IsActive        bool
}

// NewSafe creates an active safe. A non-nil partnerID makes it that partner's wallet.
func NewSafe(tenantID uuid.UUID, name string, partnerID *uuid.UUID, description string) (*Safe, error) {
	s := &Safe{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		IsPartnerWallet:     partnerID != nil,
		PartnerID:           partnerID,
		Description:         description,
		IsActive:            true,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the wallet/partner pairing
func (s *Safe) Validate() error {
	if s.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Safe name cannot be empty")
	}
	if len(s.Name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Safe name cannot exceed 100 characters")
	}
	if s.IsPartnerWallet && (s.PartnerID == nil || *s.PartnerID == uuid.Nil) {
		return shared.NewDomainError("INVALID_WALLET", "A partner wallet must reference a partner")
	}
	if !s.IsPartnerWallet && s.PartnerID != nil {
		return shared.NewDomainError("INVALID_WALLET", "Only partner wallets may reference a partner")
	}
	return nil
}

// Rename changes the display name
func (s *Safe) Rename(name, description string) error {
	prev := s.Name
	s.Name = strings.TrimSpace(name)
	if err := s.Validate(); err != nil {
		s.Name = prev
		return err
	}
	s.Description = description
	s.Touch()
	s.IncrementVersion()
	return nil
}

// SetActive toggles whether the safe accepts new vouchers
func (s *Safe) SetActive(active bool) {
	s.IsActive = active
	s.Touch()
}

// EnsureActive returns an error if the safe cannot take new vouchers
func (s *Safe) EnsureActive() error {
	if !s.IsActive {
		return shared.NewDomainErrorf("SAFE_INACTIVE", "Safe %s is inactive", s.Name)
	}
	return nil
}

// IsGeneral reports whether the safe is shared by all partners
func (s *Safe) IsGeneral() bool {
	return !s.IsPartnerWallet
}
