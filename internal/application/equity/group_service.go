package equity

import (
	"context"
	"time"

	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/settlement"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GroupService handles partners groups and their membership
type GroupService struct {
	groupRepo      equity.PartnersGroupRepository
	partnerRepo    equity.PartnerRepository
	contractRepo   contract.ContractRepository
	settlementRepo settlement.Repository
	logger         *zap.Logger
}

// NewGroupService creates a new GroupService
func NewGroupService(
	groupRepo equity.PartnersGroupRepository,
	partnerRepo equity.PartnerRepository,
	contractRepo contract.ContractRepository,
	settlementRepo settlement.Repository,
	logger *zap.Logger,
) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{
		groupRepo:      groupRepo,
		partnerRepo:    partnerRepo,
		contractRepo:   contractRepo,
		settlementRepo: settlementRepo,
		logger:         logger,
	}
}

// Create creates a group with its members; Finalize locks it in the same write
func (s *GroupService) Create(ctx context.Context, tenantID uuid.UUID, req CreateGroupRequest) (*GroupResponse, error) {
	group, err := equity.NewPartnersGroup(tenantID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		group.SetCreatedBy(*req.CreatedBy)
	}
	names, err := s.setMembers(ctx, tenantID, group, req.Members)
	if err != nil {
		return nil, err
	}
	if req.Finalize {
		if err := group.Finalize(time.Now()); err != nil {
			return nil, err
		}
	}
	// Members are written together with the group
	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}
	s.logger.Info("Partners group created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("group_id", group.ID.String()),
		zap.String("status", string(group.Status)),
	)
	response := ToGroupResponse(group, names)
	return &response, nil
}

func (s *GroupService) setMembers(ctx context.Context, tenantID uuid.UUID, group *equity.PartnersGroup, reqs []MemberRequest) (map[uuid.UUID]string, error) {
	members := make([]equity.Member, 0, len(reqs))
	ids := make([]uuid.UUID, 0, len(reqs))
	for _, m := range reqs {
		members = append(members, equity.Member{PartnerID: m.PartnerID, Percent: m.Percent})
		ids = append(ids, m.PartnerID)
	}
	if err := group.SetMembers(members); err != nil {
		return nil, err
	}
	return s.partnerNames(ctx, tenantID, ids, true)
}

func (s *GroupService) partnerNames(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, strict bool) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	partners, err := s.partnerRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range partners {
		names[p.ID] = p.Name
	}
	if strict && len(names) != len(ids) {
		return nil, shared.NewNotFoundError("Partner")
	}
	return names, nil
}

func (s *GroupService) response(ctx context.Context, group *equity.PartnersGroup) (*GroupResponse, error) {
	ids := make([]uuid.UUID, 0, len(group.Members))
	for _, m := range group.Members {
		ids = append(ids, m.PartnerID)
	}
	names, err := s.partnerNames(ctx, group.TenantID, ids, false)
	if err != nil {
		return nil, err
	}
	response := ToGroupResponse(group, names)
	return &response, nil
}

// GetByID retrieves a group with its members
func (s *GroupService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return s.response(ctx, group)
}

// List retrieves groups with pagination
func (s *GroupService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]GroupResponse, int64, error) {
	groups, err := s.groupRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.groupRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]GroupResponse, len(groups))
	for i := range groups {
		out[i] = ToGroupResponse(&groups[i], nil)
	}
	return out, total, nil
}

// Update renames a draft group and replaces its members
func (s *GroupService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateGroupRequest) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := group.Rename(req.Name, req.Description); err != nil {
		return nil, err
	}
	names, err := s.setMembers(ctx, tenantID, group, req.Members)
	if err != nil {
		return nil, err
	}
	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}
	response := ToGroupResponse(group, names)
	return &response, nil
}

// Finalize locks the membership once percentages sum to 100
func (s *GroupService) Finalize(ctx context.Context, tenantID, id uuid.UUID) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := group.Finalize(time.Now()); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}
	return s.response(ctx, group)
}

// Reopen returns a group to draft. Payments on its contracts fail until it is finalized again.
func (s *GroupService) Reopen(ctx context.Context, tenantID, id uuid.UUID) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := group.Reopen(); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}
	s.logger.Warn("Partners group reopened",
		zap.String("tenant_id", tenantID.String()),
		zap.String("group_id", id.String()),
	)
	return s.response(ctx, group)
}

// Delete removes a group no contract or settlement refers to
func (s *GroupService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	contracts, err := s.contractRepo.CountByPartnersGroup(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if contracts > 0 {
		return shared.NewHasDependentsError("partners group", "contracts")
	}
	settlements, err := s.settlementRepo.CountForTenant(ctx, tenantID, settlement.Filter{PartnersGroupID: &id})
	if err != nil {
		return err
	}
	if settlements > 0 {
		return shared.NewHasDependentsError("partners group", "settlements")
	}
	return s.groupRepo.Delete(ctx, tenantID, id)
}
