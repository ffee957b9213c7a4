package project

import (
	"context"

	"github.com/erp/realestate/internal/domain/inventory"
	"github.com/erp/realestate/internal/domain/project"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/google/uuid"
)

// ProjectService handles projects and their budget tracking
type ProjectService struct {
	projectRepo project.Repository
	paymentRepo treasury.PaymentVoucherRepository
	moveRepo    inventory.StockMoveRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo project.Repository,
	paymentRepo treasury.PaymentVoucherRepository,
	moveRepo inventory.StockMoveRepository,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		paymentRepo: paymentRepo,
		moveRepo:    moveRepo,
	}
}

// Create creates a new project
func (s *ProjectService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProjectRequest) (*ProjectResponse, error) {
	exists, err := s.projectRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Project with this code already exists")
	}
	d, err := details(req.Name, req.Type, req.StartDate, req.EndDate, req.Status, req.Budget, req.Notes)
	if err != nil {
		return nil, err
	}
	p, err := project.NewProject(tenantID, req.Code, d)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		p.SetCreatedBy(*req.CreatedBy)
	}
	if err := s.projectRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	response := ToProjectResponse(p)
	return &response, nil
}

// GetByID retrieves a project by ID
func (s *ProjectService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToProjectResponse(p)
	return &response, nil
}

// List retrieves projects with pagination
func (s *ProjectService) List(ctx context.Context, tenantID uuid.UUID, filter project.Filter) ([]ProjectResponse, int64, error) {
	projects, err := s.projectRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.projectRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ProjectResponse, len(projects))
	for i := range projects {
		out[i] = ToProjectResponse(&projects[i])
	}
	return out, total, nil
}

// Update updates a project
func (s *ProjectService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	d, err := details(req.Name, req.Type, req.StartDate, req.EndDate, req.Status, req.Budget, req.Notes)
	if err != nil {
		return nil, err
	}
	if err := p.Update(d); err != nil {
		return nil, err
	}
	if err := s.projectRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	response := ToProjectResponse(p)
	return &response, nil
}

// Delete removes a project nothing is charged to
func (s *ProjectService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.projectRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	payments, err := s.paymentRepo.CountForTenant(ctx, tenantID, treasury.VoucherFilter{ProjectID: &id, IncludeCancelled: true})
	if err != nil {
		return err
	}
	if payments > 0 {
		return shared.NewHasDependentsError("project", "payment vouchers")
	}
	moves, err := s.moveRepo.CountForTenant(ctx, tenantID, inventory.StockMoveFilter{ProjectID: &id})
	if err != nil {
		return err
	}
	if moves > 0 {
		return shared.NewHasDependentsError("project", "stock moves")
	}
	return s.projectRepo.Delete(ctx, tenantID, id)
}

// Budget returns the project's spend against its budget: non-cancelled
// payment vouchers charged to it plus the value of stock issued to it
func (s *ProjectService) Budget(ctx context.Context, tenantID, id uuid.UUID) (*BudgetResponse, error) {
	p, err := s.projectRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	summary, err := s.summarize(ctx, p)
	if err != nil {
		return nil, err
	}
	return &BudgetResponse{BudgetSummary: summary, Code: p.Code, Name: p.Name}, nil
}

func (s *ProjectService) summarize(ctx context.Context, p *project.Project) (project.BudgetSummary, error) {
	vouchers, err := s.paymentRepo.SumAmount(ctx, p.TenantID, treasury.VoucherFilter{ProjectID: &p.ID})
	if err != nil {
		return project.BudgetSummary{}, err
	}
	materials, err := s.moveRepo.MaterialsCost(ctx, p.TenantID, p.ID)
	if err != nil {
		return project.BudgetSummary{}, err
	}
	return p.Summarize(vouchers, materials), nil
}

// Budgets returns the budget position of every ongoing project
func (s *ProjectService) Budgets(ctx context.Context, tenantID uuid.UUID) ([]BudgetResponse, error) {
	ongoing := project.StatusOngoing
	projects, err := s.projectRepo.FindAllForTenant(ctx, tenantID, project.Filter{Status: &ongoing})
	if err != nil {
		return nil, err
	}
	out := make([]BudgetResponse, 0, len(projects))
	for i := range projects {
		summary, err := s.summarize(ctx, &projects[i])
		if err != nil {
			return nil, err
		}
		out = append(out, BudgetResponse{BudgetSummary: summary, Code: projects[i].Code, Name: projects[i].Name})
	}
	return out, nil
}
