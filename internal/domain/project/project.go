package project

import (
	"context"
	"strings"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type classifies the work a project does
type Type string

const (
	TypeBuild       Type = "build"
	TypeMaintenance Type = "maintenance"
	TypeRenovation  Type = "renovation"
)

// IsValid checks if the project type is known
func (t Type) IsValid() bool {
	switch t {
	case TypeBuild, TypeMaintenance, TypeRenovation:
		return true
	}
	return false
}

// Status is the progress state of a project
type Status string

const (
	StatusOngoing Status = "ongoing"
	StatusDone    Status = "done"
	StatusHold    Status = "hold"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusOngoing, StatusDone, StatusHold:
		return true
	}
	return false
}

// Project is a budget-tracked cost object. Payment vouchers and stock issues
// can be charged to it.
type Project struct {
	shared.TenantAggregateRoot
	Code      string
	Name      string
	Type      Type
	StartDate time.Time
	EndDate   *time.Time
	Status    Status
	Budget    decimal.Decimal
	Notes     string
}

// Details are the editable project fields
type Details struct {
	Name      string
	Type      Type
	StartDate time.Time
	EndDate   *time.Time
	Status    Status
	Budget    valueobject.Money
	Notes     string
}

func (d Details) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Project name cannot be empty")
	}
	if !d.Type.IsValid() {
		return shared.NewDomainError("INVALID_PROJECT_TYPE", "Project type must be build, maintenance or renovation")
	}
	if !d.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Project status must be ongoing, done or hold")
	}
	if d.StartDate.IsZero() {
		return shared.NewDomainError("INVALID_START_DATE", "Start date is required")
	}
	if d.EndDate != nil && d.EndDate.Before(d.StartDate) {
		return shared.NewDomainError("INVALID_END_DATE", "End date cannot be before start date")
	}
	if d.Budget.IsNegative() {
		return shared.NewDomainError("INVALID_BUDGET", "Budget cannot be negative")
	}
	return nil
}

// NewProject creates a project
func NewProject(tenantID uuid.UUID, code string, d Details) (*Project, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Project code cannot be empty")
	}
	if d.Type == "" {
		d.Type = TypeBuild
	}
	if d.Status == "" {
		d.Status = StatusOngoing
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	p := &Project{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.TrimSpace(code),
	}
	p.apply(d)
	return p, nil
}

func (p *Project) apply(d Details) {
	p.Name = strings.TrimSpace(d.Name)
	p.Type = d.Type
	p.StartDate = shared.DateOf(d.StartDate)
	if d.EndDate != nil {
		end := shared.DateOf(*d.EndDate)
		p.EndDate = &end
	} else {
		p.EndDate = nil
	}
	p.Status = d.Status
	p.Budget = d.Budget.Rounded().Amount()
	p.Notes = d.Notes
}

// Update replaces the editable fields
func (p *Project) Update(d Details) error {
	if err := d.validate(); err != nil {
		return err
	}
	p.apply(d)
	p.Touch()
	p.IncrementVersion()
	return nil
}

// BudgetMoney returns the budget as Money
func (p *Project) BudgetMoney() valueobject.Money {
	return valueobject.NewMoney(p.Budget)
}

// BudgetSummary is the spend position of a project
type BudgetSummary struct {
	ProjectID       uuid.UUID         `json:"project_id"`
	Budget          valueobject.Money `json:"budget"`
	VoucherExpenses valueobject.Money `json:"voucher_expenses"`
	MaterialsCost   valueobject.Money `json:"materials_cost"`
	TotalExpenses   valueobject.Money `json:"total_expenses"`
	Remaining       valueobject.Money `json:"budget_remaining"`
	UsedPercent     decimal.Decimal   `json:"budget_used_percent"`
	IsOverBudget    bool              `json:"is_over_budget"`
}

// Summarize computes the budget position from payment vouchers charged to the
// project and the value of stock issued to it.
func (p *Project) Summarize(voucherExpenses, materialsCost valueobject.Money) BudgetSummary {
	total := voucherExpenses.Add(materialsCost).Rounded()
	budget := p.BudgetMoney()
	return BudgetSummary{
		ProjectID:       p.ID,
		Budget:          budget,
		VoucherExpenses: voucherExpenses.Rounded(),
		MaterialsCost:   materialsCost.Rounded(),
		TotalExpenses:   total,
		Remaining:       budget.Sub(total),
		UsedPercent:     valueobject.PercentOf(total, budget),
		IsOverBudget:    total.GreaterThan(budget),
	}
}

// Filter defines filtering options for project queries
type Filter struct {
	shared.Filter
	Status *Status
	Type   *Type
}

// Repository defines persistence for projects
type Repository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Project, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Project, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) (int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	Save(ctx context.Context, p *Project) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
