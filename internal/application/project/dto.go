package project

import (
	"time"

	"github.com/erp/realestate/internal/domain/project"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	Code      string          `json:"code" binding:"required,min=1,max=50"`
	Name      string          `json:"name" binding:"required,min=1,max=200"`
	Type      string          `json:"type" binding:"omitempty,oneof=build maintenance renovation"`
	StartDate string          `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string          `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Status    string          `json:"status" binding:"omitempty,oneof=ongoing done hold"`
	Budget    decimal.Decimal `json:"budget" binding:"decimal_gte0"`
	Notes     string          `json:"notes"`
	CreatedBy *uuid.UUID      `json:"-"`
}

// UpdateProjectRequest represents a request to update a project
type UpdateProjectRequest struct {
	Name      string          `json:"name" binding:"required,min=1,max=200"`
	Type      string          `json:"type" binding:"required,oneof=build maintenance renovation"`
	StartDate string          `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string          `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Status    string          `json:"status" binding:"required,oneof=ongoing done hold"`
	Budget    decimal.Decimal `json:"budget" binding:"decimal_gte0"`
	Notes     string          `json:"notes"`
}

func details(name, typ, start, end, status string, budget decimal.Decimal, notes string) (project.Details, error) {
	startDate, err := shared.ParseDate(start)
	if err != nil {
		return project.Details{}, err
	}
	d := project.Details{
		Name:      name,
		Type:      project.Type(typ),
		StartDate: startDate,
		Status:    project.Status(status),
		Budget:    valueobject.NewMoney(budget),
		Notes:     notes,
	}
	if end != "" {
		endDate, err := shared.ParseDate(end)
		if err != nil {
			return project.Details{}, err
		}
		d.EndDate = &endDate
	}
	return d, nil
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID        uuid.UUID         `json:"id"`
	Code      string            `json:"code"`
	Name      string            `json:"name"`
	Type      project.Type      `json:"type"`
	StartDate time.Time         `json:"start_date"`
	EndDate   *time.Time        `json:"end_date,omitempty"`
	Status    project.Status    `json:"status"`
	Budget    valueobject.Money `json:"budget"`
	Notes     string            `json:"notes"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ToProjectResponse converts a domain project to a response
func ToProjectResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Code:      p.Code,
		Name:      p.Name,
		Type:      p.Type,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Status:    p.Status,
		Budget:    p.BudgetMoney(),
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// BudgetResponse is the spend position of a project
type BudgetResponse struct {
	project.BudgetSummary
	Code string `json:"code"`
	Name string `json:"name"`
}
