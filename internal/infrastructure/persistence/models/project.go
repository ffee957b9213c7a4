package models

import (
	"time"

	"github.com/erp/realestate/internal/domain/project"
	"github.com/shopspring/decimal"
)

// ProjectModel is the persistence model for the Project domain entity.
type ProjectModel struct {
	TenantAggregateModel
	Code      string          `gorm:"type:varchar(50);not null;index"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Type      project.Type    `gorm:"type:varchar(20);not null;default:'build'"`
	StartDate time.Time       `gorm:"type:date;not null"`
	EndDate   *time.Time      `gorm:"type:date"`
	Status    project.Status  `gorm:"type:varchar(20);not null;default:'ongoing';index"`
	Budget    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Notes     string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project entity.
func (m *ProjectModel) ToDomain() *project.Project {
	return &project.Project{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Type:                m.Type,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		Status:              m.Status,
		Budget:              m.Budget,
		Notes:               m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Project entity.
func (m *ProjectModel) FromDomain(p *project.Project) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.Type = p.Type
	m.StartDate = p.StartDate
	m.EndDate = p.EndDate
	m.Status = p.Status
	m.Budget = p.Budget
	m.Notes = p.Notes
}

// ProjectModelFromDomain creates a new persistence model from a domain Project entity.
func ProjectModelFromDomain(p *project.Project) *ProjectModel {
	m := &ProjectModel{}
	m.FromDomain(p)
	return m
}
