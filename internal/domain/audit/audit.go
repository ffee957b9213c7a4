// Package audit holds the report-only data integrity checks. Checks never
// correct data; they describe what they find.
package audit

import (
	"fmt"
	"time"

	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/inventory"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Severity grades a finding
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Check names
const (
	CheckInstallmentSum    = "installment_sum"
	CheckInstallmentPaid   = "installment_overpaid"
	CheckInstallmentStatus = "installment_status"
	CheckSafeBalance       = "safe_balance"
	CheckItemStock         = "item_stock"
	CheckItemMinimum       = "item_minimum"
	CheckGroupPercent      = "group_percent"
	CheckPartnerBalance    = "partner_balance"
)

var cent = decimal.RequireFromString("0.01")

// Finding is one integrity problem
type Finding struct {
	Check       string    `json:"check"`
	Severity    Severity  `json:"severity"`
	SubjectType string    `json:"subject_type"`
	SubjectID   uuid.UUID `json:"subject_id"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
}

// Report collects the findings of one run
type Report struct {
	TenantID    uuid.UUID      `json:"tenant_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Checked     map[string]int `json:"checked"`
	Findings    []Finding      `json:"findings"`
}

// NewReport starts an empty report
func NewReport(tenantID uuid.UUID, at time.Time) *Report {
	return &Report{
		TenantID:    tenantID,
		GeneratedAt: at,
		Checked:     make(map[string]int),
		Findings:    []Finding{},
	}
}

// Add appends findings and counts the checked subject
func (r *Report) Add(subjectType string, findings ...Finding) {
	r.Checked[subjectType]++
	r.Findings = append(r.Findings, findings...)
}

// Count returns the number of findings of a severity
func (r *Report) Count(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// IsClean reports whether no errors were found
func (r *Report) IsClean() bool {
	return r.Count(SeverityError) == 0
}

// Contract checks the schedule sum, paid amounts and stored statuses
func Contract(c *contract.Contract, today time.Time) []Finding {
	var out []Finding
	newFinding := func(check string, sev Severity, msg string) Finding {
		return Finding{Check: check, Severity: sev, SubjectType: "contract", SubjectID: c.ID, Subject: c.Code, Message: msg}
	}

	if len(c.Installments) > 0 {
		expected := c.Financed()
		actual := c.ScheduleTotal()
		if actual.Sub(expected).Amount().Abs().GreaterThan(cent) {
			out = append(out, newFinding(CheckInstallmentSum, SeverityError,
				fmt.Sprintf("installments sum to %s, expected %s", actual, expected)))
		}
	}

	for i := range c.Installments {
		inst := &c.Installments[i]
		if inst.PaidAmount.GreaterThan(inst.Amount) {
			out = append(out, newFinding(CheckInstallmentPaid, SeverityError,
				fmt.Sprintf("installment #%d paid %s exceeds amount %s", inst.SeqNo, inst.PaidAmount.StringFixed(2), inst.Amount.StringFixed(2))))
		}
		if derived := inst.DeriveStatus(today); derived != inst.Status {
			out = append(out, newFinding(CheckInstallmentStatus, SeverityWarning,
				fmt.Sprintf("installment #%d is stored as %s but should be %s", inst.SeqNo, inst.Status, derived)))
		}
	}
	return out
}

// SafeBalance flags a negative safe balance
func SafeBalance(safeID uuid.UUID, name string, balance valueobject.Money) []Finding {
	if !balance.IsNegative() {
		return nil
	}
	return []Finding{{
		Check: CheckSafeBalance, Severity: SeverityError, SubjectType: "safe", SubjectID: safeID, Subject: name,
		Message: fmt.Sprintf("balance is negative: %s", balance),
	}}
}

// Stock flags negative stock (error) and stock at or below the minimum (warning)
func Stock(level inventory.StockLevel) []Finding {
	f := Finding{SubjectType: "item", SubjectID: level.ItemID, Subject: level.Name}
	switch {
	case level.Balance.IsNegative():
		f.Check, f.Severity = CheckItemStock, SeverityError
		f.Message = fmt.Sprintf("stock is negative: %s %s", level.Balance.String(), level.UOM)
	case level.MinimumStock.IsPositive() && level.Balance.LessThanOrEqual(level.MinimumStock):
		f.Check, f.Severity = CheckItemMinimum, SeverityWarning
		f.Message = fmt.Sprintf("stock %s is at or below minimum %s", level.Balance.String(), level.MinimumStock.String())
	default:
		return nil
	}
	return []Finding{f}
}

// Group flags a finalized group whose percentages drift from 100
func Group(g *equity.PartnersGroup) []Finding {
	if g.Status != equity.GroupFinalized || g.IsPercentValid() {
		return nil
	}
	return []Finding{{
		Check: CheckGroupPercent, Severity: SeverityError, SubjectType: "partners_group", SubjectID: g.ID, Subject: g.Name,
		Message: fmt.Sprintf("member percentages sum to %s", g.TotalPercent().StringFixed(2)),
	}}
}

// PartnerBalance flags a negative partner balance
func PartnerBalance(p *equity.Partner, balance valueobject.Money) []Finding {
	if !balance.IsNegative() {
		return nil
	}
	return []Finding{{
		Check: CheckPartnerBalance, Severity: SeverityWarning, SubjectType: "partner", SubjectID: p.ID, Subject: p.Name,
		Message: fmt.Sprintf("balance is negative: %s", balance),
	}}
}
