package notification

import (
	"fmt"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DuePriority grades an upcoming installment
func DuePriority(daysUntilDue int) Priority {
	if daysUntilDue > 3 {
		return PriorityMedium
	}
	return PriorityHigh
}

// OverduePriority grades an overdue installment
func OverduePriority(daysOverdue int) Priority {
	if daysOverdue > 30 {
		return PriorityUrgent
	}
	return PriorityHigh
}

// LowStockPriority grades a low stock item by balance against its minimum
func LowStockPriority(balance, minimum decimal.Decimal) Priority {
	if !balance.IsPositive() {
		return PriorityUrgent
	}
	if minimum.IsPositive() && balance.Mul(decimal.NewFromInt(100)).Div(minimum).LessThan(decimal.NewFromInt(50)) {
		return PriorityHigh
	}
	return PriorityMedium
}

// BudgetPriority grades a project by its used budget percent
func BudgetPriority(usedPercent decimal.Decimal) Priority {
	switch {
	case usedPercent.GreaterThanOrEqual(decimal.NewFromInt(100)):
		return PriorityUrgent
	case usedPercent.GreaterThanOrEqual(decimal.NewFromInt(90)):
		return PriorityHigh
	}
	return PriorityMedium
}

// SettlementPriority grades a pending settlement by age
func SettlementPriority(daysPending int) Priority {
	if daysPending > 14 {
		return PriorityHigh
	}
	return PriorityMedium
}

// SettlementPendingAfterDays is the age from which pending settlements are reported
const SettlementPendingAfterDays = 7

// DueInstallment is the view of an unpaid installment the generator needs
type DueInstallment struct {
	InstallmentID uuid.UUID
	ContractCode  string
	CustomerName  string
	SeqNo         int
	DueDate       time.Time
	Remaining     valueobject.Money
}

// LowStock is the view of an item at or below its minimum
type LowStock struct {
	ItemID  uuid.UUID
	Name    string
	UOM     string
	Balance decimal.Decimal
	Minimum decimal.Decimal
}

// BudgetAlert is the view of a project's spend
type BudgetAlert struct {
	ProjectID   uuid.UUID
	Name        string
	UsedPercent decimal.Decimal
	Remaining   valueobject.Money
}

// PendingSettlement is the view of a waiting settlement
type PendingSettlement struct {
	SettlementID uuid.UUID
	Number       string
	Amount       valueobject.Money
	CreatedAt    time.Time
}

// Builder produces the notifications one user should receive for a day.
// Settings are passed in explicitly; nothing is read from global state.
type Builder struct {
	TenantID uuid.UUID
	Settings Settings
	Today    time.Time
}

func (b Builder) build(t Type, p Priority, subject uuid.UUID, key, title, message, link string) *Notification {
	n, err := New(b.TenantID, b.Settings.UserID, t, p, title, message, link)
	if err != nil {
		return nil
	}
	n.SubjectID = &subject
	n.DedupKey = key
	return n
}

func appendNonNil(out []*Notification, n *Notification) []*Notification {
	if n != nil {
		out = append(out, n)
	}
	return out
}

// Installments builds due-soon and overdue reminders
func (b Builder) Installments(items []DueInstallment) []*Notification {
	today := shared.DateOf(b.Today)
	horizon := today.AddDate(0, 0, b.Settings.InstallmentDueDays)
	var out []*Notification
	for _, it := range items {
		due := shared.DateOf(it.DueDate)
		switch {
		case b.Settings.NotifyInstallmentDue && due.After(today) && !due.After(horizon):
			days := shared.DaysBetween(today, due)
			out = appendNonNil(out, b.build(TypeInstallmentDue, DuePriority(days), it.InstallmentID,
				DailyKey(TypeInstallmentDue, it.InstallmentID, today),
				"Upcoming installment",
				fmt.Sprintf("Installment #%d of contract %s for %s is due in %d days", it.SeqNo, it.ContractCode, it.CustomerName, days),
				fmt.Sprintf("/installments/%s", it.InstallmentID)))
		case b.Settings.NotifyInstallmentOverdue && due.Before(today):
			days := shared.DaysBetween(due, today)
			out = appendNonNil(out, b.build(TypeInstallmentOverdue, OverduePriority(days), it.InstallmentID,
				DailyKey(TypeInstallmentOverdue, it.InstallmentID, today),
				"Overdue installment",
				fmt.Sprintf("Installment #%d of contract %s for %s is %d days late, remaining %s", it.SeqNo, it.ContractCode, it.CustomerName, days, it.Remaining),
				fmt.Sprintf("/installments/%s", it.InstallmentID)))
		}
	}
	return out
}

// LowStock builds low stock alerts
func (b Builder) LowStock(items []LowStock) []*Notification {
	if !b.Settings.NotifyLowStock {
		return nil
	}
	var out []*Notification
	for _, it := range items {
		if it.Balance.GreaterThan(it.Minimum) {
			continue
		}
		out = appendNonNil(out, b.build(TypeLowStock, LowStockPriority(it.Balance, it.Minimum), it.ItemID,
			WeeklyKey(TypeLowStock, it.ItemID, b.Today),
			"Low stock",
			fmt.Sprintf("Item %q reached its minimum, available %s %s", it.Name, it.Balance.String(), it.UOM),
			fmt.Sprintf("/items/%s", it.ItemID)))
	}
	return out
}

// Budgets builds alerts for projects at or over the user's threshold
func (b Builder) Budgets(projects []BudgetAlert) []*Notification {
	if !b.Settings.NotifyProjectBudget {
		return nil
	}
	threshold := decimal.NewFromInt(int64(b.Settings.BudgetThresholdPercent))
	var out []*Notification
	for _, p := range projects {
		if p.UsedPercent.LessThan(threshold) {
			continue
		}
		out = appendNonNil(out, b.build(TypeProjectBudget, BudgetPriority(p.UsedPercent), p.ProjectID,
			WeeklyKey(TypeProjectBudget, p.ProjectID, b.Today),
			"Project budget alert",
			fmt.Sprintf("Project %q used %s%% of its budget, remaining %s", p.Name, p.UsedPercent.StringFixed(0), p.Remaining),
			fmt.Sprintf("/projects/%s", p.ProjectID)))
	}
	return out
}

// Settlements builds reminders for settlements pending longer than a week
func (b Builder) Settlements(pending []PendingSettlement) []*Notification {
	if !b.Settings.NotifySettlements {
		return nil
	}
	var out []*Notification
	for _, s := range pending {
		days := shared.DaysBetween(s.CreatedAt, b.Today)
		if days < SettlementPendingAfterDays {
			continue
		}
		out = appendNonNil(out, b.build(TypeSettlementPending, SettlementPriority(days), s.SettlementID,
			WeeklyKey(TypeSettlementPending, s.SettlementID, b.Today),
			"Pending settlement",
			fmt.Sprintf("Settlement %s has been pending for %d days, amount %s", s.Number, days, s.Amount),
			fmt.Sprintf("/settlements/%s", s.SettlementID)))
	}
	return out
}

// ContractCreated notifies a user about a new contract
func ContractCreated(tenantID, userID, contractID uuid.UUID, code, customerName string) (*Notification, error) {
	n, err := New(tenantID, userID, TypeContractCreated, PriorityLow, "New contract",
		fmt.Sprintf("Contract %s was created for %s", code, customerName),
		fmt.Sprintf("/contracts/%s", contractID))
	if err != nil {
		return nil, err
	}
	n.SubjectID = &contractID
	n.DedupKey = fmt.Sprintf("%s:%s", TypeContractCreated, contractID)
	return n, nil
}

// PaymentReceived notifies a user about a posted receipt
func PaymentReceived(tenantID, userID, voucherID uuid.UUID, number string, amount valueobject.Money, customerName, contractCode string) (*Notification, error) {
	msg := fmt.Sprintf("Received %s from %s", amount, customerName)
	if contractCode != "" {
		msg += fmt.Sprintf(" for contract %s", contractCode)
	}
	n, err := New(tenantID, userID, TypePaymentReceived, PriorityMedium, "Payment received", msg,
		fmt.Sprintf("/receipt-vouchers/%s", voucherID))
	if err != nil {
		return nil, err
	}
	n.SubjectID = &voucherID
	n.DedupKey = fmt.Sprintf("%s:%s:%s", TypePaymentReceived, voucherID, number)
	return n, nil
}
