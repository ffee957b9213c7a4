package handler

import (
	"strings"

	salesapp "github.com/erp/realestate/internal/application/sales"
	treasuryapp "github.com/erp/realestate/internal/application/treasury"
	"github.com/erp/realestate/internal/domain/shared"
)

// Column is one exportable field of a list row
type Column[T any] struct {
	Key   string
	Value func(T) any
}

// FieldMap is the fixed column table of an export target
type FieldMap[T any] []Column[T]

// Keys lists the column keys in table order
func (m FieldMap[T]) Keys() []string {
	keys := make([]string, len(m))
	for i, col := range m {
		keys[i] = col.Key
	}
	return keys
}

// Select resolves the requested keys to columns. An empty request selects
// every column; an unknown key is an INVALID_FIELD error.
func (m FieldMap[T]) Select(keys []string) ([]Column[T], error) {
	if len(keys) == 0 {
		return m, nil
	}
	cols := make([]Column[T], 0, len(keys))
	for _, key := range keys {
		col, ok := m.lookup(key)
		if !ok {
			return nil, shared.NewDomainErrorf("INVALID_FIELD",
				"Unknown field %q, expected one of: %s", key, strings.Join(m.Keys(), ", "))
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func (m FieldMap[T]) lookup(key string) (Column[T], bool) {
	for _, col := range m {
		if col.Key == key {
			return col, true
		}
	}
	return Column[T]{}, false
}

// Project renders rows as maps holding only the selected columns
func Project[T any](rows []T, cols []Column[T]) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		m := make(map[string]any, len(cols))
		for _, col := range cols {
			m[col.Key] = col.Value(row)
		}
		out[i] = m
	}
	return out
}

// VoucherFields is the export table shared by receipt and payment vouchers
var VoucherFields = FieldMap[treasuryapp.VoucherResponse]{
	{"id", func(v treasuryapp.VoucherResponse) any { return v.ID }},
	{"type", func(v treasuryapp.VoucherResponse) any { return v.Type }},
	{"number", func(v treasuryapp.VoucherResponse) any { return v.Number }},
	{"date", func(v treasuryapp.VoucherResponse) any { return v.Date.Format(shared.DateLayout) }},
	{"amount", func(v treasuryapp.VoucherResponse) any { return v.Amount }},
	{"safe_id", func(v treasuryapp.VoucherResponse) any { return v.SafeID }},
	{"partner_id", func(v treasuryapp.VoucherResponse) any { return v.PartnerID }},
	{"customer_id", func(v treasuryapp.VoucherResponse) any { return v.CustomerID }},
	{"contract_id", func(v treasuryapp.VoucherResponse) any { return v.ContractID }},
	{"installment_id", func(v treasuryapp.VoucherResponse) any { return v.InstallmentID }},
	{"supplier_id", func(v treasuryapp.VoucherResponse) any { return v.SupplierID }},
	{"project_id", func(v treasuryapp.VoucherResponse) any { return v.ProjectID }},
	{"expense_head", func(v treasuryapp.VoucherResponse) any { return v.ExpenseHead }},
	{"description", func(v treasuryapp.VoucherResponse) any { return v.Description }},
	{"source", func(v treasuryapp.VoucherResponse) any { return v.Source }},
	{"source_id", func(v treasuryapp.VoucherResponse) any { return v.SourceID }},
	{"is_cancelled", func(v treasuryapp.VoucherResponse) any { return v.IsCancelled }},
	{"cancelled_at", func(v treasuryapp.VoucherResponse) any { return v.CancelledAt }},
	{"cancel_reason", func(v treasuryapp.VoucherResponse) any { return v.CancelReason }},
	{"created_by", func(v treasuryapp.VoucherResponse) any { return v.CreatedBy }},
	{"created_at", func(v treasuryapp.VoucherResponse) any { return v.CreatedAt }},
}

// InstallmentFields is the export table of installment rows
var InstallmentFields = FieldMap[salesapp.InstallmentResponse]{
	{"id", func(i salesapp.InstallmentResponse) any { return i.ID }},
	{"contract_id", func(i salesapp.InstallmentResponse) any { return i.ContractID }},
	{"seq_no", func(i salesapp.InstallmentResponse) any { return i.SeqNo }},
	{"due_date", func(i salesapp.InstallmentResponse) any { return i.DueDate.Format(shared.DateLayout) }},
	{"amount", func(i salesapp.InstallmentResponse) any { return i.Amount }},
	{"paid_amount", func(i salesapp.InstallmentResponse) any { return i.PaidAmount }},
	{"remaining", func(i salesapp.InstallmentResponse) any { return i.Remaining }},
	{"status", func(i salesapp.InstallmentResponse) any { return i.Status }},
	{"days_late", func(i salesapp.InstallmentResponse) any { return i.DaysLate }},
}
