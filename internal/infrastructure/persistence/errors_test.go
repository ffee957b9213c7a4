package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		what string
		ok   bool
	}{
		{"nil", nil, "", false},
		{"postgres unique", fmt.Errorf("save: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uq_contracts_unit"}), "uq_contracts_unit", true},
		{"postgres foreign key", &pgconn.PgError{Code: "23503", ConstraintName: "installments_contract_id_fkey"}, "installments_contract_id_fkey", false},
		{"sqlite unique", errors.New("UNIQUE constraint failed: contracts.unit_id"), "contracts.unit_id", true},
		{"other", errors.New("connection reset"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			what, ok := uniqueViolation(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.what, what)
		})
	}
}
