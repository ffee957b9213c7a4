package party

import (
	"testing"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	tenantID := uuid.New()

	t.Run("valid", func(t *testing.T) {
		c, err := NewCustomer(tenantID, " CU-1 ", CustomerDetails{Name: "Sara", Phone: "+964 770-123"})
		require.NoError(t, err)
		assert.Equal(t, "CU-1", c.Code)
		assert.True(t, c.IsActive)
		assert.Equal(t, tenantID, c.TenantID)
	})

	tests := []struct {
		name    string
		code    string
		details CustomerDetails
		errCode string
	}{
		{"empty code", "", CustomerDetails{Name: "x"}, "INVALID_CODE"},
		{"empty name", "C1", CustomerDetails{Name: "  "}, "INVALID_NAME"},
		{"letters in phone", "C1", CustomerDetails{Name: "x", Phone: "07x"}, "INVALID_PHONE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCustomer(tenantID, tt.code, tt.details)
			assert.True(t, shared.IsDomainError(err, tt.errCode), "got %v", err)
		})
	}
}

func TestCustomer_Update(t *testing.T) {
	c, err := NewCustomer(uuid.New(), "C1", CustomerDetails{Name: "A"})
	require.NoError(t, err)
	require.NoError(t, c.Update(CustomerDetails{Name: "B", Email: "b@example.com"}))
	assert.Equal(t, "B", c.Name)
	assert.Equal(t, 2, c.Version)
	assert.Error(t, c.Update(CustomerDetails{Name: "B", Phone: "abc"}))
}

func TestNewSupplier(t *testing.T) {
	s, err := NewSupplier(uuid.New(), "S1", "Cement Co", "0770", "Erbil")
	require.NoError(t, err)
	assert.True(t, s.IsActive)
	require.NoError(t, s.Update("Cement Co Ltd", "", "", "bulk"))
	assert.Equal(t, "Cement Co Ltd", s.Name)

	_, err = NewSupplier(uuid.New(), "S2", "", "", "")
	assert.True(t, shared.IsDomainError(err, "INVALID_NAME"))
}
