package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appsnxt/platform/internal/domain/shared"
)

func TestNewProduct(t *testing.T) {
	product, err := NewProduct("Acme Analytics", "")

	require.NoError(t, err)
	assert.Equal(t, "Acme Analytics", product.Name)
	assert.Equal(t, "acme-analytics", product.Slug)
	assert.True(t, product.IsActive)
	assert.False(t, product.IsFeatured)
	assert.True(t, product.StarterPrice.IsZero())
	assert.Len(t, product.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeProductCreated, product.GetDomainEvents()[0].EventType())
}

func TestNewProduct_ExplicitSlug(t *testing.T) {
	product, err := NewProduct("Acme Analytics", "acme")

	require.NoError(t, err)
	assert.Equal(t, "acme", product.Slug)
}

func TestNewProduct_InvalidName(t *testing.T) {
	_, err := NewProduct("", "")

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_NAME", domainErr.Code)
}

func TestNewProduct_InvalidSlug(t *testing.T) {
	_, err := NewProduct("Acme", "Not A Slug")

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_SLUG", domainErr.Code)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Acme Analytics", "acme-analytics"},
		{"punctuation", "Acme: Analytics!", "acme-analytics"},
		{"diacritics", "Café Résumé", "cafe-resume"},
		{"collapse runs", "a  --  b", "a-b"},
		{"leading trailing", "  Acme  ", "acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestProduct_SetPricing(t *testing.T) {
	product, err := NewProduct("Acme", "")
	require.NoError(t, err)
	product.ClearDomainEvents()

	err = product.SetPricing(
		decimal.NewFromFloat(9.99),
		decimal.NewFromFloat(29.99),
		decimal.NewFromFloat(99.99),
	)

	require.NoError(t, err)
	assert.True(t, product.StarterPrice.Equal(decimal.NewFromFloat(9.99)))
	assert.True(t, product.PriceForPlan(PlanProfessional).Equal(decimal.NewFromFloat(29.99)))
	assert.True(t, product.PriceForPlan(PlanEnterprise).Equal(decimal.NewFromFloat(99.99)))
	assert.Equal(t, 2, product.GetVersion())
	require.Len(t, product.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeProductPricingChanged, product.GetDomainEvents()[0].EventType())
}

func TestProduct_SetPricing_Negative(t *testing.T) {
	product, err := NewProduct("Acme", "")
	require.NoError(t, err)

	err = product.SetPricing(decimal.NewFromInt(-1), decimal.Zero, decimal.Zero)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PRICE", domainErr.Code)
}

func TestProduct_ActivateDeactivate(t *testing.T) {
	product, err := NewProduct("Acme", "")
	require.NoError(t, err)

	// Already active
	err = product.Activate()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_ACTIVE", domainErr.Code)

	require.NoError(t, product.Deactivate())
	assert.False(t, product.IsActive)

	err = product.Deactivate()
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_INACTIVE", domainErr.Code)

	require.NoError(t, product.Activate())
	assert.True(t, product.IsActive)
}

func TestProduct_SetTags_Deduplicates(t *testing.T) {
	product, err := NewProduct("Acme", "")
	require.NoError(t, err)

	product.SetTags([]string{"crm", "analytics", "crm", " "})

	assert.Equal(t, StringSet{"analytics", "crm"}, product.Tags)
}

func TestParsePlan(t *testing.T) {
	plan, err := ParsePlan("Professional")
	require.NoError(t, err)
	assert.Equal(t, PlanProfessional, plan)

	_, err = ParsePlan("platinum")
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PLAN", domainErr.Code)
}

func TestPlan_Rank(t *testing.T) {
	assert.Less(t, PlanStarter.Rank(), PlanProfessional.Rank())
	assert.Less(t, PlanProfessional.Rank(), PlanEnterprise.Rank())
	assert.Greater(t, Plan("unknown").Rank(), PlanEnterprise.Rank())
}

func TestStringSet_Equal(t *testing.T) {
	a := StringSet{"b", "a"}
	b := StringSet{"a", "b", "a"}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(StringSet{"a"}))
}

func TestStringSet_ScanValue(t *testing.T) {
	var s StringSet
	require.NoError(t, s.Scan([]byte(`["beta","alpha","beta"]`)))
	assert.Equal(t, StringSet{"alpha", "beta"}, s)

	v, err := s.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `["alpha","beta"]`, v.(string))
}
