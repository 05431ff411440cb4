package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/appsnxt/platform/internal/domain/catalog"
)

// CreateProductRequest carries the fields for creating a product
type CreateProductRequest struct {
	Name              string           `json:"name" binding:"required,min=1,max=200"`
	Slug              string           `json:"slug" binding:"omitempty,slug,max=200"`
	Description       string           `json:"description"`
	ShortDescription  string           `json:"short_description" binding:"omitempty,max=500"`
	WebsiteURL        string           `json:"website_url" binding:"omitempty,url,max=500"`
	Category          string           `json:"category" binding:"omitempty,max=100"`
	Tags              []string         `json:"tags"`
	StarterPrice      *decimal.Decimal `json:"starter_price"`
	ProfessionalPrice *decimal.Decimal `json:"professional_price"`
	EnterprisePrice   *decimal.Decimal `json:"enterprise_price"`
	IsFeatured        *bool            `json:"is_featured"`
}

// UpdateProductRequest carries a partial product update. Nil fields are
// left unchanged.
type UpdateProductRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Slug              *string          `json:"slug" binding:"omitempty,slug,max=200"`
	Description       *string          `json:"description"`
	ShortDescription  *string          `json:"short_description" binding:"omitempty,max=500"`
	WebsiteURL        *string          `json:"website_url" binding:"omitempty,max=500"`
	Category          *string          `json:"category" binding:"omitempty,max=100"`
	Tags              []string         `json:"tags"`
	StarterPrice      *decimal.Decimal `json:"starter_price"`
	ProfessionalPrice *decimal.Decimal `json:"professional_price"`
	EnterprisePrice   *decimal.Decimal `json:"enterprise_price"`
	IsActive          *bool            `json:"is_active"`
	IsFeatured        *bool            `json:"is_featured"`
}

// ProductListFilter carries list query parameters
type ProductListFilter struct {
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
	Search     string
	Category   string
	IsActive   *bool
	IsFeatured *bool
}

// ProductResponse is the full product representation
type ProductResponse struct {
	ID                uuid.UUID       `json:"id"`
	Slug              string          `json:"slug"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	ShortDescription  string          `json:"short_description"`
	LogoURL           string          `json:"logo_url"`
	WebsiteURL        string          `json:"website_url"`
	Category          string          `json:"category"`
	Tags              []string        `json:"tags"`
	StarterPrice      decimal.Decimal `json:"starter_price"`
	ProfessionalPrice decimal.Decimal `json:"professional_price"`
	EnterprisePrice   decimal.Decimal `json:"enterprise_price"`
	IsActive          bool            `json:"is_active"`
	IsFeatured        bool            `json:"is_featured"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToProductResponse maps a product aggregate to its response shape
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		Slug:              p.Slug,
		Name:              p.Name,
		Description:       p.Description,
		ShortDescription:  p.ShortDescription,
		LogoURL:           p.LogoURL,
		WebsiteURL:        p.WebsiteURL,
		Category:          p.Category,
		Tags:              p.Tags,
		StarterPrice:      p.StarterPrice,
		ProfessionalPrice: p.ProfessionalPrice,
		EnterprisePrice:   p.EnterprisePrice,
		IsActive:          p.IsActive,
		IsFeatured:        p.IsFeatured,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ToProductResponses maps a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

// PlanPricing is one tier in the assembled pricing view
type PlanPricing struct {
	Plan     string          `json:"plan"`
	Price    decimal.Decimal `json:"price"`
	Features []string        `json:"features"`
}

// ProductPricingResponse is the three-tier pricing view of a product
type ProductPricingResponse struct {
	ProductID uuid.UUID     `json:"product_id"`
	Slug      string        `json:"slug"`
	Name      string        `json:"name"`
	Plans     []PlanPricing `json:"plans"`
}

// UpdatePricingRequest replaces tier prices and per-plan feature lists
type UpdatePricingRequest struct {
	StarterPrice      decimal.Decimal `json:"starter_price" binding:"required"`
	ProfessionalPrice decimal.Decimal `json:"professional_price" binding:"required"`
	EnterprisePrice   decimal.Decimal `json:"enterprise_price" binding:"required"`
	StarterFeatures   []string        `json:"starter_features"`
	ProFeatures       []string        `json:"professional_features"`
	EnterprisePlus    []string        `json:"enterprise_features"`
}

// ProductStatsResponse carries subscriber counts for a product
type ProductStatsResponse struct {
	ProductID         uuid.UUID `json:"product_id"`
	TotalSubscribers  int64     `json:"total_subscribers"`
	ActiveSubscribers int64     `json:"active_subscribers"`
}

// CreateFeatureRequest creates a feature row for a product plan
type CreateFeatureRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Plan      string    `json:"plan" binding:"required"`
	Features  []string  `json:"features"`
}

// UpdateFeatureRequest replaces the feature list and optionally moves the
// row to another plan
type UpdateFeatureRequest struct {
	Plan     *string  `json:"plan"`
	Features []string `json:"features"`
}

// FeatureResponse is the feature row representation
type FeatureResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Plan      string    `json:"plan"`
	Features  []string  `json:"features"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToFeatureResponse maps a feature row to its response shape
func ToFeatureResponse(f *catalog.ProductFeature) FeatureResponse {
	return FeatureResponse{
		ID:        f.ID,
		ProductID: f.ProductID,
		Plan:      f.Plan.String(),
		Features:  f.FeatureList,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ToFeatureResponses maps a slice of feature rows
func ToFeatureResponses(features []catalog.ProductFeature) []FeatureResponse {
	out := make([]FeatureResponse, len(features))
	for i := range features {
		out[i] = ToFeatureResponse(&features[i])
	}
	return out
}
