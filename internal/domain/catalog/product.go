package catalog

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/appsnxt/platform/internal/domain/shared"
)

// Product represents a SaaS product offered on the platform.
// It is the aggregate root for catalog operations.
type Product struct {
	shared.BaseAggregateRoot
	Slug              string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name              string          `gorm:"type:varchar(200);not null"`
	Description       string          `gorm:"type:text"`
	ShortDescription  string          `gorm:"type:varchar(500)"`
	LogoURL           string          `gorm:"type:varchar(500)"`
	WebsiteURL        string          `gorm:"type:varchar(500)"`
	Category          string          `gorm:"type:varchar(100);index"`
	Tags              StringSet       `gorm:"type:jsonb"`
	StarterPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ProfessionalPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	EnterprisePrice   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IsActive          bool            `gorm:"not null;default:true;index"`
	IsFeatured        bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product. An empty slug is derived from the name.
func NewProduct(name, slug string) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if slug == "" {
		slug = Slugify(name)
	}
	if err := validateSlug(slug); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Slug:              slug,
		Name:              name,
		Tags:              StringSet{},
		StarterPrice:      decimal.Zero,
		ProfessionalPrice: decimal.Zero,
		EnterprisePrice:   decimal.Zero,
		IsActive:          true,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's descriptive attributes
func (p *Product) Update(name, description, shortDescription string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.ShortDescription = shortDescription
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// UpdateSlug changes the product slug.
// External links reference the slug, so callers should use this sparingly.
func (p *Product) UpdateSlug(slug string) error {
	if err := validateSlug(slug); err != nil {
		return err
	}

	p.Slug = slug
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetLinks sets the logo and website URLs
func (p *Product) SetLinks(logoURL, websiteURL string) error {
	if len(logoURL) > 500 || len(websiteURL) > 500 {
		return shared.NewDomainError("INVALID_URL", "URL cannot exceed 500 characters")
	}

	p.LogoURL = logoURL
	p.WebsiteURL = websiteURL
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetLogoURL sets only the logo URL
func (p *Product) SetLogoURL(logoURL string) error {
	if len(logoURL) > 500 {
		return shared.NewDomainError("INVALID_URL", "URL cannot exceed 500 characters")
	}

	p.LogoURL = logoURL
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetCategory sets the product category
func (p *Product) SetCategory(category string) error {
	if len(category) > 100 {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 100 characters")
	}

	p.Category = category
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetTags replaces the product tags
func (p *Product) SetTags(tags []string) {
	p.Tags = NewStringSet(tags...)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetPricing replaces the per-tier prices
func (p *Product) SetPricing(starter, professional, enterprise decimal.Decimal) error {
	for _, price := range []decimal.Decimal{starter, professional, enterprise} {
		if price.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
		}
	}

	p.StarterPrice = starter
	p.ProfessionalPrice = professional
	p.EnterprisePrice = enterprise
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductPricingChangedEvent(p))

	return nil
}

// PriceForPlan returns the price of the given tier
func (p *Product) PriceForPlan(plan Plan) decimal.Decimal {
	switch plan {
	case PlanStarter:
		return p.StarterPrice
	case PlanProfessional:
		return p.ProfessionalPrice
	case PlanEnterprise:
		return p.EnterprisePrice
	default:
		return decimal.Zero
	}
}

// Activate makes the product visible and subscribable
func (p *Product) Activate() error {
	if p.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}

	p.IsActive = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p))

	return nil
}

// Deactivate hides the product from new subscriptions
func (p *Product) Deactivate() error {
	if !p.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}

	p.IsActive = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p))

	return nil
}

// SetFeatured toggles the featured flag
func (p *Product) SetFeatured(featured bool) {
	p.IsFeatured = featured
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a display name.
// Diacritics are folded to ASCII, runs of other characters collapse to
// a single hyphen.
func Slugify(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	slug := slugInvalidChars.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// validateSlug validates the product slug
func validateSlug(slug string) error {
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "Product slug cannot be empty")
	}
	if len(slug) > 200 {
		return shared.NewDomainError("INVALID_SLUG", "Product slug cannot exceed 200 characters")
	}
	if !slugPattern.MatchString(slug) {
		return shared.NewDomainError("INVALID_SLUG", "Product slug must be lowercase letters, numbers, and hyphens")
	}
	return nil
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
