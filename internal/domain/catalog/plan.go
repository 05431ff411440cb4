package catalog

import (
	"strings"

	"github.com/appsnxt/platform/internal/domain/shared"
)

// Plan represents a subscription tier offered for every product
type Plan string

const (
	PlanStarter      Plan = "starter"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

// AllPlans returns the tiers in display order
func AllPlans() []Plan {
	return []Plan{PlanStarter, PlanProfessional, PlanEnterprise}
}

// ParsePlan parses a plan name, case-insensitively
func ParsePlan(s string) (Plan, error) {
	switch Plan(strings.ToLower(strings.TrimSpace(s))) {
	case PlanStarter:
		return PlanStarter, nil
	case PlanProfessional:
		return PlanProfessional, nil
	case PlanEnterprise:
		return PlanEnterprise, nil
	default:
		return "", shared.NewDomainError("INVALID_PLAN", "Plan must be one of: starter, professional, enterprise")
	}
}

// IsValid returns true for a known tier
func (p Plan) IsValid() bool {
	_, err := ParsePlan(string(p))
	return err == nil
}

// Rank returns the ordering position of the tier, starter first.
// Unknown plans sort last.
func (p Plan) Rank() int {
	switch p {
	case PlanStarter:
		return 0
	case PlanProfessional:
		return 1
	case PlanEnterprise:
		return 2
	default:
		return 3
	}
}

func (p Plan) String() string {
	return string(p)
}
