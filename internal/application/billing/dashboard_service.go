package billing

import (
	"context"

	"go.uber.org/zap"

	"github.com/appsnxt/platform/internal/domain/billing"
	"github.com/appsnxt/platform/internal/domain/catalog"
	"github.com/appsnxt/platform/internal/domain/identity"
	"github.com/appsnxt/platform/internal/domain/shared"
)

// DashboardService assembles the admin dashboard summary
type DashboardService struct {
	subRepo     billing.SubscriptionRepository
	productRepo catalog.ProductRepository
	userRepo    identity.UserRepository
	logger      *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	subRepo billing.SubscriptionRepository,
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		subRepo:     subRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// GetStats returns subscription counts by status and plan, product and
// user totals, and the monthly recurring revenue normalized across
// billing cycles.
func (s *DashboardService) GetStats(ctx context.Context) (*DashboardStatsResponse, error) {
	byStatus, err := s.subRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byPlan, err := s.subRepo.CountByPlan(ctx)
	if err != nil {
		return nil, err
	}

	totalProducts, err := s.productRepo.Count(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}
	activeProducts, err := s.productRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.userRepo.Count(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}

	mrr, err := s.subRepo.MonthlyRecurringRevenue(ctx)
	if err != nil {
		return nil, err
	}

	statusCounts := make(map[string]int64, len(byStatus))
	for status, count := range byStatus {
		statusCounts[string(status)] = count
	}
	planCounts := make(map[string]int64, len(byPlan))
	for plan, count := range byPlan {
		planCounts[plan.String()] = count
	}

	return &DashboardStatsResponse{
		SubscriptionsByStatus: statusCounts,
		SubscriptionsByPlan:   planCounts,
		TotalProducts:         totalProducts,
		ActiveProducts:        activeProducts,
		TotalUsers:            totalUsers,
		MonthlyRecurring:      mrr,
		Currency:              billing.DefaultCurrency,
	}, nil
}
