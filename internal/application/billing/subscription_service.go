// Package billing implements the application services for subscriptions,
// their audit trail and the admin dashboard.
package billing

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/appsnxt/platform/internal/domain/billing"
	"github.com/appsnxt/platform/internal/domain/catalog"
	"github.com/appsnxt/platform/internal/domain/shared"
	"github.com/appsnxt/platform/internal/infrastructure/tasks"
)

// subscriptionTaskPayload is the body of subscription lifecycle tasks
type subscriptionTaskPayload struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	ProductID      uuid.UUID `json:"product_id"`
	Plan           string    `json:"plan"`
	OldPlan        string    `json:"old_plan,omitempty"`
	EndImmediately bool      `json:"end_immediately,omitempty"`
}

// SubscriptionService handles subscription lifecycle operations. State
// changes, audit entries and background task rows are written in one
// transaction; a relay dispatches the tasks afterwards.
type SubscriptionService struct {
	subRepo     billing.SubscriptionRepository
	eventRepo   billing.SubscriptionEventRepository
	productRepo catalog.ProductRepository
	outbox      shared.OutboxRepository
	txManager   shared.TransactionManager
	eventBus    shared.EventBus
	logger      *zap.Logger
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(
	subRepo billing.SubscriptionRepository,
	eventRepo billing.SubscriptionEventRepository,
	productRepo catalog.ProductRepository,
	outbox shared.OutboxRepository,
	txManager shared.TransactionManager,
	eventBus shared.EventBus,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:     subRepo,
		eventRepo:   eventRepo,
		productRepo: productRepo,
		outbox:      outbox,
		txManager:   txManager,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// Create opens a subscription to an active product. When the request
// omits the amount it is taken from the product's price for the chosen
// tier.
func (s *SubscriptionService) Create(ctx context.Context, req CreateSubscriptionRequest) (*SubscriptionResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.NewDomainError("PRODUCT_INACTIVE", "Product is not open for new subscriptions")
	}

	plan, err := catalog.ParsePlan(req.Plan)
	if err != nil {
		return nil, err
	}
	cycle, err := billing.ParseBillingCycle(req.BillingCycle)
	if err != nil {
		return nil, err
	}

	amount := product.PriceForPlan(plan)
	if req.Amount != nil {
		amount = *req.Amount
	}

	sub, err := billing.NewSubscription(
		req.UserID, req.ProductID, plan, amount, req.Currency,
		cycle, billing.PaymentProvider(req.PaymentProvider), req.TrialDays,
	)
	if err != nil {
		return nil, err
	}
	if req.MaxUsers > 0 || req.MaxProjects > 0 {
		maxUsers, maxProjects := req.MaxUsers, req.MaxProjects
		if maxUsers == 0 {
			maxUsers = 1
		}
		if maxProjects == 0 {
			maxProjects = 1
		}
		if err := sub.SetLimits(maxUsers, maxProjects); err != nil {
			return nil, err
		}
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.subRepo.Save(txCtx, sub); err != nil {
			return err
		}
		if err := s.appendEvent(txCtx, sub.ID, billing.SubscriptionEventCreated,
			"Subscription created", map[string]interface{}{
				"plan":          plan.String(),
				"billing_cycle": string(cycle),
				"amount":        amount.String(),
			}); err != nil {
			return err
		}
		return s.enqueueTask(txCtx, tasks.TaskSubscriptionCreated, sub, "")
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sub)
	s.logger.Info("subscription created",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("user_id", sub.UserID.String()),
		zap.String("product_id", sub.ProductID.String()),
		zap.String("plan", plan.String()))

	response := ToSubscriptionResponse(sub)
	return &response, nil
}

// GetByID retrieves a subscription. Non-admin requesters only see their own.
func (s *SubscriptionService) GetByID(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*SubscriptionResponse, error) {
	sub, err := s.subRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && sub.UserID != requesterID {
		return nil, shared.ErrForbidden
	}

	response := ToSubscriptionResponse(sub)
	return &response, nil
}

// List retrieves subscriptions with filtering and pagination. Non-admin
// requesters are scoped to their own subscriptions.
func (s *SubscriptionService) List(ctx context.Context, filter SubscriptionListFilter, requesterID uuid.UUID, isAdmin bool) ([]SubscriptionResponse, int64, error) {
	domainFilter := s.buildFilter(filter)
	if !isAdmin {
		domainFilter.Filters["user_id"] = requesterID
	}

	subs, err := s.subRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.subRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToSubscriptionResponses(subs), total, nil
}

// ListForUser retrieves a user's subscriptions, newest first
func (s *SubscriptionService) ListForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]SubscriptionResponse, error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	subs, err := s.subRepo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return ToSubscriptionResponses(subs), nil
}

// ListCurrentForUser retrieves the user's active or trialing
// subscriptions whose billing period has not ended
func (s *SubscriptionService) ListCurrentForUser(ctx context.Context, userID uuid.UUID) ([]SubscriptionResponse, error) {
	subs, err := s.subRepo.FindCurrentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToSubscriptionResponses(subs), nil
}

// Update applies a partial update and appends an `updated` audit entry
func (s *SubscriptionService) Update(ctx context.Context, id uuid.UUID, req UpdateSubscriptionRequest) (*SubscriptionResponse, error) {
	sub, err := s.subRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.MaxUsers != nil || req.MaxProjects != nil {
		maxUsers, maxProjects := sub.MaxUsers, sub.MaxProjects
		if req.MaxUsers != nil {
			maxUsers = *req.MaxUsers
		}
		if req.MaxProjects != nil {
			maxProjects = *req.MaxProjects
		}
		if err := sub.SetLimits(maxUsers, maxProjects); err != nil {
			return nil, err
		}
	}
	if req.AutoRenew != nil {
		sub.SetAutoRenew(*req.AutoRenew)
	}
	if req.ProviderSubscriptionID != nil || req.ProviderCustomerID != nil {
		subID, custID := sub.ProviderSubscriptionID, sub.ProviderCustomerID
		if req.ProviderSubscriptionID != nil {
			subID = *req.ProviderSubscriptionID
		}
		if req.ProviderCustomerID != nil {
			custID = *req.ProviderCustomerID
		}
		sub.SetProviderRefs(subID, custID)
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.subRepo.Save(txCtx, sub); err != nil {
			return err
		}
		return s.appendEvent(txCtx, sub.ID, billing.SubscriptionEventUpdated,
			"Subscription updated", nil)
	})
	if err != nil {
		return nil, err
	}

	response := ToSubscriptionResponse(sub)
	return &response, nil
}

// ChangePlan moves a subscription to a different tier. The amount is
// re-derived from the product's price for the new tier.
func (s *SubscriptionService) ChangePlan(ctx context.Context, id uuid.UUID, req ChangePlanRequest) (*SubscriptionResponse, error) {
	sub, err := s.subRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	plan, err := catalog.ParsePlan(req.Plan)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, sub.ProductID)
	if err != nil {
		return nil, err
	}

	oldPlan := sub.Plan
	if err := sub.ChangePlan(plan, product.PriceForPlan(plan)); err != nil {
		return nil, err
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.subRepo.Save(txCtx, sub); err != nil {
			return err
		}
		if err := s.appendEvent(txCtx, sub.ID, billing.SubscriptionEventPlanChanged,
			"Subscription plan changed", map[string]interface{}{
				"old_plan": oldPlan.String(),
				"new_plan": plan.String(),
				"amount":   sub.Amount.String(),
			}); err != nil {
			return err
		}
		return s.enqueueTask(txCtx, tasks.TaskSubscriptionPlanChanged, sub, oldPlan.String())
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sub)
	s.logger.Info("subscription plan changed",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("old_plan", oldPlan.String()),
		zap.String("new_plan", plan.String()))

	response := ToSubscriptionResponse(sub)
	return &response, nil
}

// Cancel ends a subscription, immediately or at the period end
func (s *SubscriptionService) Cancel(ctx context.Context, id uuid.UUID, req CancelRequest) (*SubscriptionResponse, error) {
	sub, err := s.subRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := sub.Cancel(req.EndImmediately); err != nil {
		return nil, err
	}

	metadata := map[string]interface{}{"end_immediately": req.EndImmediately}
	if req.Reason != "" {
		metadata["reason"] = req.Reason
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.subRepo.Save(txCtx, sub); err != nil {
			return err
		}
		if err := s.appendEvent(txCtx, sub.ID, billing.SubscriptionEventCanceled,
			"Subscription canceled", metadata); err != nil {
			return err
		}
		return s.enqueueTaskWithFlag(txCtx, tasks.TaskSubscriptionCanceled, sub, req.EndImmediately)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sub)
	s.logger.Info("subscription canceled",
		zap.String("subscription_id", sub.ID.String()),
		zap.Bool("end_immediately", req.EndImmediately))

	response := ToSubscriptionResponse(sub)
	return &response, nil
}

// Reactivate revives a canceled subscription. Allowed within the
// reactivation window and only while the product is still active.
func (s *SubscriptionService) Reactivate(ctx context.Context, id uuid.UUID) (*SubscriptionResponse, error) {
	sub, err := s.subRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, sub.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.NewDomainError("PRODUCT_INACTIVE", "Product is no longer available")
	}

	if err := sub.Reactivate(); err != nil {
		return nil, err
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.subRepo.Save(txCtx, sub); err != nil {
			return err
		}
		return s.appendEvent(txCtx, sub.ID, billing.SubscriptionEventReactivated,
			"Subscription reactivated", nil)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sub)
	s.logger.Info("subscription reactivated", zap.String("subscription_id", sub.ID.String()))

	response := ToSubscriptionResponse(sub)
	return &response, nil
}

// ListEvents returns a subscription's audit trail, newest first
func (s *SubscriptionService) ListEvents(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) ([]SubscriptionEventResponse, error) {
	sub, err := s.subRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && sub.UserID != requesterID {
		return nil, shared.ErrForbidden
	}

	events, err := s.eventRepo.FindBySubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToSubscriptionEventResponses(events), nil
}

// Delete hard-deletes a subscription together with its audit trail
func (s *SubscriptionService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.subRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.subRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("subscription deleted", zap.String("subscription_id", id.String()))
	return nil
}

// publishEvents hands the aggregate's pending events to the in-process
// bus after the transaction has committed
func (s *SubscriptionService) publishEvents(ctx context.Context, sub *billing.Subscription) {
	if s.eventBus == nil {
		return
	}
	for _, event := range sub.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	sub.ClearDomainEvents()
}

func (s *SubscriptionService) appendEvent(ctx context.Context, subID uuid.UUID, eventType billing.SubscriptionEventType, description string, metadata map[string]interface{}) error {
	event, err := billing.NewSubscriptionEvent(subID, eventType, description, metadata)
	if err != nil {
		return err
	}
	return s.eventRepo.Save(ctx, event)
}

func (s *SubscriptionService) enqueueTask(ctx context.Context, taskType string, sub *billing.Subscription, oldPlan string) error {
	payload, err := json.Marshal(subscriptionTaskPayload{
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		ProductID:      sub.ProductID,
		Plan:           sub.Plan.String(),
		OldPlan:        oldPlan,
	})
	if err != nil {
		return err
	}
	return s.outbox.Save(ctx, shared.NewOutboxEntry(taskType, sub.ID, payload))
}

func (s *SubscriptionService) enqueueTaskWithFlag(ctx context.Context, taskType string, sub *billing.Subscription, endImmediately bool) error {
	payload, err := json.Marshal(subscriptionTaskPayload{
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		ProductID:      sub.ProductID,
		Plan:           sub.Plan.String(),
		EndImmediately: endImmediately,
	})
	if err != nil {
		return err
	}
	return s.outbox.Save(ctx, shared.NewOutboxEntry(taskType, sub.ID, payload))
}

func (s *SubscriptionService) buildFilter(filter SubscriptionListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.UserID != nil {
		domainFilter.Filters["user_id"] = *filter.UserID
	}
	if filter.ProductID != nil {
		domainFilter.Filters["product_id"] = *filter.ProductID
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Plan != "" {
		domainFilter.Filters["plan"] = filter.Plan
	}
	if filter.PaymentProvider != "" {
		domainFilter.Filters["payment_provider"] = filter.PaymentProvider
	}
	return domainFilter
}
