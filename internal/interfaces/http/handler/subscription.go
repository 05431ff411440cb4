package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/appsnxt/platform/internal/application/billing"
	"github.com/appsnxt/platform/internal/interfaces/http/middleware"
)

// SubscriptionHandler handles subscription HTTP requests
type SubscriptionHandler struct {
	BaseHandler
	subscriptionService *billing.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptionService *billing.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// authorizeAccess verifies the requester may act on the subscription.
// Admins can act on any subscription, owners only on their own.
func (h *SubscriptionHandler) authorizeAccess(c *gin.Context, id uuid.UUID) bool {
	userID, ok := h.requireUserID(c)
	if !ok {
		return false
	}
	if _, err := h.subscriptionService.GetByID(c.Request.Context(), id, userID, middleware.IsAdmin(c)); err != nil {
		h.HandleError(c, err)
		return false
	}
	return true
}

// Create godoc
// @ID           createSubscription
// @Summary      Subscribe to a product plan
// @Description  Non-admins can only create subscriptions for themselves
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        request body billing.CreateSubscriptionRequest true "Subscription request"
// @Success      201 {object} APIResponse[billing.SubscriptionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /subscriptions [post]
func (h *SubscriptionHandler) Create(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req billing.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if !middleware.IsAdmin(c) || req.UserID == uuid.Nil {
		req.UserID = userID
	}

	subscription, err := h.subscriptionService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, subscription)
}

// List godoc
// @ID           listSubscriptions
// @Summary      List subscriptions
// @Description  Non-admins only see their own subscriptions
// @Tags         subscriptions
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Param        plan query string false "Filter by plan"
// @Success      200 {object} APIResponse[[]billing.SubscriptionResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /subscriptions [get]
func (h *SubscriptionHandler) List(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var filter billing.SubscriptionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	subscriptions, total, err := h.subscriptionService.List(c.Request.Context(), filter, userID, middleware.IsAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, subscriptions, total, page, pageSize)
}

// Mine godoc
// @ID           listMySubscriptions
// @Summary      List the signed-in user's subscriptions
// @Tags         subscriptions
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]billing.SubscriptionResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /subscriptions/mine [get]
func (h *SubscriptionHandler) Mine(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var paging struct {
		Page     int `form:"page"`
		PageSize int `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&paging); err != nil {
		h.BindError(c, err)
		return
	}

	subscriptions, err := h.subscriptionService.ListForUser(c.Request.Context(), userID, paging.Page, paging.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, subscriptions)
}

// Current godoc
// @ID           getCurrentSubscriptions
// @Summary      List the signed-in user's live subscriptions
// @Tags         subscriptions
// @Produce      json
// @Success      200 {object} APIResponse[[]billing.SubscriptionResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /subscriptions/current [get]
func (h *SubscriptionHandler) Current(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	subscriptions, err := h.subscriptionService.ListCurrentForUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, subscriptions)
}

// GetByID godoc
// @ID           getSubscriptionById
// @Summary      Get a subscription by ID
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID" format(uuid)
// @Success      200 {object} APIResponse[billing.SubscriptionResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /subscriptions/{id} [get]
func (h *SubscriptionHandler) GetByID(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	subscription, err := h.subscriptionService.GetByID(c.Request.Context(), id, userID, middleware.IsAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, subscription)
}

// Update godoc
// @ID           updateSubscription
// @Summary      Update subscription settings
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        id path string true "Subscription ID" format(uuid)
// @Param        request body billing.UpdateSubscriptionRequest true "Update request"
// @Success      200 {object} APIResponse[billing.SubscriptionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /subscriptions/{id} [put]
func (h *SubscriptionHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req billing.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	subscription, err := h.subscriptionService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, subscription)
}

// ChangePlan godoc
// @ID           changeSubscriptionPlan
// @Summary      Move a subscription to a different plan
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        id path string true "Subscription ID" format(uuid)
// @Param        request body billing.ChangePlanRequest true "Plan change request"
// @Success      200 {object} APIResponse[billing.SubscriptionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /subscriptions/{id}/change-plan [post]
func (h *SubscriptionHandler) ChangePlan(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	if !h.authorizeAccess(c, id) {
		return
	}

	var req billing.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	subscription, err := h.subscriptionService.ChangePlan(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, subscription)
}

// Cancel godoc
// @ID           cancelSubscription
// @Summary      Cancel a subscription
// @Description  Cancels at period end unless end_immediately is set
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        id path string true "Subscription ID" format(uuid)
// @Param        request body billing.CancelRequest false "Cancel options"
// @Success      200 {object} APIResponse[billing.SubscriptionResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /subscriptions/{id}/cancel [post]
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	if !h.authorizeAccess(c, id) {
		return
	}

	var req billing.CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	subscription, err := h.subscriptionService.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, subscription)
}

// Reactivate godoc
// @ID           reactivateSubscription
// @Summary      Reactivate a canceled subscription
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID" format(uuid)
// @Success      200 {object} APIResponse[billing.SubscriptionResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /subscriptions/{id}/reactivate [post]
func (h *SubscriptionHandler) Reactivate(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	if !h.authorizeAccess(c, id) {
		return
	}

	subscription, err := h.subscriptionService.Reactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, subscription)
}

// ListEvents godoc
// @ID           listSubscriptionEvents
// @Summary      List a subscription's audit events
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID" format(uuid)
// @Success      200 {object} APIResponse[[]billing.SubscriptionEventResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /subscriptions/{id}/events [get]
func (h *SubscriptionHandler) ListEvents(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	events, err := h.subscriptionService.ListEvents(c.Request.Context(), id, userID, middleware.IsAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, events)
}

// Delete godoc
// @ID           deleteSubscription
// @Summary      Delete a subscription record
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /subscriptions/{id} [delete]
func (h *SubscriptionHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.subscriptionService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers all subscription routes. Record-level
// update and delete are administrative; lifecycle operations are open
// to owners.
func (h *SubscriptionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	subscriptions := rg.Group("/subscriptions")
	{
		subscriptions.POST("", h.Create)
		subscriptions.GET("", h.List)
		subscriptions.GET("/mine", h.Mine)
		subscriptions.GET("/current", h.Current)
		subscriptions.GET("/:id", h.GetByID)
		subscriptions.GET("/:id/events", h.ListEvents)
		subscriptions.POST("/:id/change-plan", h.ChangePlan)
		subscriptions.POST("/:id/cancel", h.Cancel)
		subscriptions.POST("/:id/reactivate", h.Reactivate)

		admin := subscriptions.Group("", middleware.RequireAdmin())
		{
			admin.PUT("/:id", h.Update)
			admin.DELETE("/:id", h.Delete)
		}
	}
}
