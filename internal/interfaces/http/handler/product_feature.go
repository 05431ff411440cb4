package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/appsnxt/platform/internal/application/catalog"
	"github.com/appsnxt/platform/internal/interfaces/http/middleware"
)

// FeatureHandler handles plan feature list HTTP requests
type FeatureHandler struct {
	BaseHandler
	featureService *catalog.FeatureService
}

// NewFeatureHandler creates a new feature handler
func NewFeatureHandler(featureService *catalog.FeatureService) *FeatureHandler {
	return &FeatureHandler{
		featureService: featureService,
	}
}

// Create godoc
// @ID           createProductFeature
// @Summary      Create a feature list for a product plan
// @Tags         product-features
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateFeatureRequest true "Feature creation request"
// @Success      201 {object} APIResponse[catalog.FeatureResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /product-features [post]
func (h *FeatureHandler) Create(c *gin.Context) {
	var req catalog.CreateFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	feature, err := h.featureService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, feature)
}

// GetByID godoc
// @ID           getProductFeatureById
// @Summary      Get a feature list by ID
// @Tags         product-features
// @Produce      json
// @Param        id path string true "Feature list ID" format(uuid)
// @Success      200 {object} APIResponse[catalog.FeatureResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /product-features/{id} [get]
func (h *FeatureHandler) GetByID(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	feature, err := h.featureService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, feature)
}

// ListByProduct godoc
// @ID           listProductFeatures
// @Summary      List feature lists for a product
// @Tags         product-features
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[[]catalog.FeatureResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /product-features/product/{product_id} [get]
func (h *FeatureHandler) ListByProduct(c *gin.Context) {
	productID, ok := h.parseIDParam(c, "product_id")
	if !ok {
		return
	}

	features, err := h.featureService.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, features)
}

// GetGrouped godoc
// @ID           getProductFeaturesGrouped
// @Summary      Get a product's features grouped by plan
// @Description  Returns a bucket per plan, empty when no feature list exists
// @Tags         product-features
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[map[string][]string]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /product-features/product/{product_id}/grouped [get]
func (h *FeatureHandler) GetGrouped(c *gin.Context) {
	productID, ok := h.parseIDParam(c, "product_id")
	if !ok {
		return
	}

	grouped, err := h.featureService.GetGrouped(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, grouped)
}

// GetByPlan godoc
// @ID           getProductFeaturesByPlan
// @Summary      Get a product's feature list for one plan
// @Tags         product-features
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Param        plan path string true "Plan name" Enums(starter, professional, enterprise)
// @Success      200 {object} APIResponse[catalog.FeatureResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /product-features/product/{product_id}/plan/{plan} [get]
func (h *FeatureHandler) GetByPlan(c *gin.Context) {
	productID, ok := h.parseIDParam(c, "product_id")
	if !ok {
		return
	}

	feature, err := h.featureService.GetByProductAndPlan(c.Request.Context(), productID, c.Param("plan"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, feature)
}

// Update godoc
// @ID           updateProductFeature
// @Summary      Update a feature list
// @Tags         product-features
// @Accept       json
// @Produce      json
// @Param        id path string true "Feature list ID" format(uuid)
// @Param        request body catalog.UpdateFeatureRequest true "Feature update request"
// @Success      200 {object} APIResponse[catalog.FeatureResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /product-features/{id} [put]
func (h *FeatureHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req catalog.UpdateFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	feature, err := h.featureService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, feature)
}

// Delete godoc
// @ID           deleteProductFeature
// @Summary      Delete a feature list
// @Tags         product-features
// @Produce      json
// @Param        id path string true "Feature list ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /product-features/{id} [delete]
func (h *FeatureHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.featureService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// DeleteByProduct godoc
// @ID           deleteProductFeaturesByProduct
// @Summary      Delete every feature list for a product
// @Tags         product-features
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[map[string]int64]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /product-features/product/{product_id} [delete]
func (h *FeatureHandler) DeleteByProduct(c *gin.Context) {
	productID, ok := h.parseIDParam(c, "product_id")
	if !ok {
		return
	}

	deleted, err := h.featureService.DeleteByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"deleted": deleted})
}

// RegisterRoutes registers all product feature routes. Mutations
// require administrator access.
func (h *FeatureHandler) RegisterRoutes(rg *gin.RouterGroup) {
	features := rg.Group("/product-features")
	{
		features.GET("/:id", h.GetByID)
		features.GET("/product/:product_id", h.ListByProduct)
		features.GET("/product/:product_id/grouped", h.GetGrouped)
		features.GET("/product/:product_id/plan/:plan", h.GetByPlan)

		admin := features.Group("", middleware.RequireAdmin())
		{
			admin.POST("", h.Create)
			admin.PUT("/:id", h.Update)
			admin.DELETE("/:id", h.Delete)
			admin.DELETE("/product/:product_id", h.DeleteByProduct)
		}
	}
}
