package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"talenthub-backend/shared/database/models"
	"talenthub-backend/shared/utils/slug"
)

// SubscriptionPlanHandler manages the plan catalog. Listing active plans is
// public, everything else is super admin only.
type SubscriptionPlanHandler struct {
	db *gorm.DB
}

func NewSubscriptionPlanHandler(db *gorm.DB) *SubscriptionPlanHandler {
	return &SubscriptionPlanHandler{db: db}
}

type CreatePlanRequest struct {
	Name         string   `json:"name" binding:"required"`
	DisplayName  string   `json:"displayName" binding:"required"`
	MaxUsers     int      `json:"maxUsers" binding:"required"`
	MaxCVUploads int      `json:"maxCVUploads" binding:"required"`
	Features     []string `json:"features"`
	MonthlyPrice *float64 `json:"monthlyPrice"`
	DisplayOrder int      `json:"displayOrder"`
	IsPopular    bool     `json:"isPopular"`
}

type UpdatePlanRequest struct {
	DisplayName  *string   `json:"displayName"`
	MaxUsers     *int      `json:"maxUsers"`
	MaxCVUploads *int      `json:"maxCVUploads"`
	Features     *[]string `json:"features"`
	MonthlyPrice *float64  `json:"monthlyPrice"`
	DisplayOrder *int      `json:"displayOrder"`
	IsPopular    *bool     `json:"isPopular"`
}

// GetActivePlans lists active plans in display order. Public, used by the
// pricing page.
func (h *SubscriptionPlanHandler) GetActivePlans(c *gin.Context) {
	var plans []models.SubscriptionPlan
	if err := h.db.Where("is_active = ?", true).Order("display_order ASC").Find(&plans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch plans"})
		return
	}

	result := make([]gin.H, 0, len(plans))
	for i := range plans {
		result = append(result, planPayload(&plans[i]))
	}
	c.JSON(http.StatusOK, gin.H{"plans": result})
}

// GetAllPlans lists every plan, active or not, with how many organizations
// sit on each.
func (h *SubscriptionPlanHandler) GetAllPlans(c *gin.Context) {
	var plans []models.SubscriptionPlan
	if err := h.db.Order("display_order ASC").Find(&plans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch plans"})
		return
	}

	result := make([]gin.H, 0, len(plans))
	for i := range plans {
		entry := planPayload(&plans[i])

		var orgCount int64
		h.db.Model(&models.Organization{}).Where("subscription_plan_id = ?", plans[i].ID).Count(&orgCount)
		entry["organizationsCount"] = orgCount

		result = append(result, entry)
	}
	c.JSON(http.StatusOK, gin.H{"plans": result, "count": len(result)})
}

func (h *SubscriptionPlanHandler) GetPlan(c *gin.Context) {
	plan, ok := h.planByParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, planPayload(plan))
}

// CreatePlan adds a plan to the catalog. The name is slugified and must be
// unique.
func (h *SubscriptionPlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := slug.Make(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan name"})
		return
	}

	var existing models.SubscriptionPlan
	if err := h.db.Where("name = ?", name).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A plan with this name already exists"})
		return
	}

	plan := models.SubscriptionPlan{
		Name:         name,
		DisplayName:  req.DisplayName,
		MaxUsers:     req.MaxUsers,
		MaxCVUploads: req.MaxCVUploads,
		MonthlyPrice: req.MonthlyPrice,
		DisplayOrder: req.DisplayOrder,
		IsPopular:    req.IsPopular,
		IsActive:     true,
	}
	plan.SetFeatures(req.Features)

	if err := h.db.Create(&plan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create plan"})
		return
	}

	c.JSON(http.StatusCreated, planPayload(&plan))
}

// UpdatePlan applies a partial update. The slug name is immutable; limits and
// presentation fields can change.
func (h *SubscriptionPlanHandler) UpdatePlan(c *gin.Context) {
	plan, ok := h.planByParam(c)
	if !ok {
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.DisplayName != nil {
		plan.DisplayName = *req.DisplayName
	}
	if req.MaxUsers != nil {
		plan.MaxUsers = *req.MaxUsers
	}
	if req.MaxCVUploads != nil {
		plan.MaxCVUploads = *req.MaxCVUploads
	}
	if req.Features != nil {
		plan.SetFeatures(*req.Features)
	}
	if req.MonthlyPrice != nil {
		plan.MonthlyPrice = req.MonthlyPrice
	}
	if req.DisplayOrder != nil {
		plan.DisplayOrder = *req.DisplayOrder
	}
	if req.IsPopular != nil {
		plan.IsPopular = *req.IsPopular
	}

	if err := h.db.Save(plan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update plan"})
		return
	}

	c.JSON(http.StatusOK, planPayload(plan))
}

// ToggleActive flips a plan's visibility. Organizations already on the plan
// keep it either way.
func (h *SubscriptionPlanHandler) ToggleActive(c *gin.Context) {
	plan, ok := h.planByParam(c)
	if !ok {
		return
	}

	plan.IsActive = !plan.IsActive
	if err := h.db.Model(plan).Update("is_active", plan.IsActive).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update plan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": plan.ID, "isActive": plan.IsActive})
}

// CanDelete reports whether a plan is removable, i.e. no organization uses it.
func (h *SubscriptionPlanHandler) CanDelete(c *gin.Context) {
	plan, ok := h.planByParam(c)
	if !ok {
		return
	}

	var orgCount int64
	h.db.Model(&models.Organization{}).Where("subscription_plan_id = ?", plan.ID).Count(&orgCount)

	c.JSON(http.StatusOK, gin.H{
		"canDelete":          orgCount == 0,
		"organizationsCount": orgCount,
	})
}

// DeletePlan removes an unused plan. Plans with organizations on them cannot
// be deleted, only deactivated.
func (h *SubscriptionPlanHandler) DeletePlan(c *gin.Context) {
	plan, ok := h.planByParam(c)
	if !ok {
		return
	}

	var orgCount int64
	h.db.Model(&models.Organization{}).Where("subscription_plan_id = ?", plan.ID).Count(&orgCount)
	if orgCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Plan is in use by organizations and cannot be deleted"})
		return
	}

	if err := h.db.Delete(plan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete plan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Plan deleted"})
}

func (h *SubscriptionPlanHandler) planByParam(c *gin.Context) (*models.SubscriptionPlan, bool) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan ID"})
		return nil, false
	}

	var plan models.SubscriptionPlan
	if err := h.db.Where("id = ?", planID).First(&plan).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return nil, false
	}
	return &plan, true
}

func planPayload(plan *models.SubscriptionPlan) gin.H {
	return gin.H{
		"id":           plan.ID,
		"name":         plan.Name,
		"displayName":  plan.DisplayName,
		"maxUsers":     plan.MaxUsers,
		"maxCVUploads": plan.MaxCVUploads,
		"features":     plan.Features(),
		"monthlyPrice": plan.MonthlyPrice,
		"displayOrder": plan.DisplayOrder,
		"isPopular":    plan.IsPopular,
		"isActive":     plan.IsActive,
		"createdAt":    plan.CreatedAt,
	}
}
