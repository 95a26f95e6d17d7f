package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"talenthub-backend/auth-service/middleware"
	"talenthub-backend/shared/database/models"
	"talenthub-backend/shared/notification"
)

// UpgradeRequestHandler runs the plan change workflow: organization admins
// submit and cancel requests, super admins review them.
type UpgradeRequestHandler struct {
	db     *gorm.DB
	mailer *notification.Mailer
}

func NewUpgradeRequestHandler(db *gorm.DB, mailer *notification.Mailer) *UpgradeRequestHandler {
	return &UpgradeRequestHandler{db: db, mailer: mailer}
}

type SubmitUpgradeRequest struct {
	RequestedPlanID uuid.UUID `json:"requestedPlanId" binding:"required"`
	Reason          string    `json:"reason"`
}

type RejectUpgradeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// currentOrganization resolves the caller's organization with its plan.
func (h *UpgradeRequestHandler) currentOrganization(c *gin.Context) (*models.Organization, bool) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return nil, false
	}
	if user.OrganizationID == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return nil, false
	}

	var org models.Organization
	if err := h.db.Preload("SubscriptionPlan").Preload("Owner").Where("id = ?", *user.OrganizationID).First(&org).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return nil, false
	}
	return &org, true
}

// GetAvailablePlans lists the active plans an organization could move to,
// flagging which direction each change goes.
func (h *UpgradeRequestHandler) GetAvailablePlans(c *gin.Context) {
	org, ok := h.currentOrganization(c)
	if !ok {
		return
	}

	var plans []models.SubscriptionPlan
	if err := h.db.Where("is_active = ? AND id <> ?", true, org.SubscriptionPlanID).Order("display_order ASC").Find(&plans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch plans"})
		return
	}

	currentMaxUsers := 0
	if org.SubscriptionPlan != nil {
		currentMaxUsers = org.SubscriptionPlan.MaxUsers
	}

	result := make([]gin.H, 0, len(plans))
	for i := range plans {
		entry := planPayload(&plans[i])
		entry["isUpgrade"] = plans[i].MaxUsers > currentMaxUsers
		result = append(result, entry)
	}

	response := gin.H{"availablePlans": result}
	if org.SubscriptionPlan != nil {
		response["currentPlan"] = planPayload(org.SubscriptionPlan)
	}
	c.JSON(http.StatusOK, response)
}

// GetMyRequest returns the organization's pending request, if any.
func (h *UpgradeRequestHandler) GetMyRequest(c *gin.Context) {
	org, ok := h.currentOrganization(c)
	if !ok {
		return
	}

	var request models.UpgradeRequest
	err := h.db.Preload("CurrentPlan").Preload("RequestedPlan").Preload("RequestedBy").
		Where("organization_id = ? AND status = ?", org.ID, models.UpgradeRequestPending).
		Order("created_at DESC").First(&request).Error
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"hasPendingRequest": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hasPendingRequest": true,
		"request":           requestPayload(&request),
	})
}

// GetMyHistory lists every request the organization has ever made, newest
// first.
func (h *UpgradeRequestHandler) GetMyHistory(c *gin.Context) {
	org, ok := h.currentOrganization(c)
	if !ok {
		return
	}

	var requests []models.UpgradeRequest
	err := h.db.Preload("CurrentPlan").Preload("RequestedPlan").Preload("RequestedBy").Preload("ProcessedBy").
		Where("organization_id = ?", org.ID).
		Order("created_at DESC").Find(&requests).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch request history"})
		return
	}

	result := make([]gin.H, 0, len(requests))
	for i := range requests {
		result = append(result, requestPayload(&requests[i]))
	}
	c.JSON(http.StatusOK, gin.H{"requests": result, "count": len(result)})
}

// Submit files a plan change request. One pending request per organization;
// the target plan must exist, be active and differ from the current one.
func (h *UpgradeRequestHandler) Submit(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)
	org, ok := h.currentOrganization(c)
	if !ok {
		return
	}

	var req SubmitUpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var pending models.UpgradeRequest
	err := h.db.Where("organization_id = ? AND status = ?", org.ID, models.UpgradeRequestPending).First(&pending).Error
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Organization already has a pending upgrade request"})
		return
	}

	var requestedPlan models.SubscriptionPlan
	if err := h.db.Where("id = ?", req.RequestedPlanID).First(&requestedPlan).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requested plan not found"})
		return
	}
	if !requestedPlan.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requested plan is not active"})
		return
	}
	if requestedPlan.ID == org.SubscriptionPlanID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Organization is already on this plan"})
		return
	}

	request := models.UpgradeRequest{
		OrganizationID:  org.ID,
		CurrentPlanID:   org.SubscriptionPlanID,
		RequestedPlanID: requestedPlan.ID,
		RequestedByID:   user.ID,
		Reason:          req.Reason,
		Status:          models.UpgradeRequestPending,
	}
	if err := h.db.Create(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit request"})
		return
	}

	currentPlanName := ""
	if org.SubscriptionPlan != nil {
		currentPlanName = org.SubscriptionPlan.DisplayName
	}

	h.mailer.SendUpgradeRequestSubmitted(user.Email, user.FirstName, org.Name, currentPlanName, requestedPlan.DisplayName)
	h.notifySuperAdmins(org.Name, user.FullName(), currentPlanName, requestedPlan.DisplayName, req.Reason)

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Upgrade request submitted",
		"requestId": request.ID,
	})
}

func (h *UpgradeRequestHandler) notifySuperAdmins(orgName, requesterName, currentPlan, requestedPlan, reason string) {
	var admins []models.User
	err := h.db.
		Joins("JOIN user_roles ur ON ur.user_id = users.id").
		Joins("JOIN roles r ON r.id = ur.role_id").
		Where("r.name = ?", models.RoleSuperAdmin).
		Find(&admins).Error
	if err != nil {
		log.Printf("⚠️ Failed to load super admins for notification: %v", err)
		return
	}
	for _, admin := range admins {
		h.mailer.SendUpgradeRequestToAdmin(admin.Email, admin.FirstName, orgName, requesterName, currentPlan, requestedPlan, reason)
	}
}

// Cancel withdraws the organization's own pending request.
func (h *UpgradeRequestHandler) Cancel(c *gin.Context) {
	org, ok := h.currentOrganization(c)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var request models.UpgradeRequest
	if err := h.db.Where("id = ? AND organization_id = ?", requestID, org.ID).First(&request).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Upgrade request not found"})
		return
	}
	if request.Status != models.UpgradeRequestPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending requests can be cancelled"})
		return
	}

	if err := h.db.Model(&request).Update("status", models.UpgradeRequestCancelled).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Upgrade request cancelled"})
}

// GetPending lists all pending requests for review.
func (h *UpgradeRequestHandler) GetPending(c *gin.Context) {
	var requests []models.UpgradeRequest
	err := h.db.Preload("Organization").Preload("CurrentPlan").Preload("RequestedPlan").Preload("RequestedBy").
		Where("status = ?", models.UpgradeRequestPending).
		Order("created_at ASC").Find(&requests).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pending requests"})
		return
	}

	result := make([]gin.H, 0, len(requests))
	for i := range requests {
		result = append(result, requestPayload(&requests[i]))
	}
	c.JSON(http.StatusOK, gin.H{"requests": result, "count": len(result)})
}

// GetPendingCount returns the badge number for the admin dashboard.
func (h *UpgradeRequestHandler) GetPendingCount(c *gin.Context) {
	var count int64
	h.db.Model(&models.UpgradeRequest{}).Where("status = ?", models.UpgradeRequestPending).Count(&count)
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// GetAll lists every request, optionally filtered by status.
func (h *UpgradeRequestHandler) GetAll(c *gin.Context) {
	query := h.db.Preload("Organization").Preload("CurrentPlan").Preload("RequestedPlan").Preload("RequestedBy").Preload("ProcessedBy")

	if status := c.Query("status"); status != "" {
		if status != models.UpgradeRequestPending &&
			status != models.UpgradeRequestApproved &&
			status != models.UpgradeRequestRejected &&
			status != models.UpgradeRequestCancelled {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var requests []models.UpgradeRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	result := make([]gin.H, 0, len(requests))
	for i := range requests {
		result = append(result, requestPayload(&requests[i]))
	}
	c.JSON(http.StatusOK, gin.H{"requests": result, "count": len(result)})
}

// Approve applies the requested plan to the organization and closes the
// request in one transaction. A downgrade below the organization's active
// member count is refused.
func (h *UpgradeRequestHandler) Approve(c *gin.Context) {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var request models.UpgradeRequest
	err = h.db.Preload("Organization").Preload("CurrentPlan").Preload("RequestedPlan").Preload("RequestedBy").
		Where("id = ?", requestID).First(&request).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Upgrade request not found"})
		return
	}
	if request.Status != models.UpgradeRequestPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending requests can be approved"})
		return
	}

	var activeMembers int64
	h.db.Model(&models.User{}).
		Where("organization_id = ? AND status = ?", request.OrganizationID, models.UserStatusActive).
		Count(&activeMembers)
	if request.RequestedPlan.MaxUsers < int(activeMembers) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Plan does not allow the organization's current member count"})
		return
	}

	now := time.Now().UTC()
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Organization{}).
			Where("id = ?", request.OrganizationID).
			Update("subscription_plan_id", request.RequestedPlanID).Error; err != nil {
			return err
		}
		return tx.Model(&request).Updates(map[string]interface{}{
			"status":          models.UpgradeRequestApproved,
			"processed_by_id": admin.ID,
			"processed_at":    now,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve request"})
		return
	}

	h.mailer.SendUpgradeRequestApproved(
		request.RequestedBy.Email, request.RequestedBy.FirstName,
		request.Organization.Name, request.CurrentPlan.DisplayName, request.RequestedPlan.DisplayName)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Upgrade request approved",
		"planId":   request.RequestedPlanID,
		"planName": request.RequestedPlan.DisplayName,
	})
}

// Reject closes a pending request with a reason. The organization keeps its
// plan.
func (h *UpgradeRequestHandler) Reject(c *gin.Context) {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var req RejectUpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var request models.UpgradeRequest
	err = h.db.Preload("Organization").Preload("RequestedPlan").Preload("RequestedBy").
		Where("id = ?", requestID).First(&request).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Upgrade request not found"})
		return
	}
	if request.Status != models.UpgradeRequestPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending requests can be rejected"})
		return
	}

	now := time.Now().UTC()
	err = h.db.Model(&request).Updates(map[string]interface{}{
		"status":           models.UpgradeRequestRejected,
		"processed_by_id":  admin.ID,
		"processed_at":     now,
		"rejection_reason": req.Reason,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject request"})
		return
	}

	h.mailer.SendUpgradeRequestRejected(
		request.RequestedBy.Email, request.RequestedBy.FirstName,
		request.Organization.Name, request.RequestedPlan.DisplayName, req.Reason)

	c.JSON(http.StatusOK, gin.H{"message": "Upgrade request rejected"})
}

func requestPayload(r *models.UpgradeRequest) gin.H {
	payload := gin.H{
		"id":              r.ID,
		"organizationId":  r.OrganizationID,
		"status":          r.Status,
		"reason":          r.Reason,
		"rejectionReason": r.RejectionReason,
		"processedAt":     r.ProcessedAt,
		"createdAt":       r.CreatedAt,
	}
	if r.Organization.ID != uuid.Nil {
		payload["organizationName"] = r.Organization.Name
	}
	if r.CurrentPlan.ID != uuid.Nil {
		payload["currentPlan"] = gin.H{
			"id":          r.CurrentPlan.ID,
			"name":        r.CurrentPlan.Name,
			"displayName": r.CurrentPlan.DisplayName,
		}
	}
	if r.RequestedPlan.ID != uuid.Nil {
		payload["requestedPlan"] = gin.H{
			"id":          r.RequestedPlan.ID,
			"name":        r.RequestedPlan.Name,
			"displayName": r.RequestedPlan.DisplayName,
		}
	}
	if r.RequestedBy.ID != uuid.Nil {
		payload["requestedBy"] = gin.H{
			"id":       r.RequestedBy.ID,
			"email":    r.RequestedBy.Email,
			"fullName": r.RequestedBy.FullName(),
		}
	}
	if r.ProcessedBy != nil {
		payload["processedBy"] = gin.H{
			"id":       r.ProcessedBy.ID,
			"email":    r.ProcessedBy.Email,
			"fullName": r.ProcessedBy.FullName(),
		}
	}
	return payload
}
