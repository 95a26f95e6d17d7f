package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"talenthub-backend/shared/database/models"
	"talenthub-backend/shared/database/models/auth"
	"talenthub-backend/shared/notification"
	utils "talenthub-backend/shared/utils/auth"
	"talenthub-backend/shared/utils/slug"
)

// AdminHandler holds the super admin operations: user oversight, organization
// approval and lifecycle, and platform stats.
type AdminHandler struct {
	db     *gorm.DB
	mailer *notification.Mailer
}

func NewAdminHandler(db *gorm.DB, mailer *notification.Mailer) *AdminHandler {
	return &AdminHandler{db: db, mailer: mailer}
}

type ApproveOrgAdminRequest struct {
	UserID           uuid.UUID `json:"userId" binding:"required"`
	OrganizationName string    `json:"organizationName" binding:"required"`
}

type RejectOrgAdminRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
	Reason string    `json:"reason" binding:"required"`
}

type DeactivationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ChangePlanRequest struct {
	PlanID uuid.UUID `json:"planId" binding:"required"`
	Reason string    `json:"reason"`
}

type ChangeUserStatusRequest struct {
	Email  string `json:"email" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// GetUsers lists every user with roles and organization membership.
func (h *AdminHandler) GetUsers(c *gin.Context) {
	var users []models.User
	if err := h.db.Preload("Roles").Preload("Organization").Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	result := make([]gin.H, 0, len(users))
	for i := range users {
		u := &users[i]
		entry := userPayload(u)
		if u.Organization != nil {
			entry["organizationName"] = u.Organization.Name
		}
		result = append(result, entry)
	}

	c.JSON(http.StatusOK, gin.H{"users": result, "count": len(result)})
}

// GetPendingOrgAdmins lists organization admin applicants awaiting approval.
func (h *AdminHandler) GetPendingOrgAdmins(c *gin.Context) {
	var users []models.User
	err := h.db.Preload("Roles").
		Joins("JOIN user_roles ur ON ur.user_id = users.id").
		Joins("JOIN roles r ON r.id = ur.role_id").
		Where("r.name = ? AND users.status = ?", models.RoleOrganizationAdmin, models.UserStatusPending).
		Order("users.created_at ASC").
		Find(&users).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pending registrations"})
		return
	}

	result := make([]gin.H, 0, len(users))
	for i := range users {
		u := &users[i]
		result = append(result, gin.H{
			"id":               u.ID,
			"email":            u.Email,
			"fullName":         u.FullName(),
			"requestedOrgName": u.RequestedOrgName,
			"createdAt":        u.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"pendingOrgAdmins": result, "count": len(result)})
}

// ApproveOrgAdmin activates a pending applicant and creates their
// organization on the starter plan. Both writes happen in one transaction.
func (h *AdminHandler) ApproveOrgAdmin(c *gin.Context) {
	var req ApproveOrgAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Preload("Roles").Where("id = ?", req.UserID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.Status != models.UserStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not pending approval"})
		return
	}

	var starterPlan models.SubscriptionPlan
	if err := h.db.Where("name = ?", "starter").First(&starterPlan).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No subscription plan available"})
		return
	}

	orgSlug := slug.Make(req.OrganizationName)
	var existingOrg models.Organization
	if err := h.db.Where("slug = ?", orgSlug).First(&existingOrg).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Organization name is already in use"})
		return
	}

	now := time.Now().UTC()
	org := models.Organization{
		Name:               req.OrganizationName,
		Slug:               orgSlug,
		OwnerID:            user.ID,
		SubscriptionPlanID: starterPlan.ID,
		IsActive:           true,
		CvUploadsThisMonth: 0,
		CvUploadsResetAt:   now.AddDate(0, 1, 0),
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"status":          models.UserStatusActive,
			"organization_id": org.ID,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve organization"})
		return
	}

	h.mailer.SendOrgAdminApproval(user.Email, user.FirstName, org.Name)

	c.JSON(http.StatusOK, gin.H{
		"message":          "Organization approved",
		"organizationId":   org.ID,
		"organizationName": org.Name,
	})
}

// RejectOrgAdmin declines a pending applicant and deactivates the account.
func (h *AdminHandler) RejectOrgAdmin(c *gin.Context) {
	var req RejectOrgAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("id = ?", req.UserID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.Status != models.UserStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not pending approval"})
		return
	}

	now := time.Now().UTC()
	err := h.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"status":              models.UserStatusInactive,
		"deactivated_at":      now,
		"deactivation_reason": req.Reason,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject registration"})
		return
	}

	h.mailer.SendOrgAdminRejection(user.Email, user.FirstName, req.Reason)

	c.JSON(http.StatusOK, gin.H{"message": "Registration rejected"})
}

// GetStats returns platform-wide counters for the admin dashboard.
func (h *AdminHandler) GetStats(c *gin.Context) {
	var totalUsers, totalOrgs, activeOrgs, pendingAdmins, pendingUpgrades int64

	h.db.Model(&models.User{}).Count(&totalUsers)
	h.db.Model(&models.Organization{}).Count(&totalOrgs)
	h.db.Model(&models.Organization{}).Where("is_active = ?", true).Count(&activeOrgs)
	h.db.Model(&models.User{}).Where("status = ?", models.UserStatusPending).Count(&pendingAdmins)
	h.db.Model(&models.UpgradeRequest{}).Where("status = ?", models.UpgradeRequestPending).Count(&pendingUpgrades)

	c.JSON(http.StatusOK, gin.H{
		"totalUsers":             totalUsers,
		"totalOrganizations":     totalOrgs,
		"activeOrganizations":    activeOrgs,
		"pendingOrgAdmins":       pendingAdmins,
		"pendingUpgradeRequests": pendingUpgrades,
	})
}

// GetOrganizations lists every organization with plan, owner and member count.
func (h *AdminHandler) GetOrganizations(c *gin.Context) {
	var orgs []models.Organization
	if err := h.db.Preload("SubscriptionPlan").Preload("Owner").Order("created_at DESC").Find(&orgs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch organizations"})
		return
	}

	result := make([]gin.H, 0, len(orgs))
	for i := range orgs {
		org := &orgs[i]

		var memberCount int64
		h.db.Model(&models.User{}).Where("organization_id = ?", org.ID).Count(&memberCount)

		entry := gin.H{
			"id":                 org.ID,
			"name":               org.Name,
			"slug":               org.Slug,
			"isActive":           org.IsActive,
			"memberCount":        memberCount,
			"cvUploadsThisMonth": org.CvUploadsThisMonth,
			"createdAt":          org.CreatedAt,
			"deactivatedAt":      org.DeactivatedAt,
			"deactivationReason": org.DeactivationReason,
		}
		if org.SubscriptionPlan != nil {
			entry["plan"] = gin.H{
				"id":           org.SubscriptionPlan.ID,
				"name":         org.SubscriptionPlan.Name,
				"displayName":  org.SubscriptionPlan.DisplayName,
				"maxUsers":     org.SubscriptionPlan.MaxUsers,
				"maxCVUploads": org.SubscriptionPlan.MaxCVUploads,
			}
		}
		if org.Owner != nil {
			entry["owner"] = gin.H{
				"id":       org.Owner.ID,
				"email":    org.Owner.Email,
				"fullName": org.Owner.FullName(),
			}
		}
		result = append(result, entry)
	}

	c.JSON(http.StatusOK, gin.H{"organizations": result, "count": len(result)})
}

// DeactivateOrganization suspends an organization. Members keep their status
// but the login gate blocks them while the organization is inactive.
func (h *AdminHandler) DeactivateOrganization(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization ID"})
		return
	}

	var req DeactivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var org models.Organization
	if err := h.db.Preload("Owner").Where("id = ?", orgID).First(&org).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}
	if !org.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Organization is already deactivated"})
		return
	}

	now := time.Now().UTC()
	err = h.db.Model(&org).Updates(map[string]interface{}{
		"is_active":           false,
		"deactivated_at":      now,
		"deactivation_reason": req.Reason,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate organization"})
		return
	}

	if org.Owner != nil {
		h.mailer.SendOrganizationDeactivated(org.Owner.Email, org.Owner.FirstName, org.Name, req.Reason)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization deactivated"})
}

// ReactivateOrganization lifts a suspension.
func (h *AdminHandler) ReactivateOrganization(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization ID"})
		return
	}

	var org models.Organization
	if err := h.db.Preload("Owner").Where("id = ?", orgID).First(&org).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}
	if org.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Organization is already active"})
		return
	}

	err = h.db.Model(&org).Updates(map[string]interface{}{
		"is_active":           true,
		"deactivated_at":      nil,
		"deactivation_reason": nil,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reactivate organization"})
		return
	}

	if org.Owner != nil {
		h.mailer.SendOrganizationReactivated(org.Owner.Email, org.Owner.FirstName, org.Name)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization reactivated"})
}

// ChangeOrganizationPlan moves an organization to a different plan. A
// downgrade below the current active member count is refused.
func (h *AdminHandler) ChangeOrganizationPlan(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization ID"})
		return
	}

	var req ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var org models.Organization
	if err := h.db.Preload("SubscriptionPlan").Preload("Owner").Where("id = ?", orgID).First(&org).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	var plan models.SubscriptionPlan
	if err := h.db.Where("id = ?", req.PlanID).First(&plan).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subscription plan not found"})
		return
	}
	if !plan.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subscription plan is not active"})
		return
	}
	if plan.ID == org.SubscriptionPlanID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Organization is already on this plan"})
		return
	}

	var activeMembers int64
	h.db.Model(&models.User{}).
		Where("organization_id = ? AND status = ?", org.ID, models.UserStatusActive).
		Count(&activeMembers)
	if plan.MaxUsers < int(activeMembers) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Plan does not allow the organization's current member count"})
		return
	}

	oldPlanName := ""
	if org.SubscriptionPlan != nil {
		oldPlanName = org.SubscriptionPlan.DisplayName
	}

	// Update through a fresh model: org carries the preloaded old plan
	// association, and gorm's belongs-to sync would write the stale FK back.
	if err := h.db.Model(&models.Organization{}).Where("id = ?", org.ID).Update("subscription_plan_id", plan.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change plan"})
		return
	}

	if org.Owner != nil {
		h.mailer.SendPlanChangedByAdmin(org.Owner.Email, org.Owner.FirstName, org.Name, oldPlanName, plan.DisplayName, req.Reason)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Plan changed",
		"planId":   plan.ID,
		"planName": plan.DisplayName,
	})
}

// DeactivateUser moves a user to INACTIVE and revokes their refresh tokens.
func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req DeactivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if !utils.IsValidUserStatusChange(user.Status, models.UserStatusInactive) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status transition"})
		return
	}

	now := time.Now().UTC()
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"status":              models.UserStatusInactive,
			"deactivated_at":      now,
			"deactivation_reason": req.Reason,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&auth.RefreshToken{}).
			Where("user_id = ? AND revoked_at IS NULL", user.ID).
			Update("revoked_at", now).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate user"})
		return
	}

	h.mailer.SendAccountDeactivated(user.Email, user.FirstName, req.Reason)

	c.JSON(http.StatusOK, gin.H{"message": "User deactivated"})
}

// ReactivateUser restores an INACTIVE user to ACTIVE. This is the only path
// out of INACTIVE.
func (h *AdminHandler) ReactivateUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.Status != models.UserStatusInactive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not deactivated"})
		return
	}

	err = h.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"status":              models.UserStatusActive,
		"deactivated_at":      nil,
		"deactivation_reason": nil,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reactivate user"})
		return
	}

	h.mailer.SendAccountReactivated(user.Email, user.FirstName)

	c.JSON(http.StatusOK, gin.H{"message": "User reactivated"})
}

// ChangeUserStatus applies an explicit status transition by email. Transitions
// are validated against the status table; INACTIVE is terminal here.
func (h *AdminHandler) ChangeUserStatus(c *gin.Context) {
	var req ChangeUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Status != models.UserStatusPending &&
		req.Status != models.UserStatusActive &&
		req.Status != models.UserStatusInactive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value"})
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if !utils.IsValidUserStatusChange(user.Status, req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status transition"})
		return
	}

	oldStatus := user.Status
	if err := h.db.Model(&models.User{}).Where("id = ?", user.ID).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":     user.Email,
		"oldStatus": oldStatus,
		"newStatus": req.Status,
	})
}
