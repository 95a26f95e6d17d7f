package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"talenthub-backend/auth-service/middleware"
	"talenthub-backend/shared/database/models"
	"talenthub-backend/shared/notification"
	utils "talenthub-backend/shared/utils/auth"
)

// OrganizationHandler serves the member-facing organization endpoints.
type OrganizationHandler struct {
	db     *gorm.DB
	mailer *notification.Mailer
}

func NewOrganizationHandler(db *gorm.DB, mailer *notification.Mailer) *OrganizationHandler {
	return &OrganizationHandler{db: db, mailer: mailer}
}

type InviteMemberRequest struct {
	Email     string `json:"email" binding:"required"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

// currentOrganization resolves the caller's organization with plan and owner
// loaded, writing the error response itself when there is none.
func (h *OrganizationHandler) currentOrganization(c *gin.Context) (*models.Organization, bool) {
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

// GetCurrent returns the caller's organization with its plan.
func (h *OrganizationHandler) GetCurrent(c *gin.Context) {
	org, ok := h.currentOrganization(c)
	if !ok {
		return
	}

	response := gin.H{
		"id":                 org.ID,
		"name":               org.Name,
		"slug":               org.Slug,
		"isActive":           org.IsActive,
		"cvUploadsThisMonth": org.CvUploadsThisMonth,
		"cvUploadsResetAt":   org.CvUploadsResetAt,
		"createdAt":          org.CreatedAt,
	}
	if org.SubscriptionPlan != nil {
		response["plan"] = gin.H{
			"id":           org.SubscriptionPlan.ID,
			"name":         org.SubscriptionPlan.Name,
			"displayName":  org.SubscriptionPlan.DisplayName,
			"maxUsers":     org.SubscriptionPlan.MaxUsers,
			"maxCVUploads": org.SubscriptionPlan.MaxCVUploads,
			"features":     org.SubscriptionPlan.Features(),
		}
	}
	if org.Owner != nil {
		response["owner"] = gin.H{
			"id":       org.Owner.ID,
			"email":    org.Owner.Email,
			"fullName": org.Owner.FullName(),
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetMembers lists everyone in the caller's organization.
func (h *OrganizationHandler) GetMembers(c *gin.Context) {
	org, ok := h.currentOrganization(c)
	if !ok {
		return
	}

	var members []models.User
	if err := h.db.Preload("Roles").Where("organization_id = ?", org.ID).Order("created_at ASC").Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	result := make([]gin.H, 0, len(members))
	for i := range members {
		m := &members[i]
		result = append(result, gin.H{
			"id":        m.ID,
			"email":     m.Email,
			"fullName":  m.FullName(),
			"status":    m.Status,
			"roles":     m.RoleNames(),
			"isOwner":   m.ID == org.OwnerID,
			"createdAt": m.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"members": result, "count": len(result)})
}

// GetStats returns the organization's usage against its plan limits.
func (h *OrganizationHandler) GetStats(c *gin.Context) {
	org, ok := h.currentOrganization(c)
	if !ok {
		return
	}

	var memberCount int64
	h.db.Model(&models.User{}).
		Where("organization_id = ? AND status = ?", org.ID, models.UserStatusActive).
		Count(&memberCount)

	stats := gin.H{
		"memberCount":        memberCount,
		"uploadsThisMonth":   org.CvUploadsThisMonth,
		"uploadsResetAt":     org.CvUploadsResetAt,
	}
	if org.SubscriptionPlan != nil {
		stats["maxUsers"] = org.SubscriptionPlan.MaxUsers
		stats["uploadsLimit"] = org.SubscriptionPlan.MaxCVUploads
	}

	c.JSON(http.StatusOK, stats)
}

// InviteMember creates (or reactivates) a member with a temporary password
// that must be changed on first login. The plan's member limit is enforced
// against active members.
func (h *OrganizationHandler) InviteMember(c *gin.Context) {
	org, ok := h.currentOrganization(c)
	if !ok {
		return
	}

	var req InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if org.SubscriptionPlan != nil {
		var activeMembers int64
		h.db.Model(&models.User{}).
			Where("organization_id = ? AND status = ?", org.ID, models.UserStatusActive).
			Count(&activeMembers)
		if int(activeMembers) >= org.SubscriptionPlan.MaxUsers {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Organization has reached its member limit"})
			return
		}
	}

	tempPassword, err := utils.GenerateTemporaryPassword()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate temporary password"})
		return
	}
	hashedPassword, err := utils.HashPassword(tempPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		// An inactive member of this organization is re-invited in place,
		// keeping their id. Anyone else already owns the address.
		if existing.OrganizationID != nil && *existing.OrganizationID == org.ID && existing.Status == models.UserStatusInactive {
			err = h.db.Model(&models.User{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
				"password":             hashedPassword,
				"first_name":           req.FirstName,
				"last_name":            req.LastName,
				"status":               models.UserStatusActive,
				"must_change_password": true,
				"deactivated_at":       nil,
				"deactivation_reason":  nil,
			}).Error
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reactivate member"})
				return
			}

			h.mailer.SendInvitation(req.Email, req.FirstName, org.Name, tempPassword)
			c.JSON(http.StatusOK, gin.H{
				"message": "Member re-invited",
				"user": gin.H{
					"id":        existing.ID,
					"email":     existing.Email,
					"firstName": req.FirstName,
					"lastName":  req.LastName,
				},
				"temporaryPassword": tempPassword,
			})
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists"})
		return
	}

	var memberRole models.Role
	if err := h.db.Where("name = ?", models.RoleOrganizationUser).First(&memberRole).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Role not found"})
		return
	}

	member := models.User{
		Email:              req.Email,
		Password:           hashedPassword,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Status:             models.UserStatusActive,
		OrganizationID:     &org.ID,
		MustChangePassword: true,
		Roles:              []models.Role{memberRole},
	}
	if err := h.db.Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create member"})
		return
	}

	h.mailer.SendInvitation(member.Email, member.FirstName, org.Name, tempPassword)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Member invited",
		"user": gin.H{
			"id":        member.ID,
			"email":     member.Email,
			"firstName": member.FirstName,
			"lastName":  member.LastName,
		},
		"temporaryPassword": tempPassword,
	})
}

// RemoveMember deactivates a member. The owner can never be removed and the
// organization must keep at least one active administrator.
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	org, ok := h.currentOrganization(c)
	if !ok {
		return
	}

	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID"})
		return
	}

	var member models.User
	if err := h.db.Preload("Roles").Where("id = ?", memberID).First(&member).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}
	if member.OrganizationID == nil || *member.OrganizationID != org.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not a member of this organization"})
		return
	}
	if member.ID == org.OwnerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot remove organization owner"})
		return
	}
	if member.Status == models.UserStatusInactive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Member is already inactive"})
		return
	}

	if member.HasRole(models.RoleOrganizationAdmin) {
		var otherAdmins int64
		h.db.Model(&models.User{}).
			Joins("JOIN user_roles ur ON ur.user_id = users.id").
			Joins("JOIN roles r ON r.id = ur.role_id").
			Where("users.organization_id = ? AND users.status = ? AND r.name = ? AND users.id <> ?",
				org.ID, models.UserStatusActive, models.RoleOrganizationAdmin, member.ID).
			Count(&otherAdmins)
		if otherAdmins == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Organization must retain at least one active administrator"})
			return
		}
	}

	now := time.Now().UTC()
	err = h.db.Model(&models.User{}).Where("id = ?", member.ID).Updates(map[string]interface{}{
		"status":              models.UserStatusInactive,
		"deactivated_at":      now,
		"deactivation_reason": "Removed from organization",
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}
