package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"talenthub-backend/auth-service/middleware"
	"talenthub-backend/shared/database/models"
)

// QuotaHandler answers CV upload quota questions for every account type:
// individual users draw from a lifetime allowance, organization members from
// a monthly pool, super admins are unlimited.
type QuotaHandler struct {
	db *gorm.DB
}

func NewQuotaHandler(db *gorm.DB) *QuotaHandler {
	return &QuotaHandler{db: db}
}

// Check reports whether the caller may upload another CV. Individual quotas
// are created lazily here; an organization's monthly counter is reset when
// its period has elapsed.
func (h *QuotaHandler) Check(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	switch {
	case user.HasRole(models.RoleSuperAdmin):
		c.JSON(http.StatusOK, gin.H{
			"allowed":   true,
			"used":      0,
			"limit":     -1,
			"unlimited": true,
		})

	case user.HasRole(models.RoleOrganizationAdmin) || user.HasRole(models.RoleOrganizationUser):
		org, ok := h.organizationFor(c, &user)
		if !ok {
			return
		}
		if err := h.resetIfDue(org); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset quota period"})
			return
		}

		limit := 0
		if org.SubscriptionPlan != nil {
			limit = org.SubscriptionPlan.MaxCVUploads
		}
		c.JSON(http.StatusOK, gin.H{
			"allowed":  org.CvUploadsThisMonth < limit,
			"used":     org.CvUploadsThisMonth,
			"limit":    limit,
			"resetsAt": org.CvUploadsResetAt,
		})

	case user.HasRole(models.RoleDefaultUser) || len(user.Roles) == 0:
		quota, err := h.quotaFor(user.ID, true)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quota"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"allowed": quota.CvUploadsUsed < quota.CvUploadsLimit,
			"used":    quota.CvUploadsUsed,
			"limit":   quota.CvUploadsLimit,
		})

	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User type not recognized"})
	}
}

// Increment records one CV upload. The caller must have checked first: an
// exhausted quota is a 403, a missing individual quota a 400. Increment never
// resets the monthly period, only Check does.
func (h *QuotaHandler) Increment(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	switch {
	case user.HasRole(models.RoleSuperAdmin):
		c.JSON(http.StatusOK, gin.H{"message": "Upload recorded", "unlimited": true})

	case user.HasRole(models.RoleOrganizationAdmin) || user.HasRole(models.RoleOrganizationUser):
		org, ok := h.organizationFor(c, &user)
		if !ok {
			return
		}

		limit := 0
		if org.SubscriptionPlan != nil {
			limit = org.SubscriptionPlan.MaxCVUploads
		}
		if org.CvUploadsThisMonth >= limit {
			c.JSON(http.StatusForbidden, gin.H{"error": "Monthly CV upload limit reached"})
			return
		}

		err := h.db.Model(org).Update("cv_uploads_this_month", gorm.Expr("cv_uploads_this_month + 1")).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record upload"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Upload recorded",
			"used":    org.CvUploadsThisMonth + 1,
			"limit":   limit,
		})

	case user.HasRole(models.RoleDefaultUser) || len(user.Roles) == 0:
		quota, err := h.quotaFor(user.ID, false)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No quota record found"})
			return
		}
		if quota.CvUploadsUsed >= quota.CvUploadsLimit {
			c.JSON(http.StatusForbidden, gin.H{"error": "CV upload limit reached"})
			return
		}

		err = h.db.Model(quota).Update("cv_uploads_used", gorm.Expr("cv_uploads_used + 1")).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record upload"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Upload recorded",
			"used":    quota.CvUploadsUsed + 1,
			"limit":   quota.CvUploadsLimit,
		})

	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User type not recognized"})
	}
}

// Usage returns current consumption without side effects.
func (h *QuotaHandler) Usage(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	switch {
	case user.HasRole(models.RoleSuperAdmin):
		c.JSON(http.StatusOK, gin.H{"used": 0, "limit": -1, "unlimited": true})

	case user.HasRole(models.RoleOrganizationAdmin) || user.HasRole(models.RoleOrganizationUser):
		org, ok := h.organizationFor(c, &user)
		if !ok {
			return
		}
		limit := 0
		if org.SubscriptionPlan != nil {
			limit = org.SubscriptionPlan.MaxCVUploads
		}
		c.JSON(http.StatusOK, gin.H{
			"used":     org.CvUploadsThisMonth,
			"limit":    limit,
			"resetsAt": org.CvUploadsResetAt,
		})

	case user.HasRole(models.RoleDefaultUser) || len(user.Roles) == 0:
		var quota models.NormalUserQuota
		if err := h.db.Where("user_id = ?", user.ID).First(&quota).Error; err != nil {
			// No record yet means nothing has been used
			c.JSON(http.StatusOK, gin.H{"used": 0, "limit": models.DefaultCVUploadLimit})
			return
		}
		c.JSON(http.StatusOK, gin.H{"used": quota.CvUploadsUsed, "limit": quota.CvUploadsLimit})

	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User type not recognized"})
	}
}

// organizationFor loads the caller's organization with its plan, writing the
// error response when there is none.
func (h *QuotaHandler) organizationFor(c *gin.Context, user *models.User) (*models.Organization, bool) {
	if user.OrganizationID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Organization not found for user"})
		return nil, false
	}
	var org models.Organization
	if err := h.db.Preload("SubscriptionPlan").Where("id = ?", *user.OrganizationID).First(&org).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Organization not found for user"})
		return nil, false
	}
	return &org, true
}

// resetIfDue zeroes the monthly counter once the reset timestamp has passed
// and advances the period one month from now, not from the stored timestamp.
func (h *QuotaHandler) resetIfDue(org *models.Organization) error {
	now := time.Now().UTC()
	if now.Before(org.CvUploadsResetAt) {
		return nil
	}

	org.CvUploadsThisMonth = 0
	org.CvUploadsResetAt = now.AddDate(0, 1, 0)
	return h.db.Model(org).Updates(map[string]interface{}{
		"cv_uploads_this_month": 0,
		"cv_uploads_reset_at":   org.CvUploadsResetAt,
	}).Error
}

// quotaFor fetches an individual quota record, creating one with the default
// allowance when allowed.
func (h *QuotaHandler) quotaFor(userID uuid.UUID, createIfMissing bool) (*models.NormalUserQuota, error) {
	var quota models.NormalUserQuota
	err := h.db.Where("user_id = ?", userID).First(&quota).Error
	if err == nil {
		return &quota, nil
	}
	if err != gorm.ErrRecordNotFound || !createIfMissing {
		return nil, err
	}

	quota = models.NormalUserQuota{
		UserID:         userID,
		CvUploadsUsed:  0,
		CvUploadsLimit: models.DefaultCVUploadLimit,
	}
	if err := h.db.Create(&quota).Error; err != nil {
		return nil, err
	}
	return &quota, nil
}
