package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"talenthub-backend/auth-service/middleware"
	"talenthub-backend/shared/database"
	"talenthub-backend/shared/database/models"
	"talenthub-backend/shared/notification"
	utils "talenthub-backend/shared/utils/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestDB opens an isolated in-memory database with the full schema and
// the seed roles and plans.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.MigrateModels(db))

	_, err = database.SeedRoles(db)
	require.NoError(t, err)
	_, err = database.SeedSubscriptionPlans(db)
	require.NoError(t, err)

	return db
}

// setupRouter wires the same route table the service uses in production.
func setupRouter(db *gorm.DB) *gin.Engine {
	mailer := notification.NewMailer(notification.LogSender{})

	authHandler := NewAuthHandler(db, mailer)
	accountHandler := NewAccountHandler(db)
	adminHandler := NewAdminHandler(db, mailer)
	orgHandler := NewOrganizationHandler(db, mailer)
	quotaHandler := NewQuotaHandler(db)
	planHandler := NewSubscriptionPlanHandler(db)
	upgradeHandler := NewUpgradeRequestHandler(db, mailer)

	router := gin.New()

	api := router.Group("/api")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/subscriptionplan", planHandler.GetActivePlans)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(db))

	authed.GET("/me", authHandler.Me)
	authed.POST("/auth/change-password", accountHandler.ChangePassword)
	authed.PUT("/auth/update-profile", accountHandler.UpdateProfile)

	quota := authed.Group("/quota")
	quota.GET("/check", quotaHandler.Check)
	quota.POST("/increment", quotaHandler.Increment)
	quota.GET("/usage", quotaHandler.Usage)

	admin := authed.Group("/admin", middleware.RequireRoles(models.RoleSuperAdmin))
	admin.GET("/users", adminHandler.GetUsers)
	admin.GET("/pending-org-admins", adminHandler.GetPendingOrgAdmins)
	admin.POST("/approve-org-admin", adminHandler.ApproveOrgAdmin)
	admin.POST("/reject-org-admin", adminHandler.RejectOrgAdmin)
	admin.GET("/stats", adminHandler.GetStats)
	admin.GET("/organizations", adminHandler.GetOrganizations)
	admin.POST("/organizations/:id/deactivate", adminHandler.DeactivateOrganization)
	admin.POST("/organizations/:id/reactivate", adminHandler.ReactivateOrganization)
	admin.POST("/organizations/:id/change-plan", adminHandler.ChangeOrganizationPlan)
	admin.POST("/users/:id/deactivate", adminHandler.DeactivateUser)
	admin.POST("/users/:id/reactivate", adminHandler.ReactivateUser)
	admin.POST("/users/change-status", adminHandler.ChangeUserStatus)

	org := authed.Group("/organization", middleware.RequireRoles(models.RoleOrganizationAdmin, models.RoleOrganizationUser))
	org.GET("/current", orgHandler.GetCurrent)
	org.GET("/members", orgHandler.GetMembers)
	org.GET("/stats", orgHandler.GetStats)
	org.POST("/invite", middleware.RequireRoles(models.RoleOrganizationAdmin), orgHandler.InviteMember)
	org.DELETE("/members/:id", middleware.RequireRoles(models.RoleOrganizationAdmin), orgHandler.RemoveMember)

	plans := authed.Group("/subscriptionplan", middleware.RequireRoles(models.RoleSuperAdmin))
	plans.GET("/admin", planHandler.GetAllPlans)
	plans.GET("/:id", planHandler.GetPlan)
	plans.POST("", planHandler.CreatePlan)
	plans.PUT("/:id", planHandler.UpdatePlan)
	plans.DELETE("/:id", planHandler.DeletePlan)
	plans.POST("/:id/toggle-active", planHandler.ToggleActive)
	plans.GET("/:id/can-delete", planHandler.CanDelete)

	upgrade := authed.Group("/upgraderequest")
	orgAdmin := middleware.RequireRoles(models.RoleOrganizationAdmin)
	superAdmin := middleware.RequireRoles(models.RoleSuperAdmin)
	upgrade.GET("/available-plans", orgAdmin, upgradeHandler.GetAvailablePlans)
	upgrade.GET("/my-request", orgAdmin, upgradeHandler.GetMyRequest)
	upgrade.GET("/my-history", orgAdmin, upgradeHandler.GetMyHistory)
	upgrade.POST("", orgAdmin, upgradeHandler.Submit)
	upgrade.POST("/:id/cancel", orgAdmin, upgradeHandler.Cancel)
	upgrade.GET("/pending", superAdmin, upgradeHandler.GetPending)
	upgrade.GET("/pending/count", superAdmin, upgradeHandler.GetPendingCount)
	upgrade.GET("/all", superAdmin, upgradeHandler.GetAll)
	upgrade.POST("/:id/approve", superAdmin, upgradeHandler.Approve)
	upgrade.POST("/:id/reject", superAdmin, upgradeHandler.Reject)

	return router
}

const testPassword = "Password123"

func timeNowPlusMonth() time.Time {
	return time.Now().UTC().AddDate(0, 1, 0)
}

// createUser inserts a user with the given role and an already-hashed
// testPassword.
func createUser(t *testing.T, db *gorm.DB, email, roleName, status string, orgID *uuid.UUID) models.User {
	t.Helper()

	hashed, err := utils.HashPassword(testPassword)
	require.NoError(t, err)

	user := models.User{
		Email:          email,
		Password:       hashed,
		FirstName:      "Test",
		LastName:       "User",
		Status:         status,
		OrganizationID: orgID,
	}

	if roleName != "" {
		var role models.Role
		require.NoError(t, db.Where("name = ?", roleName).First(&role).Error)
		user.Roles = []models.Role{role}
	}

	require.NoError(t, db.Create(&user).Error)
	return user
}

// createOrganization inserts an organization owned by the given user on the
// named plan and links the owner to it.
func createOrganization(t *testing.T, db *gorm.DB, name string, owner models.User, planName string) models.Organization {
	t.Helper()

	var plan models.SubscriptionPlan
	require.NoError(t, db.Where("name = ?", planName).First(&plan).Error)

	org := models.Organization{
		Name:               name,
		Slug:               name,
		OwnerID:            owner.ID,
		SubscriptionPlanID: plan.ID,
		IsActive:           true,
		CvUploadsResetAt:   timeNowPlusMonth(),
	}
	require.NoError(t, db.Create(&org).Error)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", owner.ID).Update("organization_id", org.ID).Error)
	return org
}

// authHeader mints a valid access token for the user.
func authHeader(t *testing.T, db *gorm.DB, user models.User) string {
	t.Helper()

	var fresh models.User
	require.NoError(t, db.Preload("Roles").Where("id = ?", user.ID).First(&fresh).Error)

	token, _, err := utils.GenerateAccessToken(fresh.ID, fresh.Email, fresh.RoleNames())
	require.NoError(t, err)
	return "Bearer " + token
}

// doRequest runs a request against the router and decodes the JSON response.
func doRequest(t *testing.T, router *gin.Engine, method, path, bearer string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}
