package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"talenthub-backend/auth-service/handlers"
	"talenthub-backend/auth-service/middleware"
	"talenthub-backend/shared/config"
	"talenthub-backend/shared/database"
	"talenthub-backend/shared/database/models"
	"talenthub-backend/shared/notification"
)

func main() {
	config.LoadConfig()
	cfg := config.GetConfig()

	if !cfg.JWTSecretConfigured() {
		log.Fatal("❌ JWT_SECRET must be set to a non-default value")
	}

	if err := database.InitDatabase(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	db := database.GetDB()

	if err := database.SeedDatabase(db); err != nil {
		log.Fatalf("❌ Failed to seed database: %v", err)
	}

	// Email goes through SMTP when configured, otherwise to the log
	var sender notification.Sender
	if cfg.SMTPHost != "" {
		sender = notification.NewSMTPSender(cfg)
	} else {
		log.Println("⚠️ SMTP not configured, emails will be logged only")
		sender = notification.LogSender{}
	}
	mailer := notification.NewMailer(sender)
	defer mailer.Close()

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := handlers.NewAuthHandler(db, mailer)
	accountHandler := handlers.NewAccountHandler(db)
	adminHandler := handlers.NewAdminHandler(db, mailer)
	orgHandler := handlers.NewOrganizationHandler(db, mailer)
	quotaHandler := handlers.NewQuotaHandler(db)
	planHandler := handlers.NewSubscriptionPlanHandler(db)
	upgradeHandler := handlers.NewUpgradeRequestHandler(db, mailer)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "service": "auth-service"})
	})

	api := router.Group("/api")
	{
		// Public
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/subscriptionplan", planHandler.GetActivePlans)

		// Any authenticated user
		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware(db))
		{
			authed.GET("/me", authHandler.Me)
			authed.POST("/auth/change-password", accountHandler.ChangePassword)
			authed.PUT("/auth/update-profile", accountHandler.UpdateProfile)

			quota := authed.Group("/quota")
			{
				quota.GET("/check", quotaHandler.Check)
				quota.POST("/increment", quotaHandler.Increment)
				quota.GET("/usage", quotaHandler.Usage)
			}

			// Super admin
			admin := authed.Group("/admin", middleware.RequireRoles(models.RoleSuperAdmin))
			{
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
			}

			// Organization members
			org := authed.Group("/organization", middleware.RequireRoles(models.RoleOrganizationAdmin, models.RoleOrganizationUser))
			{
				org.GET("/current", orgHandler.GetCurrent)
				org.GET("/members", orgHandler.GetMembers)
				org.GET("/stats", orgHandler.GetStats)
				org.POST("/invite", middleware.RequireRoles(models.RoleOrganizationAdmin), orgHandler.InviteMember)
				org.DELETE("/members/:id", middleware.RequireRoles(models.RoleOrganizationAdmin), orgHandler.RemoveMember)
			}

			// Plan catalog management
			plans := authed.Group("/subscriptionplan", middleware.RequireRoles(models.RoleSuperAdmin))
			{
				plans.GET("/admin", planHandler.GetAllPlans)
				plans.GET("/:id", planHandler.GetPlan)
				plans.POST("", planHandler.CreatePlan)
				plans.PUT("/:id", planHandler.UpdatePlan)
				plans.DELETE("/:id", planHandler.DeletePlan)
				plans.POST("/:id/toggle-active", planHandler.ToggleActive)
				plans.GET("/:id/can-delete", planHandler.CanDelete)
			}

			// Upgrade request workflow
			upgrade := authed.Group("/upgraderequest")
			{
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
			}
		}
	}

	port := cfg.ServerPort
	log.Printf("🚀 Auth service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
