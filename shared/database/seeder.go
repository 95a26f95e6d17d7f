package database

import (
	"log"
	"time"

	"talenthub-backend/shared/config"
	"talenthub-backend/shared/database/models"
	utils "talenthub-backend/shared/utils/auth"

	"gorm.io/gorm"
)

// SeedDatabase seeds roles, the super admin account and the default
// subscription plans.
func SeedDatabase(db *gorm.DB) error {
	log.Println("🌱 Checking database seed data...")

	rolesCreated, err := SeedRoles(db)
	if err != nil {
		return err
	}

	plansCreated, err := SeedSubscriptionPlans(db)
	if err != nil {
		return err
	}

	if rolesCreated > 0 || plansCreated > 0 {
		log.Printf("✅ Database seeding completed (%d roles, %d plans created)", rolesCreated, plansCreated)
	} else {
		log.Println("✅ Database seed data is up to date")
	}

	cfg := config.GetConfig()
	return CreateSuperAdmin(db, cfg.SuperAdminEmail, cfg.SuperAdminPassword, "Super", "Admin")
}

// SeedRoles creates the fixed system roles
func SeedRoles(db *gorm.DB) (int, error) {
	roles := []models.Role{
		{Name: models.RoleSuperAdmin, Description: "Full system access: organizations, plans, upgrade requests, user status"},
		{Name: models.RoleOrganizationAdmin, Description: "Manages a single organization: members, invites, upgrade requests"},
		{Name: models.RoleOrganizationUser, Description: "Read access to the member's organization"},
		{Name: models.RoleDefaultUser, Description: "Self-service user with a fixed CV upload quota"},
	}

	created := 0
	for _, role := range roles {
		var existing models.Role
		result := db.Where("name = ?", role.Name).First(&existing)
		if result.Error != nil {
			if err := db.Create(&role).Error; err != nil {
				return created, err
			}
			created++
		}
	}

	return created, nil
}

// SeedSubscriptionPlans creates the default plan catalog
func SeedSubscriptionPlans(db *gorm.DB) (int, error) {
	plans := []models.SubscriptionPlan{
		{
			Name:         "starter",
			DisplayName:  "Starter",
			MaxUsers:     5,
			MaxCVUploads: 50,
			DisplayOrder: 1,
			IsActive:     true,
		},
		{
			Name:         "professional",
			DisplayName:  "Professional",
			MaxUsers:     20,
			MaxCVUploads: 200,
			DisplayOrder: 2,
			IsPopular:    true,
			IsActive:     true,
		},
		{
			Name:         "enterprise",
			DisplayName:  "Enterprise",
			MaxUsers:     100,
			MaxCVUploads: 1000,
			DisplayOrder: 3,
			IsActive:     true,
		},
	}

	features := map[string][]string{
		"starter": {
			"Up to 5 users",
			"50 CV analyses per month",
			"Email support",
			"Basic reporting",
			"Organization dashboard",
		},
		"professional": {
			"Up to 20 users",
			"200 CV analyses per month",
			"Priority support",
			"Advanced analytics",
			"Custom branding",
			"API access",
		},
		"enterprise": {
			"Up to 100 users",
			"1000 CV analyses per month",
			"Dedicated support",
			"Advanced analytics",
			"Custom branding",
			"API access",
			"SSO integration",
			"Custom integrations",
		},
	}

	created := 0
	for _, plan := range plans {
		var existing models.SubscriptionPlan
		result := db.Where("name = ?", plan.Name).First(&existing)
		if result.Error != nil {
			plan.SetFeatures(features[plan.Name])
			if err := db.Create(&plan).Error; err != nil {
				return created, err
			}
			created++
		}
	}

	return created, nil
}

// CreateSuperAdmin creates the super admin user with the SuperAdmin role
func CreateSuperAdmin(db *gorm.DB, email, password, firstName, lastName string) error {
	var existingUser models.User
	if err := db.Where("email = ?", email).First(&existingUser).Error; err == nil {
		log.Println("Super admin already exists")
		return nil
	}

	var superAdminRole models.Role
	if err := db.Where("name = ?", models.RoleSuperAdmin).First(&superAdminRole).Error; err != nil {
		return err
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	superAdminUser := models.User{
		Email:     email,
		Password:  hashedPassword,
		FirstName: firstName,
		LastName:  lastName,
		Status:    models.UserStatusActive,
		Roles:     []models.Role{superAdminRole},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := db.Create(&superAdminUser).Error; err != nil {
		return err
	}

	log.Printf("✅ Super admin created: %s", email)
	return nil
}
