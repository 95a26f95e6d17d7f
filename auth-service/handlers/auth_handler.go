package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"talenthub-backend/auth-service/middleware"
	"talenthub-backend/shared/database/models"
	"talenthub-backend/shared/database/models/auth"
	"talenthub-backend/shared/notification"
	utils "talenthub-backend/shared/utils/auth"
)

// AuthHandler owns registration, login and the refresh token lifecycle.
type AuthHandler struct {
	db     *gorm.DB
	mailer *notification.Mailer
}

func NewAuthHandler(db *gorm.DB, mailer *notification.Mailer) *AuthHandler {
	return &AuthHandler{db: db, mailer: mailer}
}

type RegisterRequest struct {
	Email            string `json:"email" binding:"required"`
	Password         string `json:"password" binding:"required"`
	FirstName        string `json:"firstName" binding:"required"`
	LastName         string `json:"lastName" binding:"required"`
	UserRole         string `json:"userRole"`
	RequestedOrgName string `json:"requestedOrgName"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register creates a self-service account. Plain users become ACTIVE
// immediately; organization admin applicants wait in PENDING until a super
// admin approves them.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidateEmail(req.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := req.UserRole
	if role == "" {
		role = models.RoleDefaultUser
	}
	if role != models.RoleDefaultUser && role != models.RoleOrganizationAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role for registration"})
		return
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists"})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	var roleRecord models.Role
	if err := h.db.Where("name = ?", role).First(&roleRecord).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Role not found"})
		return
	}

	user := models.User{
		Email:     req.Email,
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Status:    models.UserStatusActive,
		Roles:     []models.Role{roleRecord},
	}
	if role == models.RoleOrganizationAdmin {
		user.Status = models.UserStatusPending
		if req.RequestedOrgName != "" {
			user.RequestedOrgName = &req.RequestedOrgName
		}
	}

	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	if role == models.RoleOrganizationAdmin {
		h.notifySuperAdmins(user)
		c.JSON(http.StatusCreated, gin.H{
			"message": "Registration received. Your organization is pending approval.",
			"user":    userPayload(&user),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"user":    userPayload(&user),
	})
}

func (h *AuthHandler) notifySuperAdmins(applicant models.User) {
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

	orgName := ""
	if applicant.RequestedOrgName != nil {
		orgName = *applicant.RequestedOrgName
	}
	for _, admin := range admins {
		h.mailer.SendOrgRegistrationReceived(admin.Email, admin.FirstName, applicant.FullName(), applicant.Email, orgName)
	}
}

// Login authenticates credentials and issues a token pair. Status gates run
// before the password check so deactivated accounts never learn whether the
// password was right.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Preload("Roles").Preload("Organization").Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	// Clients branch on "status", so these 401s carry more than an error line.
	switch user.Status {
	case models.UserStatusPending:
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Account not active",
			"status":  user.Status,
			"message": "Your account is pending approval. Please wait for administrator approval.",
		})
		return
	case models.UserStatusInactive:
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Account not active",
			"status":  user.Status,
			"message": "Your account has been deactivated. Please contact support.",
		})
		return
	}

	if user.Organization != nil && !user.Organization.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Account not active",
			"status":  "ORGANIZATION_INACTIVE",
			"message": "Your organization has been deactivated. Please contact support.",
		})
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	h.issueTokenPair(c, &user)
}

// Refresh rotates a refresh token: the presented token is revoked, linked to
// its replacement and a fresh pair is issued. Expired, revoked or unknown
// tokens are rejected.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var stored auth.RefreshToken
	err := h.db.Preload("User.Roles").Preload("User.Organization").
		Where("token = ?", req.RefreshToken).First(&stored).Error
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	if !stored.IsActive() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token is expired or revoked"})
		return
	}

	user := stored.User
	if user.Status != models.UserStatusActive {
		message := "Your account has been deactivated. Please contact support."
		if user.Status == models.UserStatusPending {
			message = "Your account is pending approval. Please wait for administrator approval."
		}
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Account not active",
			"status":  user.Status,
			"message": message,
		})
		return
	}
	if user.Organization != nil && !user.Organization.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Account not active",
			"status":  "ORGANIZATION_INACTIVE",
			"message": "Your organization has been deactivated. Please contact support.",
		})
		return
	}

	newToken, err := utils.GenerateRefreshToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	now := time.Now().UTC()
	replacement := auth.RefreshToken{
		UserID:    user.ID,
		Token:     newToken,
		ExpiresAt: now.Add(utils.GetRefreshTokenDuration()),
		CreatedAt: now,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&replacement).Error; err != nil {
			return err
		}
		return tx.Model(&stored).Updates(map[string]interface{}{
			"revoked_at":        now,
			"replaced_by_token": newToken,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate refresh token"})
		return
	}

	accessToken, expiresIn, err := utils.GenerateAccessToken(user.ID, user.Email, user.RoleNames())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  accessToken,
		"expiresIn":    expiresIn,
		"refreshToken": newToken,
		"user":         userPayload(&user),
	})
}

// Logout revokes the presented refresh token. The call succeeds even without
// a token so clients can always clear their session.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if req.RefreshToken != "" {
		now := time.Now().UTC()
		h.db.Model(&auth.RefreshToken{}).
			Where("token = ? AND revoked_at IS NULL", req.RefreshToken).
			Update("revoked_at", now)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	payload := userPayload(&user)
	if user.Organization != nil {
		payload["organization"] = gin.H{
			"id":       user.Organization.ID,
			"name":     user.Organization.Name,
			"slug":     user.Organization.Slug,
			"isActive": user.Organization.IsActive,
		}
	}

	c.JSON(http.StatusOK, payload)
}

func (h *AuthHandler) issueTokenPair(c *gin.Context, user *models.User) {
	accessToken, expiresIn, err := utils.GenerateAccessToken(user.ID, user.Email, user.RoleNames())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	now := time.Now().UTC()
	stored := auth.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: now.Add(utils.GetRefreshTokenDuration()),
		CreatedAt: now,
	}
	if err := h.db.Create(&stored).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  accessToken,
		"expiresIn":    expiresIn,
		"refreshToken": refreshToken,
		"user":         userPayload(user),
	})
}

// userPayload is the user shape shared by every auth response.
func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":                 user.ID,
		"email":              user.Email,
		"firstName":          user.FirstName,
		"lastName":           user.LastName,
		"fullName":           user.FullName(),
		"status":             user.Status,
		"roles":              user.RoleNames(),
		"organizationId":     user.OrganizationID,
		"mustChangePassword": user.MustChangePassword,
		"createdAt":          user.CreatedAt,
	}
}
