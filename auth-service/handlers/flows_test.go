package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talenthub-backend/shared/database/models"
)

// Full journey of an organization: self-registration, approval, inviting a
// member, the member's forced password change, and quota consumption.
func TestOrganizationLifecycleEndToEnd(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)
	admin := createUser(t, db, "root@example.com", models.RoleSuperAdmin, models.UserStatusActive, nil)

	// 1. A founder registers as organization admin
	w, _ := doRequest(t, router, "POST", "/api/auth/register", "", map[string]interface{}{
		"email":            "founder@example.com",
		"password":         "Password123",
		"firstName":        "Fay",
		"lastName":         "Founder",
		"userRole":         models.RoleOrganizationAdmin,
		"requestedOrgName": "Acme Corp",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// 2. Login is blocked until approval
	w, _ = doRequest(t, router, "POST", "/api/auth/login", "", map[string]interface{}{
		"email": "founder@example.com", "password": "Password123",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// 3. The super admin sees and approves the application
	w, resp := doRequest(t, router, "GET", "/api/admin/pending-org-admins", authHeader(t, db, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(1), resp["count"])
	applicant := resp["pendingOrgAdmins"].([]interface{})[0].(map[string]interface{})

	w, _ = doRequest(t, router, "POST", "/api/admin/approve-org-admin", authHeader(t, db, admin), map[string]interface{}{
		"userId":           applicant["id"],
		"organizationName": "Acme Corp",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// 4. The founder can now log in and sees their organization
	w, loginResp := doRequest(t, router, "POST", "/api/auth/login", "", map[string]interface{}{
		"email": "founder@example.com", "password": "Password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	founderBearer := "Bearer " + loginResp["accessToken"].(string)

	w, resp = doRequest(t, router, "GET", "/api/organization/current", founderBearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Acme Corp", resp["name"])

	// 5. The founder invites a member
	w, inviteResp := doRequest(t, router, "POST", "/api/organization/invite", founderBearer, map[string]interface{}{
		"email":     "member@example.com",
		"firstName": "Mem",
		"lastName":  "Ber",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tempPassword := inviteResp["temporaryPassword"].(string)

	// 6. The member logs in with the temporary password and must change it
	w, memberLogin := doRequest(t, router, "POST", "/api/auth/login", "", map[string]interface{}{
		"email": "member@example.com", "password": tempPassword,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, memberLogin["user"].(map[string]interface{})["mustChangePassword"])
	memberBearer := "Bearer " + memberLogin["accessToken"].(string)

	w, _ = doRequest(t, router, "POST", "/api/auth/change-password", memberBearer, map[string]interface{}{
		"currentPassword": tempPassword,
		"newPassword":     "MemberPass456",
		"confirmPassword": "MemberPass456",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// 7. The member consumes organization quota
	w, quotaResp := doRequest(t, router, "POST", "/api/quota/increment", memberBearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), quotaResp["used"])

	// The founder sees the shared pool move
	w, quotaResp = doRequest(t, router, "GET", "/api/quota/usage", founderBearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), quotaResp["used"])
}

// Full journey of an individual user: registration, login, burning through
// the lifetime allowance.
func TestDefaultUserLifecycleEndToEnd(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)

	w, _ := doRequest(t, router, "POST", "/api/auth/register", "", map[string]interface{}{
		"email":     "solo@example.com",
		"password":  "Password123",
		"firstName": "So",
		"lastName":  "Lo",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, loginResp := doRequest(t, router, "POST", "/api/auth/login", "", map[string]interface{}{
		"email": "solo@example.com", "password": "Password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	bearer := "Bearer " + loginResp["accessToken"].(string)

	w, resp := doRequest(t, router, "GET", "/api/quota/check", bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, resp["allowed"])

	for i := 0; i < models.DefaultCVUploadLimit; i++ {
		w, _ = doRequest(t, router, "POST", "/api/quota/increment", bearer, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, resp = doRequest(t, router, "GET", "/api/quota/check", bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp["allowed"])

	w, _ = doRequest(t, router, "POST", "/api/quota/increment", bearer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
