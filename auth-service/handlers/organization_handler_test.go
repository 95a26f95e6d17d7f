package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talenthub-backend/shared/database/models"
)

func TestGetCurrentOrganization(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)
	owner := createUser(t, db, "owner@example.com", models.RoleOrganizationAdmin, models.UserStatusActive, nil)
	createOrganization(t, db, "acme", owner, "professional")

	w, resp := doRequest(t, router, "GET", "/api/organization/current", authHeader(t, db, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "acme", resp["name"])

	plan := resp["plan"].(map[string]interface{})
	assert.Equal(t, "professional", plan["name"])
	assert.Equal(t, float64(20), plan["maxUsers"])
}

func TestOrganizationEndpointsWithoutOrganization(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)
	orphan := createUser(t, db, "orphan@example.com", models.RoleOrganizationAdmin, models.UserStatusActive, nil)

	w, _ := doRequest(t, router, "GET", "/api/organization/current", authHeader(t, db, orphan), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrganizationRoutesForbidOutsiders(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)
	user := createUser(t, db, "solo@example.com", models.RoleDefaultUser, models.UserStatusActive, nil)

	w, _ := doRequest(t, router, "GET", "/api/organization/current", authHeader(t, db, user), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInviteForbiddenForPlainMembers(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)
	owner := createUser(t, db, "owner@example.com", models.RoleOrganizationAdmin, models.UserStatusActive, nil)
	org := createOrganization(t, db, "acme", owner, "starter")
	member := createUser(t, db, "member@example.com", models.RoleOrganizationUser, models.UserStatusActive, &org.ID)

	w, _ := doRequest(t, router, "POST", "/api/organization/invite", authHeader(t, db, member), map[string]interface{}{
		"email": "new@example.com", "firstName": "New", "lastName": "Member",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInviteMember(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)
	owner := createUser(t, db, "owner@example.com", models.RoleOrganizationAdmin, models.UserStatusActive, nil)
	org := createOrganization(t, db, "acme", owner, "starter")

	w, resp := doRequest(t, router, "POST", "/api/organization/invite", authHeader(t, db, owner), map[string]interface{}{
		"email":     "new@example.com",
		"firstName": "New",
		"lastName":  "Member",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	tempPassword := resp["temporaryPassword"].(string)
	assert.NotEmpty(t, tempPassword)

	var member models.User
	require.NoError(t, db.Preload("Roles").Where("email = ?", "new@example.com").First(&member).Error)
	assert.Equal(t, models.UserStatusActive, member.Status)
	assert.True(t, member.MustChangePassword)
	assert.True(t, member.HasRole(models.RoleOrganizationUser))
	require.NotNil(t, member.OrganizationID)
	assert.Equal(t, org.ID, *member.OrganizationID)

	// The invited member can log in with the temporary password
	w, loginResp := doRequest(t, router, "POST", "/api/auth/login", "", map[string]interface{}{
		"email":    "new@example.com",
		"password": tempPassword,
	})
	require.Equal(t, http.StatusOK, w.Code)
	userInfo := loginResp["user"].(map[string]interface{})
	assert.Equal(t, true, userInfo["mustChangePassword"])
}

func TestInviteMemberLimitReached(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)
	owner := createUser(t, db, "owner@example.com", models.RoleOrganizationAdmin, models.UserStatusActive, nil)
	org := createOrganization(t, db, "acme", owner, "starter")

	// Fill the starter plan: owner plus four members
	for i := 0; i < 4; i++ {
		createUser(t, db, fmt.Sprintf("member%d@example.com", i), models.RoleOrganizationUser, models.UserStatusActive, &org.ID)
	}

	w, resp := doRequest(t, router, "POST", "/api/organization/invite", authHeader(t, db, owner), map[string]interface{}{
		"email":     "onemore@example.com",
		"firstName": "One",
		"lastName":  "More",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp["error"], "member limit")
}

func TestInviteExistingEmailRejected(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)
	owner := createUser(t, db, "owner@example.com", models.RoleOrganizationAdmin, models.UserStatusActive, nil)
	createOrganization(t, db, "acme", owner, "starter")

	// An unrelated active account owns the address
	createUser(t, db, "elsewhere@example.com", models.RoleDefaultUser, models.UserStatusActive, nil)

	w, resp := doRequest(t, router, "POST", "/api/organization/invite", authHeader(t, db, owner), map[string]interface{}{
		"email":     "elsewhere@example.com",
		"firstName": "Else",
		"lastName":  "Where",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp["error"], "already exists")
}

func TestInviteReactivatesInactiveMemberInPlace(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)
	owner := createUser(t, db, "owner@example.com", models.RoleOrganizationAdmin, models.UserStatusActive, nil)
	org := createOrganization(t, db, "acme", owner, "starter")
	former := createUser(t, db, "former@example.com", models.RoleOrganizationUser, models.UserStatusInactive, &org.ID)

	w, resp := doRequest(t, router, "POST", "/api/organization/invite", authHeader(t, db, owner), map[string]interface{}{
		"email":     "former@example.com",
		"firstName": "Come",
		"lastName":  "Back",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Same account, not a new one
	userInfo := resp["user"].(map[string]interface{})
	assert.Equal(t, former.ID.String(), userInfo["id"])

	var fresh models.User
	require.NoError(t, db.Where("id = ?", former.ID).First(&fresh).Error)
	assert.Equal(t, models.UserStatusActive, fresh.Status)
	assert.True(t, fresh.MustChangePassword)
	assert.Nil(t, fresh.DeactivatedAt)

	var count int64
	db.Model(&models.User{}).Where("email = ?", "former@example.com").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRemoveMember(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)
	owner := createUser(t, db, "owner@example.com", models.RoleOrganizationAdmin, models.UserStatusActive, nil)
	org := createOrganization(t, db, "acme", owner, "starter")
	member := createUser(t, db, "member@example.com", models.RoleOrganizationUser, models.UserStatusActive, &org.ID)

	path := fmt.Sprintf("/api/organization/members/%s", member.ID)
	w, _ := doRequest(t, router, "DELETE", path, authHeader(t, db, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fresh models.User
	require.NoError(t, db.Where("id = ?", member.ID).First(&fresh).Error)
	assert.Equal(t, models.UserStatusInactive, fresh.Status)
}

func TestRemoveMemberGuards(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)
	owner := createUser(t, db, "owner@example.com", models.RoleOrganizationAdmin, models.UserStatusActive, nil)
	createOrganization(t, db, "acme", owner, "starter")
	bearer := authHeader(t, db, owner)

	// The owner cannot be removed
	w, resp := doRequest(t, router, "DELETE", fmt.Sprintf("/api/organization/members/%s", owner.ID), bearer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp["error"], "owner")

	// Someone outside the organization cannot be removed through it
	outsider := createUser(t, db, "outsider@example.com", models.RoleDefaultUser, models.UserStatusActive, nil)
	w, _ = doRequest(t, router, "DELETE", fmt.Sprintf("/api/organization/members/%s", outsider.ID), bearer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveLastActiveAdminRefused(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)
	owner := createUser(t, db, "owner@example.com", models.RoleOrganizationAdmin, models.UserStatusActive, nil)
	org := createOrganization(t, db, "acme", owner, "starter")
	secondAdmin := createUser(t, db, "admin2@example.com", models.RoleOrganizationAdmin, models.UserStatusActive, &org.ID)

	// Removing the second admin is fine while the owner-admin stays active
	path := fmt.Sprintf("/api/organization/members/%s", secondAdmin.ID)
	w, _ := doRequest(t, router, "DELETE", path, authHeader(t, db, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Now deactivate the owner out of band and re-add an admin to verify the
	// last-admin guard itself.
	thirdAdmin := createUser(t, db, "admin3@example.com", models.RoleOrganizationAdmin, models.UserStatusActive, &org.ID)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", owner.ID).Update("status", models.UserStatusInactive).Error)

	w, resp := doRequest(t, router, "DELETE", fmt.Sprintf("/api/organization/members/%s", thirdAdmin.ID), authHeader(t, db, thirdAdmin), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp["error"], "administrator")
}

func TestOrganizationStats(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)
	owner := createUser(t, db, "owner@example.com", models.RoleOrganizationAdmin, models.UserStatusActive, nil)
	org := createOrganization(t, db, "acme", owner, "starter")
	createUser(t, db, "member@example.com", models.RoleOrganizationUser, models.UserStatusActive, &org.ID)
	createUser(t, db, "gone@example.com", models.RoleOrganizationUser, models.UserStatusInactive, &org.ID)

	w, resp := doRequest(t, router, "GET", "/api/organization/stats", authHeader(t, db, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), resp["memberCount"]) // inactive members do not count
	assert.Equal(t, float64(5), resp["maxUsers"])
	assert.Equal(t, float64(50), resp["uploadsLimit"])
}

func TestGetMembers(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)
	owner := createUser(t, db, "owner@example.com", models.RoleOrganizationAdmin, models.UserStatusActive, nil)
	org := createOrganization(t, db, "acme", owner, "starter")
	member := createUser(t, db, "member@example.com", models.RoleOrganizationUser, models.UserStatusActive, &org.ID)

	// A plain member can see the roster too
	w, resp := doRequest(t, router, "GET", "/api/organization/members", authHeader(t, db, member), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), resp["count"])

	members := resp["members"].([]interface{})
	first := members[0].(map[string]interface{})
	assert.Equal(t, true, first["isOwner"])
}
