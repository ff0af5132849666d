package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivebid/models"
)

func TestGetUserMe(t *testing.T) {
	impl, router := newTestServer(t)
	user, token := seedUser(t, impl, models.RoleUser)

	recorder := doJSON(router, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, user.Email, body["email"])

	// 未登入不可存取
	recorder = doJSON(router, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestPutUserMeUpdatesUsername(t *testing.T) {
	impl, router := newTestServer(t)
	user, token := seedUser(t, impl, models.RoleUser)

	recorder := doJSON(router, http.MethodPut, "/users/me", token, gin.H{"username": "  new name  "})
	require.Equal(t, http.StatusOK, recorder.Code)

	var after models.User
	require.NoError(t, impl.db.First(&after, "id = ?", user.ID).Error)
	assert.Equal(t, "new name", after.Username)

	// 空白名稱與空payload都被拒絕
	assert.Equal(t, http.StatusBadRequest,
		doJSON(router, http.MethodPut, "/users/me", token, gin.H{"username": "   "}).Code)
	assert.Equal(t, http.StatusBadRequest,
		doJSON(router, http.MethodPut, "/users/me", token, gin.H{}).Code)
}

func TestUserAdminEndpoints(t *testing.T) {
	impl, router := newTestServer(t)
	user, userToken := seedUser(t, impl, models.RoleUser)
	admin, adminToken := seedUser(t, impl, models.RoleAdmin)

	// 一般使用者不可列出全部使用者
	assert.Equal(t, http.StatusForbidden, doJSON(router, http.MethodGet, "/users", userToken, nil).Code)

	recorder := doJSON(router, http.MethodGet, "/users", adminToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.EqualValues(t, 2, decodeBody(t, recorder)["count"])

	// 升級使用者為管理員
	recorder = doJSON(router, http.MethodPut, "/users/"+user.ID.String()+"/role", adminToken, gin.H{"role": "admin"})
	require.Equal(t, http.StatusOK, recorder.Code)
	var after models.User
	require.NoError(t, impl.db.First(&after, "id = ?", user.ID).Error)
	assert.Equal(t, models.RoleAdmin, after.Role)

	// 管理員不能把自己降級
	recorder = doJSON(router, http.MethodPut, "/users/"+admin.ID.String()+"/role", adminToken, gin.H{"role": "user"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	// 未知角色被拒絕
	recorder = doJSON(router, http.MethodPut, "/users/"+user.ID.String()+"/role", adminToken, gin.H{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
