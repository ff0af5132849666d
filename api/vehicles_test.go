package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivebid/models"
)

func TestGetVehiclesEmptyList(t *testing.T) {
	_, router := newTestServer(t)

	recorder := doJSON(router, http.MethodGet, "/vehicles", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.EqualValues(t, 0, decodeBody(t, recorder)["count"])

	recorder = doJSON(router, http.MethodGet, "/vehicles/featured", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.EqualValues(t, 0, decodeBody(t, recorder)["count"])
}

func TestGetVehiclesRejectsBadFilters(t *testing.T) {
	_, router := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest,
		doJSON(router, http.MethodGet, "/vehicles?status=bogus", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest,
		doJSON(router, http.MethodGet, "/vehicles?sort=bogus", "", nil).Code)
}

func TestGetVehicleNotFound(t *testing.T) {
	_, router := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest,
		doJSON(router, http.MethodGet, "/vehicles/not-a-uuid", "", nil).Code)
	assert.Equal(t, http.StatusNotFound,
		doJSON(router, http.MethodGet, "/vehicles/"+uuid.NewString(), "", nil).Code)
}

func TestVehicleWriteEndpointsRequireAdmin(t *testing.T) {
	impl, router := newTestServer(t)
	_, userToken := seedUser(t, impl, models.RoleUser)

	assert.Equal(t, http.StatusUnauthorized,
		doJSON(router, http.MethodPost, "/vehicles", "", gin.H{}).Code)
	assert.Equal(t, http.StatusForbidden,
		doJSON(router, http.MethodPost, "/vehicles", userToken, gin.H{}).Code)
	assert.Equal(t, http.StatusForbidden,
		doJSON(router, http.MethodDelete, "/vehicles/"+uuid.NewString(), userToken, nil).Code)
}
