package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealdiary/backend/internal/service"
)

func setupAuthTest(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	handler := NewAuthHandler(service.NewAuthService(db, "test-secret"))
	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestRegisterLoginFlow(t *testing.T) {
	router := setupAuthTest(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		`{"email":"user@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var registered map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	assert.NotEmpty(t, registered["token"])
	assert.NotEmpty(t, registered["user_id"])

	// Duplicate registration conflicts
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		`{"email":"user@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Login succeeds with the same credentials
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		`{"email":"user@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var loggedIn map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loggedIn))
	assert.Equal(t, registered["user_id"], loggedIn["user_id"])

	// Wrong password is unauthorized
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		`{"email":"user@example.com","password":"wrongpassword"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	router := setupAuthTest(t)

	// Malformed email
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		`{"email":"not-an-email","password":"password123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Too-short password
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		`{"email":"user@example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
