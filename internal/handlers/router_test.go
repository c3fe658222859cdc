package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"real-estate-crm/internal/auth"
	"real-estate-crm/internal/cache"
	"real-estate-crm/internal/config"
	"real-estate-crm/internal/database"
	"real-estate-crm/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t      *testing.T
	db     *database.GormDB
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.BcryptCost = 4
	cfg.Logging.LogRequests = false
	cfg.Database = config.DatabaseConfig{
		Type:         "sqlite",
		SQLite:       config.SQLiteConfig{Path: ":memory:"},
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}

	db, err := database.NewGormDB(cfg.Database)
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { _ = db.Close() })

	router := NewRouter(Deps{
		DB:         db,
		Config:     cfg,
		Tokens:     auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.GetTokenTTL()),
		TokenStore: cache.NewMemoryStore(),
	})
	return &testAPI{t: t, db: db, router: router}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// bootstrap registers the first user, who becomes admin, and logs in
func (a *testAPI) bootstrap() string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Root", "email": "root@agency.test", "password": "password123",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "root@agency.test", "password": "password123",
	})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decode(a.t, w)["token"].(string)
	require.NotEmpty(a.t, token)
	return token
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestAuth_BootstrapLoginLogout(t *testing.T) {
	api := newTestAPI(t)
	token := api.bootstrap()

	w := api.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(models.RoleAdmin), decode(t, w)["role"])

	// a second anonymous registration is refused once users exist
	w = api.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Eve", "email": "eve@agency.test", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "root@agency.test", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token revoked", decode(t, w)["error"])
}

func TestAuth_RequiresToken(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodGet, "/api/clients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/api/clients", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestValidationErrorShape(t *testing.T) {
	api := newTestAPI(t)
	token := api.bootstrap()

	w := api.do(http.MethodPost, "/api/clients", token, gin.H{
		"first_name": "Ann", "type": "alien",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Errors []FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	fields := map[string]string{}
	for _, e := range body.Errors {
		fields[e.Field] = e.Message
	}
	assert.Equal(t, "last_name is required", fields["last_name"])
	assert.Contains(t, fields["type"], "must be one of")
}

func TestClients_DuplicateEmail(t *testing.T) {
	api := newTestAPI(t)
	token := api.bootstrap()

	client := gin.H{"first_name": "Ann", "last_name": "Lee", "type": "buyer", "email": "ann@example.com"}
	w := api.do(http.MethodPost, "/api/clients", token, client)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "lead", created["status"])

	w = api.do(http.MethodPost, "/api/clients", token, client)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "A client with this email already exists", decode(t, w)["error"])

	w = api.do(http.MethodGet, "/api/clients/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Client not found", decode(t, w)["error"])
}

func TestCalendar_ConflictResponse(t *testing.T) {
	api := newTestAPI(t)
	token := api.bootstrap()

	p := &models.Property{Title: "Loft", Type: models.PropertyTypeApartment, TransactionType: models.TransactionSale, Price: 250000}
	require.NoError(t, api.db.CreateProperty(p))

	start := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	visit := gin.H{
		"property_id": p.ID,
		"start_time":  start.Format(time.RFC3339),
		"end_time":    start.Add(time.Hour).Format(time.RFC3339),
		"status":      "confirmed",
	}
	w := api.do(http.MethodPost, "/api/calendar/visits", token, visit)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	visit["start_time"] = start.Add(30 * time.Minute).Format(time.RFC3339)
	visit["end_time"] = start.Add(90 * time.Minute).Format(time.RFC3339)
	w = api.do(http.MethodPost, "/api/calendar/visits", token, visit)
	require.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Scheduling conflict", body["error"])
	conflicts, ok := body["conflicts"].([]interface{})
	require.True(t, ok)
	assert.Len(t, conflicts, 1)

	path := fmt.Sprintf("/api/calendar/conflicts?property_id=%d&start_time=%s&end_time=%s",
		p.ID, start.Add(30*time.Minute).Format(time.RFC3339), start.Add(90*time.Minute).Format(time.RFC3339))
	w = api.do(http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["has_conflict"])
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	api := newTestAPI(t)
	admin := api.bootstrap()

	w := api.do(http.MethodPost, "/api/auth/register", admin, gin.H{
		"name": "Agent", "email": "agent@agency.test", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, string(models.RoleAgent), decode(t, w)["role"])

	w = api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "agent@agency.test", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	agent, _ := decode(t, w)["token"].(string)

	w = api.do(http.MethodGet, "/api/admin/stats", agent, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/admin/stats", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/api/admin/search/reindex", admin, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
