package routes

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gbr-security-service/internal/domain/models"
	"gbr-security-service/internal/domain/services/container"
	"gbr-security-service/internal/error/code"
	"gbr-security-service/internal/infrastructure/config"
	"gbr-security-service/internal/infrastructure/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      testing.TB
	router *gin.Engine
	sqlDB  *sql.DB
	token  string
}

func newTestServer(t testing.TB, latency time.Duration) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "routes_test.db"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db, "auto"))

	cfg := &config.Config{
		CORSOrigin:        "http://localhost:5173",
		JWTSecretKey:      "routes-test",
		NotifyQueueSize:   8,
		NotifyTimeout:     time.Second,
		TransitionLatency: latency,
		DispatchDelay:     time.Hour,
	}
	c := container.NewServiceContainer(db, cfg, nil, zap.NewNop())
	t.Cleanup(func() {
		_ = c.Close(context.Background())
		_ = sqlDB.Close()
	})

	seeder := c.GetService("property").(interface{ SeedIfEmpty(context.Context) error })
	require.NoError(t, seeder.SeedIfEmpty(context.Background()))

	return &testServer{t: t, router: SetupRouter(c, cfg), sqlDB: sqlDB}
}

func (s *testServer) do(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *testServer) login() {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/auth/login", gin.H{"email": "client@example.com", "password": "x"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &result))
	require.NotEmpty(s.t, result.Token)
	assert.Equal(s.t, "Иван Петров", result.User.Name)
	s.token = result.Token
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t, 0)

	w, env := s.do(http.MethodGet, "/api/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, code.ErrSuccess, env.Code)

	w, env = s.do(http.MethodGet, "/api/health/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"redis":"disabled"`)
	assert.Contains(t, string(env.Data), `"database":"ok"`)

	w, env = s.do(http.MethodGet, "/api/emergency/types", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var categories []models.EmergencyCategory
	require.NoError(t, json.Unmarshal(env.Data, &categories))
	assert.Len(t, categories, 4)

	w, _ = s.do(http.MethodOptions, "/api/properties", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoginAcceptsAnyEmail(t *testing.T) {
	s := newTestServer(t, 0)

	for _, body := range []gin.H{{"password": "x"}, {"email": ""}, {"email": "   ", "password": ""}} {
		w, env := s.do(http.MethodPost, "/api/auth/login", body)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, code.ErrSuccess, env.Code)
		assert.Contains(t, string(env.Data), `"token"`)
	}

	w, env := s.do(http.MethodPost, "/api/auth/login", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrBind, env.Code)
}

func TestAuthenticatedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, 0)

	for _, path := range []string{"/api/auth/me", "/api/properties", "/api/dashboard/overview", "/api/emergency/calls"} {
		w, env := s.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, code.ErrTokenInvalid, env.Code, path)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t, 0)
	s.login()

	w, env := s.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "client@example.com")

	w, _ = s.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, code.ErrSessionNotFound, env.Code)
}

func TestPropertyRoutes(t *testing.T) {
	s := newTestServer(t, 0)
	s.login()

	w, env := s.do(http.MethodGet, "/api/properties", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var properties []models.Property
	require.NoError(t, json.Unmarshal(env.Data, &properties))
	require.Len(t, properties, 2)

	w, env = s.do(http.MethodPost, "/api/properties/1/disarm", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Property
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, models.PropertyStatusDisarmed, updated.Status)
	for _, sensor := range updated.Sensors {
		assert.Equal(t, models.SensorStatusInactive, sensor.Status)
	}

	w, _ = s.do(http.MethodPut, "/api/properties/2/status", gin.H{"status": "armed"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, "/api/dashboard/overview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var overview struct {
		TotalCount int `json:"totalCount"`
		ArmedCount int `json:"armedCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &overview))
	assert.Equal(t, 2, overview.TotalCount)
	assert.Equal(t, 1, overview.ArmedCount)

	w, env = s.do(http.MethodPut, "/api/properties/1/status", gin.H{"status": "alarm"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrInvalidTargetStatus, env.Code)

	w, env = s.do(http.MethodGet, "/api/properties/404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, code.ErrPropertyNotFound, env.Code)

	w, env = s.do(http.MethodPost, "/api/properties/404/arm", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, code.ErrPropertyNotFound, env.Code)
}

func TestConcurrentStatusChangeIsRejected(t *testing.T) {
	s := newTestServer(t, 300*time.Millisecond)
	s.login()

	var wg sync.WaitGroup
	wg.Add(1)
	var first *httptest.ResponseRecorder
	go func() {
		defer wg.Done()
		first, _ = s.do(http.MethodPost, "/api/properties/1/disarm", nil)
	}()

	// give the first request time to take the property
	time.Sleep(100 * time.Millisecond)
	w, env := s.do(http.MethodPost, "/api/properties/1/arm", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, code.ErrTransitionInProgress, env.Code)

	wg.Wait()
	assert.Equal(t, http.StatusOK, first.Code)
}

func TestEmergencyRoutes(t *testing.T) {
	s := newTestServer(t, 0)
	s.login()

	w, env := s.do(http.MethodPost, "/api/emergency/calls", gin.H{"type": "fire", "description": "smoke smell"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var call models.EmergencyCall
	require.NoError(t, json.Unmarshal(env.Data, &call))
	assert.Equal(t, models.EmergencyCallStatusPending, call.Status)
	assert.Equal(t, "1", call.UserID)

	w, env = s.do(http.MethodGet, "/api/emergency/calls", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var calls []models.EmergencyCall
	require.NoError(t, json.Unmarshal(env.Data, &calls))
	require.Len(t, calls, 2)
	assert.Equal(t, call.ID, calls[0].ID)

	w, _ = s.do(http.MethodGet, "/api/emergency/calls/"+call.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodDelete, "/api/emergency/calls/"+call.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, "/api/emergency/calls/"+call.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, code.ErrCallNotFound, env.Code)

	w, env = s.do(http.MethodPost, "/api/emergency/calls", gin.H{"type": "plumber"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrInvalidCategory, env.Code)

	w, env = s.do(http.MethodPost, "/api/emergency/calls", gin.H{"description": "no type"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrValidation, env.Code)
}

func TestEmergencyCreateIsNotThrottled(t *testing.T) {
	s := newTestServer(t, 0)
	s.login()

	const creates = 7
	for i := 0; i < creates; i++ {
		w, env := s.do(http.MethodPost, "/api/emergency/calls", gin.H{"type": "fire"})
		require.Equal(t, http.StatusOK, w.Code, "create %d: %s", i, w.Body.String())
		assert.Equal(t, code.ErrSuccess, env.Code)
	}

	w, env := s.do(http.MethodGet, "/api/emergency/calls", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var calls []models.EmergencyCall
	require.NoError(t, json.Unmarshal(env.Data, &calls))
	assert.Len(t, calls, 1+creates)
}

func TestRegistryFailureIsReportedAsDatabaseError(t *testing.T) {
	s := newTestServer(t, 0)
	s.login()
	require.NoError(t, s.sqlDB.Close())

	w, env := s.do(http.MethodGet, "/api/properties", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, code.ErrDatabase, env.Code)

	w, env = s.do(http.MethodGet, "/api/properties/1", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, code.ErrDatabase, env.Code)
}
