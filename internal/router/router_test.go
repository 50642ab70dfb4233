package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/emsops/dispatch-api/internal/handler"
	authHandler "github.com/emsops/dispatch-api/internal/handler/auth"
	callHandler "github.com/emsops/dispatch-api/internal/handler/call"
	dashboardHandler "github.com/emsops/dispatch-api/internal/handler/dashboard"
	pcrHandler "github.com/emsops/dispatch-api/internal/handler/pcr"
	sessionHandler "github.com/emsops/dispatch-api/internal/handler/session"
	"github.com/emsops/dispatch-api/internal/middleware"
	"github.com/emsops/dispatch-api/internal/model"
	"github.com/emsops/dispatch-api/internal/repository/memory"
	"github.com/emsops/dispatch-api/internal/router"
	authService "github.com/emsops/dispatch-api/internal/service/auth"
	callService "github.com/emsops/dispatch-api/internal/service/call"
	pcrService "github.com/emsops/dispatch-api/internal/service/pcr"
	sessionService "github.com/emsops/dispatch-api/internal/service/session"
	"github.com/emsops/dispatch-api/pkg/auth"
)

var metricsSeq atomic.Int64

type testServer struct {
	engine *gin.Engine
	jwtSvc auth.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewSeededStore()
	userRepo := memory.NewUserRepository(store)
	callRepo := memory.NewCallRepository(store)
	pcrRepo := memory.NewPCRRepository(store)

	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	authSvc := authService.NewService(userRepo, jwtSvc)
	callSvc := callService.NewService(callRepo, userRepo)
	pcrSvc := pcrService.NewService(pcrRepo, callRepo)
	sessionSvc := sessionService.NewService(time.Hour, time.Hour)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc, sessionSvc),
		sessionHandler.NewHandler(sessionSvc, callSvc),
		callHandler.NewHandler(callSvc, sessionSvc, authMiddleware),
		pcrHandler.NewHandler(pcrSvc, sessionSvc, authMiddleware),
		dashboardHandler.NewHandler(callSvc, userRepo),
		handler.NewHandler(),
		router.Config{
			RateLimit:     rate.Limit(1000),
			RateBurst:     1000,
			Timeout:       5 * time.Second,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: fmt.Sprintf("dispatch_api_test_%d", metricsSeq.Add(1)),
		},
	)
	r.Setup()

	return &testServer{engine: r.Engine(), jwtSvc: jwtSvc}
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (s *testServer) request(t *testing.T, method, path string, body interface{}, headers map[string]string) (int, apiResponse) {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()

	code, resp := s.request(t, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, code)

	var tokens model.TokenResponse
	require.NoError(t, json.Unmarshal(resp.Data, &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	return "Bearer " + tokens.AccessToken
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.request(t, http.MethodGet, "/health/live", nil, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.request(t, http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.request(t, http.MethodPost, "/auth/login", map[string]string{
		"username": "dispatcher1",
		"password": "password",
	}, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", resp.Status)

	code, _ = s.request(t, http.MethodPost, "/auth/login", map[string]string{
		"username": "dispatcher1",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestSignup(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.request(t, http.MethodPost, "/auth/signup", map[string]string{
		"username": "emt3",
		"password": "secret",
		"role":     "EMT",
	}, nil)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Account created successfully! Please log in.", resp.Message)

	code, _ = s.request(t, http.MethodPost, "/auth/signup", map[string]string{
		"username": "emt3",
		"password": "other",
		"role":     "EMT",
	}, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.request(t, http.MethodPost, "/auth/signup", map[string]string{
		"username": "admin1",
		"password": "secret",
		"role":     "Admin",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code, "unrecognized role rejected at binding")
}

func TestCallRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.request(t, http.MethodGet, "/calls", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestDispatcherLogsCall(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "dispatcher1", "password")

	code, resp := s.request(t, http.MethodPost, "/calls", map[string]interface{}{
		"caller_name": "Sam Brown",
		"phone":       "555-0199",
		"location":    "12 Hill Rd",
		"description": "Allergic reaction.",
		"priority":    1,
	}, map[string]string{"Authorization": token})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Emergency call logged successfully.", resp.Message)

	var logged model.EmergencyCall
	require.NoError(t, json.Unmarshal(resp.Data, &logged))
	assert.Equal(t, int64(5), logged.ID)
	assert.Equal(t, model.CallStatusPending, logged.Status)

	// EMTs cannot log calls.
	emtToken := s.login(t, "emt1", "password")
	code, _ = s.request(t, http.MethodPost, "/calls", map[string]interface{}{
		"caller_name": "X",
		"phone":       "555-0000",
		"location":    "Y",
		"description": "Z",
		"priority":    2,
	}, map[string]string{"Authorization": emtToken})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestDispatcherCallSearch(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "dispatcher1", "password")

	code, resp := s.request(t, http.MethodGet, "/calls?search=oak", nil, map[string]string{"Authorization": token})
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Calls []*model.EmergencyCall `json:"calls"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data.Calls, 1)
	assert.Equal(t, "456 Oak Ave, Townsville", data.Calls[0].Location)
}

func TestEMTAssignedCalls(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "emt1", "password")

	code, resp := s.request(t, http.MethodGet, "/calls/assigned", nil, map[string]string{"Authorization": token})
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Calls []*model.EmergencyCall `json:"calls"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data.Calls, 2)
	assert.Equal(t, int64(1), data.Calls[0].ID)
	assert.Equal(t, int64(4), data.Calls[1].ID)
}

func TestEMTStatusUpdatePolicy(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "emt1", "password")

	code, _ := s.request(t, http.MethodPatch, "/calls/1/status", map[string]string{
		"status": "On Scene",
	}, map[string]string{"Authorization": token})
	assert.Equal(t, http.StatusOK, code)

	// Responders cannot cancel a call.
	code, _ = s.request(t, http.MethodPatch, "/calls/1/status", map[string]string{
		"status": "Cancelled",
	}, map[string]string{"Authorization": token})
	assert.Equal(t, http.StatusBadRequest, code)

	// Closed calls stay closed for responders.
	code, _ = s.request(t, http.MethodPatch, "/calls/4/status", map[string]string{
		"status": "On Scene",
	}, map[string]string{"Authorization": token})
	assert.Equal(t, http.StatusConflict, code)

	// Dispatchers stay unconstrained.
	dispToken := s.login(t, "dispatcher1", "password")
	code, _ = s.request(t, http.MethodPatch, "/calls/4/status", map[string]string{
		"status": "Pending",
	}, map[string]string{"Authorization": dispToken})
	assert.Equal(t, http.StatusOK, code)
}

func TestFilePCRFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "emt2", "password")

	// Close out call 2 first.
	code, _ := s.request(t, http.MethodPatch, "/calls/2/status", map[string]string{
		"status": "Completed",
	}, map[string]string{"Authorization": token})
	require.Equal(t, http.StatusOK, code)

	body := map[string]interface{}{
		"call_id":                 2,
		"patient_vitals":          "BP: 120/80, HR: 85",
		"treatments_administered": "Leg splinted.",
		"transfer_destination":    "County Hospital",
	}
	code, resp := s.request(t, http.MethodPost, "/pcrs", body, map[string]string{"Authorization": token})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Patient Care Record submitted successfully.", resp.Message)

	var filed model.PatientCareRecord
	require.NoError(t, json.Unmarshal(resp.Data, &filed))
	assert.Equal(t, int64(2), filed.CallID)

	// The call now carries the record reference.
	code, resp = s.request(t, http.MethodGet, "/calls/2", nil, map[string]string{"Authorization": token})
	require.Equal(t, http.StatusOK, code)
	var linked model.EmergencyCall
	require.NoError(t, json.Unmarshal(resp.Data, &linked))
	require.NotNil(t, linked.PCRID)
	assert.Equal(t, filed.ID, *linked.PCRID)

	// Filing twice is rejected.
	code, _ = s.request(t, http.MethodPost, "/pcrs", body, map[string]string{"Authorization": token})
	assert.Equal(t, http.StatusConflict, code)

	// Dispatchers cannot file records.
	dispToken := s.login(t, "dispatcher1", "password")
	code, _ = s.request(t, http.MethodPost, "/pcrs", body, map[string]string{"Authorization": dispToken})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestDashboardByRole(t *testing.T) {
	s := newTestServer(t)

	t.Run("dispatcher", func(t *testing.T) {
		token := s.login(t, "dispatcher1", "password")
		code, resp := s.request(t, http.MethodGet, "/dashboard", nil, map[string]string{"Authorization": token})
		require.Equal(t, http.StatusOK, code)

		var view model.DashboardView
		require.NoError(t, json.Unmarshal(resp.Data, &view))
		require.NotNil(t, view.Dispatcher)
		assert.Len(t, view.Dispatcher.Calls, 4)
	})

	t.Run("emt", func(t *testing.T) {
		token := s.login(t, "emt1", "password")
		code, resp := s.request(t, http.MethodGet, "/dashboard", nil, map[string]string{"Authorization": token})
		require.Equal(t, http.StatusOK, code)

		var view model.DashboardView
		require.NoError(t, json.Unmarshal(resp.Data, &view))
		require.NotNil(t, view.EMT)
		require.Len(t, view.EMT.Calls, 2)
		assert.False(t, view.EMT.Calls[0].CanFilePCR, "dispatched call is not eligible")
		assert.False(t, view.EMT.Calls[1].CanFilePCR, "completed call already documented")
	})

	t.Run("supervisor", func(t *testing.T) {
		token := s.login(t, "supervisor1", "password")
		code, resp := s.request(t, http.MethodGet, "/dashboard", nil, map[string]string{"Authorization": token})
		require.Equal(t, http.StatusOK, code)

		var view model.DashboardView
		require.NoError(t, json.Unmarshal(resp.Data, &view))
		require.NotNil(t, view.Supervisor)
		require.NotNil(t, view.Supervisor.Stats)
		assert.Equal(t, 4, view.Supervisor.Stats.TotalCalls)
		assert.Equal(t, 1, view.Supervisor.Stats.PendingCalls)
		assert.Equal(t, 1, view.Supervisor.Stats.CompletedCalls)
		assert.Equal(t, 1, view.Supervisor.Stats.TotalDispatchers)
		assert.Equal(t, 2, view.Supervisor.Stats.TotalEMTs)
		assert.Len(t, view.Supervisor.Users, 4)
	})

	t.Run("unknown role", func(t *testing.T) {
		// A token minted with an unrecognized role renders the error
		// view instead of failing.
		token, err := s.jwtSvc.GenerateAccessToken(&model.User{
			ID:       99,
			Username: "ghost",
			Role:     model.UserRole("Admin"),
		})
		require.NoError(t, err)

		code, resp := s.request(t, http.MethodGet, "/dashboard", nil, map[string]string{"Authorization": "Bearer " + token})
		require.Equal(t, http.StatusOK, code)

		var view model.DashboardView
		require.NoError(t, json.Unmarshal(resp.Data, &view))
		assert.Equal(t, "Invalid user role.", view.Error)
		assert.Nil(t, view.Dispatcher)
		assert.Nil(t, view.EMT)
		assert.Nil(t, view.Supervisor)
	})
}

func TestSessionFlow(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.request(t, http.MethodPost, "/session", nil, nil)
	require.Equal(t, http.StatusCreated, code)

	var sess model.Session
	require.NoError(t, json.Unmarshal(resp.Data, &sess))
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, model.ViewLogin, sess.View)

	headers := map[string]string{"X-Session-ID": sess.ID}

	// login -> signup -> login (with confirmation message).
	code, resp = s.request(t, http.MethodPost, "/session/navigate", map[string]interface{}{"action": "to-signup"}, headers)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp.Data, &sess))
	assert.Equal(t, model.ViewSignup, sess.View)

	code, _ = s.request(t, http.MethodPost, "/auth/signup", map[string]string{
		"username": "emt3",
		"password": "secret",
		"role":     "EMT",
	}, headers)
	require.Equal(t, http.StatusCreated, code)

	code, resp = s.request(t, http.MethodGet, "/session", nil, headers)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp.Data, &sess))
	assert.Equal(t, model.ViewLogin, sess.View)
	assert.Equal(t, "Account created successfully! Please log in.", sess.Message)

	// login -> dashboard.
	code, _ = s.request(t, http.MethodPost, "/auth/login", map[string]string{
		"username": "dispatcher1",
		"password": "password",
	}, headers)
	require.Equal(t, http.StatusOK, code)

	code, resp = s.request(t, http.MethodGet, "/session", nil, headers)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp.Data, &sess))
	assert.Equal(t, model.ViewDashboard, sess.View)
	require.NotNil(t, sess.User)
	assert.Equal(t, "dispatcher1", sess.User.Username)

	// dashboard -> logCall -> confirmation -> dashboard.
	code, _ = s.request(t, http.MethodPost, "/session/navigate", map[string]interface{}{"action": "new-call"}, headers)
	require.Equal(t, http.StatusOK, code)

	token := s.login(t, "dispatcher1", "password")
	code, _ = s.request(t, http.MethodPost, "/calls", map[string]interface{}{
		"caller_name": "Sam Brown",
		"phone":       "555-0199",
		"location":    "12 Hill Rd",
		"description": "Allergic reaction.",
		"priority":    2,
	}, map[string]string{"Authorization": token, "X-Session-ID": sess.ID})
	require.Equal(t, http.StatusCreated, code)

	code, resp = s.request(t, http.MethodGet, "/session", nil, headers)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp.Data, &sess))
	assert.Equal(t, model.ViewConfirmation, sess.View)
	assert.Equal(t, "Emergency call logged successfully.", sess.Message)

	code, resp = s.request(t, http.MethodPost, "/session/navigate", map[string]interface{}{"action": "back"}, headers)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp.Data, &sess))
	assert.Equal(t, model.ViewDashboard, sess.View)

	// Invalid trigger from the current state.
	code, _ = s.request(t, http.MethodPost, "/session/navigate", map[string]interface{}{"action": "back"}, headers)
	assert.Equal(t, http.StatusConflict, code)

	// Logout returns to the login screen.
	code, _ = s.request(t, http.MethodPost, "/auth/logout", nil, headers)
	require.Equal(t, http.StatusOK, code)

	code, resp = s.request(t, http.MethodGet, "/session", nil, headers)
	require.Equal(t, http.StatusOK, code)
	sess = model.Session{}
	require.NoError(t, json.Unmarshal(resp.Data, &sess))
	assert.Equal(t, model.ViewLogin, sess.View)
	assert.Nil(t, sess.User)
}

func TestSessionFilePCRNavigation(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.request(t, http.MethodPost, "/session", nil, nil)
	require.Equal(t, http.StatusCreated, code)
	var sess model.Session
	require.NoError(t, json.Unmarshal(resp.Data, &sess))
	headers := map[string]string{"X-Session-ID": sess.ID}

	code, _ = s.request(t, http.MethodPost, "/auth/login", map[string]string{
		"username": "emt1",
		"password": "password",
	}, headers)
	require.Equal(t, http.StatusOK, code)

	// Call 1 is still dispatched, not eligible.
	code, _ = s.request(t, http.MethodPost, "/session/navigate", map[string]interface{}{
		"action":  "file-pcr",
		"call_id": 1,
	}, headers)
	assert.Equal(t, http.StatusConflict, code)

	// Call 4 is completed but already documented.
	code, _ = s.request(t, http.MethodPost, "/session/navigate", map[string]interface{}{
		"action":  "file-pcr",
		"call_id": 4,
	}, headers)
	assert.Equal(t, http.StatusConflict, code)
}
