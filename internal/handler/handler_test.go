package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shush-app/guarded-blocking-go/internal/middleware"
	"github.com/shush-app/guarded-blocking-go/internal/notify"
	"github.com/shush-app/guarded-blocking-go/internal/service"
	"github.com/shush-app/guarded-blocking-go/pkg/logger"
)

const testAPIKey = "test-api-key"

func init() {
	gin.SetMode(gin.TestMode)
	// Initialize logger to prevent nil pointer errors
	_ = logger.Init("error", "")
}

// testAPI wires the full server route tree over mocked repositories, so
// tests exercise routing, auth and error mapping the way production does.
type testAPI struct {
	contacts  *mockContactRepo
	guardians *mockGuardianRepo
	requests  *mockRequestRepo
	router    *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	// A near-zero cooling-off keeps flow lifecycle tests from sleeping;
	// tests that need an unexpired window use newTestAPICoolingOff.
	return newTestAPICoolingOff(t, time.Nanosecond)
}

func newTestAPICoolingOff(t *testing.T, coolingOffBase time.Duration) *testAPI {
	t.Helper()

	api := &testAPI{
		contacts:  new(mockContactRepo),
		guardians: new(mockGuardianRepo),
		requests:  new(mockRequestRepo),
	}

	blocklist := service.NewBlocklistService(api.contacts)
	guardians := service.NewGuardianService(api.guardians)
	flow := service.NewFlowService(api.contacts, api.guardians, api.requests, notify.Nop{}, coolingOffBase)
	gateway := service.NewDecisionGateway(api.requests, api.contacts, notify.Nop{})
	stats := service.NewStatsService(api.contacts, api.guardians, api.requests)

	auth := middleware.NewAPIKeyAuth([]string{testAPIKey}, nil)

	api.router = NewServerRouter(ServerHandlers{
		Contacts:  NewContactHandler(blocklist),
		Guardians: NewGuardianHandler(guardians, gateway, stats),
		Flows:     NewFlowHandler(flow, gateway),
		Stats:     NewStatsHandler(stats),
		Health:    NewHealthHandler(nil, nil),
	}, auth.Middleware())

	return api
}

// do performs a request against the test router. A non-nil userID becomes the
// X-User-ID header; the API key is always attached.
func (a *testAPI) do(t *testing.T, method, path string, userID *uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	if userID != nil {
		req.Header.Set(userIDHeader, userID.String())
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestServerRouter_RejectsMissingAPIKey(t *testing.T) {
	api := newTestAPI(t)
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil)
	req.Header.Set(userIDHeader, userID.String())

	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	api.contacts.AssertNotCalled(t, "List")
}

func TestServerRouter_HealthIsOpen(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestServerRouter_MetricsIsOpen(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}
