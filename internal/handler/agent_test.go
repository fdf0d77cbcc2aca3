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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shush-app/guarded-blocking-go/internal/db/models"
	"github.com/shush-app/guarded-blocking-go/internal/localstore"
	"github.com/shush-app/guarded-blocking-go/internal/screening"
	"github.com/shush-app/guarded-blocking-go/internal/service"
)

// testAgent wires the agent route tree over a real on-disk block store and
// mocked remote repositories.
type testAgent struct {
	userID   uuid.UUID
	contacts *mockContactRepo
	requests *mockRequestRepo
	store    *localstore.Store
	router   *gin.Engine
}

func newTestAgent(t *testing.T) *testAgent {
	t.Helper()

	store, err := localstore.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	agent := &testAgent{
		userID:   uuid.New(),
		contacts: new(mockContactRepo),
		requests: new(mockRequestRepo),
		store:    store,
	}

	engine := service.NewSyncEngine(agent.userID, agent.contacts, agent.requests, store)
	screener := screening.NewScreener(store)

	agent.router = NewAgentRouter(
		NewAgentHandler(engine, screener, store),
		NewHealthHandler(nil, nil),
	)

	return agent
}

func (a *testAgent) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
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

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestAgentSync(t *testing.T) {
	agent := newTestAgent(t)

	agent.contacts.On("ActivePhones", mock.Anything, agent.userID).
		Return(map[string]string{"+15551234567": "Alex"}, nil)
	agent.requests.On("ListAwaitingCompletion", mock.Anything, agent.userID).
		Return([]*models.UnblockRequest{}, nil)

	w := agent.do(t, http.MethodPost, "/sync", nil)

	require.Equal(t, http.StatusOK, w.Code)
	stats := decodeBody[service.RunStats](t, w)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 0, stats.Failures)

	// The synced number is now enforced locally.
	w = agent.do(t, http.MethodPost, "/screen/call", ScreenRequest{Phone: "+1 555 123 4567"})
	require.Equal(t, http.StatusOK, w.Code)
	verdict := decodeBody[screening.Verdict](t, w)
	assert.True(t, verdict.Blocked)
	assert.Equal(t, "Alex", verdict.ContactName)
}

func TestAgentScreenCall_RecordsBlockedCall(t *testing.T) {
	agent := newTestAgent(t)

	require.NoError(t, agent.store.Block(t.Context(), localstore.BlockEntry{
		Phone:       "+15551234567",
		ContactName: "Alex",
		BlockedAt:   time.Now().UTC(),
	}))

	w := agent.do(t, http.MethodPost, "/screen/call", ScreenRequest{Phone: "+1 (555) 123-4567"})

	require.Equal(t, http.StatusOK, w.Code)
	verdict := decodeBody[screening.Verdict](t, w)
	assert.True(t, verdict.Blocked)
	assert.Equal(t, "+15551234567", verdict.Phone)

	w = agent.do(t, http.MethodGet, "/blocked-calls", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody[struct {
		Calls []localstore.BlockedCall `json:"calls"`
		Count int                      `json:"count"`
	}](t, w)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "+15551234567", body.Calls[0].Phone)
}

func TestAgentScreenMessage_UnknownNumberAllowed(t *testing.T) {
	agent := newTestAgent(t)

	w := agent.do(t, http.MethodPost, "/screen/message", ScreenRequest{
		Phone: "+15559990000",
		Body:  "hey, are you around later?",
	})

	require.Equal(t, http.StatusOK, w.Code)
	verdict := decodeBody[screening.Verdict](t, w)
	assert.False(t, verdict.Blocked)

	w = agent.do(t, http.MethodGet, "/blocked-messages", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody[struct {
		Messages []localstore.BlockedMessage `json:"messages"`
		Count    int                         `json:"count"`
	}](t, w)
	assert.Equal(t, 0, body.Count)
}

func TestAgentScreen_MissingPhone(t *testing.T) {
	agent := newTestAgent(t)

	for _, path := range []string{"/screen/call", "/screen/message"} {
		w := agent.do(t, http.MethodPost, path, ScreenRequest{Body: "hello"})
		require.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestAgentHealth(t *testing.T) {
	agent := newTestAgent(t)

	w := agent.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = agent.do(t, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
