package rest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/services"
	"github.com/jeonghun43/Prism/domain/events"
	"github.com/jeonghun43/Prism/infrastructure/persistence/memory"
	"github.com/jeonghun43/Prism/infrastructure/realtime"
	"github.com/jeonghun43/Prism/pkg/ratelimit"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, events.DomainEvent) error        { return nil }
func (nopPublisher) PublishBatch(context.Context, []events.DomainEvent) error { return nil }

type testEnv struct {
	handler http.Handler
	hub     *realtime.Hub
}

type envelope struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
	Error   *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func newTestEnv(t *testing.T, limits ratelimit.Config, apiLimit int, cronSecret string) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	hub := realtime.NewHub(logger)
	limiter := ratelimit.New(limits, ratelimit.NewMemoryStore())
	publisher := nopPublisher{}

	targets := memory.NewTargetStore()
	questions := memory.NewQuestionStore(memory.DefaultQuestions())
	responses := memory.NewResponseStore()
	locks := memory.NewLockStore()
	notifications := memory.NewNotificationStore()

	notifier := services.NewNotificationService(notifications, hub, 0, logger)
	reports := services.NewReportService(responses, questions, locks, notifier, publisher, hub, 5, 0, logger)
	votes := services.NewVoteService(questions, responses, reports, notifier, publisher, hub, limiter, 0, logger)
	targetsSvc := services.NewTargetService(targets, questions, responses, locks, notifications, publisher, limiter, 5, 7, 0, logger)

	handler := NewRouter(targetsSvc, votes, reports, notifier, hub, limiter, apiLimit, cronSecret, false, logger).Setup()
	return &testEnv{handler: handler, hub: hub}
}

func generousLimits() ratelimit.Config {
	return ratelimit.Config{
		ratelimit.CategoryLinkGeneration: {Window: time.Minute, MaxRequests: 1000},
		ratelimit.CategoryVoting:         {Window: time.Minute, MaxRequests: 1000},
		ratelimit.CategoryAPI:            {Window: time.Minute, MaxRequests: 1000},
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.Contains(rec.Header().Get("Content-Type"), "application/json") && rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func (e *testEnv) createTarget(t *testing.T, nickname string) {
	t.Helper()
	rec, _ := e.do(t, http.MethodPost, "/api/v1/targets", map[string]string{"nickname": nickname})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, generousLimits(), 1000, "")

	rec, _ := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateTarget_CreatedThenReused(t *testing.T) {
	env := newTestEnv(t, generousLimits(), 1000, "")

	rec, body := env.do(t, http.MethodPost, "/api/v1/targets", map[string]string{"nickname": "lena"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, body.Success)
	assert.Equal(t, true, body.Data["created"])

	rec, body = env.do(t, http.MethodPost, "/api/v1/targets", map[string]string{"nickname": "lena"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body.Data["created"])
}

func TestCreateTarget_BadBody(t *testing.T) {
	env := newTestEnv(t, generousLimits(), 1000, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/targets", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := env.do(t, http.MethodPost, "/api/v1/targets", map[string]string{"nickname": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, body.Error)
}

func TestGetVotingPage(t *testing.T) {
	env := newTestEnv(t, generousLimits(), 1000, "")
	env.createTarget(t, "lena")

	rec, body := env.do(t, http.MethodGet, "/api/v1/targets/lena/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body.Data["session_token"])
	questions, ok := body.Data["questions"].([]interface{})
	require.True(t, ok)
	assert.Len(t, questions, 3)

	rec, body = env.do(t, http.MethodGet, "/api/v1/targets/nobody/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestSubmitVotes_Flow(t *testing.T) {
	env := newTestEnv(t, generousLimits(), 1000, "")
	env.createTarget(t, "lena")

	rec, body := env.do(t, http.MethodPost, "/api/v1/targets/lena/votes", map[string]interface{}{
		"session_token": uuid.New().String(),
		"answers":       map[string]int{"q-first-impression": 1, "q-conversation": 2},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(2), body.Data["recorded"])
}

func TestSubmitVotes_Rejections(t *testing.T) {
	env := newTestEnv(t, generousLimits(), 1000, "")
	env.createTarget(t, "lena")

	// Malformed session token.
	rec, _ := env.do(t, http.MethodPost, "/api/v1/targets/lena/votes", map[string]interface{}{
		"session_token": "not-a-token",
		"answers":       map[string]int{"q-first-impression": 1},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Option outside the question's set.
	rec, body := env.do(t, http.MethodPost, "/api/v1/targets/lena/votes", map[string]interface{}{
		"session_token": uuid.New().String(),
		"answers":       map[string]int{"q-first-impression": 42},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "INVALID_OPTION", body.Error.Code)

	// Unknown nickname.
	rec, _ = env.do(t, http.MethodPost, "/api/v1/targets/nobody/votes", map[string]interface{}{
		"session_token": uuid.New().String(),
		"answers":       map[string]int{"q-first-impression": 1},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetReport_LockedThenUnlocked(t *testing.T) {
	env := newTestEnv(t, generousLimits(), 1000, "")
	env.createTarget(t, "lena")

	submit := func() {
		rec, _ := env.do(t, http.MethodPost, "/api/v1/targets/lena/votes", map[string]interface{}{
			"session_token": uuid.New().String(),
			"answers":       map[string]int{"q-first-impression": 3},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	for i := 0; i < 4; i++ {
		submit()
	}

	rec, body := env.do(t, http.MethodGet, "/api/v1/targets/lena/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body.Data["is_locked"])
	assert.Equal(t, float64(4), body.Data["voter_count"])
	assert.Empty(t, body.Data["top_tags"])

	submit()

	rec, body = env.do(t, http.MethodGet, "/api/v1/targets/lena/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body.Data["is_locked"])
	assert.Equal(t, float64(5), body.Data["voter_count"])
	assert.NotEmpty(t, body.Data["top_tags"])
}

func TestNotifications_ListAndMarkRead(t *testing.T) {
	env := newTestEnv(t, generousLimits(), 1000, "")
	env.createTarget(t, "lena")

	rec, _ := env.do(t, http.MethodPost, "/api/v1/targets/lena/votes", map[string]interface{}{
		"session_token": uuid.New().String(),
		"answers":       map[string]int{"q-first-impression": 1},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := env.do(t, http.MethodGet, "/api/v1/targets/lena/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list, ok := body.Data["notifications"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)

	rec, body = env.do(t, http.MethodPost, "/api/v1/targets/lena/notifications/read", map[string]interface{}{
		"notification_ids": []string{},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body.Data["marked"])

	rec, body = env.do(t, http.MethodGet, "/api/v1/targets/lena/notifications?unread_only=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list, ok = body.Data["notifications"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, list)
}

func TestCleanup_Authorization(t *testing.T) {
	env := newTestEnv(t, generousLimits(), 1000, "sweep-secret")

	rec, _ := env.do(t, http.MethodPost, "/internal/cleanup", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/internal/cleanup", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/internal/cleanup", nil)
	req.Header.Set("Authorization", "Bearer sweep-secret")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(0), body.Data["deleted"])
}

func TestRateLimit_HeadersAndRejection(t *testing.T) {
	limits := generousLimits()
	limits[ratelimit.CategoryAPI] = ratelimit.Limit{Window: time.Minute, MaxRequests: 2}
	env := newTestEnv(t, limits, 2, "")

	rec, _ := env.do(t, http.MethodGet, "/api/v1/targets/nobody/", nil)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	env.do(t, http.MethodGet, "/api/v1/targets/nobody/", nil)

	rec, body := env.do(t, http.MethodGet, "/api/v1/targets/nobody/", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "TOO_MANY_REQUESTS", body.Error.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Health stays outside the throttle.
	rec, _ = env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStream_DeliversFeedMessages(t *testing.T) {
	env := newTestEnv(t, generousLimits(), 1000, "")
	env.createTarget(t, "lena")

	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/targets/lena/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			lines <- strings.TrimRight(line, "\n")
		}
	}()

	waitFor := func(substr string) {
		deadline := time.After(2 * time.Second)
		for {
			select {
			case line, open := <-lines:
				if !open {
					t.Fatalf("stream closed before %q arrived", substr)
				}
				if strings.Contains(line, substr) {
					return
				}
			case <-deadline:
				t.Fatalf("timed out waiting for %q", substr)
			}
		}
	}

	// The subscription is registered before the greeting is written, so the
	// vote below cannot slip past it.
	waitFor(": connected")

	rec, _ := env.do(t, http.MethodPost, "/api/v1/targets/lena/votes", map[string]interface{}{
		"session_token": uuid.New().String(),
		"answers":       map[string]int{"q-first-impression": 1},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	waitFor("event: notification.created")
	waitFor("event: response.recorded")
}
