package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"schoolmaps-sync-go/internal/localstate"
	"schoolmaps-sync-go/internal/models"
	"schoolmaps-sync-go/internal/remote"
	"schoolmaps-sync-go/internal/sync"
)

type nopSub struct{}

func (nopSub) Cancel() {}

type stubDocs struct{}

func (stubDocs) ListenDocument(context.Context, string, func(remote.Document), func(error)) remote.Subscription {
	return nopSub{}
}

func (stubDocs) ListenCollection(context.Context, remote.CollectionQuery, func([]remote.Document), func(error)) remote.Subscription {
	return nopSub{}
}

func (stubDocs) MergeWrite(context.Context, string, map[string]interface{}) error { return nil }

type stubObjects struct{}

func (stubObjects) Upload(_ context.Context, _ string, r io.Reader, _ string) error {
	_, err := io.Copy(io.Discard, r)
	return err
}

func (stubObjects) DownloadURL(_ context.Context, path string) (string, error) {
	return "https://storage.example/" + path, nil
}

type stubSessions struct {
	current *remote.Session
}

func (s *stubSessions) Listen(_ context.Context, fn func(*remote.Session)) remote.Subscription {
	fn(s.current)
	return nopSub{}
}

func (s *stubSessions) SignOut(context.Context) error { return nil }

func newTestRouter(t *testing.T, session *remote.Session) (*gin.Engine, *sync.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	local, err := localstate.Open(t.TempDir())
	require.NoError(t, err)

	engine, err := sync.New(sync.Options{
		AppID:       "schoolmaps-test",
		SplashDelay: time.Millisecond,
		Documents:   stubDocs{},
		Objects:     stubObjects{},
		Sessions:    &stubSessions{current: session},
		Local:       local,
	})
	require.NoError(t, err)
	engine.Start(context.Background())
	t.Cleanup(engine.Close)

	router := gin.New()
	SetupRoutes(router, zap.NewNop(), engine)
	return router, engine
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := doJSON(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "UP", body["status"])
	assert.NotEmpty(t, body["appStatus"])
}

func TestGetState(t *testing.T) {
	router, _ := newTestRouter(t, &remote.Session{UID: models.GuestUID})

	w := doJSON(router, http.MethodGet, "/api/v1/state", "")
	require.Equal(t, http.StatusOK, w.Code)

	var st sync.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	require.NotNil(t, st.User)
	assert.Equal(t, models.GuestUID, st.User.UID)
	assert.True(t, st.Online)
}

func TestConnectivityAndNoticeFlow(t *testing.T) {
	router, engine := newTestRouter(t, nil)

	require.Equal(t, http.StatusOK, doJSON(router, http.MethodPut, "/api/v1/connectivity", `{"online": false}`).Code)
	assert.Nil(t, engine.Notifier().Current())

	require.Equal(t, http.StatusOK, doJSON(router, http.MethodPut, "/api/v1/connectivity", `{"online": true}`).Code)
	notice := engine.Notifier().Current()
	require.NotNil(t, notice)

	w := doJSON(router, http.MethodPost, "/api/v1/notices/"+notice.ID+"/confirm", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, engine.Notifier().Current())

	w = doJSON(router, http.MethodPost, "/api/v1/notices/"+notice.ID+"/confirm", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "resolving a stale notice fails")
}

func TestConnectivityRequiresOnlineField(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	w := doJSON(router, http.MethodPut, "/api/v1/connectivity", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatchProfileValidation(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "invalid JSON", body: `{`, wantCode: http.StatusBadRequest},
		{name: "empty field set", body: `{}`, wantCode: http.StatusBadRequest},
		{name: "unrecognized field", body: `{"uid": "u2"}`, wantCode: http.StatusBadRequest},
		{name: "no session", body: `{"userName": "Bea"}`, wantCode: http.StatusConflict},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPatch, "/api/v1/profile", tc.body)
			assert.Equal(t, tc.wantCode, w.Code)
		})
	}
}

func TestGuestSessionMutationsAreForbidden(t *testing.T) {
	router, _ := newTestRouter(t, &remote.Session{UID: models.GuestUID})

	w := doJSON(router, http.MethodPatch, "/api/v1/profile", `{"userName": "Bea"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubjectAndSearch(t *testing.T) {
	router, engine := newTestRouter(t, &remote.Session{UID: models.GuestUID})

	require.Equal(t, http.StatusOK, doJSON(router, http.MethodPut, "/api/v1/subject", `{"subject": "math"}`).Code)
	require.Equal(t, http.StatusOK, doJSON(router, http.MethodPut, "/api/v1/search", `{"query": "algebra"}`).Code)

	st := engine.State()
	assert.Equal(t, "math", st.CurrentSubject)
	assert.Equal(t, "algebra", st.SearchQuery)

	w := doJSON(router, http.MethodGet, "/api/v1/files/subject", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestLogoutReturnsConfirmation(t *testing.T) {
	router, _ := newTestRouter(t, &remote.Session{UID: "u1"})

	w := doJSON(router, http.MethodPost, "/api/v1/logout", "")
	require.Equal(t, http.StatusOK, w.Code)

	var notice sync.Notice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notice))
	assert.NotEmpty(t, notice.ID)
	assert.True(t, notice.Confirmable)
}

func TestShareResult(t *testing.T) {
	router, engine := newTestRouter(t, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/share/result", `{"ok": true, "title": "Algebra notes"}`)
	require.Equal(t, http.StatusOK, w.Code)
	notice := engine.Notifier().Current()
	require.NotNil(t, notice)
	assert.Contains(t, notice.Text, "Algebra notes")

	w = doJSON(router, http.MethodPost, "/api/v1/share/result", `{"title": "x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "ok flag must be present")
}
