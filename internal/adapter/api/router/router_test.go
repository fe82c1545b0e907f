package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petadopt/internal/adapter/api"
	"petadopt/internal/adapter/api/handler"
	"petadopt/internal/adapter/api/middleware"
	"petadopt/internal/adapter/repository/memory"
	"petadopt/internal/domain/entity"
	"petadopt/internal/infrastructure/cache"
	"petadopt/internal/infrastructure/ratelimit"
	"petadopt/internal/infrastructure/websocket"
	"petadopt/internal/usecase"
)

// fakeFirebase accepts tokens of the form "tok-<uid>".
type fakeFirebase struct {
	mu    sync.Mutex
	users map[string]*entity.SessionUser
}

func (f *fakeFirebase) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	uid := "uid-" + email
	f.users[uid] = &entity.SessionUser{
		UID:          uid,
		Email:        email,
		DisplayName:  displayName,
		ProviderData: []entity.ProviderInfo{{ProviderID: "password", UID: email, Email: email}},
	}
	return uid, nil
}

func (f *fakeFirebase) VerifyToken(ctx context.Context, token string) (string, error) {
	if !strings.HasPrefix(token, "tok-") {
		return "", pkgerrors.New("invalid token")
	}
	return strings.TrimPrefix(token, "tok-"), nil
}

func (f *fakeFirebase) GetUser(ctx context.Context, uid string) (*entity.SessionUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[uid]
	if !ok {
		return nil, pkgerrors.New("user not found")
	}
	return u, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	e     *echo.Echo
	store *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	fb := &fakeFirebase{users: make(map[string]*entity.SessionUser)}
	wsManager := websocket.NewManager()
	limiter := ratelimit.NewRateLimiter(10)

	sessions := usecase.NewSessionUseCase(store.Users(), fb, cache.NewMemoryProvider("test"), wsManager)
	catalogSync := usecase.NewCatalogSynchronizer(store.Animals(), nil)
	require.NoError(t, catalogSync.Start(ctx))
	t.Cleanup(catalogSync.Stop)

	h := handler.Setup(handler.Dependencies{
		Session:        sessions,
		Catalog:        usecase.NewCatalogUseCase(store.Animals(), catalogSync, sessions, nil),
		CatalogState:   catalogSync,
		Watchlist:      usecase.NewWatchlistUseCase(store.Watchlists(), catalogSync, wsManager),
		Chat:           usecase.NewChatUseCase(store.Chats(), store.Users(), sessions, limiter, nil, wsManager),
		Verifier:       fb,
		WSManager:      wsManager,
		MaxUploadBytes: 1 << 20,
	})

	e := echo.New()
	e.Validator = api.NewValidator()
	Setup(e, h, middleware.NewAuthMiddleware(fb), limiter)

	return &testServer{e: e, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
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
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

// signIn registers email and opens a session, returning the bearer token.
func (s *testServer) signIn(t *testing.T, email, name string) string {
	t.Helper()

	code, _ := s.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email": email, "password": "secret1", "displayName": name,
	})
	require.Equal(t, http.StatusCreated, code)

	token := "tok-uid-" + email
	code, _ = s.do(t, http.MethodPost, "/v1/auth/session", "", map[string]string{"id_token": token})
	require.Equal(t, http.StatusOK, code)
	return token
}

func decode(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/v1/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	code, _ = s.do(t, http.MethodGet, "/v1/watchlist", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodGet, "/v1/animals", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestSessionAndProfile(t *testing.T) {
	s := newTestServer(t)
	token := s.signIn(t, "ann@x.io", "Ann")

	code, env := s.do(t, http.MethodGet, "/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	var profile entity.Profile
	decode(t, env, &profile)
	assert.Equal(t, "Ann", profile.DisplayName)
	assert.Equal(t, entity.ProfileSourceRemote, profile.Source)

	code, env = s.do(t, http.MethodPut, "/v1/profile", token, map[string]string{"phoneNumber": "12-34"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = s.do(t, http.MethodPut, "/v1/profile", token, map[string]string{"phoneNumber": "+14155550100"})
	require.Equal(t, http.StatusOK, code)
	decode(t, env, &profile)
	assert.Equal(t, "+14155550100", profile.PhoneNumber)

	code, env = s.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{"email": "ann@x.io", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	code, _ = s.do(t, http.MethodDelete, "/v1/auth/session", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/v1/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestListingLifecycle(t *testing.T) {
	s := newTestServer(t)
	ann := s.signIn(t, "ann@x.io", "Ann")
	bob := s.signIn(t, "bob@x.io", "Bob")

	code, env := s.do(t, http.MethodPost, "/v1/animals", ann, map[string]string{
		"name": "Rex", "age": "2 years", "breed": "Beagle", "location": "Lisbon", "image": "https://img.example/rex.png",
	})
	require.Equal(t, http.StatusCreated, code)
	var rex entity.Animal
	decode(t, env, &rex)
	require.NotEmpty(t, rex.Key)
	assert.Equal(t, "uid-ann@x.io", rex.CreatedUser.UserID)
	assert.Equal(t, "Ann", rex.CreatedUser.UserName)

	code, env = s.do(t, http.MethodPost, "/v1/animals", ann, map[string]string{"name": "NoImage"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	var page usecase.CatalogPage
	_, env = s.do(t, http.MethodGet, "/v1/animals", "", nil)
	decode(t, env, &page)
	assert.Equal(t, int64(1), page.Total)
	assert.False(t, page.Loading)

	_, env = s.do(t, http.MethodGet, "/v1/animals/mine", bob, nil)
	decode(t, env, &page)
	assert.Equal(t, int64(0), page.Total)

	code, env = s.do(t, http.MethodPut, "/v1/animals/"+rex.Key, bob, map[string]string{"name": "Stolen"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, env = s.do(t, http.MethodPut, "/v1/animals/"+rex.Key, ann, map[string]string{"location": "Porto"})
	require.Equal(t, http.StatusOK, code)
	decode(t, env, &rex)
	assert.Equal(t, "Porto", rex.Location)
	assert.Equal(t, "Rex", rex.Name)

	code, _ = s.do(t, http.MethodDelete, "/v1/animals/"+rex.Key, ann, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/v1/animals/"+rex.Key, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestWatchlistToggle(t *testing.T) {
	s := newTestServer(t)
	ann := s.signIn(t, "ann@x.io", "Ann")

	_, env := s.do(t, http.MethodPost, "/v1/animals", ann, map[string]string{
		"name": "Rex", "age": "2", "breed": "Beagle", "image": "https://img.example/rex.png",
	})
	var rex entity.Animal
	decode(t, env, &rex)

	var toggled usecase.ToggleResult
	code, env := s.do(t, http.MethodPost, "/v1/watchlist/"+rex.Key+"/toggle", ann, nil)
	require.Equal(t, http.StatusOK, code)
	decode(t, env, &toggled)
	assert.True(t, toggled.Watching)
	assert.Equal(t, []string{rex.Key}, toggled.Members)

	var view usecase.WatchlistView
	_, env = s.do(t, http.MethodGet, "/v1/watchlist", ann, nil)
	decode(t, env, &view)
	require.Len(t, view.Animals, 1)
	assert.Equal(t, "Rex", view.Animals[0].Name)

	_, env = s.do(t, http.MethodPost, "/v1/watchlist/"+rex.Key+"/toggle", ann, nil)
	decode(t, env, &toggled)
	assert.False(t, toggled.Watching)

	ids, exists := s.store.WatchlistIDs("uid-ann@x.io")
	assert.True(t, exists)
	assert.Empty(t, ids)
}

func TestChatFlow(t *testing.T) {
	s := newTestServer(t)
	ann := s.signIn(t, "ann@x.io", "Ann")
	bob := s.signIn(t, "bob@x.io", "Bob")

	code, env := s.do(t, http.MethodPost, "/v1/chats/messages", bob, map[string]string{
		"recipient_id": "ann@x.io", "text": "Is Rex still available?",
	})
	require.Equal(t, http.StatusCreated, code)
	var sent usecase.SendResult
	decode(t, env, &sent)
	assert.True(t, sent.Created)

	code, _ = s.do(t, http.MethodPost, "/v1/chats/messages", bob, map[string]string{
		"recipient_id": "ann@x.io", "text": "Hello?",
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, s.store.ConversationCount())

	code, _ = s.do(t, http.MethodPost, "/v1/chats/messages", bob, map[string]string{
		"recipient_id": "ann@x.io", "text": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodPost, "/v1/chats/messages", bob, map[string]string{
		"recipient_id": "not-an-email", "text": "hi",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	var summaries []entity.ChatSummary
	_, env = s.do(t, http.MethodGet, "/v1/chats", ann, nil)
	decode(t, env, &summaries)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Bob", summaries[0].PeerName)
	assert.Equal(t, "Hello?", summaries[0].LastMessage)

	var view entity.ChatView
	_, env = s.do(t, http.MethodGet, "/v1/chats/view?peer_id=bob@x.io", ann, nil)
	decode(t, env, &view)
	assert.Equal(t, entity.ChatViewPopulated, view.State)
	assert.Len(t, view.Messages, 2)

	var messages []entity.Message
	_, env = s.do(t, http.MethodGet, "/v1/chats/messages", ann, nil)
	decode(t, env, &messages)
	assert.Len(t, messages, 2)

	code, _ = s.do(t, http.MethodGet, "/v1/chats/view", ann, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMediaUploadWithoutBucket(t *testing.T) {
	s := newTestServer(t)
	ann := s.signIn(t, "ann@x.io", "Ann")

	code, env := s.do(t, http.MethodPost, "/v1/media", ann, nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", env.Error.Code)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	s := newTestServer(t)

	var last int
	for i := 0; i < 21; i++ {
		last, _ = s.do(t, http.MethodPost, "/v1/auth/session", "", map[string]string{"id_token": "forged"})
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
