package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SgtSlaughter1/flipkart-bff/internal/session"
)

func sessionEcho(t *testing.T, store session.Store) (http.Handler, *session.Session) {
	t.Helper()
	captured := &session.Session{}
	mw := SessionMiddleware(store, "1")
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := sessionFromContext(r.Context())
		require.NotNil(t, s)
		*captured = *s
		w.WriteHeader(http.StatusNoContent)
	}))
	return handler, captured
}

func TestSessionMiddleware_BearerTokenKeysSession(t *testing.T) {
	store := session.NewMemoryStore()
	handler, captured := sessionEcho(t, store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "tok-42", captured.ID)
	assert.Equal(t, "1", captured.UserID)
	assert.Equal(t, "tok-42", captured.Token)
	// No cookie for authenticated requests.
	assert.Empty(t, rec.Result().Cookies())
}

func TestSessionMiddleware_AnonymousGetsCookie(t *testing.T) {
	store := session.NewMemoryStore()
	handler, captured := sessionEcho(t, store)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "bff_session", cookies[0].Name)
	assert.Equal(t, cookies[0].Value, captured.ID)
	assert.Equal(t, "1", captured.UserID, "anonymous sessions fall back to the default user")
}

func TestSessionMiddleware_CookieReusesSession(t *testing.T) {
	store := session.NewMemoryStore()
	handler, captured := sessionEcho(t, store)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := rec.Result().Cookies()[0]
	firstID := captured.ID

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, firstID, captured.ID, "repeat visits keep the same session")
}

type flakyStore struct {
	session.Store
	getErr error
	puts   int
}

func (f *flakyStore) Get(ctx context.Context, id string) (*session.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Store.Get(ctx, id)
}

func (f *flakyStore) Put(ctx context.Context, s *session.Session) error {
	f.puts++
	return f.Store.Put(ctx, s)
}

func TestSessionMiddleware_StoreBlipDoesNotOverwriteSession(t *testing.T) {
	mem := session.NewMemoryStore()
	require.NoError(t, mem.Put(context.Background(), &session.Session{ID: "tok-7", UserID: "99"}))
	store := &flakyStore{Store: mem, getErr: fmt.Errorf("redis: connection refused")}
	handler, captured := sessionEcho(t, store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-7")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// The request is still served, on an ephemeral session.
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "1", captured.UserID)
	assert.Zero(t, store.puts, "no write while the store is unreadable")

	// Once the store recovers, the stored session is intact.
	store.getErr = nil
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-7")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "99", captured.UserID)
}

func TestSessionMiddleware_ExistingSessionIsNotOverwritten(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Put(httptest.NewRequest(http.MethodGet, "/", nil).Context(), &session.Session{
		ID:     "tok-7",
		UserID: "99",
	}))
	handler, captured := sessionEcho(t, store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-7")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "99", captured.UserID, "stored user id wins over the default")
}
