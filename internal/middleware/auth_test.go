package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/castpro/castpro/internal/auth"
	"github.com/castpro/castpro/internal/model"
	"github.com/castpro/castpro/internal/repository"
)

type fakeUserResolver struct {
	users map[string]*model.User
	calls int
}

func (f *fakeUserResolver) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	f.calls++
	user, ok := f.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type fakeAuthCache struct {
	entries map[string]*model.User
	hits    int
	sets    int
}

func newFakeAuthCache() *fakeAuthCache {
	return &fakeAuthCache{entries: make(map[string]*model.User)}
}

func (f *fakeAuthCache) GetAuthUser(ctx context.Context, cacheKey string) (*model.User, error) {
	if user, ok := f.entries[cacheKey]; ok {
		f.hits++
		return user, nil
	}
	return nil, nil
}

func (f *fakeAuthCache) SetAuthUser(ctx context.Context, cacheKey string, user *model.User) error {
	f.sets++
	f.entries[cacheKey] = user
	return nil
}

func newAuthTestSetup(t *testing.T, cache AuthUserCache) (*auth.TokenIssuer, *fakeUserResolver, http.Handler, *model.User) {
	t.Helper()

	issuer := auth.NewTokenIssuer("middleware-test-secret")
	user := &model.User{ID: 1, Email: "alice@example.com", IsActive: true}
	resolver := &fakeUserResolver{users: map[string]*model.User{user.Email: user}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mw := Auth(AuthConfig{
		Logger: logger,
		Tokens: issuer,
		Users:  resolver,
		Cache:  cache,
	})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := auth.UserFromContext(r.Context())
		if got == nil {
			t.Error("expected user in request context")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("X-User-ID", got.Email)
		w.WriteHeader(http.StatusOK)
	}))

	return issuer, resolver, handler, user
}

func doAuthRequest(handler http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func assertAuthRejected(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
	if got := rr.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("WWW-Authenticate = %q, want Bearer", got)
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not JSON: %v", err)
	}
	if body["detail"] != "Could not validate credentials" {
		t.Errorf("detail = %q, want %q", body["detail"], "Could not validate credentials")
	}
}

func TestAuth_ValidToken(t *testing.T) {
	issuer, resolver, handler, user := newAuthTestSetup(t, nil)

	token, err := issuer.Issue(user.Email, time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	rr := doAuthRequest(handler, "Bearer "+token)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("X-User-ID"); got != user.Email {
		t.Errorf("resolved user = %q, want %q", got, user.Email)
	}
	if resolver.calls != 1 {
		t.Errorf("resolver calls = %d, want 1", resolver.calls)
	}
}

func TestAuth_CaseInsensitiveScheme(t *testing.T) {
	issuer, _, handler, user := newAuthTestSetup(t, nil)

	token, err := issuer.Issue(user.Email, time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	rr := doAuthRequest(handler, "bearer "+token)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for lowercase scheme", rr.Code)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	_, _, handler, _ := newAuthTestSetup(t, nil)

	assertAuthRejected(t, doAuthRequest(handler, ""))
}

func TestAuth_MalformedHeader(t *testing.T) {
	_, _, handler, _ := newAuthTestSetup(t, nil)

	tests := []struct {
		name   string
		header string
	}{
		{"no scheme", "just-a-token"},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertAuthRejected(t, doAuthRequest(handler, tt.header))
		})
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	issuer, _, handler, user := newAuthTestSetup(t, nil)

	token, err := issuer.Issue(user.Email, 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	assertAuthRejected(t, doAuthRequest(handler, "Bearer "+token))
}

func TestAuth_WrongSecret(t *testing.T) {
	_, _, handler, user := newAuthTestSetup(t, nil)

	forged, err := auth.NewTokenIssuer("attacker-secret").Issue(user.Email, time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	assertAuthRejected(t, doAuthRequest(handler, "Bearer "+forged))
}

func TestAuth_UnknownSubject(t *testing.T) {
	issuer, _, handler, _ := newAuthTestSetup(t, nil)

	// Token is valid but the account no longer exists.
	token, err := issuer.Issue("deleted@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	assertAuthRejected(t, doAuthRequest(handler, "Bearer "+token))
}

func TestAuth_CachesResolvedUser(t *testing.T) {
	cache := newFakeAuthCache()
	issuer, resolver, handler, user := newAuthTestSetup(t, cache)

	token, err := issuer.Issue(user.Email, time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// First request misses the cache and stores the user.
	if rr := doAuthRequest(handler, "Bearer "+token); rr.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rr.Code)
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}

	// Second request with the same token is served from the cache.
	if rr := doAuthRequest(handler, "Bearer "+token); rr.Code != http.StatusOK {
		t.Fatalf("second request status = %d, want 200", rr.Code)
	}
	if cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", cache.hits)
	}
	if resolver.calls != 1 {
		t.Errorf("resolver calls = %d, want 1 (second lookup from cache)", resolver.calls)
	}
}
