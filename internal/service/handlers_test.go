package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rcong315/SpotifyProfile/internal/spotify"
)

type fakeClient struct {
	token  string
	limit  int
	id     string
	err    error
	called bool
}

func (f *fakeClient) GetUserProfile(ctx context.Context, accessToken string) (*spotify.UserProfile, error) {
	f.called, f.token = true, accessToken
	if f.err != nil {
		return nil, f.err
	}
	return &spotify.UserProfile{ID: "jordanlee", DisplayName: "Jordan Lee", Images: []spotify.Image{}}, nil
}

func (f *fakeClient) GetTopTracks(ctx context.Context, accessToken string) ([]spotify.Track, error) {
	f.called, f.token = true, accessToken
	if f.err != nil {
		return nil, f.err
	}
	return []spotify.Track{{ID: "7xGfFoTpQ2E7fRF5lN10tr", Name: "Airbag", DurationMS: 284586}}, nil
}

func (f *fakeClient) GetTopArtists(ctx context.Context, accessToken string, limit int) ([]spotify.Artist, error) {
	f.called, f.token, f.limit = true, accessToken, limit
	if f.err != nil {
		return nil, f.err
	}
	return []spotify.Artist{{ID: "4Z8W4fKeB5YxbusRsdQVPb", Name: "Radiohead", Images: []spotify.Image{}}}, nil
}

func (f *fakeClient) GetArtist(ctx context.Context, accessToken, artistID string) (*spotify.Artist, error) {
	f.called, f.token, f.id = true, accessToken, artistID
	if f.err != nil {
		return nil, f.err
	}
	return &spotify.Artist{ID: artistID, Name: "Radiohead", Images: []spotify.Image{}}, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, router http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHealth(t *testing.T) {
	router := NewRouter(&fakeClient{}, RouterConfig{})

	w := serve(t, router, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if decodeBody(t, w)["status"] != "healthy" {
		t.Errorf("unexpected body %s", w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestUserProfileHandler(t *testing.T) {
	client := &fakeClient{}
	router := NewRouter(client, RouterConfig{})

	w := serve(t, router, "/api/v1/me", bearer("abc"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if client.token != "abc" {
		t.Errorf("expected token abc to be forwarded, got %q", client.token)
	}
	body := decodeBody(t, w)
	if body["displayName"] != "Jordan Lee" {
		t.Errorf("expected camelCase displayName, got %s", w.Body.String())
	}
}

func TestAccessTokenQueryFallback(t *testing.T) {
	client := &fakeClient{}
	router := NewRouter(client, RouterConfig{})

	w := serve(t, router, "/api/v1/me/top/tracks?access_token=from-query", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if client.token != "from-query" {
		t.Errorf("expected token from-query, got %q", client.token)
	}
}

func TestMissingAccessToken(t *testing.T) {
	client := &fakeClient{}
	router := NewRouter(client, RouterConfig{})

	for _, header := range []http.Header{nil, {"Authorization": {"Basic dXNlcjpwYXNz"}}} {
		w := serve(t, router, "/api/v1/me", header)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	}
	if client.called {
		t.Error("client should not be called without a token")
	}
}

func TestTopArtistsLimit(t *testing.T) {
	tests := []struct {
		query     string
		wantCode  int
		wantLimit int
	}{
		{"", http.StatusOK, 0},
		{"?limit=5", http.StatusOK, 5},
		{"?limit=50", http.StatusOK, 50},
		{"?limit=0", http.StatusBadRequest, 0},
		{"?limit=51", http.StatusBadRequest, 0},
		{"?limit=abc", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			client := &fakeClient{}
			router := NewRouter(client, RouterConfig{})

			w := serve(t, router, "/api/v1/me/top/artists"+tt.query, bearer("abc"))
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, w.Code)
			}
			if tt.wantCode == http.StatusOK && client.limit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, client.limit)
			}
			if tt.wantCode != http.StatusOK && client.called {
				t.Error("client should not be called for an invalid limit")
			}
		})
	}
}

func TestArtistHandler(t *testing.T) {
	client := &fakeClient{}
	router := NewRouter(client, RouterConfig{})

	w := serve(t, router, "/api/v1/artists/4Z8W4fKeB5YxbusRsdQVPb", bearer("abc"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if client.id != "4Z8W4fKeB5YxbusRsdQVPb" {
		t.Errorf("expected artist id to be forwarded, got %q", client.id)
	}
	if decodeBody(t, w)["name"] != "Radiohead" {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"provider 401", &spotify.ErrProviderRequest{Endpoint: "user_profile", StatusCode: 401, Body: "invalid token"}, http.StatusUnauthorized},
		{"provider 429", &spotify.ErrProviderRequest{Endpoint: "user_profile", StatusCode: 429, Body: "slow down"}, http.StatusTooManyRequests},
		{"provider 3xx", &spotify.ErrProviderRequest{Endpoint: "user_profile", StatusCode: 304}, http.StatusBadGateway},
		{"shape", &spotify.ErrDataShape{Endpoint: "user_profile", Field: "id"}, http.StatusBadGateway},
		{"transport", &spotify.ErrTransport{Endpoint: "user_profile", Cause: errors.New("connection refused")}, http.StatusBadGateway},
		{"timeout", &spotify.ErrTransport{Endpoint: "user_profile", Cause: &url.Error{Op: "Get", URL: "x", Err: context.DeadlineExceeded}}, http.StatusGatewayTimeout},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(&fakeClient{err: tt.err}, RouterConfig{})

			w := serve(t, router, "/api/v1/me", bearer("abc"))
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			body := decodeBody(t, w)
			if body["status"] != "error" {
				t.Errorf("expected status error, got %v", body["status"])
			}
			if body["message"] != tt.err.Error() {
				t.Errorf("expected message %q, got %v", tt.err.Error(), body["message"])
			}
		})
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	router := NewRouter(&fakeClient{}, RouterConfig{APIKey: "secret-key"})

	w := serve(t, router, "/api/v1/me", bearer("abc"))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without API key, got %d", w.Code)
	}

	header := bearer("abc")
	header.Set("X-API-Key", "wrong")
	w = serve(t, router, "/api/v1/me", header)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong API key, got %d", w.Code)
	}

	header.Set("X-API-Key", "secret-key")
	w = serve(t, router, "/api/v1/me", header)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with API key, got %d", w.Code)
	}

	w = serve(t, router, "/api/v1/me?api_key=secret-key", bearer("abc"))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with api_key query, got %d", w.Code)
	}

	w = serve(t, router, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected /health to stay public, got %d", w.Code)
	}
}

func TestRequestIDIsReused(t *testing.T) {
	router := NewRouter(&fakeClient{}, RouterConfig{})

	w := serve(t, router, "/health", http.Header{"X-Request-Id": {"req-123"}})
	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("expected request id req-123, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := NewRouter(&fakeClient{}, RouterConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS origin header")
	}
}

// observeLogs routes the package logger into an in-memory observer for the
// duration of the test.
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	previous := logger
	InitializeLogger(zap.New(core))
	t.Cleanup(func() { logger = previous })
	return logs
}

func assertNotLogged(t *testing.T, logs *observer.ObservedLogs, secrets ...string) {
	t.Helper()
	for _, entry := range logs.All() {
		text := entry.Message + " " + fmt.Sprint(entry.ContextMap())
		for _, secret := range secrets {
			if strings.Contains(text, secret) {
				t.Errorf("secret %q leaked in log %q: %s", secret, entry.Message, text)
			}
		}
	}
}

func TestRequestLogRedactsCredentials(t *testing.T) {
	logs := observeLogs(t)
	client := &fakeClient{}
	router := NewRouter(client, RouterConfig{APIKey: "secret-api-key"})

	w := serve(t, router, "/api/v1/me/top/artists?limit=5&access_token=SECRET-BEARER-TOKEN&api_key=secret-api-key", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if client.token != "SECRET-BEARER-TOKEN" || client.limit != 5 {
		t.Errorf("expected token and limit to reach the client, got %q, %d", client.token, client.limit)
	}

	entries := logs.FilterMessage("/api/v1/me/top/artists").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 request log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["query"] != "limit=5" {
		t.Errorf("expected redacted query limit=5, got %v", fields["query"])
	}
	if id, _ := fields["requestId"].(string); id == "" {
		t.Error("expected requestId on the request log entry")
	}
	assertNotLogged(t, logs, "SECRET-BEARER-TOKEN", "secret-api-key")
}

func TestRequestLogOmitsAuthorizationHeader(t *testing.T) {
	logs := observeLogs(t)
	router := NewRouter(&fakeClient{err: &spotify.ErrProviderRequest{Endpoint: "user_profile", StatusCode: 401, Body: "invalid token"}}, RouterConfig{})

	header := bearer("SECRET-BEARER-TOKEN")
	header.Set("X-API-Key", "secret-api-key")
	w := serve(t, router, "/api/v1/me", header)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if logs.Len() == 0 {
		t.Fatal("expected request to be logged")
	}
	assertNotLogged(t, logs, "SECRET-BEARER-TOKEN", "secret-api-key")
}

func TestRecoveryDumpOmitsCredentials(t *testing.T) {
	logs := observeLogs(t)
	router := NewRouter(&fakeClient{}, RouterConfig{})
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(t, router, "/panic?access_token=SECRET-QUERY-TOKEN", bearer("SECRET-BEARER-TOKEN"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if logs.FilterMessage("[Recovery from panic]").Len() != 1 {
		t.Fatal("expected the panic to be logged")
	}
	assertNotLogged(t, logs, "SECRET-QUERY-TOKEN", "SECRET-BEARER-TOKEN")
}

func TestHealthIsNotRequestLogged(t *testing.T) {
	logs := observeLogs(t)
	router := NewRouter(&fakeClient{}, RouterConfig{})

	serve(t, router, "/health", nil)
	if n := logs.FilterMessage("/health").Len(); n != 0 {
		t.Errorf("expected /health to be skipped by the request logger, got %d entries", n)
	}
}
