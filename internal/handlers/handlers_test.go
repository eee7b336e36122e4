package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/oauth2"

	"santaswishlist/internal/database"
	"santaswishlist/internal/models"
	"santaswishlist/internal/profilestore"
	"santaswishlist/internal/realtime"
	"santaswishlist/internal/repository"
	"santaswishlist/internal/security"
	"santaswishlist/internal/service"
	"santaswishlist/internal/statistics"
)

type appOptions struct {
	loginRate int
	providers map[string]OAuthProvider
}

type testApp struct {
	server *httptest.Server
	hub    *realtime.Hub
}

func newTestApp(t *testing.T, opts appOptions) *testApp {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping HTTP integration test in short mode")
	}
	if opts.loginRate == 0 {
		opts.loginRate = 100
	}

	logger := zaptest.NewLogger(t)

	db, err := database.Initialize(filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations("../../migrations", logger))

	kv := repository.NewKVRepository(db)
	stores := profilestore.NewFactory(func(id int64) profilestore.Backend { return kv.ForUser(id) }, logger)

	email, err := service.NewEmailService(context.Background(), "us-east-1", "", "", "", logger)
	require.NoError(t, err)

	// The websocket pumps and request logging can outlive the test
	hub := realtime.NewHub(nil, zap.NewNop())
	limiter := security.NewRateLimiter(opts.loginRate, time.Minute)
	csrf := security.NewCSRFGenerator("csrf-secret")

	profiles := service.NewProfileService(stores, hub, statistics.NoJitter, logger)
	achievements := service.NewAchievementService(stores, hub, email, logger)
	wishes := service.NewWishService(repository.NewWishRepository(db), profiles, achievements, hub, logger)
	dashboard := service.NewDashboardService(wishes, profiles, achievements)
	auth := service.NewAuthService(repository.NewUserRepository(db), profiles, email, security.NewTokenIssuer("jwt-secret"), time.Hour, logger)

	router := NewRouter(Handlers{
		Auth: NewAuthHandler(auth, csrf, AuthHandlerConfig{
			OAuthProviders: opts.providers,
			CookieSecret:   "cookie-secret-cookie-secret-1234",
			AppBaseURL:     "https://wishes.test",
		}, logger),
		Wishes:     NewWishHandler(wishes, logger),
		Profiles:   NewProfileHandler(profiles, wishes, achievements, dashboard, logger),
		Public:     NewPublicHandler(db, hub, logger),
		Middleware: NewMiddleware(auth, csrf, limiter, logger),
	}, zap.NewNop())

	server := httptest.NewServer(router)
	t.Cleanup(limiter.Close)
	t.Cleanup(server.Close)
	t.Cleanup(hub.Close)

	return &testApp{server: server, hub: hub}
}

type apiClient struct {
	t      *testing.T
	base   string
	http   *http.Client
	token  string
	csrf   string
	userID int64
}

func (app *testApp) client(t *testing.T) *apiClient {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &apiClient{
		t:    t,
		base: app.server.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *apiClient) request(method, path string, body interface{}, header http.Header) *http.Response {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// cookie sends the request with the session cookie and CSRF header
func (c *apiClient) cookie(method, path string, body interface{}) *http.Response {
	return c.request(method, path, body, http.Header{security.CSRFHeader: {c.csrf}})
}

// bearer sends the request with the bearer token and no cookies
func (c *apiClient) bearer(method, path string, body interface{}) *http.Response {
	saved := c.http.Jar
	c.http.Jar = nil
	defer func() { c.http.Jar = saved }()
	return c.request(method, path, body, http.Header{"Authorization": {"Bearer " + c.token}})
}

func (c *apiClient) register(email string) authResponse {
	c.t.Helper()
	resp := c.request(http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"password": "candycane123",
	}, nil)
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)

	var out authResponse
	decode(c.t, resp, &out)
	c.token = out.Token
	c.csrf = out.CSRFToken
	c.userID = out.User.ID
	return out
}

func decode(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestRegisterLoginLogout(t *testing.T) {
	app := newTestApp(t, appOptions{})
	c := app.client(t)

	out := c.register("Dasher@NorthPole.test")
	assert.Equal(t, "dasher@northpole.test", out.User.Email)
	assert.Equal(t, "dasher", out.User.Username)
	assert.NotEmpty(t, out.Token)

	resp := c.request(http.MethodPost, "/api/auth/register", map[string]string{
		"email": "dasher@northpole.test", "password": "candycane123",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = c.request(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "dasher@northpole.test", "password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = c.request(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "dasher@northpole.test", "password": "candycane123",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &out)
	c.csrf = out.CSRFToken

	resp = c.request(http.MethodGet, "/api/me", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.request(http.MethodPost, "/api/auth/logout", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = c.request(http.MethodGet, "/api/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	app := newTestApp(t, appOptions{})
	c := app.client(t)

	resp := c.request(http.MethodPost, "/api/auth/register", map[string]string{
		"email": "not-an-email", "password": "candycane123",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.request(http.MethodPost, "/api/auth/register", map[string]string{
		"email": "elf@northpole.test", "password": "candycane123", "role": "admin",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "unknown fields are rejected")
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	app := newTestApp(t, appOptions{})
	c := app.client(t)

	for _, path := range []string{"/api/wishes", "/api/profile", "/api/dashboard", "/api/achievements", "/api/csrf"} {
		resp := c.request(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := c.request(http.MethodGet, "/api/wishes", nil, http.Header{"Authorization": {"Bearer not-a-token"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCookieMutationsNeedCSRF(t *testing.T) {
	app := newTestApp(t, appOptions{})
	c := app.client(t)
	c.register("comet@northpole.test")

	wish := map[string]string{"title": "Telescope", "category": "electronics"}

	resp := c.request(http.MethodPost, "/api/wishes", wish, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = c.request(http.MethodPost, "/api/wishes", wish, http.Header{security.CSRFHeader: {"forged"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = c.request(http.MethodGet, "/api/csrf", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var token map[string]string
	decode(t, resp, &token)
	assert.Equal(t, c.csrf, token["csrfToken"])

	resp = c.cookie(http.MethodPost, "/api/wishes", wish)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = c.bearer(http.MethodPost, "/api/wishes", wish)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "bearer requests skip CSRF")
}

func TestWishEndpoints(t *testing.T) {
	app := newTestApp(t, appOptions{})
	c := app.client(t)
	c.register("blitzen@northpole.test")

	var created models.Wish
	resp := c.bearer(http.MethodPost, "/api/wishes", map[string]string{"title": "Sled", "description": "fast", "category": "toys"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &created)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.NotEmpty(t, created.ID)

	resp = c.bearer(http.MethodPost, "/api/wishes", map[string]string{"title": "Atlas", "category": "books"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = c.bearer(http.MethodPost, "/api/wishes", map[string]string{"title": "", "category": "books"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var wishes []models.Wish
	resp = c.bearer(http.MethodGet, "/api/wishes?category=toys&status=all", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &wishes)
	require.Len(t, wishes, 1)
	assert.Equal(t, "Sled", wishes[0].Title)

	resp = c.bearer(http.MethodGet, "/api/wishes?category=coal", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.bearer(http.MethodPut, "/api/wishes/"+created.ID, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Wish
	decode(t, resp, &updated)
	assert.Equal(t, models.StatusApproved, updated.Status)
	assert.Equal(t, "Sled", updated.Title)

	resp = c.bearer(http.MethodPut, "/api/wishes/missing", map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	other := app.client(t)
	other.register("donner@northpole.test")
	resp = other.bearer(http.MethodDelete, "/api/wishes/"+created.ID, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = c.bearer(http.MethodDelete, "/api/wishes/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = c.bearer(http.MethodGet, "/api/wishes", nil)
	decode(t, resp, &wishes)
	assert.Len(t, wishes, 1)

	resp = c.bearer(http.MethodPatch, "/api/wishes/"+created.ID, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestProfileDashboardAndAchievements(t *testing.T) {
	app := newTestApp(t, appOptions{})
	c := app.client(t)
	c.register("cupid@northpole.test")

	var profile models.UserProfile
	resp := c.bearer(http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &profile)
	assert.Equal(t, "cupid", profile.Username)
	assert.Equal(t, models.DefaultNiceScore, profile.NiceScore)

	resp = c.bearer(http.MethodPut, "/api/profile", map[string]interface{}{
		"username":    "Cupid",
		"preferences": map[string]interface{}{"theme": "dark", "notifications": false, "language": "en-GB"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &profile)
	assert.Equal(t, "Cupid", profile.Username)
	assert.Equal(t, "dark", profile.Preferences.Theme)

	resp = c.bearer(http.MethodPut, "/api/profile", map[string]interface{}{"avatar": "🐍"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.bearer(http.MethodPost, "/api/wishes", map[string]string{"title": "Bow", "category": "other"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var dashboard service.Dashboard
	resp = c.bearer(http.MethodGet, "/api/dashboard?status=delivered", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &dashboard)
	assert.Empty(t, dashboard.Wishes)
	assert.Equal(t, 1, dashboard.Statistics.TotalWishes)
	assert.Equal(t, 0, dashboard.Profile.NiceScore)
	assert.Equal(t, 2, dashboard.Profile.Stats.AchievementsUnlocked)
	assert.Equal(t, 100.0, dashboard.Progress[models.AchievementFirstWish])

	var overview service.AchievementOverview
	resp = c.bearer(http.MethodGet, "/api/achievements", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &overview)
	assert.Len(t, overview.Unlocked, 2)
	assert.Len(t, overview.Locked, 2)
}

func TestPublicEndpoints(t *testing.T) {
	app := newTestApp(t, appOptions{})
	c := app.client(t)

	resp := c.request(http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.request(http.MethodGet, "/api/countdown", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var countdown struct {
		Christmas time.Time `json:"christmas"`
		TimeLeft  struct {
			Days int `json:"days"`
		} `json:"timeLeft"`
	}
	decode(t, resp, &countdown)
	assert.Equal(t, time.December, countdown.Christmas.Month())
	assert.GreaterOrEqual(t, countdown.TimeLeft.Days, 0)

	resp = c.request(http.MethodGet, "/api/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLoginRateLimited(t *testing.T) {
	app := newTestApp(t, appOptions{loginRate: 2})
	c := app.client(t)

	creds := map[string]string{"email": "nobody@northpole.test", "password": "candycane123"}
	for i := 0; i < 2; i++ {
		resp := c.request(http.MethodPost, "/api/auth/login", creds, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp := c.request(http.MethodPost, "/api/auth/login", creds, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func fakeOAuthProvider(t *testing.T) OAuthProvider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"access-1","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"g-42","email":"vixen@northpole.test","name":"Vixen"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return OAuthProvider{
		Name:  "google",
		Label: "Google",
		Config: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:   srv.URL + "/auth",
				TokenURL:  srv.URL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		UserInfoURL: srv.URL + "/userinfo",
	}
}

func TestOAuthFlow(t *testing.T) {
	app := newTestApp(t, appOptions{providers: map[string]OAuthProvider{
		"google":   fakeOAuthProvider(t),
		"facebook": {Name: "facebook", Label: "Facebook", Config: &oauth2.Config{}},
	}})
	c := app.client(t)

	var providers []OAuthProviderView
	resp := c.request(http.MethodGet, "/api/auth/providers", nil, nil)
	decode(t, resp, &providers)
	require.Len(t, providers, 1, "unconfigured providers are hidden")
	assert.Equal(t, "/api/auth/google/start", providers[0].URL)

	resp = c.request(http.MethodGet, "/api/auth/facebook/start", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.request(http.MethodGet, "/api/auth/google/start", nil, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)
	assert.True(t, strings.HasSuffix(location.Query().Get("redirect_uri"), "/api/auth/google/callback"))

	resp = c.request(http.MethodGet, "/api/auth/google/callback?code=good-code&state=wrong", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.request(http.MethodGet, "/api/auth/google/callback?code=good-code&state="+url.QueryEscape(state), nil, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "https://wishes.test/dashboard", resp.Header.Get("Location"))

	var me userResponse
	resp = c.request(http.MethodGet, "/api/me", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &me)
	assert.Equal(t, "vixen@northpole.test", me.Email)
	assert.Equal(t, "Vixen", me.Username)

	resp = c.request(http.MethodGet, "/api/auth/google/callback?code=good-code&state="+url.QueryEscape(state), nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "state is single use")
}

func TestRealtimeStream(t *testing.T) {
	app := newTestApp(t, appOptions{})
	c := app.client(t)
	c.register("rudolph@northpole.test")

	wsURL := "ws" + strings.TrimPrefix(app.server.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Authorization": {"Bearer " + c.token}})
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return app.hub.ClientCount(c.userID) == 1 }, 2*time.Second, 10*time.Millisecond)

	resp := c.bearer(http.MethodPost, "/api/wishes", map[string]string{"title": "Red nose polish", "category": "other"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var evt struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, realtime.EventWishCreated, evt.Type)

	var wish models.Wish
	require.NoError(t, json.Unmarshal(evt.Payload, &wish))
	assert.Equal(t, "Red nose polish", wish.Title)

	_, _, err = websocket.DefaultDialer.Dial(wsURL, nil)
	assert.Error(t, err, "anonymous clients are rejected")
}

func TestLoggingMiddlewareRecordsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/wishes", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/wishes", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
}
