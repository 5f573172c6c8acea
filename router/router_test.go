package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"firehorse/config"
	"firehorse/controllers"
	"firehorse/middlewares"
	"firehorse/providers"
	"firehorse/services"
	"firehorse/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type testEnv struct {
	router *gin.Engine
	store  *services.ArtworkStore
}

func newTestEnv(t *testing.T, admin controllers.AdminConfig, provs ...providers.Provider) *testEnv {
	t.Helper()
	return newTestEnvBehindProxies(t, nil, admin, provs...)
}

func newTestEnvBehindProxies(t *testing.T, trusted []string, admin controllers.AdminConfig, provs ...providers.Provider) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenDB("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	store := services.NewArtworkStore(db)
	require.NoError(t, store.Migrate())

	chain := providers.NewChain(provs...)
	gallery := services.NewGalleryService(store, nil, nil, nil, nil, nil)
	generator := services.NewGenerationService(services.GenerationDeps{Store: store, Chain: chain})

	ctrl := controllers.New(controllers.Deps{
		AppName:   "Fire Horse Art Gallery",
		Version:   "test",
		Gallery:   gallery,
		Generator: generator,
		Providers: chain,
		Admin:     admin,
	})
	return &testEnv{router: SetupRouter(ctrl, zap.NewNop(), prometheus.NewRegistry(), trusted), store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, opts ...func(*http.Request)) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func fromIP(ip string) func(*http.Request) {
	return func(r *http.Request) { r.RemoteAddr = ip + ":40000" }
}

func withToken(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func unreachableProvider(t *testing.T) providers.Provider {
	t.Helper()
	p, err := providers.New(providers.Config{Name: "primary", Kind: providers.KindGemini})
	require.NoError(t, err)
	return p
}

func TestGenerate_FallsBackWhenProviderUnavailable(t *testing.T) {
	env := newTestEnv(t, controllers.AdminConfig{}, unreachableProvider(t))

	w, body := env.do(t, http.MethodPost, "/api/generate", gin.H{"prompt": "a red dragon", "style": "digital", "image_size": "2K"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, services.SourceFallback, body["source"])
	assert.Equal(t, "a red dragon, digital style, Chinese New Year theme, 2K quality, detailed", body["enhanced_prompt"])
	assert.NotEmpty(t, body["image_url"])

	artwork := body["artwork"].(map[string]any)
	assert.Equal(t, "a red dragon (demo mode)", artwork["prompt"])
	assert.EqualValues(t, 0, artwork["likes"])
	assert.NotEmpty(t, w.Header().Get(middlewares.RequestIDHeader))
}

func TestGenerate_LegacyRoute(t *testing.T) {
	env := newTestEnv(t, controllers.AdminConfig{})
	w, body := env.do(t, http.MethodPost, "/generate", gin.H{"prompt": "golden horse"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
}

func TestGenerate_Validation(t *testing.T) {
	env := newTestEnv(t, controllers.AdminConfig{})

	w, body := env.do(t, http.MethodPost, "/api/generate", gin.H{"prompt": "ab"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Prompt is required (min 3 characters)", body["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stats, err := env.store.Stats(req.Context())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalArtworks)
}

func TestGalleryPagination(t *testing.T) {
	env := newTestEnv(t, controllers.AdminConfig{})
	for i := 0; i < 7; i++ {
		_, err := env.store.Create(context.Background(), services.NewArtwork{Prompt: fmt.Sprintf("horse %d", i), ImageURL: "https://x/y.png"})
		require.NoError(t, err)
	}

	w, body := env.do(t, http.MethodGet, "/api/gallery?page=2&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["artworks"], 2)
	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 7, pagination["total"])
	assert.EqualValues(t, 2, pagination["totalPages"])

	_, body = env.do(t, http.MethodGet, "/api/gallery?page=3&limit=5", nil)
	assert.Len(t, body["artworks"], 0)
	assert.EqualValues(t, 7, body["pagination"].(map[string]any)["total"])
}

func TestArtworkNotFoundAndBadID(t *testing.T) {
	env := newTestEnv(t, controllers.AdminConfig{})

	w, body := env.do(t, http.MethodGet, "/api/artwork/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Artwork not found", body["error"])

	w, _ = env.do(t, http.MethodGet, "/api/artwork/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPost, "/api/artwork/999/like", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLikeFlow(t *testing.T) {
	env := newTestEnv(t, controllers.AdminConfig{})
	a, err := env.store.Create(context.Background(), services.NewArtwork{Prompt: "fire horse", ImageURL: "https://x/y.png"})
	require.NoError(t, err)
	path := fmt.Sprintf("/api/artwork/%d/like", a.ID)

	w, body := env.do(t, http.MethodPost, path, nil, fromIP("203.0.113.7"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["likes"])

	w, body = env.do(t, http.MethodPost, path, nil, fromIP("203.0.113.7"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "You have already liked this artwork", body["message"])
	assert.EqualValues(t, 1, body["likes"])

	_, body = env.do(t, http.MethodPost, path, nil, fromIP("203.0.113.8"))
	assert.EqualValues(t, 2, body["likes"])

	_, body = env.do(t, http.MethodGet, "/api/stats", nil)
	stats := body["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["totalArtworks"])
	assert.EqualValues(t, 2, stats["totalLikes"])
	assert.EqualValues(t, 2, stats["averageLikes"])

	_, body = env.do(t, http.MethodGet, "/api/top?top=5", nil)
	list := body["list"].([]any)
	require.Len(t, list, 1)
	assert.EqualValues(t, 2, list[0].(map[string]any)["score"])
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t, controllers.AdminConfig{})
	for _, p := range []string{"Red Dragon", "blue horse", "dragon dance"} {
		_, err := env.store.Create(context.Background(), services.NewArtwork{Prompt: p, ImageURL: "https://x/y.png"})
		require.NoError(t, err)
	}

	w, body := env.do(t, http.MethodGet, "/api/search?q=dragon", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["count"])

	w, body = env.do(t, http.MethodGet, "/api/search?q=d", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestDeleteRequiresAdminToken(t *testing.T) {
	hash, err := utils.HashPassword("hunter22")
	require.NoError(t, err)
	env := newTestEnv(t, controllers.AdminConfig{PasswordHash: hash, JWTSecret: testSecret, TokenTTL: time.Hour})

	a, err := env.store.Create(context.Background(), services.NewArtwork{Prompt: "fire horse", ImageURL: "https://x/y.png"})
	require.NoError(t, err)
	path := fmt.Sprintf("/api/artwork/%d", a.ID)

	w, _ := env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, http.MethodDelete, path, nil, withToken("garbage"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, http.MethodPost, "/api/admin/login", gin.H{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := env.do(t, http.MethodPost, "/api/admin/login", gin.H{"password": "hunter22"})
	require.Equal(t, http.StatusOK, w.Code)
	token := body["token"].(string)

	w, body = env.do(t, http.MethodDelete, path, nil, withToken(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Artwork deleted", body["message"])

	w, _ = env.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = env.do(t, http.MethodDelete, path, nil, withToken(token))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteOpenWithoutSecret(t *testing.T) {
	env := newTestEnv(t, controllers.AdminConfig{})
	a, err := env.store.Create(context.Background(), services.NewArtwork{Prompt: "fire horse", ImageURL: "https://x/y.png"})
	require.NoError(t, err)

	w, _ := env.do(t, http.MethodDelete, fmt.Sprintf("/api/artwork/%d", a.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodPost, "/api/admin/login", gin.H{"password": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndProbe(t *testing.T) {
	env := newTestEnv(t, controllers.AdminConfig{}, unreachableProvider(t))

	w, body := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["providers_configured"])

	w, body = env.do(t, http.MethodGet, "/test-api", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "unavailable", body["kind"])

	w, _ = env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func forwardedFor(ip string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("X-Forwarded-For", ip) }
}

func TestLike_ForwardedForIgnoredFromUntrustedPeer(t *testing.T) {
	env := newTestEnv(t, controllers.AdminConfig{})
	a, err := env.store.Create(context.Background(), services.NewArtwork{Prompt: "fire horse", ImageURL: "https://x/y.png"})
	require.NoError(t, err)
	path := fmt.Sprintf("/api/artwork/%d/like", a.ID)

	_, body := env.do(t, http.MethodPost, path, nil, fromIP("203.0.113.9"), forwardedFor("1.1.1.1"))
	assert.Equal(t, true, body["success"])

	// 换一个伪造的转发地址，仍然是同一个投票人
	_, body = env.do(t, http.MethodPost, path, nil, fromIP("203.0.113.9"), forwardedFor("2.2.2.2"))
	assert.Equal(t, false, body["success"])
	assert.EqualValues(t, 1, body["likes"])
}

func TestLike_ForwardedForFromTrustedProxy(t *testing.T) {
	env := newTestEnvBehindProxies(t, []string{"10.0.0.0/8"}, controllers.AdminConfig{})
	a, err := env.store.Create(context.Background(), services.NewArtwork{Prompt: "fire horse", ImageURL: "https://x/y.png"})
	require.NoError(t, err)
	path := fmt.Sprintf("/api/artwork/%d/like", a.ID)

	_, body := env.do(t, http.MethodPost, path, nil, fromIP("10.0.0.2"), forwardedFor("198.51.100.1"))
	assert.Equal(t, true, body["success"])
	_, body = env.do(t, http.MethodPost, path, nil, fromIP("10.0.0.2"), forwardedFor("198.51.100.2"))
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["likes"])
}

func TestGenerate_LongUserAgentAndStyle(t *testing.T) {
	env := newTestEnv(t, controllers.AdminConfig{})

	w, body := env.do(t, http.MethodPost, "/api/generate", gin.H{
		"prompt":     "golden horse",
		"style":      strings.Repeat("s", 100),
		"user_agent": strings.Repeat("a", 600),
	})
	require.Equal(t, http.StatusOK, w.Code)
	artwork := body["artwork"].(map[string]any)
	assert.Len(t, artwork["user_agent"], 512)
	assert.Len(t, artwork["style"], 32)
}
