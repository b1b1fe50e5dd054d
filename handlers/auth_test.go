package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/authorityai/authorityai/backend/go-services/internal/config"
	"github.com/authorityai/authorityai/backend/go-services/internal/models"
	"github.com/authorityai/authorityai/backend/go-services/internal/scoring"
	"github.com/authorityai/authorityai/backend/go-services/internal/sessions"
	"github.com/authorityai/authorityai/backend/go-services/internal/tokens"
	"github.com/authorityai/authorityai/backend/go-services/internal/users"
	"github.com/authorityai/authorityai/backend/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "handler-test-secret-32-bytes-xxxxxxx"
	cfg.JWT.AccessTokenTTL = 5 * time.Minute
	cfg.JWT.RefreshTokenTTL = time.Hour
	cfg.Demo = config.DemoConfig{Enabled: true, Email: "demo@authorityai.com", Password: "demo123"}
	return cfg
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	h := NewAuthHandler(cfg,
		users.NewService(users.NewMemoryRepository(), scoring.Fixed{Value: 61}),
		sessions.NewService(sessions.NewMemoryRepository()))
	g := gin.New()
	api := g.Group("/api")
	protected := g.Group("/api", middleware.AuthMiddleware(tokens.NewJWTVerifier(cfg.JWT.Secret)))
	h.Register(api, protected)
	return g
}

func call(g *gin.Engine, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

type loginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         struct {
		ID                  string `json:"id"`
		Email               string `json:"email"`
		OnboardingCompleted bool   `json:"onboardingCompleted"`
		Profile             struct {
			AuthorityScore int `json:"authorityScore"`
		} `json:"profile"`
	} `json:"user"`
}

func decodeLogin(t *testing.T, w *httptest.ResponseRecorder) loginResponse {
	t.Helper()
	var out loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	sessions.SetBlacklistClient(nil)
	g := newAuthRouter(t)

	w := call(g, http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := decodeLogin(t, w)
	require.NotEmpty(t, reg.Token)
	require.NotEmpty(t, reg.RefreshToken)
	require.NotContains(t, w.Body.String(), "passwordHash")

	w = call(g, http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = call(g, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"wrong"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = call(g, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	login := decodeLogin(t, w)
	require.Equal(t, reg.User.ID, login.User.ID)

	w = call(g, http.MethodGet, "/api/auth/me", "", login.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ada@example.com")

	require.Equal(t, http.StatusUnauthorized, call(g, http.MethodGet, "/api/auth/me", "", "").Code)
	require.Equal(t, http.StatusForbidden, call(g, http.MethodGet, "/api/auth/me", "", "garbage").Code)
}

func TestAuth_Onboarding(t *testing.T) {
	sessions.SetBlacklistClient(nil)
	g := newAuthRouter(t)
	w := call(g, http.MethodPost, "/api/auth/register", `{"name":"Bo","email":"bo@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	tok := decodeLogin(t, w).Token

	w = call(g, http.MethodPut, "/api/auth/profile", `{"expertise":[" "]}`, tok)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = call(g, http.MethodPut, "/api/auth/profile", `{"expertise":["AI"],"voiceProfile":"direct","writingSamples":["s"]}`, tok)
	require.Equal(t, http.StatusOK, w.Code)
	out := decodeLogin(t, w)
	require.True(t, out.User.OnboardingCompleted)
	require.Equal(t, 61, out.User.Profile.AuthorityScore)
}

func TestAuth_DemoAccount(t *testing.T) {
	sessions.SetBlacklistClient(nil)
	g := newAuthRouter(t)

	w := call(g, http.MethodPost, "/api/auth/login", `{"email":"demo@authorityai.com","password":"nope"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = call(g, http.MethodPost, "/api/auth/login", `{"email":"demo@authorityai.com","password":"demo123"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	demo := decodeLogin(t, w)
	require.Equal(t, "demo", demo.User.ID)

	w = call(g, http.MethodGet, "/api/auth/me", "", demo.Token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Demo User")

	w = call(g, http.MethodPut, "/api/auth/profile", `{"expertise":["AI"]}`, demo.Token)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = call(g, http.MethodPost, "/api/auth/refresh", `{"refreshToken":"`+demo.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = call(g, http.MethodPost, "/api/auth/register", `{"name":"X","email":"demo@authorityai.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuth_RefreshRotates(t *testing.T) {
	sessions.SetBlacklistClient(nil)
	g := newAuthRouter(t)
	w := call(g, http.MethodPost, "/api/auth/register", `{"name":"Cy","email":"cy@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	first := decodeLogin(t, w)

	w = call(g, http.MethodPost, "/api/auth/refresh", `{"refreshToken":"`+first.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	second := decodeLogin(t, w)
	require.NotEmpty(t, second.Token)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	w = call(g, http.MethodPost, "/api/auth/refresh", `{"refreshToken":"`+first.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	require.Equal(t, http.StatusBadRequest, call(g, http.MethodPost, "/api/auth/refresh", `{}`, "").Code)
}

func TestAuth_LogoutBlacklistsAccessToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	sessions.SetBlacklistClient(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	defer sessions.SetBlacklistClient(nil)

	g := newAuthRouter(t)
	w := call(g, http.MethodPost, "/api/auth/register", `{"name":"Di","email":"di@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	reg := decodeLogin(t, w)

	w = call(g, http.MethodPost, "/api/auth/logout", `{"refreshToken":"`+reg.RefreshToken+`"}`, reg.Token)
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, http.StatusForbidden, call(g, http.MethodGet, "/api/auth/me", "", reg.Token).Code)
	w = call(g, http.MethodPost, "/api/auth/refresh", `{"refreshToken":"`+reg.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestParseExpFromJWT(t *testing.T) {
	tok, err := tokens.GenerateAccessToken(testConfig(), &models.User{ID: "u1"}, time.Hour)
	require.NoError(t, err)
	exp, err := parseExpFromJWT(tok)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	_, err = parseExpFromJWT("not-a-jwt")
	require.Error(t, err)
}
