package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/authorityai/authorityai/backend/go-services/internal/content/repository"
	"github.com/authorityai/authorityai/backend/go-services/internal/content/service"
	"github.com/authorityai/authorityai/backend/go-services/internal/generation"
	"github.com/authorityai/authorityai/backend/go-services/internal/interview"
	ihandler "github.com/authorityai/authorityai/backend/go-services/internal/interview/handler"
	irepo "github.com/authorityai/authorityai/backend/go-services/internal/interview/repository"
	isvc "github.com/authorityai/authorityai/backend/go-services/internal/interview/service"
	"github.com/authorityai/authorityai/backend/go-services/internal/scoring"
	"github.com/authorityai/authorityai/backend/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gen := generation.NewMockGenerator()
	interviews := isvc.NewService(irepo.NewMemoryRepo(), nil, generation.NewQuestionGenerator(gen), interview.DefaultPolicy())
	svc, err := service.NewService(repository.NewMemoryRepo(), interviews, generation.NewSynthesizer(gen), scoring.Fixed{Value: 88})
	require.NoError(t, err)

	g := gin.New()
	g.Use(func(c *gin.Context) {
		user := c.GetHeader("X-Test-User")
		if user == "" {
			user = "u1"
		}
		middleware.SetIdentity(c, middleware.Identity{UserID: user})
		c.Next()
	})
	ihandler.RegisterInterviewRoutes(g, interviews)
	RegisterContentRoutes(g, svc)
	return g
}

func do(g *gin.Engine, method, path, body, user string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func completedSession(t *testing.T, g *gin.Engine) string {
	t.Helper()
	w := do(g, http.MethodPost, "/api/interview/start", `{"topics":["AI Ethics"],"template":"opinion-piece"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["sessionId"].(string)

	w = do(g, http.MethodPost, "/api/content/generate", `{"sessionId":"`+id+`"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	for i := 0; i < 6; i++ {
		w = do(g, http.MethodPost, "/api/interview/"+id+"/respond", `{"response":"answer"}`, "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	return id
}

func TestContentHandler_GenerateAndLibrary(t *testing.T) {
	g := newRouter(t)
	sessionID := completedSession(t, g)

	w := do(g, http.MethodPost, "/api/content/generate", `{"sessionId":"`+sessionID+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	gen := decode(t, w)
	contentID := gen["contentId"].(string)
	require.NotEmpty(t, gen["title"])
	require.NotEmpty(t, gen["content"])
	require.EqualValues(t, 88, gen["viralScore"])

	w = do(g, http.MethodGet, "/api/content", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode(t, w)["content"], 1)

	w = do(g, http.MethodGet, "/api/content?status=bogus", "", "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(g, http.MethodPut, "/api/content/"+contentID, `{"title":"Edited","content":"# Hi"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Edited", decode(t, w)["title"])

	w = do(g, http.MethodGet, "/api/content/"+contentID+"/html", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "<h1>Hi</h1>")
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")

	w = do(g, http.MethodPost, "/api/content/"+contentID+"/publish", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "published", decode(t, w)["status"])

	w = do(g, http.MethodPost, "/api/content/"+contentID+"/track", `{"event":"view"}`, "reader")
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, decode(t, w)["analytics"].(map[string]interface{})["views"])

	w = do(g, http.MethodPost, "/api/content/"+contentID+"/track", `{"event":"like"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(g, http.MethodPost, "/api/content/"+contentID+"/export", "", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(g, http.MethodGet, "/api/content/"+contentID, "", "intruder")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(g, http.MethodDelete, "/api/content/"+contentID, "", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(g, http.MethodGet, "/api/content/"+contentID, "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestContentHandler_GenerateErrors(t *testing.T) {
	g := newRouter(t)
	w := do(g, http.MethodPost, "/api/content/generate", `{"sessionId":"nope"}`, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	w = do(g, http.MethodPost, "/api/content/generate", `{}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	sessionID := completedSession(t, g)
	w = do(g, http.MethodPost, "/api/content/generate", `{"sessionId":"`+sessionID+`"}`, "someone-else")
	require.Equal(t, http.StatusNotFound, w.Code)
}
