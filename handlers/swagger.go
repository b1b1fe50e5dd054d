package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>authorityai-api Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "authorityai-api", "version": "v0.1.0" },
  "components": { "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer" } } },
  "paths": {
    "/api/auth/register": {
      "post": { "summary": "Create a local account", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"},"company":{"type":"string"},"role":{"type":"string"}}}}}}, "responses": { "201": { "description": "tokens and user" }, "400": { "description": "invalid input or user exists" } } }
    },
    "/api/auth/login": {
      "post": { "summary": "Log in with email and password", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "tokens and user" }, "400": { "description": "invalid credentials" } } }
    },
    "/api/auth/refresh": {
      "post": { "summary": "Rotate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new token pair" }, "401": { "description": "invalid refresh" } } }
    },
    "/api/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } }
    },
    "/api/auth/me": { "get": { "summary": "Current user", "responses": { "200": { "description": "user" } } } },
    "/api/auth/profile": { "put": { "summary": "Complete onboarding profile", "responses": { "200": { "description": "user" }, "400": { "description": "invalid profile" } } } },
    "/api/viral-velocity/topics": { "get": { "summary": "Trending topics", "parameters": [{"name":"category","in":"query","schema":{"type":"string"}}], "responses": { "200": { "description": "topics" } } } },
    "/api/interview/templates": { "get": { "summary": "Article templates", "responses": { "200": { "description": "templates" } } } },
    "/api/interview": { "get": { "summary": "List own interviews", "responses": { "200": { "description": "sessions" } } } },
    "/api/interview/start": { "post": { "summary": "Start an interview", "responses": { "201": { "description": "sessionId, first question, progress" }, "400": { "description": "invalid topics or template" } } } },
    "/api/interview/{sessionId}": { "get": { "summary": "Get an interview", "responses": { "200": { "description": "session" }, "404": { "description": "not found" } } } },
    "/api/interview/{sessionId}/respond": { "post": { "summary": "Answer the open question", "responses": { "200": { "description": "next question or completion" }, "400": { "description": "empty response or completed" }, "404": { "description": "not found" }, "409": { "description": "concurrent update" } } } },
    "/api/interview/{sessionId}/complete": { "post": { "summary": "Finish an interview early", "responses": { "200": { "description": "completed" } } } },
    "/api/content/generate": { "post": { "summary": "Generate an article from a completed interview", "responses": { "200": { "description": "contentId, title, content, viralScore" }, "400": { "description": "interview not completed" }, "404": { "description": "unknown session" } } } },
    "/api/content": { "get": { "summary": "List own content", "parameters": [{"name":"status","in":"query","schema":{"type":"string","enum":["draft","published"]}}], "responses": { "200": { "description": "content" } } } },
    "/api/content/{id}": {
      "get": { "summary": "Get content", "responses": { "200": { "description": "artifact" }, "404": { "description": "not found" } } },
      "put": { "summary": "Edit title or body", "responses": { "200": { "description": "artifact" } } },
      "delete": { "summary": "Delete content", "responses": { "204": { "description": "deleted" } } }
    },
    "/api/content/{id}/publish": { "post": { "summary": "Publish content", "responses": { "200": { "description": "artifact" } } } },
    "/api/content/{id}/track": { "post": { "summary": "Record a view, share or engagement", "responses": { "200": { "description": "analytics" } } } },
    "/api/content/{id}/html": { "get": { "summary": "Rendered HTML body", "responses": { "200": { "description": "text/html" } } } },
    "/api/content/{id}/export": { "post": { "summary": "Export markdown to object storage", "responses": { "200": { "description": "presigned url" }, "503": { "description": "storage not configured" } } } },
    "/api/analytics/dashboard": { "get": { "summary": "Content and authority analytics", "responses": { "200": { "description": "dashboard" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
