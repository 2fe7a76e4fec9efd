package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers the API docs.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
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
    <title>workexp-api - Swagger</title>
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
  "info": { "title": "workexp-api", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Experience": {
        "type": "object",
        "required": ["company", "position", "startDate"],
        "properties": {
          "_id": { "type": "string" },
          "company": { "type": "string" },
          "position": { "type": "string" },
          "location": { "type": "string" },
          "startDate": { "type": "string", "format": "date" },
          "endDate": { "type": "string", "format": "date", "nullable": true },
          "current": { "type": "boolean" },
          "description": { "type": "string" },
          "skills": { "type": "array", "items": { "type": "string" } },
          "archived": { "type": "boolean" },
          "createdAt": { "type": "string", "format": "date-time" },
          "updatedAt": { "type": "string", "format": "date-time" }
        }
      },
      "Project": {
        "type": "object",
        "required": ["title", "description"],
        "properties": {
          "_id": { "type": "string" },
          "title": { "type": "string" },
          "description": { "type": "string" },
          "technologies": { "type": "array", "items": { "type": "string" } },
          "featured": { "type": "boolean" }
        }
      },
      "Errors": {
        "type": "object",
        "properties": { "errors": { "type": "array", "items": { "type": "object", "properties": { "field": { "type": "string" }, "message": { "type": "string" } } } } }
      }
    }
  },
  "paths": {
    "/api/experiences": {
      "get": {
        "summary": "List experiences",
        "parameters": [
          { "name": "company", "in": "query", "schema": { "type": "string" } },
          { "name": "position", "in": "query", "schema": { "type": "string" } },
          { "name": "q", "in": "query", "schema": { "type": "string" } },
          { "name": "archived", "in": "query", "schema": { "type": "boolean" } },
          { "name": "sort", "in": "query", "schema": { "type": "string", "default": "-startDate" } },
          { "name": "page", "in": "query", "schema": { "type": "integer", "minimum": 1 } },
          { "name": "limit", "in": "query", "schema": { "type": "integer", "minimum": 1, "maximum": 100 } }
        ],
        "responses": { "200": { "description": "experiences; X-Total-Count when paginated" }, "400": { "description": "bad query" } }
      },
      "post": {
        "summary": "Create experience",
        "security": [{ "bearer": [] }],
        "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Experience" } } } },
        "responses": { "201": { "description": "created" }, "400": { "description": "validation failed" } }
      },
      "delete": {
        "summary": "Delete every experience (requires confirm=yes)",
        "security": [{ "bearer": [] }],
        "parameters": [{ "name": "confirm", "in": "query", "required": true, "schema": { "type": "string", "enum": ["yes"] } }],
        "responses": { "200": { "description": "deleted" }, "400": { "description": "missing confirmation" } }
      }
    },
    "/api/experiences/skills": {
      "get": { "summary": "Skill usage counts", "responses": { "200": { "description": "skill counts" } } }
    },
    "/api/experiences/{id}": {
      "get": { "summary": "Get experience", "responses": { "200": { "description": "experience" }, "400": { "description": "invalid id" }, "404": { "description": "not found" } } },
      "put": { "summary": "Update experience", "security": [{ "bearer": [] }], "responses": { "200": { "description": "updated" }, "400": { "description": "validation failed" }, "404": { "description": "not found" } } },
      "delete": {
        "summary": "Delete experience, or archive it with archive=true",
        "security": [{ "bearer": [] }],
        "parameters": [{ "name": "archive", "in": "query", "schema": { "type": "boolean" } }],
        "responses": { "200": { "description": "deleted or archived" }, "404": { "description": "not found" } }
      }
    },
    "/api/projects": {
      "get": { "summary": "List projects", "parameters": [{ "name": "featured", "in": "query", "schema": { "type": "boolean" } }], "responses": { "200": { "description": "projects" } } },
      "post": { "summary": "Create project", "security": [{ "bearer": [] }], "responses": { "201": { "description": "created" }, "400": { "description": "validation failed" } } }
    },
    "/api/projects/{id}": {
      "get": { "summary": "Get project", "responses": { "200": { "description": "project" }, "404": { "description": "not found" } } },
      "put": { "summary": "Update project", "security": [{ "bearer": [] }], "responses": { "200": { "description": "updated" } } },
      "delete": { "summary": "Delete project", "security": [{ "bearer": [] }], "responses": { "200": { "description": "deleted" } } }
    },
    "/api/exports": {
      "get": { "summary": "List experience exports", "responses": { "200": { "description": "exports" } } },
      "post": { "summary": "Export every experience to object storage", "security": [{ "bearer": [] }], "responses": { "201": { "description": "export record with download URL" } } }
    },
    "/api/exports/{id}": {
      "get": { "summary": "Get export with a fresh download URL", "responses": { "200": { "description": "export" }, "404": { "description": "not found" } } }
    },
    "/auth/register": {
      "post": { "summary": "Create an account", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "201": { "description": "tokens returned" } } }
    },
    "/auth/login": {
      "post": { "summary": "Password login", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "tokens returned" }, "401": { "description": "invalid credentials" } } }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } }
    },
    "/api/me": {
      "get": { "summary": "Current user", "security": [{ "bearer": [] }], "responses": { "200": { "description": "user" }, "401": { "description": "missing or invalid token" } } }
    },
    "/health": { "get": { "summary": "Liveness check with database state", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
