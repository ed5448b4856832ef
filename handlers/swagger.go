package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the state gateway.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>neurotrade-state-gateway — Swagger</title>
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

// Minimal OpenAPI document describing the state gateway endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "neurotrade-state-gateway", "version": "v0.1.0" },
  "paths": {
    "/api/v1/state": {
      "get": { "summary": "Load the current trading state", "responses": { "200": { "description": "current state document" }, "404": { "description": "no state saved yet" }, "503": { "description": "gateway not initialized" } } },
      "put": { "summary": "Merge fields into the current trading state and append a history snapshot", "requestBody": { "content": { "application/json": { "schema": {"type":"object","additionalProperties":true}}}}, "responses": { "200": { "description": "saved" }, "502": { "description": "backend write failed" } } }
    },
    "/api/v1/models/{id}": {
      "get": { "summary": "Load neural model metadata", "responses": { "200": { "description": "model metadata" }, "404": { "description": "unknown model" } } },
      "put": { "summary": "Merge neural model metadata", "responses": { "200": { "description": "saved" } } }
    },
    "/api/v1/models/{id}/artifact": {
      "post": { "summary": "Upload model weights to object storage", "responses": { "201": { "description": "uploaded" }, "503": { "description": "artifact storage not configured" } } },
      "get": { "summary": "Presigned download URL for model weights", "responses": { "200": { "description": "url" } } }
    },
    "/api/v1/models/{id}/artifact/download": {
      "get": { "summary": "Stream model weights from object storage", "responses": { "200": { "description": "artifact bytes" }, "404": { "description": "no artifact uploaded" } } }
    },
    "/api/v1/anomalies": {
      "post": { "summary": "Append an anomaly log entry", "responses": { "201": { "description": "logged" } } }
    },
    "/api/v1/healing-actions": {
      "post": { "summary": "Append a self-healing action entry", "responses": { "201": { "description": "logged" } } }
    },
    "/api/v1/metrics-report": {
      "post": { "summary": "Append a performance metrics report", "responses": { "201": { "description": "logged" } } }
    },
    "/health": { "get": { "summary": "Liveness probe", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness probe with per-dependency detail", "responses": { "200": { "description": "ready" }, "503": { "description": "document store unavailable" } } } }
  }
}`
