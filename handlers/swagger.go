package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the extractor API.
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
    <title>idextract - Swagger</title>
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
  "info": { "title": "idextract", "version": "v0.1.0" },
  "components": {
    "schemas": {
      "Record": {
        "type": "object",
        "properties": {
          "IdentityNumber": {"type":"string","example":"1234 5678 9012"},
          "SecondaryId": {"type":"string"},
          "DOB": {"type":"string","example":"14/08/1991"},
          "Gender": {"type":"string","enum":["Male","Female"]},
          "Name": {"type":"string"},
          "Address": {"type":"string"},
          "UserId": {"type":"string"}
        }
      }
    }
  },
  "paths": {
    "/": { "get": { "summary": "Welcome message", "responses": { "200": { "description": "welcome" } } } },
    "/upload_url": {
      "post": {
        "summary": "Extract and store an identity document from front and back image URLs",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["front_url","back_url"],"properties":{"user_id":{"type":"string"},"front_url":{"type":"string"},"back_url":{"type":"string"}}}}}},
        "responses": {
          "200": { "description": "status saved or exists, with the record", "content": { "application/json": { "schema": {"type":"object","properties":{"status":{"type":"string","enum":["saved","exists"]},"data":{"$ref":"#/components/schemas/Record"}}}}}},
          "400": { "description": "invalid body or image download failed" },
          "401": { "description": "missing or invalid bearer token (when auth is enabled)" },
          "422": { "description": "essential fields missing, with missing_fields and the OCR text" },
          "429": { "description": "rate limit exceeded" },
          "500": { "description": "persistence failure" }
        }
      }
    },
    "/records/{identity}": {
      "get": {
        "summary": "Look up a stored record by identity number",
        "parameters": [{"name":"identity","in":"path","required":true,"schema":{"type":"string"}}],
        "responses": { "200": { "description": "record" }, "404": { "description": "not found" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
