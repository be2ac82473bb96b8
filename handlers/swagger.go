package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the service.
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
    <title>docgate — Swagger</title>
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

// Minimal OpenAPI document describing the document access control API.
// Every operation expects the caller identity in the X-User header.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "docgate", "version": "v0.1.0" },
  "components": {
    "parameters": {
      "xUser": { "name": "X-User", "in": "header", "required": true, "schema": {"type": "string"} }
    },
    "schemas": {
      "Grant": { "type": "object", "properties": { "username": {"type":"string"}, "permission": {"type":"string","enum":["READ","WRITE","DELETE"]} } },
      "Document": { "type": "object", "properties": { "id": {"type":"string"}, "name": {"type":"string"}, "content": {"type":"string"}, "fileType": {"type":"string"}, "createdBy": {"type":"string"}, "createdAt": {"type":"string","format":"date-time"}, "accessibleUsers": { "type":"array", "items": {"$ref":"#/components/schemas/Grant"} } } }
    }
  },
  "paths": {
    "/api/documents": {
      "post": {
        "summary": "Create a document (admin only)",
        "parameters": [ {"$ref":"#/components/parameters/xUser"} ],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["name"],"properties":{"name":{"type":"string"},"content":{"type":"string"},"fileType":{"type":"string"},"accessibleUsers":{"type":"array","items":{"$ref":"#/components/schemas/Grant"}}}}}}},
        "responses": { "201": {"description":"created"}, "400": {"description":"invalid input"}, "403": {"description":"access denied"} }
      },
      "get": {
        "summary": "List accessible documents",
        "parameters": [ {"$ref":"#/components/parameters/xUser"} ],
        "responses": { "200": {"description":"documents owned by or READ-granted to the caller; all documents for admin"} }
      }
    },
    "/api/documents/{id}": {
      "get": {
        "summary": "Fetch a document (requires READ)",
        "parameters": [ {"$ref":"#/components/parameters/xUser"}, {"name":"id","in":"path","required":true,"schema":{"type":"string"}} ],
        "responses": { "200": {"description":"ok"}, "403": {"description":"access denied"}, "404": {"description":"not found"} }
      },
      "delete": {
        "summary": "Delete a document and its grants (requires DELETE)",
        "parameters": [ {"$ref":"#/components/parameters/xUser"}, {"name":"id","in":"path","required":true,"schema":{"type":"string"}} ],
        "responses": { "204": {"description":"deleted"}, "403": {"description":"access denied"}, "404": {"description":"not found"} }
      }
    },
    "/api/documents/{id}/grant": {
      "post": {
        "summary": "Grant a permission (admin, owner, or WRITE holder)",
        "parameters": [ {"$ref":"#/components/parameters/xUser"}, {"name":"id","in":"path","required":true,"schema":{"type":"string"}} ],
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Grant"} } } },
        "responses": { "200": {"description":"updated document; re-granting an existing pair is a no-op"}, "403": {"description":"access denied"}, "404": {"description":"not found"} }
      }
    },
    "/api/documents/access-check": {
      "post": {
        "summary": "Filter document ids down to those the caller may access",
        "parameters": [ {"$ref":"#/components/parameters/xUser"} ],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["documentIds","permission"],"properties":{"documentIds":{"type":"array","items":{"type":"string"}},"permission":{"type":"string","enum":["READ","WRITE","DELETE"]}}}}}},
        "responses": { "200": {"description":"accessibleIds subset; unknown ids dropped"} }
      }
    }
  }
}`
