package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers the OpenAPI endpoints of the DevTree API.
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
    <title>DevTree API - Swagger</title>
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
  "info": { "title": "devtree-api", "version": "v1.0.0" },
  "servers": [ { "url": "/api" } ],
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Credentials": { "type": "object", "properties": { "name": {"type":"string"}, "email": {"type":"string"}, "password": {"type":"string"} } },
      "Tree": { "type": "object", "properties": { "name": {"type":"string"}, "description": {"type":"string"}, "isPublic": {"type":"boolean"}, "tags": {"type":"array","items":{"type":"string"}}, "nodes": {"type":"array","items":{"type":"string"}} } },
      "Node": { "type": "object", "properties": { "title": {"type":"string"}, "description": {"type":"string"}, "type": {"type":"string","enum":["idea","recurso","skill"]}, "tags": {"type":"array","items":{"type":"string"}}, "tree": {"type":"string"}, "parent": {"type":"string"} } },
      "Comment": { "type": "object", "properties": { "text": {"type":"string","minLength":2,"maxLength":1000} } }
    }
  },
  "paths": {
    "/auth/register": { "post": { "summary": "Create an account", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Credentials"} } } }, "responses": { "201": { "description": "user and token" }, "400": { "description": "user exists or invalid body" } } } },
    "/auth/login": { "post": { "summary": "Login with email and password", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Credentials"} } } }, "responses": { "200": { "description": "user and token" }, "401": { "description": "invalid credentials" } } } },
    "/auth/me": { "get": { "summary": "Current user", "security": [{"bearer":[]}], "responses": { "200": { "description": "user" }, "401": { "description": "unauthorized" } } } },
    "/auth/logout": { "post": { "summary": "Revoke the presented token", "security": [{"bearer":[]}], "responses": { "200": { "description": "logged out" } } } },
    "/trees": { "post": { "summary": "Create a tree", "security": [{"bearer":[]}], "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Tree"} } } }, "responses": { "201": { "description": "tree" }, "400": { "description": "name required" } } } },
    "/trees/mine": { "get": { "summary": "Trees of the caller", "security": [{"bearer":[]}], "responses": { "200": { "description": "trees" } } } },
    "/trees/public": { "get": { "summary": "Public trees", "responses": { "200": { "description": "tree summaries" } } } },
    "/trees/trending": { "get": { "summary": "Newest public trees", "responses": { "200": { "description": "trees" } } } },
    "/trees/search": { "get": { "summary": "Search public trees", "parameters": [{"name":"q","in":"query","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "trees" }, "400": { "description": "empty query" } } } },
    "/trees/category/{category}": { "get": { "summary": "Public trees tagged with category", "parameters": [{"name":"category","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "trees" } } } },
    "/trees/tags/all": { "get": { "summary": "Distinct tags of public trees", "responses": { "200": { "description": "tags" } } } },
    "/trees/{id}": {
      "get": { "summary": "Public tree with nodes", "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "tree" }, "403": { "description": "private" }, "404": { "description": "not found" } } },
      "put": { "summary": "Overwrite a tree", "security": [{"bearer":[]}], "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Tree"} } } }, "responses": { "200": { "description": "tree" }, "403": { "description": "not owner" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a tree and its nodes", "security": [{"bearer":[]}], "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "deleted" }, "403": { "description": "not owner" }, "404": { "description": "not found" } } }
    },
    "/trees/{id}/private": { "get": { "summary": "Owned tree of any visibility", "security": [{"bearer":[]}], "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "tree" }, "403": { "description": "not owner" }, "404": { "description": "not found" } } } },
    "/nodes": {
      "get": { "summary": "All nodes", "responses": { "200": { "description": "nodes" } } },
      "post": { "summary": "Create a node in a tree", "security": [{"bearer":[]}], "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Node"} } } }, "responses": { "201": { "description": "node" }, "400": { "description": "missing tree or invalid fields" } } }
    },
    "/nodes/{id}": {
      "get": { "summary": "Node with tree and creator", "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "node" }, "404": { "description": "not found" } } },
      "put": { "summary": "Update a node", "security": [{"bearer":[]}], "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "node" }, "403": { "description": "not creator" } } },
      "delete": { "summary": "Delete a node", "security": [{"bearer":[]}], "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "deleted" }, "403": { "description": "not creator or admin" } } }
    },
    "/nodes/tree/{treeId}": { "get": { "summary": "Caller's nodes of a tree", "security": [{"bearer":[]}], "parameters": [{"name":"treeId","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "nodes" } } } },
    "/search": { "get": { "summary": "Search trees and nodes", "parameters": [{"name":"q","in":"query","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "results" }, "400": { "description": "empty query" } } } },
    "/progress/favorites/{nodeId}": { "post": { "summary": "Add a favorite", "security": [{"bearer":[]}], "parameters": [{"name":"nodeId","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "favorites" }, "404": { "description": "node not found" } } } },
    "/progress/completed/{nodeId}": { "post": { "summary": "Mark a node completed", "security": [{"bearer":[]}], "parameters": [{"name":"nodeId","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "completed and new badges" }, "404": { "description": "node not found" } } } },
    "/progress/favorites": { "get": { "summary": "Favorite nodes", "security": [{"bearer":[]}], "responses": { "200": { "description": "nodes" } } } },
    "/progress/completed": { "get": { "summary": "Completed nodes", "security": [{"bearer":[]}], "responses": { "200": { "description": "nodes" } } } },
    "/comments/{nodeId}": { "post": { "summary": "Comment on a node of a public tree", "security": [{"bearer":[]}], "parameters": [{"name":"nodeId","in":"path","required":true,"schema":{"type":"string"}}], "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Comment"} } } }, "responses": { "201": { "description": "comment" }, "400": { "description": "invalid text" }, "403": { "description": "not commentable" } } } },
    "/comments/{nodeId}/comments": { "get": { "summary": "Comments of a node", "parameters": [{"name":"nodeId","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "comments" } } } },
    "/badges": { "get": { "summary": "Badge catalog", "responses": { "200": { "description": "badges" } } } },
    "/badges/{userId}": { "get": { "summary": "Badges of a user", "parameters": [{"name":"userId","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "user badges" } } } },
    "/badges/icons/{code}": { "get": { "summary": "Redirect to the badge icon", "parameters": [{"name":"code","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "302": { "description": "presigned icon URL" }, "404": { "description": "no icon" } } } }
  }
}`
