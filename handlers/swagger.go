package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the course service.
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
    <title>coursehub: Swagger</title>
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

// OpenAPI document for the course, module and lesson endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "coursehub", "version": "v0.1.0" },
  "components": {
    "parameters": {
      "courseId": { "in": "path", "name": "courseId", "required": true, "schema": { "type": "integer", "minimum": 0 } },
      "moduleId": { "in": "path", "name": "moduleId", "required": true, "schema": { "type": "integer", "minimum": 0 } },
      "lessonId": { "in": "path", "name": "lessonId", "required": true, "schema": { "type": "integer", "minimum": 0 } },
      "page": { "in": "query", "name": "page", "schema": { "type": "integer", "default": 1 } },
      "limit": { "in": "query", "name": "limit", "schema": { "type": "integer", "default": 10, "maximum": 100 } }
    },
    "schemas": {
      "Content": { "type": "object", "required": ["type", "data"], "properties": {
        "type": { "type": "string", "enum": ["text", "video", "audio", "image", "code", "link", "quiz"] },
        "data": { "type": "string" } } },
      "Lesson": { "type": "object", "required": ["title", "description", "topics", "content"], "properties": {
        "id": { "type": "integer" }, "title": { "type": "string" }, "description": { "type": "string" },
        "topics": { "type": "array", "items": { "type": "string" } },
        "content": { "type": "array", "items": { "$ref": "#/components/schemas/Content" } } } },
      "Module": { "type": "object", "required": ["title"], "properties": {
        "id": { "type": "integer" }, "title": { "type": "string" },
        "lessons": { "type": "array", "items": { "$ref": "#/components/schemas/Lesson" } } } },
      "Course": { "type": "object", "required": ["title", "description", "modules"], "properties": {
        "id": { "type": "integer" }, "title": { "type": "string" }, "description": { "type": "string" },
        "modules": { "type": "array", "items": { "$ref": "#/components/schemas/Module" } } } },
      "Message": { "type": "object", "properties": { "message": { "type": "string" } } }
    }
  },
  "paths": {
    "/api/courses": {
      "get": { "tags": ["Courses"], "summary": "List courses (paginated)",
        "parameters": [{ "$ref": "#/components/parameters/page" }, { "$ref": "#/components/parameters/limit" }],
        "responses": { "200": { "description": "{page, limit, totalCourses, courses}" } } },
      "post": { "tags": ["Courses"], "summary": "Create a course with its modules and lessons",
        "requestBody": { "required": true, "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Course" } } } },
        "responses": { "201": { "description": "{newCourse}" }, "400": { "description": "invalid input" } } }
    },
    "/api/courses/{courseId}": {
      "parameters": [{ "$ref": "#/components/parameters/courseId" }],
      "get": { "tags": ["Courses"], "summary": "Get a course", "responses": { "200": { "description": "course" }, "404": { "description": "Course not found." } } },
      "put": { "tags": ["Courses"], "summary": "Update title and description", "responses": { "204": { "description": "updated" }, "404": { "description": "Course not found." } } },
      "delete": { "tags": ["Courses"], "summary": "Delete a course", "responses": { "200": { "description": "Deleted successfully." }, "404": { "description": "Course not found." } } }
    },
    "/api/courses/{courseId}/modules": {
      "parameters": [{ "$ref": "#/components/parameters/courseId" }],
      "get": { "tags": ["Modules"], "summary": "List a course's modules (paginated)",
        "parameters": [{ "$ref": "#/components/parameters/page" }, { "$ref": "#/components/parameters/limit" }],
        "responses": { "200": { "description": "{page, limit, totalModules, modules}" }, "404": { "description": "Course not found." } } },
      "post": { "tags": ["Modules"], "summary": "Create a module in a course",
        "requestBody": { "required": true, "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Module" } } } },
        "responses": { "201": { "description": "module" }, "400": { "description": "invalid input" }, "404": { "description": "Course not found." } } }
    },
    "/api/courses/{courseId}/modules/{moduleId}": {
      "parameters": [{ "$ref": "#/components/parameters/courseId" }, { "$ref": "#/components/parameters/moduleId" }],
      "get": { "tags": ["Modules"], "summary": "Get a module", "responses": { "200": { "description": "module" }, "404": { "description": "course or module not found" } } },
      "put": { "tags": ["Modules"], "summary": "Update a module", "responses": { "200": { "description": "{module}" }, "404": { "description": "course or module not found" } } },
      "delete": { "tags": ["Modules"], "summary": "Delete a module", "responses": { "200": { "description": "Deleted successfully." }, "404": { "description": "course or module not found" } } }
    },
    "/api/courses/{courseId}/modules/{moduleId}/lessons": {
      "parameters": [{ "$ref": "#/components/parameters/courseId" }, { "$ref": "#/components/parameters/moduleId" }],
      "get": { "tags": ["Lessons"], "summary": "List a module's lessons (paginated)",
        "parameters": [{ "$ref": "#/components/parameters/page" }, { "$ref": "#/components/parameters/limit" }],
        "responses": { "200": { "description": "{page, limit, totalLessons, lessons}" }, "404": { "description": "course or module not found" } } },
      "post": { "tags": ["Lessons"], "summary": "Create a lesson in a module",
        "requestBody": { "required": true, "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Lesson" } } } },
        "responses": { "201": { "description": "lesson" }, "400": { "description": "invalid input" }, "404": { "description": "course or module not found" } } }
    },
    "/api/courses/{courseId}/modules/{moduleId}/lessons/{lessonId}": {
      "parameters": [{ "$ref": "#/components/parameters/courseId" }, { "$ref": "#/components/parameters/moduleId" }, { "$ref": "#/components/parameters/lessonId" }],
      "get": { "tags": ["Lessons"], "summary": "Get a lesson", "responses": { "200": { "description": "lesson" }, "404": { "description": "course, module or lesson not found" } } },
      "put": { "tags": ["Lessons"], "summary": "Update a lesson", "responses": { "204": { "description": "updated" }, "404": { "description": "course, module or lesson not found" } } },
      "delete": { "tags": ["Lessons"], "summary": "Delete a lesson", "responses": { "200": { "description": "Deleted successfully." }, "404": { "description": "course, module or lesson not found" } } }
    },
    "/api/admin/snapshots": {
      "post": { "tags": ["Admin"], "summary": "Export all collections to object storage", "responses": { "201": { "description": "{keys}" }, "500": { "description": "export failed" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
