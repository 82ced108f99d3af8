// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/change-password": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Verify the current password and store a new one",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Change password",
                "parameters": [
                    {"type": "string", "description": "CSRF token", "name": "X-CSRF-Token", "in": "header", "required": true},
                    {"description": "Current and new password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.ChangePasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/messageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/auth/csrf": {
            "get": {
                "description": "Return the session's synchronizer token, starting a session when the request has none",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "CSRF token",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"csrf_token": {"type": "string"}}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Authenticate by email and password, set the auth cookie and rotate the CSRF session",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "User login",
                "parameters": [
                    {"type": "string", "description": "CSRF token", "name": "X-CSRF-Token", "in": "header", "required": true},
                    {"description": "Login credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "description": "Clear the auth cookie and destroy the CSRF session. The token itself stays valid until it expires.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "User logout",
                "parameters": [
                    {"type": "string", "description": "CSRF token", "name": "X-CSRF-Token", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Return the authenticated user",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"user": {"$ref": "#/definitions/models.User"}}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "description": "Create a teacher account and log it in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a teacher",
                "parameters": [
                    {"type": "string", "description": "CSRF token", "name": "X-CSRF-Token", "in": "header", "required": true},
                    {"description": "Account details", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/auth/token-status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Report whether the request's token is valid and its remaining lifetime",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Check token status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.TokenStatusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.TokenStatusResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Report 200 when every dependency answers, 503 otherwise",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/workshops": {
            "get": {
                "description": "Return the schedule filtered by the optional subject, date and teacher",
                "produces": ["application/json"],
                "tags": ["workshops"],
                "summary": "List workshops",
                "parameters": [
                    {"enum": ["Dev", "UX", "PO", "Research", "Portfolio", "Misc"], "type": "string", "description": "Subject", "name": "subject", "in": "query"},
                    {"type": "string", "description": "Date (YYYY-MM-DD)", "name": "date", "in": "query"},
                    {"type": "string", "description": "Teacher ID", "name": "teacher_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"workshops": {"type": "array", "items": {"$ref": "#/definitions/models.Workshop"}}}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Schedule a workshop taught by the authenticated teacher",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["workshops"],
                "summary": "Create workshop",
                "parameters": [
                    {"type": "string", "description": "CSRF token", "name": "X-CSRF-Token", "in": "header", "required": true},
                    {"description": "Workshop", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.CreateWorkshopRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/workshopResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/workshops/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["workshops"],
                "summary": "Get workshop",
                "parameters": [
                    {"type": "string", "description": "Workshop ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/workshopResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Apply a partial update to a workshop the caller owns",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["workshops"],
                "summary": "Update workshop",
                "parameters": [
                    {"type": "string", "description": "CSRF token", "name": "X-CSRF-Token", "in": "header", "required": true},
                    {"type": "string", "description": "Workshop ID", "name": "id", "in": "path", "required": true},
                    {"description": "Changed fields", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.UpdateWorkshopRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/workshopResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["workshops"],
                "summary": "Delete workshop",
                "parameters": [
                    {"type": "string", "description": "CSRF token", "name": "X-CSRF-Token", "in": "header", "required": true},
                    {"type": "string", "description": "Workshop ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "messageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "workshopResponse": {
            "type": "object",
            "properties": {"workshop": {"$ref": "#/definitions/models.Workshop"}}
        },
        "handlers.AuthResponse": {
            "type": "object",
            "properties": {
                "csrf_token": {"type": "string"},
                "expires_at": {"type": "string", "format": "date-time"},
                "expires_in": {"type": "integer"},
                "success": {"type": "boolean"},
                "user": {"$ref": "#/definitions/models.User"}
            }
        },
        "handlers.TokenStatusResponse": {
            "type": "object",
            "properties": {
                "ttl_seconds": {"type": "integer"},
                "valid": {"type": "boolean"}
            }
        },
        "models.User": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string", "format": "date-time"},
                "email": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["teacher", "admin"]},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "models.Workshop": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string", "format": "date-time"},
                "date": {"type": "string", "example": "2030-06-20"},
                "description": {"type": "string"},
                "id": {"type": "string"},
                "subject": {"type": "string", "enum": ["Dev", "UX", "PO", "Research", "Portfolio", "Misc"]},
                "teacher": {"$ref": "#/definitions/models.User"},
                "teacher_id": {"type": "string"},
                "title": {"type": "string"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "service.ChangePasswordRequest": {
            "type": "object",
            "required": ["current_password", "new_password"],
            "properties": {
                "current_password": {"type": "string"},
                "new_password": {"type": "string", "maxLength": 72, "minLength": 6}
            }
        },
        "service.CreateWorkshopRequest": {
            "type": "object",
            "required": ["date", "description", "subject", "title"],
            "properties": {
                "date": {"type": "string", "example": "2030-06-20"},
                "description": {"type": "string", "maxLength": 1000, "minLength": 10},
                "subject": {"type": "string", "enum": ["Dev", "UX", "PO", "Research", "Portfolio", "Misc"]},
                "title": {"type": "string", "maxLength": 255, "minLength": 3}
            }
        },
        "service.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "maxLength": 254},
                "password": {"type": "string"}
            }
        },
        "service.RegisterRequest": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {
                "email": {"type": "string", "maxLength": 254},
                "name": {"type": "string", "maxLength": 100, "minLength": 2},
                "password": {"type": "string", "maxLength": 72, "minLength": 6}
            }
        },
        "service.UpdateWorkshopRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2030-06-20"},
                "description": {"type": "string", "maxLength": 1000, "minLength": 10},
                "subject": {"type": "string", "enum": ["Dev", "UX", "PO", "Research", "Portfolio", "Misc"]},
                "title": {"type": "string", "maxLength": 255, "minLength": 3}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token. Browsers use the auth_token cookie instead.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Workshop Planner API",
	Description:      "Workshop scheduling with teacher accounts and cookie sessions",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
