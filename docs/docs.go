// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in as the site administrator",
                "parameters": [
                    {"description": "Login credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "End the current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/verify": {
            "get": {
                "security": [{"SessionCookie": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Return the user of the current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/content/{page}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Get the draft content of a page",
                "parameters": [
                    {"type": "string", "description": "Page name", "name": "page", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Create or replace the draft content of a page",
                "parameters": [
                    {"type": "string", "description": "Page name", "name": "page", "in": "path", "required": true},
                    {"description": "Page content", "name": "request", "in": "body", "required": true, "schema": {"type": "object", "additionalProperties": true}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SaveResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/init-content/{page}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Seed the draft of a page from the live site",
                "parameters": [
                    {"type": "string", "description": "Page name", "name": "page", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.InitResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/published/{page}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Get the published content of a page",
                "parameters": [
                    {"type": "string", "description": "Page name", "name": "page", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/backup/{page}": {
            "post": {
                "security": [{"SessionCookie": []}],
                "produces": ["application/json"],
                "tags": ["versioning"],
                "summary": "Snapshot the current published content of a page",
                "parameters": [
                    {"type": "string", "description": "Page name", "name": "page", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.BackupResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/publish/{page}": {
            "post": {
                "security": [{"SessionCookie": []}],
                "description": "Publishes the request body, or the current draft when the body is empty.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["versioning"],
                "summary": "Publish a page, backing up the previous published content",
                "parameters": [
                    {"type": "string", "description": "Page name", "name": "page", "in": "path", "required": true},
                    {"description": "Content to publish", "name": "request", "in": "body", "schema": {"type": "object", "additionalProperties": true}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AckResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/undo/{page}": {
            "post": {
                "security": [{"SessionCookie": []}],
                "produces": ["application/json"],
                "tags": ["versioning"],
                "summary": "Restore published content from the latest backup",
                "parameters": [
                    {"type": "string", "description": "Page name", "name": "page", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AckResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/history/{page}": {
            "get": {
                "security": [{"SessionCookie": []}],
                "produces": ["application/json"],
                "tags": ["versioning"],
                "summary": "List recent backups and publish history of a page",
                "parameters": [
                    {"type": "string", "description": "Page name", "name": "page", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.History"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "handler.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "handler.AuthResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "user": {"$ref": "#/definitions/model.User"}
            }
        },
        "handler.SaveResponse": {
            "type": "object",
            "properties": {
                "lastUpdated": {"type": "string"},
                "page": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "handler.InitResponse": {
            "type": "object",
            "properties": {
                "alreadyExists": {"type": "boolean"},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "handler.BackupResponse": {
            "type": "object",
            "properties": {
                "backup": {"$ref": "#/definitions/model.BackupRecord"},
                "success": {"type": "boolean"}
            }
        },
        "handler.AckResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "result": {"$ref": "#/definitions/service.Ack"},
                "success": {"type": "boolean"}
            }
        },
        "model.User": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "id": {"type": "integer"},
                "role": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "model.BackupRecord": {
            "type": "object",
            "properties": {
                "backup_name": {"type": "string"},
                "backup_type": {"type": "string"},
                "content_data": {"type": "object", "additionalProperties": true},
                "created_at": {"type": "string"},
                "created_by": {"type": "string"},
                "id": {"type": "string"},
                "page_name": {"type": "string"}
            }
        },
        "model.PublishHistory": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "created_at": {"type": "string"},
                "created_by": {"type": "string"},
                "id": {"type": "string"},
                "message": {"type": "string"},
                "page_name": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "service.Ack": {
            "type": "object",
            "properties": {
                "at": {"type": "string"},
                "backupName": {"type": "string"},
                "page": {"type": "string"}
            }
        },
        "service.History": {
            "type": "object",
            "properties": {
                "backups": {"type": "array", "items": {"$ref": "#/definitions/model.BackupRecord"}},
                "history": {"type": "array", "items": {"$ref": "#/definitions/model.PublishHistory"}}
            }
        }
    },
    "securityDefinitions": {
        "SessionCookie": {
            "type": "apiKey",
            "name": "session",
            "in": "cookie"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "Site CMS API",
	Description:      "Draft and published page content with backups, undo and a publish audit log.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
