// Package quill holds the OpenAPI description served at /swagger/.
// Regenerate with: swag init -g internal/quill/http/router.go -o api/quill --packageName quill
package quill

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/quill"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/livez": {"get": {"tags": ["Health"], "summary": "Liveness probe", "produces": ["application/json"],
            "responses": {"200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/quillsdk.HealthResponse"}}}}},
        "/readyz": {"get": {"tags": ["Health"], "summary": "Readiness probe", "produces": ["application/json"],
            "responses": {"200": {"description": "ready", "schema": {"$ref": "#/definitions/quillsdk.HealthResponse"}},
                          "503": {"description": "service not ready", "schema": {"$ref": "#/definitions/quillsdk.HealthResponse"}}}}},
        "/v1/auth/register": {"post": {"tags": ["Auth"], "summary": "Register", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/quillsdk.RegisterRequest"}}],
            "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/quillsdk.TokenResponse"}},
                          "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/quillsdk.ErrorResponse"}},
                          "409": {"description": "email already registered", "schema": {"$ref": "#/definitions/quillsdk.ErrorResponse"}}}}},
        "/v1/auth/login": {"post": {"tags": ["Auth"], "summary": "Login", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/quillsdk.LoginRequest"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/quillsdk.TokenResponse"}},
                          "401": {"description": "invalid email or password", "schema": {"$ref": "#/definitions/quillsdk.ErrorResponse"}}}}},
        "/v1/auth/refresh": {"post": {"tags": ["Auth"], "summary": "Refresh", "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "schema": {"$ref": "#/definitions/quillsdk.RefreshRequest"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/quillsdk.TokenResponse"}},
                          "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/quillsdk.ErrorResponse"}}}}},
        "/v1/auth/logout": {"post": {"tags": ["Auth"], "summary": "Logout",
            "parameters": [{"in": "body", "name": "request", "schema": {"$ref": "#/definitions/quillsdk.RefreshRequest"}}],
            "responses": {"204": {"description": "No Content"}}}},
        "/v1/users/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "Current user", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/quillsdk.UserResponse"}}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "Update profile", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/quillsdk.UpdateProfileRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/quillsdk.UserResponse"}}}}},
        "/v1/notes": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Notes"], "summary": "List notes", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/quillsdk.NoteListResponse"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Notes"], "summary": "Create note", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/quillsdk.CreateNoteRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/quillsdk.NoteResponse"}}}}},
        "/v1/notes/trash": {"get": {"security": [{"BearerAuth": []}], "tags": ["Notes"], "summary": "List trash", "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/quillsdk.NoteListResponse"}}}}},
        "/v1/notes/{noteId}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Notes"], "summary": "Get note", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "noteId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/quillsdk.NoteResponse"}}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["Notes"], "summary": "Update note", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "noteId", "in": "path", "required": true},
                               {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/quillsdk.UpdateNoteRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/quillsdk.NoteResponse"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Notes"], "summary": "Delete note permanently",
                "parameters": [{"type": "string", "name": "noteId", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}}},
        "/v1/notes/{noteId}/trash": {"post": {"security": [{"BearerAuth": []}], "tags": ["Notes"], "summary": "Move note to trash",
            "parameters": [{"type": "string", "name": "noteId", "in": "path", "required": true}],
            "responses": {"204": {"description": "No Content"}}}},
        "/v1/notes/{noteId}/restore": {"post": {"security": [{"BearerAuth": []}], "tags": ["Notes"], "summary": "Restore note from trash",
            "parameters": [{"type": "string", "name": "noteId", "in": "path", "required": true}],
            "responses": {"204": {"description": "No Content"}}}},
        "/v1/collab/invites": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Collaboration"], "summary": "Pending invites for me", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/quillsdk.InviteListResponse"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Collaboration"], "summary": "Invite a collaborator", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/quillsdk.CreateInviteRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/quillsdk.InviteResponse"}},
                              "403": {"description": "not the owner, or inviting yourself", "schema": {"$ref": "#/definitions/quillsdk.ErrorResponse"}},
                              "404": {"description": "note or invitee not found", "schema": {"$ref": "#/definitions/quillsdk.ErrorResponse"}},
                              "409": {"description": "already a collaborator or already invited", "schema": {"$ref": "#/definitions/quillsdk.ErrorResponse"}}}}},
        "/v1/collab/invites/{inviteId}/accept": {"post": {"security": [{"BearerAuth": []}], "tags": ["Collaboration"], "summary": "Accept an invite", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "inviteId", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/quillsdk.InviteResponse"}},
                          "409": {"description": "no longer pending", "schema": {"$ref": "#/definitions/quillsdk.ErrorResponse"}}}}},
        "/v1/collab/notes/{noteId}/collaborators": {"get": {"security": [{"BearerAuth": []}], "tags": ["Collaboration"], "summary": "List collaborators", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "noteId", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/quillsdk.CollaboratorListResponse"}}}}},
        "/v1/collab/notes/{noteId}/collaborators/{userId}": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["Collaboration"], "summary": "Change a collaborator's role", "consumes": ["application/json"],
                "parameters": [{"type": "string", "name": "noteId", "in": "path", "required": true},
                               {"type": "string", "name": "userId", "in": "path", "required": true},
                               {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/quillsdk.ChangeRoleRequest"}}],
                "responses": {"204": {"description": "No Content"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Collaboration"], "summary": "Revoke a collaborator",
                "parameters": [{"type": "string", "name": "noteId", "in": "path", "required": true},
                               {"type": "string", "name": "userId", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}}},
        "/v1/collab/notes/{noteId}/invites": {"get": {"security": [{"BearerAuth": []}], "tags": ["Collaboration"], "summary": "List a note's pending invites", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "noteId", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/quillsdk.InviteListResponse"}}}}}
    },
    "definitions": {
        "quillsdk.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "error_description": {"type": "string"}}},
        "quillsdk.RegisterRequest": {"type": "object", "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}},
        "quillsdk.LoginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "quillsdk.RefreshRequest": {"type": "object", "properties": {"refresh_token": {"type": "string"}}},
        "quillsdk.TokenResponse": {"type": "object", "properties": {"access_token": {"type": "string"}, "refresh_token": {"type": "string"},
            "token_type": {"type": "string"}, "expires_in": {"type": "integer"}, "user": {"$ref": "#/definitions/quillsdk.UserResponse"}}},
        "quillsdk.UserResponse": {"type": "object", "properties": {"id": {"type": "string"}, "email": {"type": "string"}, "name": {"type": "string"}, "created_at": {"type": "string"}}},
        "quillsdk.UpdateProfileRequest": {"type": "object", "properties": {"name": {"type": "string"}}},
        "quillsdk.UserSummary": {"type": "object", "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "email": {"type": "string"}}},
        "quillsdk.CreateNoteRequest": {"type": "object", "properties": {"title": {"type": "string"}, "content": {"type": "string"}}},
        "quillsdk.UpdateNoteRequest": {"type": "object", "properties": {"title": {"type": "string"}, "content": {"type": "string"}, "favorite": {"type": "boolean"}}},
        "quillsdk.NoteResponse": {"type": "object", "properties": {"id": {"type": "string"}, "owner_id": {"type": "string"}, "title": {"type": "string"},
            "content": {"type": "string"}, "favorite": {"type": "boolean"}, "trashed": {"type": "boolean"}, "trashed_at": {"type": "string"},
            "created_at": {"type": "string"}, "updated_at": {"type": "string"}, "role": {"type": "string"}}},
        "quillsdk.NoteListResponse": {"type": "object", "properties": {"notes": {"type": "array", "items": {"$ref": "#/definitions/quillsdk.NoteResponse"}}}},
        "quillsdk.CreateInviteRequest": {"type": "object", "properties": {"note_id": {"type": "string"}, "email": {"type": "string"}, "role": {"type": "string"}}},
        "quillsdk.InviteResponse": {"type": "object", "properties": {"id": {"type": "string"}, "note_id": {"type": "string"}, "note_title": {"type": "string"},
            "sender": {"$ref": "#/definitions/quillsdk.UserSummary"}, "recipient": {"$ref": "#/definitions/quillsdk.UserSummary"},
            "role": {"type": "string"}, "status": {"type": "string"}, "sent_at": {"type": "string"}, "accepted_at": {"type": "string"}}},
        "quillsdk.InviteListResponse": {"type": "object", "properties": {"invites": {"type": "array", "items": {"$ref": "#/definitions/quillsdk.InviteResponse"}}}},
        "quillsdk.CollaboratorResponse": {"type": "object", "properties": {"user": {"$ref": "#/definitions/quillsdk.UserSummary"}, "role": {"type": "string"}}},
        "quillsdk.CollaboratorListResponse": {"type": "object", "properties": {"collaborators": {"type": "array", "items": {"$ref": "#/definitions/quillsdk.CollaboratorResponse"}}}},
        "quillsdk.ChangeRoleRequest": {"type": "object", "properties": {"role": {"type": "string"}}},
        "quillsdk.HealthChecks": {"type": "object", "properties": {"database": {"type": "string"}, "signer": {"type": "string"}, "notifier": {"type": "string"}}},
        "quillsdk.HealthResponse": {"type": "object", "properties": {"status": {"type": "string"}, "uptime": {"type": "string"},
            "version": {"type": "string"}, "checks": {"$ref": "#/definitions/quillsdk.HealthChecks"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT access token. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Quill API",
	Description:      "Collaborative notes. Notes have one owner and a list of collaborators who joined through invites.\n\nAccess tokens are EdDSA signed JWTs. Refresh tokens rotate on every use.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
