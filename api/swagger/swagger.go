package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Contest Seating API",
        "description": "Registration, room management and seat allocation for a school contest",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Registration", "description": "Public registration window and submissions"},
        {"name": "Schools", "description": "School directory and bulk import"},
        {"name": "Rooms", "description": "Exam rooms and seat grids"},
        {"name": "Allocation", "description": "Seat allocation runs"},
        {"name": "Exports", "description": "Asynchronous registration and seating exports"},
        {"name": "Configuration", "description": "Runtime settings"}
    ],
    "paths": {
        "/health": {
            "get": {"summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {"summary": "Readiness check", "responses": {"200": {"description": "Ready"}, "503": {"description": "Database unavailable"}}}
        },
        "/api/v1/status": {
            "get": {
                "tags": ["Registration"],
                "summary": "Registration window state and cycle quota",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/registrations": {
            "post": {
                "tags": ["Registration"],
                "summary": "Submit students for one school and cycle",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegistrationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"},
                    "403": {"description": "Registration closed"},
                    "404": {"description": "Unknown school"},
                    "409": {"description": "Cycle quota exceeded"}
                }
            }
        },
        "/api/v1/public/counties": {
            "get": {"tags": ["Schools"], "summary": "List counties", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/public/localities": {
            "get": {
                "tags": ["Schools"],
                "summary": "List localities of a county",
                "parameters": [{"name": "county", "in": "query", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/public/schools": {
            "get": {
                "tags": ["Schools"],
                "summary": "List schools of a locality",
                "parameters": [
                    {"name": "county", "in": "query", "type": "string", "required": true},
                    {"name": "locality", "in": "query", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/schools": {
            "get": {
                "tags": ["Schools"],
                "summary": "List schools",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "county", "in": "query", "type": "string"},
                    {"name": "locality", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Schools"],
                "summary": "Create school",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SchoolRequest"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate school"}}
            }
        },
        "/api/v1/schools/import": {
            "post": {
                "tags": ["Schools"],
                "summary": "Import schools from a CSV or XLSX file",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true},
                    {"name": "format", "in": "formData", "type": "string"}
                ],
                "responses": {"200": {"description": "Import summary"}}
            }
        },
        "/api/v1/schools/registered": {
            "get": {"tags": ["Schools"], "summary": "Schools with registered students", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/schools/{id}": {
            "get": {"tags": ["Schools"], "summary": "Get school", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["Schools"], "summary": "Update school", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SchoolRequest"}}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Schools"], "summary": "Delete school and its registrations", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/schools/{id}/students": {
            "get": {"tags": ["Registration"], "summary": "Registered students of a school", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "cycle", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/registration-students/{id}": {
            "put": {"tags": ["Registration"], "summary": "Rename a registered student", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "responses": {"204": {"description": "Renamed"}}},
            "delete": {"tags": ["Registration"], "summary": "Remove a registered student", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/statistics": {
            "get": {"tags": ["Registration"], "summary": "Registration statistics per cycle", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/rooms": {
            "get": {"tags": ["Rooms"], "summary": "List rooms", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Rooms"], "summary": "Create room", "security": [{"BearerAuth": []}], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RoomRequest"}}], "responses": {"201": {"description": "Created"}, "412": {"description": "Grid smaller than seat count"}}}
        },
        "/api/v1/rooms/defaults": {
            "post": {"tags": ["Rooms"], "summary": "Seed the default room set when no rooms exist", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/rooms/{id}": {
            "put": {"tags": ["Rooms"], "summary": "Update room", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RoomRequest"}}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Rooms"], "summary": "Delete room", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/api/v1/allocations/summary": {
            "get": {"tags": ["Allocation"], "summary": "Students per cycle against declared seats", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/allocations": {
            "post": {
                "tags": ["Allocation"],
                "summary": "Run the seat allocation",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/AllocationRequest"}}],
                "responses": {"201": {"description": "Created"}, "412": {"description": "Shortfall not confirmed"}, "422": {"description": "No students or no rooms"}}
            }
        },
        "/api/v1/allocations/latest": {
            "get": {"tags": ["Allocation"], "summary": "Latest allocation grouped by room", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "No allocation yet"}}}
        },
        "/api/v1/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue an export",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}],
                "responses": {"202": {"description": "Accepted"}}
            }
        },
        "/api/v1/exports/{id}": {
            "get": {"tags": ["Exports"], "summary": "Export job status", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/exports/download/{token}": {
            "get": {"tags": ["Exports"], "summary": "Download a finished export with a signed token", "parameters": [{"name": "token", "in": "path", "type": "string", "required": true}], "responses": {"200": {"description": "File"}, "403": {"description": "Invalid or expired token"}}}
        },
        "/api/v1/configuration": {
            "get": {"tags": ["Configuration"], "summary": "List settings", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Configuration"], "summary": "Update several settings", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/configuration/{key}": {
            "get": {"tags": ["Configuration"], "summary": "Get setting", "security": [{"BearerAuth": []}], "parameters": [{"name": "key", "in": "path", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Configuration"], "summary": "Update setting", "security": [{"BearerAuth": []}], "parameters": [{"name": "key", "in": "path", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/registration-window": {
            "put": {"tags": ["Configuration"], "summary": "Open or close registrations", "security": [{"BearerAuth": []}], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegistrationWindowRequest"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Missing open flag"}}}
        }
    },
    "definitions": {
        "RegistrationStudent": {
            "type": "object",
            "properties": {
                "fullName": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "RegistrationRequest": {
            "type": "object",
            "required": ["schoolId", "cycle", "teacherEmail", "phone", "students"],
            "properties": {
                "schoolId": {"type": "string"},
                "cycle": {"type": "string", "enum": ["4th", "5th", "6th", "7th"]},
                "teacherEmail": {"type": "string"},
                "phone": {"type": "string"},
                "students": {"type": "array", "items": {"$ref": "#/definitions/RegistrationStudent"}}
            }
        },
        "SchoolRequest": {
            "type": "object",
            "required": ["name", "county", "locality"],
            "properties": {
                "name": {"type": "string"},
                "county": {"type": "string"},
                "locality": {"type": "string"}
            }
        },
        "RoomRequest": {
            "type": "object",
            "required": ["name", "seats", "rows", "cols"],
            "properties": {
                "name": {"type": "string"},
                "floor": {"type": "string"},
                "seats": {"type": "integer"},
                "rows": {"type": "integer"},
                "cols": {"type": "integer"},
                "confirmGeometry": {"type": "boolean"}
            }
        },
        "AllocationRequest": {
            "type": "object",
            "properties": {
                "confirmShortfall": {"type": "boolean"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["type", "format"],
            "properties": {
                "type": {"type": "string", "enum": ["registrations", "seating"]},
                "format": {"type": "string", "enum": ["xlsx", "csv", "pdf"]},
                "runId": {"type": "string"},
                "county": {"type": "string"}
            }
        },
        "RegistrationWindowRequest": {
            "type": "object",
            "required": ["open"],
            "properties": {
                "open": {"type": "boolean"},
                "message": {"type": "string", "maxLength": 500}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
