package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Tutoring Admin API",
        "description": "Back office for a tutoring business: calendar, availability, lessons, payments and reports.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "tags": [
        {"name": "Authentication", "description": "Login and token management"},
        {"name": "Calendar", "description": "Unified teacher calendar and batch sync"},
        {"name": "Availability", "description": "Teacher availability windows"},
        {"name": "Lessons", "description": "Lesson listings"},
        {"name": "Payments", "description": "Tuition and salary payments"},
        {"name": "Reports", "description": "Salary report, no-show credits and daily report"},
        {"name": "Exports", "description": "Lesson exports and signed downloads"},
        {"name": "Permissions", "description": "Role and menu capability matrix"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Credentials"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Load unified calendar",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CalendarLoadResponse"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/CalendarFailure"}}
                }
            }
        },
        "/calendar/sync": {
            "post": {
                "tags": ["Calendar"],
                "summary": "Apply calendar changes",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SyncRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SyncResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/CalendarFailure"}},
                    "403": {"description": "Permission denied", "schema": {"$ref": "#/definitions/CalendarFailure"}},
                    "404": {"description": "Unknown reference", "schema": {"$ref": "#/definitions/CalendarFailure"}}
                }
            }
        },
        "/calendar/events/{id}/editable": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Check whether a lesson may be edited",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/duration": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Default lesson length for a class type",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "class_type", "in": "query", "type": "string"},
                    {"name": "start", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "List availability windows",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "teacher_id", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Availability"],
                "summary": "Create availability window",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAvailabilityRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/{id}": {
            "delete": {
                "tags": ["Availability"],
                "summary": "Delete availability window",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons": {
            "get": {
                "tags": ["Lessons"],
                "summary": "List lessons",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "teacher_id", "in": "query", "type": "integer"},
                    {"name": "student_id", "in": "query", "type": "integer"},
                    {"name": "class_status", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments": {
            "get": {
                "tags": ["Payments"],
                "summary": "List payments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "integer"},
                    {"name": "teacher_id", "in": "query", "type": "integer"},
                    {"name": "kind", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Payments"],
                "summary": "Record a payment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/salary": {
            "get": {
                "tags": ["Reports"],
                "summary": "Teacher salary report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/salary/adjustments": {
            "post": {
                "tags": ["Reports"],
                "summary": "Post no-show credits for a period",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/daily": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue the daily lesson report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/DailyReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/lessons": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export lessons as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/exports/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a stored export",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/permissions": {
            "get": {
                "tags": ["Permissions"],
                "summary": "List permission rows",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Permissions"],
                "summary": "Set capabilities for a role and menu",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PermissionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Credentials": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "Rows": {
            "type": "object",
            "properties": {
                "rows": {"type": "array", "items": {"type": "object"}}
            }
        },
        "CalendarLoadResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "resources": {"$ref": "#/definitions/Rows"},
                "events": {"$ref": "#/definitions/Rows"},
                "timeRanges": {"$ref": "#/definitions/Rows"}
            }
        },
        "SyncRequest": {
            "type": "object",
            "properties": {
                "events": {
                    "type": "object",
                    "properties": {
                        "added": {"type": "array", "items": {"type": "object"}},
                        "updated": {"type": "array", "items": {"type": "object"}},
                        "removed": {"type": "array", "items": {"type": "object"}}
                    }
                },
                "assignments": {
                    "type": "object",
                    "properties": {
                        "added": {"type": "array", "items": {"type": "object"}}
                    }
                }
            }
        },
        "SyncResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "events": {"$ref": "#/definitions/Rows"},
                "assignments": {"$ref": "#/definitions/Rows"}
            }
        },
        "CalendarFailure": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"$ref": "#/definitions/APIError"}
            }
        },
        "CreateAvailabilityRequest": {
            "type": "object",
            "properties": {
                "teacher_id": {"type": "integer"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"},
                "recurrenceRule": {"type": "string"}
            }
        },
        "CreatePaymentRequest": {
            "type": "object",
            "required": ["kind", "amount_cents"],
            "properties": {
                "student_id": {"type": "integer"},
                "teacher_id": {"type": "integer"},
                "lesson_id": {"type": "integer"},
                "kind": {"type": "string", "enum": ["tuition", "salary"]},
                "amount_cents": {"type": "integer"},
                "note": {"type": "string"},
                "paid_at": {"type": "string"}
            }
        },
        "DailyReportRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"}
            }
        },
        "PermissionRequest": {
            "type": "object",
            "required": ["role", "menu_path"],
            "properties": {
                "role": {"type": "string"},
                "menu_path": {"type": "string"},
                "capabilities": {
                    "type": "object",
                    "properties": {
                        "create": {"type": "boolean"},
                        "read": {"type": "boolean"},
                        "update": {"type": "boolean"},
                        "delete": {"type": "boolean"},
                        "download": {"type": "boolean"}
                    }
                }
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
                "status": {"type": "integer"}
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
