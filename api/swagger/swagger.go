package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ClassSync API",
        "description": "Shared room bookings, class subjects and roving-teacher schedules for one school",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Anonymous staff sessions"},
        {"name": "Catalog", "description": "Rooms, days, periods, classes and teachers"},
        {"name": "Collections", "description": "Full snapshots and live streams"},
        {"name": "Cells", "description": "Weekly fixed bookings, subjects and teacher schedules"},
        {"name": "Reservations", "description": "Dated extra room reservations"},
        {"name": "Views", "description": "Derived weekly grids"},
        {"name": "Reports", "description": "Printable timetables"},
        {"name": "Admin", "description": "Bulk import and reset"},
        {"name": "Assistant", "description": "Timetable proposals"}
    ],
    "paths": {
        "/auth/anonymous": {
            "post": {
                "tags": ["Auth"],
                "summary": "Start an anonymous session",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/catalog": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Identifier catalog",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/collections/{collection}": {
            "get": {
                "tags": ["Collections"],
                "summary": "Current content of a collection",
                "parameters": [{"$ref": "#/parameters/Collection"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown collection", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/collections/{collection}/stream": {
            "get": {
                "tags": ["Collections"],
                "summary": "Live snapshots as server-sent events",
                "produces": ["text/event-stream"],
                "parameters": [{"$ref": "#/parameters/Collection"}],
                "responses": {"200": {"description": "snapshot and heartbeat events"}}
            }
        },
        "/fixed/{key}": {
            "put": {
                "tags": ["Cells"],
                "summary": "Set or clear a weekly cell",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "key", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CellRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Cells"],
                "summary": "Remove a weekly cell",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "key", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/subjects/{key}": {
            "put": {
                "tags": ["Cells"],
                "summary": "Set or clear a weekly cell",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "key", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CellRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Cells"],
                "summary": "Remove a weekly cell",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "key", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/teacher-schedules/{key}": {
            "put": {
                "tags": ["Cells"],
                "summary": "Set or clear a weekly cell",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "key", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CellRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Cells"],
                "summary": "Remove a weekly cell",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "key", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/reservations": {
            "get": {
                "tags": ["Reservations"],
                "summary": "Reservations grouped by room",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Reservations"],
                "summary": "Reserve a room for one period on a date",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateReservationRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "SLOT_ALREADY_RESERVED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "WEEKEND_NOT_BOOKABLE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reservations/{id}": {
            "delete": {
                "tags": ["Reservations"],
                "summary": "Cancel a reservation",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/views/rooms/{room}": {
            "get": {
                "tags": ["Views"],
                "summary": "Weekly grid of a room",
                "parameters": [
                    {"in": "path", "name": "room", "required": true, "type": "string"},
                    {"in": "query", "name": "date", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/views/classes/{class}": {
            "get": {
                "tags": ["Views"],
                "summary": "Weekly grid of a class",
                "parameters": [{"in": "path", "name": "class", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/views/teachers/{teacher}": {
            "get": {
                "tags": ["Views"],
                "summary": "Weekly grid of a roving teacher",
                "parameters": [{"in": "path", "name": "teacher", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/reports/timetable": {
            "get": {
                "tags": ["Reports"],
                "summary": "Whole-school class timetable",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]}],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/admin/import": {
            "post": {
                "tags": ["Admin"],
                "summary": "Import fixed bookings and teacher schedules from CSV",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data", "text/csv"],
                "parameters": [
                    {"in": "formData", "name": "file", "type": "file"},
                    {"in": "query", "name": "encoding", "type": "string", "enum": ["auto", "euc-kr", "utf-8"]}
                ],
                "responses": {
                    "200": {"description": "Import report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/reset": {
            "post": {
                "tags": ["Admin"],
                "summary": "Remove all timetable data",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ResetRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "CONFIRMATION_REQUIRED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assistant/generate": {
            "post": {
                "tags": ["Assistant"],
                "summary": "Propose a timetable",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/assistant/optimize": {
            "post": {
                "tags": ["Assistant"],
                "summary": "Review the current timetable",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "parameters": {
        "Collection": {
            "in": "path",
            "name": "collection",
            "required": true,
            "type": "string",
            "enum": ["fixedData", "extraRes", "classSubjects", "teacherSchedules"]
        }
    },
    "definitions": {
        "CellRequest": {
            "type": "object",
            "properties": {"value": {"type": "string"}}
        },
        "CreateReservationRequest": {
            "type": "object",
            "required": ["room", "date", "period", "className"],
            "properties": {
                "room": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "period": {"type": "string"},
                "className": {"type": "string"}
            }
        },
        "ResetRequest": {
            "type": "object",
            "properties": {
                "confirm": {"type": "boolean"},
                "pin": {"type": "string"}
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
