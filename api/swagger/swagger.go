package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Rehberlik API",
        "description": "Appointment scheduling service for school guidance counselors",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Appointments", "description": "Appointment lifecycle and closure workflow"},
        {"name": "Tasks", "description": "Per-appointment checklist items"},
        {"name": "Activities", "description": "Class guidance activities"},
        {"name": "Calendar", "description": "Aggregated day/week/month views"},
        {"name": "Roster", "description": "Class roster and teacher directory"}
    ],
    "paths": {
        "/appointments": {
            "get": {
                "tags": ["Appointments"],
                "summary": "List appointments",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "participant_type", "in": "query", "type": "string"},
                    {"name": "priority", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Appointments"],
                "summary": "Schedule an appointment",
                "parameters": [
                    {"name": "Idempotency-Key", "in": "header", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAppointmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"},
                    "409": {"description": "Slot conflict or duplicate submission"}
                }
            }
        },
        "/appointments/{id}": {
            "get": {
                "tags": ["Appointments"],
                "summary": "Get appointment detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Appointments"],
                "summary": "Edit a planned appointment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAppointmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Appointment already closed"},
                    "412": {"description": "Stale version"}
                }
            },
            "delete": {
                "tags": ["Appointments"],
                "summary": "Delete an appointment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/appointments/{id}/close": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Close an appointment with its outcome",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CloseAppointmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Closed"},
                    "409": {"description": "Appointment already closed"},
                    "412": {"description": "Stale version"}
                }
            }
        },
        "/appointments/{id}/follow-up": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Schedule a follow-up appointment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Follow-up created"}
                }
            }
        },
        "/appointment-tasks": {
            "get": {
                "tags": ["Tasks"],
                "summary": "List appointment tasks",
                "parameters": [
                    {"name": "appointment_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Tasks"],
                "summary": "Create a task",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTaskRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/appointment-tasks/{id}": {
            "patch": {
                "tags": ["Tasks"],
                "summary": "Toggle task completion",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "delete": {
                "tags": ["Tasks"],
                "summary": "Delete a task",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/class-activities": {
            "get": {
                "tags": ["Activities"],
                "summary": "List class activities in a date range",
                "parameters": [
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Activities"],
                "summary": "Create a class activity",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/calendar": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Aggregated calendar view",
                "parameters": [
                    {"name": "view", "in": "query", "type": "string"},
                    {"name": "anchor", "in": "query", "type": "string"},
                    {"name": "appointments", "in": "query", "type": "boolean"},
                    {"name": "activities", "in": "query", "type": "boolean"},
                    {"name": "tasks", "in": "query", "type": "boolean"},
                    {"name": "follow_ups", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/calendar/events": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Events of a single date",
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/calendar/appointments": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Appointments of one calendar date",
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "participant_type", "in": "query", "type": "string"},
                    {"name": "priority", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/classes": {
            "get": {
                "tags": ["Roster"],
                "summary": "List roster classes",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Roster"],
                "summary": "List students of a class",
                "parameters": [
                    {"name": "class", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Roster"],
                "summary": "List the teacher directory",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "CreateAppointmentRequest": {
            "type": "object",
            "properties": {
                "participant_type": {"type": "string", "enum": ["student", "parent", "teacher"]},
                "participant_name": {"type": "string"},
                "participant_class": {"type": "string"},
                "appointment_date": {"type": "string", "example": "2024-03-10"},
                "start_time": {"type": "string", "example": "09:00"},
                "duration_minutes": {"type": "integer"},
                "location": {"type": "string", "enum": ["counseling_office", "classroom", "meeting_room", "library", "online"]},
                "topic_tags": {"type": "array", "items": {"type": "string"}},
                "purpose": {"type": "string"},
                "preparation_note": {"type": "string"},
                "priority": {"type": "string", "enum": ["low", "normal", "high", "urgent"]}
            },
            "required": ["participant_type", "participant_name", "appointment_date", "start_time", "duration_minutes", "location"]
        },
        "UpdateAppointmentRequest": {
            "type": "object",
            "properties": {
                "participant_name": {"type": "string"},
                "appointment_date": {"type": "string"},
                "start_time": {"type": "string"},
                "duration_minutes": {"type": "integer"},
                "expected_version": {"type": "integer"}
            }
        },
        "CloseAppointmentRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["attended", "not_attended", "postponed", "cancelled"]},
                "outcome_summary": {"type": "string"},
                "outcome_decision": {"type": "array", "items": {"type": "string"}},
                "next_action": {"type": "string"},
                "create_follow_up": {"type": "boolean"},
                "expected_version": {"type": "integer"}
            },
            "required": ["status"]
        },
        "CreateTaskRequest": {
            "type": "object",
            "properties": {
                "appointment_id": {"type": "string"},
                "task_description": {"type": "string"},
                "due_date": {"type": "string"}
            },
            "required": ["appointment_id", "task_description"]
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
