package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Branch Roster API",
        "description": "Branch registry, weekday schedule and weekly teacher assignments",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Branches", "description": "Branch registry"},
        {"name": "Branch Schedules", "description": "Branch to weekday placement"},
        {"name": "Teachers", "description": "Teacher profiles and weekly assignments"},
        {"name": "Roster", "description": "Derived roster views"},
        {"name": "Time Slots", "description": "Teacher lesson windows"},
        {"name": "Exports", "description": "Asynchronous roster exports"}
    ],
    "paths": {
        "/branches": {
            "get": {
                "tags": ["Branches"],
                "summary": "List branches sorted by name",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Branches"],
                "summary": "Add branch",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BranchRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/branches/available": {
            "get": {
                "tags": ["Branches"],
                "summary": "Branches not placed on any weekday",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/branches/{id}": {
            "get": {
                "tags": ["Branches"],
                "summary": "Get branch",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Branches"],
                "summary": "Update branch",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BranchRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Branches"],
                "summary": "Remove branch",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Removed"},
                    "409": {"description": "Branch is still scheduled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/branch-schedules": {
            "get": {
                "tags": ["Branch Schedules"],
                "summary": "List branch placements",
                "parameters": [{"name": "day", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Branch Schedules"],
                "summary": "Place branch on a weekday",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignBranchDayRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Branch already scheduled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/branch-schedules/{id}": {
            "delete": {
                "tags": ["Branch Schedules"],
                "summary": "Remove branch placement",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Removed"}}
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List teachers",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Teachers"],
                "summary": "Create teacher",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeacherRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/teachers/{id}": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Get teacher with ledger rows",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Teachers"],
                "summary": "Update teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeacherRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Teachers"],
                "summary": "Remove teacher and their assignments",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Removed"}}
            }
        },
        "/teachers/{id}/assignments": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List weekly assignments for a teacher",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Teachers"],
                "summary": "Assign teacher to a branch for a weekday",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeacherAssignmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot taken or teacher booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Teachers"],
                "summary": "Remove one weekly assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "branchId", "in": "query", "type": "string"},
                    {"name": "dayOfWeek", "in": "query", "type": "string"},
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {"204": {"description": "Removed"}}
            }
        },
        "/teachers/{id}/assignments/all": {
            "delete": {
                "tags": ["Teachers"],
                "summary": "Remove every assignment of a teacher",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/roster/grid": {
            "get": {
                "tags": ["Roster"],
                "summary": "Weekly grid of branches per weekday",
                "parameters": [
                    {"name": "week", "in": "query", "type": "string"},
                    {"name": "searchType", "in": "query", "type": "string", "enum": ["branch", "day", "teacher"]},
                    {"name": "q", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/roster/available-branches": {
            "get": {
                "tags": ["Roster"],
                "summary": "Branches on a weekday without a teacher",
                "parameters": [
                    {"name": "day", "in": "query", "required": true, "type": "string"},
                    {"name": "week", "in": "query", "type": "string"},
                    {"name": "q", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/roster/available-teachers": {
            "get": {
                "tags": ["Roster"],
                "summary": "Teachers free on a weekday",
                "parameters": [
                    {"name": "day", "in": "query", "required": true, "type": "string"},
                    {"name": "week", "in": "query", "type": "string"},
                    {"name": "q", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/roster/conflicts": {
            "get": {
                "tags": ["Roster"],
                "summary": "Ledger rows that break the schedule",
                "parameters": [{"name": "week", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/roster/overview": {
            "get": {
                "tags": ["Roster"],
                "summary": "Per-day coverage counts",
                "parameters": [{"name": "week", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/roster/assignment": {
            "get": {
                "tags": ["Roster"],
                "summary": "Assignment for a branch, weekday and week",
                "parameters": [
                    {"name": "branchId", "in": "query", "required": true, "type": "string"},
                    {"name": "day", "in": "query", "required": true, "type": "string"},
                    {"name": "week", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/time-slots": {
            "get": {
                "tags": ["Time Slots"],
                "summary": "List time slots",
                "parameters": [{"name": "teacherId", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Time Slots"],
                "summary": "Create time slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TimeSlotRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/time-slots/{id}": {
            "put": {
                "tags": ["Time Slots"],
                "summary": "Update time slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TimeSlotRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Time Slots"],
                "summary": "Delete time slot",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Removed"}}
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a roster export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Exports disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "produces": ["text/csv", "application/pdf"],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "BranchRequest": {
            "type": "object",
            "required": ["name", "color"],
            "properties": {
                "name": {"type": "string"},
                "color": {"type": "string"}
            }
        },
        "AssignBranchDayRequest": {
            "type": "object",
            "required": ["branchId", "dayOfWeek"],
            "properties": {
                "branchId": {"type": "string"},
                "dayOfWeek": {"type": "string", "enum": ["Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"]}
            }
        },
        "TeacherRequest": {
            "type": "object",
            "required": ["name", "gender"],
            "properties": {
                "name": {"type": "string"},
                "mobile": {"type": "string"},
                "gender": {"type": "string", "enum": ["male", "female", "other"]},
                "description": {"type": "string"},
                "specialties": {"type": "array", "items": {"type": "string"}},
                "workingHoursStart": {"type": "string", "example": "09:00"},
                "workingHoursEnd": {"type": "string", "example": "17:00"},
                "maxHoursPerDay": {"type": "integer"},
                "maxHoursPerWeek": {"type": "integer"},
                "availableDays": {"type": "array", "items": {"type": "string"}}
            }
        },
        "TeacherAssignmentRequest": {
            "type": "object",
            "required": ["branchId", "dayOfWeek"],
            "properties": {
                "branchId": {"type": "string"},
                "dayOfWeek": {"type": "string"},
                "date": {"type": "string", "format": "date"}
            }
        },
        "TimeSlotRequest": {
            "type": "object",
            "required": ["teacherId", "subject", "startsAt", "endsAt"],
            "properties": {
                "teacherId": {"type": "string"},
                "branchId": {"type": "string"},
                "subject": {"type": "string"},
                "room": {"type": "string"},
                "startsAt": {"type": "string", "format": "date-time"},
                "endsAt": {"type": "string", "format": "date-time"},
                "isRecurring": {"type": "boolean"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "week": {"type": "string", "format": "date"}
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
