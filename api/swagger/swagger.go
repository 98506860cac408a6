package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetabler API",
        "description": "Constraint-based timetable solver for school terms",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Solver", "description": "Timetable solver job control"}
    ],
    "paths": {
        "/terms/{termId}/schedule/solve": {
            "post": {
                "tags": ["Solver"],
                "summary": "Start solving the timetable for a term",
                "parameters": [
                    {"name": "termId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "No lessons to schedule"},
                    "404": {"description": "Term not found"},
                    "409": {"description": "Already solving"}
                }
            }
        },
        "/terms/{termId}/schedule/status": {
            "get": {
                "tags": ["Solver"],
                "summary": "Get solver job status and best score",
                "parameters": [
                    {"name": "termId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/terms/{termId}/schedule/stop": {
            "post": {
                "tags": ["Solver"],
                "summary": "Request cooperative termination of a running solve",
                "parameters": [
                    {"name": "termId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Term not found"}
                }
            }
        },
        "/terms/{termId}/schedule/solution": {
            "get": {
                "tags": ["Solver"],
                "summary": "Get the cached best solution's assignments",
                "parameters": [
                    {"name": "termId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "No solution available"},
                    "404": {"description": "Term not found"}
                }
            }
        },
        "/terms/{termId}/schedule/apply": {
            "post": {
                "tags": ["Solver"],
                "summary": "Persist the cached best solution's assignments",
                "parameters": [
                    {"name": "termId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "No solution available"},
                    "404": {"description": "Term not found"},
                    "409": {"description": "Still solving"}
                }
            }
        }
    },
    "definitions": {
        "Score": {
            "type": "object",
            "properties": {
                "hard": {"type": "integer"},
                "soft": {"type": "integer"}
            }
        },
        "Assignment": {
            "type": "object",
            "properties": {
                "lessonId": {"type": "string"},
                "timeSlotId": {"type": "string"},
                "roomId": {"type": "string"}
            }
        },
        "SolutionResponse": {
            "type": "object",
            "properties": {
                "termId": {"type": "string"},
                "score": {"$ref": "#/definitions/Score"},
                "feasible": {"type": "boolean"},
                "assignments": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/Assignment"}
                },
                "updatedAt": {"type": "string"}
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
