package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "BiciRed API",
        "description": "Bicycle lending backend: loans, applications and the availability scheduler",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Login, token refresh and password changes"},
        {"name": "Users", "description": "Rider and staff accounts"},
        {"name": "Bicycles", "description": "Fleet inventory"},
        {"name": "BicycleModels", "description": "Model catalog and availability"},
        {"name": "Submissions", "description": "Loan applications"},
        {"name": "Bookings", "description": "Open and closed loans"},
        {"name": "ExitForms", "description": "End-of-loan surveys"},
        {"name": "Schedule", "description": "Weekly template, date picking and agendas"},
        {"name": "KPI", "description": "Program indicators"}
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate a refresh token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/signup": {
            "post": {
                "tags": ["Users"],
                "summary": "Register a rider account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "tags": ["Users"],
                "summary": "Get the caller plus their lending state",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bicycle-models/available": {
            "get": {
                "tags": ["BicycleModels"],
                "summary": "List models with availability counts",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Apply for a bicycle model",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSubmissionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/terminate": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Close the open loan holding a bicycle",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TerminateBookingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No open loan", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Get the weekly availability template",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Schedule"],
                "summary": "Replace the weekly availability template",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Malformed grid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/available": {
            "get": {
                "tags": ["Schedule"],
                "summary": "List the instants the caller may pick",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "No template configured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/choose": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Commit one concrete instant",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChooseDateRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Invalid date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/exports": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Enqueue an agenda export",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/kpi/emissions": {
            "get": {
                "tags": ["KPI"],
                "summary": "Estimate the CO2 saved by open loans",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RefreshRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "SignupRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "name": {"type": "string"},
                "last_name": {"type": "string"},
                "rut": {"type": "string"},
                "phone": {"type": "string"},
                "commune": {"type": "string"},
                "transport": {"type": "string"}
            },
            "required": ["email", "password", "name", "last_name"]
        },
        "CreateSubmissionRequest": {
            "type": "object",
            "properties": {
                "bicycle_model_id": {"type": "string"}
            },
            "required": ["bicycle_model_id"]
        },
        "TerminateBookingRequest": {
            "type": "object",
            "properties": {
                "qr_code": {"type": "string"}
            },
            "required": ["qr_code"]
        },
        "UpdateScheduleRequest": {
            "type": "object",
            "properties": {
                "schedule": {
                    "type": "array",
                    "items": {
                        "type": "array",
                        "items": {"type": "boolean"}
                    }
                }
            },
            "required": ["schedule"]
        },
        "ChooseDateRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"}
            },
            "required": ["date"]
        },
        "CreateExportRequest": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["pickups", "returns"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "year": {"type": "integer"},
                "month": {"type": "integer"}
            },
            "required": ["kind", "format", "year", "month"]
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
