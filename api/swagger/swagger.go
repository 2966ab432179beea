package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Gardenia 2025 API",
        "description": "Festival registration, credential verification and gate entry log",
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
        {"name": "Authentication", "description": "Staff login and token rotation"},
        {"name": "Events", "description": "Public event catalog"},
        {"name": "Registrations", "description": "Registration form and admin review"},
        {"name": "Gate", "description": "Credential verification and entry decisions"},
        {"name": "Tickets", "description": "Rendered ticket documents"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate staff",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "Tokens issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List events",
                "parameters": [
                    {"in": "query", "name": "category", "type": "string"},
                    {"in": "query", "name": "department", "type": "string"},
                    {"in": "query", "name": "open", "type": "boolean"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/registrations": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Register for an event",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SubmitRegistrationRequest"}}],
                "responses": {
                    "201": {"description": "Registration id and QR payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "First failing field", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown event", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Registrations"],
                "summary": "List registrations",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "eventId", "type": "string"},
                    {"in": "query", "name": "status", "type": "string", "enum": ["PENDING", "APPROVED", "REJECTED"]},
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "pageSize", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/registrations/validate/{regId}": {
            "get": {
                "tags": ["Gate"],
                "summary": "Validate a scanned credential",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "regId", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Registration view", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Malformed payload, rescan", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not a valid credential for this event", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/entry-decisions": {
            "post": {
                "tags": ["Gate"],
                "summary": "Record an entry decision",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RecordDecisionRequest"}}],
                "responses": {
                    "201": {"description": "Decision appended", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown registration", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tickets/{token}": {
            "get": {
                "tags": ["Tickets"],
                "summary": "Download a ticket",
                "produces": ["application/pdf"],
                "parameters": [{"in": "path", "name": "token", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Ticket PDF"},
                    "403": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Registration and gate summary",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "eventId", "type": "string"}, {"in": "query", "name": "refresh", "type": "boolean"}],
                "responses": {
                    "200": {"description": "Summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "Person": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "registerNumber": {"type": "string"},
                "collegeName": {"type": "string"},
                "collegeRegisterNumber": {"type": "string"}
            }
        },
        "SubmitRegistrationRequest": {
            "type": "object",
            "required": ["eventId", "leader"],
            "properties": {
                "eventId": {"type": "string"},
                "isGardenCityStudent": {"type": "boolean"},
                "leader": {"$ref": "#/definitions/Person"},
                "teamMembers": {"type": "array", "items": {"$ref": "#/definitions/Person"}}
            }
        },
        "RecordDecisionRequest": {
            "type": "object",
            "required": ["registrationId", "action", "scannedAt"],
            "properties": {
                "registrationId": {"type": "string"},
                "eventId": {"type": "string"},
                "action": {"type": "string", "enum": ["ALLOWED", "DENIED"]},
                "reason": {"type": "string"},
                "scannedAt": {"type": "string", "format": "date-time"}
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
                "field": {"type": "string"},
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
