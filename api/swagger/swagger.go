package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Result Portal API",
        "description": "Role-based academic result management for Nigerian secondary schools",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication and session management"},
        {"name": "Terms", "description": "Academic terms and term locking"},
        {"name": "Grading", "description": "Grading system configuration"},
        {"name": "Results", "description": "Subject result entry and submission"},
        {"name": "Summaries", "description": "Term summaries and rankings"},
        {"name": "Reports", "description": "Report card generation"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange a refresh token for a new token pair",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke the active refresh token",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Auth"],
                "summary": "Change the current user's password",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/terms": {
            "get": {
                "tags": ["Terms"],
                "summary": "List terms",
                "parameters": [
                    {"name": "sessionId", "in": "query", "type": "string"},
                    {"name": "current", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/terms/{id}": {
            "get": {
                "tags": ["Terms"],
                "summary": "Fetch one term",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/terms/{id}/lock": {
            "post": {
                "tags": ["Terms"],
                "summary": "Lock a term against result changes",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/terms/{id}/unlock": {
            "post": {
                "tags": ["Terms"],
                "summary": "Reopen a locked term",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grading-systems": {
            "get": {
                "tags": ["Grading"],
                "summary": "List the school's grading systems",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Grading"],
                "summary": "Create a grading system",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateGradingSystemRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid scale"}
                }
            }
        },
        "/grading-systems/{id}/default": {
            "post": {
                "tags": ["Grading"],
                "summary": "Promote a grading system to the school default",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/grading-systems/active-scale": {
            "get": {
                "tags": ["Grading"],
                "summary": "Show the grade scale in force for the school",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/results": {
            "get": {
                "tags": ["Results"],
                "summary": "List subject results",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "subjectId", "in": "query", "type": "string"},
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "termId", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Results"],
                "summary": "Record one student's subject scores",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordResultRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Score out of range"},
                    "423": {"description": "Term is locked"}
                }
            }
        },
        "/results/{id}": {
            "get": {
                "tags": ["Results"],
                "summary": "Fetch one subject result",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/results/batch": {
            "post": {
                "tags": ["Results"],
                "summary": "Record scores for many students in one call",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BatchRecordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "423": {"description": "Term is locked"}
                }
            }
        },
        "/results/submit": {
            "post": {
                "tags": ["Results"],
                "summary": "Submit a cohort's results for summary inclusion",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitResultsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "423": {"description": "Term is locked"}
                }
            }
        },
        "/summaries/students/{studentId}/terms/{termId}": {
            "get": {
                "tags": ["Summaries"],
                "summary": "Fetch a student's term result",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "termId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No submitted results for the term"}
                }
            }
        },
        "/summaries/students/{studentId}/terms/{termId}/remarks": {
            "patch": {
                "tags": ["Summaries"],
                "summary": "Update staff remarks on a term summary",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "termId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SummaryRemarksUpdate"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/summaries/classes/{classId}/terms/{termId}": {
            "get": {
                "tags": ["Summaries"],
                "summary": "List a class's term summaries",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "termId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/summaries/classes/{classId}/terms/{termId}/recompute": {
            "post": {
                "tags": ["Summaries"],
                "summary": "Recompute a class's term summaries",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "termId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Recompute already in progress"}
                }
            }
        },
        "/reports/students/{studentId}/terms/{termId}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download one student's report card PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "termId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF document"},
                    "404": {"description": "No submitted results for the term"}
                }
            }
        },
        "/reports/classes": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue report card generation for a whole class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/jobs/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Check a report job's status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/download/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished report archive via signed token",
                "produces": ["application/zip"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Zip archive"},
                    "401": {"description": "Expired or invalid token"}
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
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "CreateGradingSystemRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "is_default": {"type": "boolean"},
                "scales": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/GradeScaleBandRequest"}
                }
            },
            "required": ["name", "scales"]
        },
        "GradeScaleBandRequest": {
            "type": "object",
            "properties": {
                "grade": {"type": "string"},
                "min_score": {"type": "number"},
                "max_score": {"type": "number"},
                "grade_point": {"type": "number"},
                "remark": {"type": "string"}
            }
        },
        "RecordResultRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "class_id": {"type": "string"},
                "term_id": {"type": "string"},
                "ca1": {"type": "number"},
                "ca2": {"type": "number"},
                "exam": {"type": "number"},
                "comment": {"type": "string"}
            },
            "required": ["student_id", "subject_id", "class_id", "term_id"]
        },
        "BatchRecordRequest": {
            "type": "object",
            "properties": {
                "subject_id": {"type": "string"},
                "class_id": {"type": "string"},
                "term_id": {"type": "string"},
                "entries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/BatchScoreEntry"}
                }
            },
            "required": ["subject_id", "class_id", "term_id", "entries"]
        },
        "BatchScoreEntry": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "ca1": {"type": "number"},
                "ca2": {"type": "number"},
                "exam": {"type": "number"},
                "comment": {"type": "string"}
            },
            "required": ["student_id"]
        },
        "SubmitResultsRequest": {
            "type": "object",
            "properties": {
                "subject_id": {"type": "string"},
                "class_id": {"type": "string"},
                "term_id": {"type": "string"},
                "result_ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["subject_id", "class_id", "term_id"]
        },
        "SummaryRemarksUpdate": {
            "type": "object",
            "properties": {
                "days_present": {"type": "integer"},
                "days_absent": {"type": "integer"},
                "psychomotor_rating": {"type": "string"},
                "affective_rating": {"type": "string"},
                "teacher_comment": {"type": "string"},
                "head_comment": {"type": "string"},
                "promotion_status": {"type": "string", "enum": ["PROMOTED", "REPEATED", "PENDING"]}
            }
        },
        "ClassReportRequest": {
            "type": "object",
            "properties": {
                "class_id": {"type": "string"},
                "term_id": {"type": "string"}
            },
            "required": ["class_id", "term_id"]
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
