// Package docs registers the OpenAPI document served under /swagger.
// Regenerate from the controller annotations with:
//
//	swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {
            "name": "API Support",
            "email": "support@agencyportal.local"
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
        "/admin/agencies": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "agencies"
                ],
                "summary": "List agencies",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "active, inactive or pending",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Name or email contains",
                        "name": "search",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Agencies",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.Agency"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "agencies"
                ],
                "summary": "Create agency",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Agency",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CreateAgencyRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Agency created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Agency"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid request data",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/agencies/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "agencies"
                ],
                "summary": "Get agency",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Agency ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Agency",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Agency"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Agency not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "put": {
                "description": "A new commission rate is applied to the agency's unpaid payments",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "agencies"
                ],
                "summary": "Update agency",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Agency ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Agency",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CreateAgencyRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Agency updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Agency"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid request data",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Agency not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "agencies"
                ],
                "summary": "Delete agency",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Agency ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Agency deleted",
                        "schema": {
                            "$ref": "#/definitions/dto.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Agency not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/agencies/{id}/status": {
            "patch": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "agencies"
                ],
                "summary": "Update agency status",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Agency ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Status",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdateStatusRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Status updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Agency"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Agency not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/applications": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "applications"
                ],
                "summary": "List applications",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "pending, processing, approved or rejected",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Agency ID (admin only)",
                        "name": "agencyId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "College ID",
                        "name": "collegeId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Course ID",
                        "name": "courseId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Student name, email or phone contains",
                        "name": "search",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Created on or after (YYYY-MM-DD)",
                        "name": "from",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Created on or before (YYYY-MM-DD)",
                        "name": "to",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Applications",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.Application"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid date",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/applications/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "applications"
                ],
                "summary": "Get application",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Application ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Application",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Application"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Application not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "put": {
                "description": "Agencies may only edit applications that are still pending",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "applications"
                ],
                "summary": "Update application",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Application ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Application",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.ApplicationRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Application updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Application"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Application not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Application is no longer pending",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "applications"
                ],
                "summary": "Delete application",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Application ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Application deleted",
                        "schema": {
                            "$ref": "#/definitions/dto.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Application not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Application is no longer pending",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/applications/{id}/documents": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "List application documents",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Application ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Documents",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.Document"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Application not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/applications/{id}/pdf": {
            "get": {
                "produces": [
                    "application/pdf"
                ],
                "tags": [
                    "applications"
                ],
                "summary": "Application summary PDF",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Application ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "PDF",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Application not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/applications/{id}/status": {
            "patch": {
                "description": "Approving or rejecting also approves or rejects every document of the application",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "applications"
                ],
                "summary": "Update application status",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Application ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Decision",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdateApplicationStatusRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Status updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Application"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid status",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Application not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/colleges": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "colleges"
                ],
                "summary": "List colleges",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Status (admin only)",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Name, code or location contains",
                        "name": "search",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Colleges",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.College"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "colleges"
                ],
                "summary": "Create college",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "description": "College",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CollegeRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "College created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.College"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid request data",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/colleges/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "colleges"
                ],
                "summary": "Get college",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "College ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "College",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.College"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "College not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "put": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "colleges"
                ],
                "summary": "Update college",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "College ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "College",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CollegeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "College updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.College"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "College not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "colleges"
                ],
                "summary": "Delete college",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "College ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "College deleted",
                        "schema": {
                            "$ref": "#/definitions/dto.APIResponse"
                        }
                    },
                    "404": {
                        "description": "College not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/colleges/{id}/courses": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "courses"
                ],
                "summary": "List courses of a college",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "College ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Courses",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.Course"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "College not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/courses": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "courses"
                ],
                "summary": "List courses",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "College ID",
                        "name": "collegeId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Status (admin only)",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Name contains",
                        "name": "search",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Courses",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.Course"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "courses"
                ],
                "summary": "Create course",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Course",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CourseRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Course created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Course"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid request data or unknown college",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/courses/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "courses"
                ],
                "summary": "Get course",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Course ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Course",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Course"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Course not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "put": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "courses"
                ],
                "summary": "Update course",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Course ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Course",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CourseRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Course updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Course"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Course not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "courses"
                ],
                "summary": "Delete course",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Course ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Course deleted",
                        "schema": {
                            "$ref": "#/definitions/dto.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Course not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/documents": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "List documents",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Application ID",
                        "name": "applicationId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Agency ID (admin only)",
                        "name": "agencyId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "pending, approved or rejected",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Document type",
                        "name": "type",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Documents",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.Document"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/admin/documents/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "Get document",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Document ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Document",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Document"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Document not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "description": "Agencies cannot delete approved documents",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "Delete document",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Document ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Document deleted",
                        "schema": {
                            "$ref": "#/definitions/dto.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Document not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Document already approved",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/documents/{id}/download": {
            "get": {
                "produces": [
                    "application/octet-stream"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "Download document",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Document ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Document content",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Document not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/documents/{id}/status": {
            "patch": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "Review document",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Document ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Review",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdateDocumentStatusRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Document reviewed",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Document"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Document not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/offline-payments": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "offline-payments"
                ],
                "summary": "List offline payments",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "pending, verified or rejected",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Agency ID (admin only)",
                        "name": "agencyId",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Offline payments",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.OfflinePayment"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/admin/offline-payments/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "offline-payments"
                ],
                "summary": "Get offline payment",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Offline payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Offline payment",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.OfflinePayment"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Offline payment not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/offline-payments/{id}/proof": {
            "get": {
                "produces": [
                    "application/octet-stream"
                ],
                "tags": [
                    "offline-payments"
                ],
                "summary": "Download proof",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Offline payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Proof",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Offline payment not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/offline-payments/{id}/receipt": {
            "get": {
                "produces": [
                    "application/pdf"
                ],
                "tags": [
                    "offline-payments"
                ],
                "summary": "Offline payment receipt PDF",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Offline payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "PDF",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Offline payment not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/offline-payments/{id}/status": {
            "patch": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "offline-payments"
                ],
                "summary": "Review offline payment",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Offline payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Review",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.ReviewOfflinePaymentRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Reviewed",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.OfflinePayment"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Offline payment not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Already reviewed",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/payments": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "List payments",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "pending, partial, paid or cancelled",
                        "name": "paymentStatus",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Lead status",
                        "name": "leadStatus",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Agency ID (admin only)",
                        "name": "agencyId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Student name contains",
                        "name": "search",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Payments",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.Payment"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/admin/payments/summary": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "Payment summary",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Summary",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/services.PaymentSummary"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/admin/payments/sync": {
            "post": {
                "description": "Idempotent; safe to run while the background sync is active",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "Reconcile payments",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Sync result",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/services.SyncResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/payments/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "Get payment",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Payment",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Payment"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Payment not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "put": {
                "description": "An amount at or above the fee settles the payment",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "Update payment",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Changes",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdatePaymentRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Payment updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Payment"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Payment not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/payments/{id}/documents/{type}/request": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "Request document",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Document type, e.g. passport",
                        "name": "type",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Document requested",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Payment"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Payment not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/payments/{id}/lead-status": {
            "patch": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "Update lead status",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Lead status",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdateLeadStatusRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Lead status updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Payment"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Payment not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/payments/{id}/receipt": {
            "get": {
                "produces": [
                    "application/pdf"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "Payment receipt PDF",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "PDF",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Payment not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/payments/{id}/status": {
            "patch": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "Update payment status",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Status",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdatePaymentStatusRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Status updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Payment"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Payment not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/reports/{entity}": {
            "get": {
                "description": "Entities: applications, payments, offline-payments; agencies and colleges for admins only",
                "produces": [
                    "text/csv",
                    "application/json",
                    "text/html"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Export report",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Entity",
                        "name": "entity",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "csv (default), json or html",
                        "name": "format",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Exact status, case-insensitive",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Created date contains, e.g. 2025-06",
                        "name": "date",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Created on or after (YYYY-MM-DD)",
                        "name": "from",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Created on or before (YYYY-MM-DD)",
                        "name": "to",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Report",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Unsupported format",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Entity restricted to admins",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Unknown entity",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/settings": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "settings"
                ],
                "summary": "Get settings",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Settings",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Settings"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "put": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "settings"
                ],
                "summary": "Update settings",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Settings",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdateSettingsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Settings saved",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Settings"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Incomplete gateway or escalation entry",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/users": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "List users",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "admin or agency",
                        "name": "role",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "active, inactive or pending",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Agency ID",
                        "name": "agencyId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Name or email contains",
                        "name": "search",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Users",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.User"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "post": {
                "description": "For role agency without agencyId, an inline agency is created alongside the user",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Create user",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "description": "User",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CreateUserRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "User created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.User"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid request data",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Email already exists",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/users/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Get user by ID",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "User ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "User",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.User"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid user ID",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "User not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "put": {
                "description": "An empty password keeps the current one",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Update user",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "User ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "User",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdateUserRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "User updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.User"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid request data",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "User not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Email already exists",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Delete user",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "User ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "User deleted",
                        "schema": {
                            "$ref": "#/definitions/dto.APIResponse"
                        }
                    },
                    "404": {
                        "description": "User not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/users/{id}/status": {
            "patch": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Update user status",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "User ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Status",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdateStatusRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Status updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.User"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid status",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "User not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/applications": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "applications"
                ],
                "summary": "List applications",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "pending, processing, approved or rejected",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Agency ID (admin only)",
                        "name": "agencyId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "College ID",
                        "name": "collegeId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Course ID",
                        "name": "courseId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Student name, email or phone contains",
                        "name": "search",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Created on or after (YYYY-MM-DD)",
                        "name": "from",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Created on or before (YYYY-MM-DD)",
                        "name": "to",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Applications",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.Application"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid date",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "post": {
                "description": "The fee is taken from the course and a payment record is created with the agency's commission",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "applications"
                ],
                "summary": "Create application",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Application",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.ApplicationRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Application created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Application"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid data or course not offered by the college",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "User is not linked to an agency",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/applications/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "applications"
                ],
                "summary": "Get application",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Application ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Application",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Application"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Application not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "put": {
                "description": "Agencies may only edit applications that are still pending",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "applications"
                ],
                "summary": "Update application",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Application ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Application",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.ApplicationRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Application updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Application"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Application not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Application is no longer pending",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "applications"
                ],
                "summary": "Delete application",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Application ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Application deleted",
                        "schema": {
                            "$ref": "#/definitions/dto.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Application not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Application is no longer pending",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/applications/{id}/documents": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "List application documents",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Application ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Documents",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.Document"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Application not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "post": {
                "description": "data is base64, optionally as a data: URL. Marks the document type as uploaded on the payment.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "Upload document",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Application ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Document",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UploadDocumentRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Document uploaded",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Document"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid base64 data",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Application not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "413": {
                        "description": "File too large",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/applications/{id}/pdf": {
            "get": {
                "produces": [
                    "application/pdf"
                ],
                "tags": [
                    "applications"
                ],
                "summary": "Application summary PDF",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Application ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "PDF",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Application not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/colleges": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "colleges"
                ],
                "summary": "List colleges",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Status (admin only)",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Name, code or location contains",
                        "name": "search",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Colleges",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.College"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/agency/colleges/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "colleges"
                ],
                "summary": "Get college",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "College ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "College",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.College"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "College not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/colleges/{id}/courses": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "courses"
                ],
                "summary": "List courses of a college",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "College ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Courses",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.Course"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "College not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/courses": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "courses"
                ],
                "summary": "List courses",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "College ID",
                        "name": "collegeId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Status (admin only)",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Name contains",
                        "name": "search",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Courses",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.Course"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/agency/courses/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "courses"
                ],
                "summary": "Get course",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Course ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Course",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Course"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Course not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/documents": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "List documents",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Application ID",
                        "name": "applicationId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Agency ID (admin only)",
                        "name": "agencyId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "pending, approved or rejected",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Document type",
                        "name": "type",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Documents",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.Document"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/agency/documents/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "Get document",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Document ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Document",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Document"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Document not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "description": "Agencies cannot delete approved documents",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "Delete document",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Document ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Document deleted",
                        "schema": {
                            "$ref": "#/definitions/dto.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Document not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Document already approved",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/documents/{id}/download": {
            "get": {
                "produces": [
                    "application/octet-stream"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "Download document",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Document ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Document content",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Document not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/offline-payments": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "offline-payments"
                ],
                "summary": "List offline payments",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "pending, verified or rejected",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Agency ID (admin only)",
                        "name": "agencyId",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Offline payments",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.OfflinePayment"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "post": {
                "consumes": [
                    "multipart/form-data"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "offline-payments"
                ],
                "summary": "Submit offline payment",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "number",
                        "description": "Amount",
                        "name": "amount",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "ISO currency, defaults to the portal currency",
                        "name": "currency",
                        "in": "formData"
                    },
                    {
                        "type": "string",
                        "description": "Transfer reference / UTR",
                        "name": "reference",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Bank",
                        "name": "bankName",
                        "in": "formData"
                    },
                    {
                        "type": "string",
                        "description": "Transfer date (YYYY-MM-DD)",
                        "name": "paymentDate",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Remarks",
                        "name": "remarks",
                        "in": "formData"
                    },
                    {
                        "type": "file",
                        "description": "Transfer proof",
                        "name": "proof",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Submitted",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.OfflinePayment"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid form or missing proof",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "413": {
                        "description": "Proof too large",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/offline-payments/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "offline-payments"
                ],
                "summary": "Get offline payment",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Offline payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Offline payment",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.OfflinePayment"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Offline payment not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/offline-payments/{id}/proof": {
            "get": {
                "produces": [
                    "application/octet-stream"
                ],
                "tags": [
                    "offline-payments"
                ],
                "summary": "Download proof",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Offline payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Proof",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Offline payment not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/offline-payments/{id}/receipt": {
            "get": {
                "produces": [
                    "application/pdf"
                ],
                "tags": [
                    "offline-payments"
                ],
                "summary": "Offline payment receipt PDF",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Offline payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "PDF",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Offline payment not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/payments": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "List payments",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "pending, partial, paid or cancelled",
                        "name": "paymentStatus",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Lead status",
                        "name": "leadStatus",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Agency ID (admin only)",
                        "name": "agencyId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Student name contains",
                        "name": "search",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Payments",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.Payment"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/agency/payments/summary": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "Payment summary",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Summary",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/services.PaymentSummary"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/agency/payments/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "Get payment",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Payment",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Payment"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Payment not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/payments/{id}/lead-status": {
            "patch": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "Update lead status",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Lead status",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdateLeadStatusRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Lead status updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Payment"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Payment not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/payments/{id}/receipt": {
            "get": {
                "produces": [
                    "application/pdf"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "Payment receipt PDF",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "PDF",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Payment not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/profile": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "agency"
                ],
                "summary": "Agency profile",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Profile",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Agency"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "403": {
                        "description": "User is not linked to an agency",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            },
            "put": {
                "description": "Commission rate and status can only be changed by an administrator",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "agency"
                ],
                "summary": "Update agency profile",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Profile",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdateAgencyProfileRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Profile updated",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Agency"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid request data",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/reports/{entity}": {
            "get": {
                "description": "Entities: applications, payments, offline-payments; agencies and colleges for admins only",
                "produces": [
                    "text/csv",
                    "application/json",
                    "text/html"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Export report",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Entity",
                        "name": "entity",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "csv (default), json or html",
                        "name": "format",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Exact status, case-insensitive",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Created date contains, e.g. 2025-06",
                        "name": "date",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Created on or after (YYYY-MM-DD)",
                        "name": "from",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Created on or before (YYYY-MM-DD)",
                        "name": "to",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Report",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Unsupported format",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Entity restricted to admins",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Unknown entity",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/agency/settings": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "settings"
                ],
                "summary": "Agency settings view",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Settings",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.AgencySettingsResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Verifies credentials and sets the HttpOnly session cookie",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "auth"
                ],
                "summary": "User login",
                "parameters": [
                    {
                        "description": "Login credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Login successful",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.SessionResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid request format or validation error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Invalid credentials",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Account not active",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/auth/logout": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "auth"
                ],
                "summary": "Log out",
                "responses": {
                    "200": {
                        "description": "Logged out",
                        "schema": {
                            "$ref": "#/definitions/dto.APIResponse"
                        }
                    }
                }
            }
        },
        "/auth/register": {
            "post": {
                "description": "Creates a pending agency and its user. An administrator activates the account.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "auth"
                ],
                "summary": "Register an agency",
                "parameters": [
                    {
                        "description": "Agency registration",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.RegisterAgencyRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Registration received",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.User"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid request format",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Email already exists",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/auth/session": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "auth"
                ],
                "summary": "Current session",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Current session",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.SessionResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "No valid session",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/events": {
            "get": {
                "description": "Events: heartbeat, application.created, application.status, payment.updated, document.uploaded, offline_payment.created, offline_payment.status",
                "produces": [
                    "text/event-stream"
                ],
                "tags": [
                    "events"
                ],
                "summary": "Event stream (SSE)",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "event stream",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/health": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "health"
                ],
                "summary": "Health",
                "responses": {
                    "200": {
                        "description": "All dependencies reachable",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "503": {
                        "description": "A dependency is down",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/ping": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "health"
                ],
                "summary": "Ping",
                "responses": {
                    "200": {
                        "description": "pong",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/ws": {
            "get": {
                "tags": [
                    "events"
                ],
                "summary": "Event stream (WebSocket)",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "responses": {
                    "101": {
                        "description": "Switching Protocols",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.APIResponse": {
            "description": "APIResponse is the success envelope for every JSON endpoint",
            "type": "object",
            "properties": {
                "data": {},
                "error": {
                    "$ref": "#/definitions/dto.ErrorDetail"
                },
                "message": {
                    "type": "string",
                    "example": "Operation completed successfully"
                },
                "success": {
                    "type": "boolean",
                    "example": true
                },
                "timestamp": {
                    "type": "string",
                    "example": "2025-04-23T12:01:05.123Z"
                }
            }
        },
        "dto.AgencySettingsResponse": {
            "description": "AgencySettingsResponse is the agency view of settings, without gateway secrets",
            "type": "object",
            "properties": {
                "bankDetails": {
                    "$ref": "#/definitions/models.BankDetails"
                },
                "escalationMatrix": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.EscalationContact"
                    }
                }
            }
        },
        "dto.ApplicationRequest": {
            "description": "ApplicationRequest represents student application data",
            "type": "object",
            "required": [
                "collegeId",
                "courseId",
                "studentEmail",
                "studentName"
            ],
            "properties": {
                "address": {
                    "type": "string",
                    "maxLength": 500
                },
                "collegeId": {
                    "type": "string"
                },
                "courseId": {
                    "type": "string"
                },
                "dateOfBirth": {
                    "type": "string"
                },
                "nationality": {
                    "type": "string",
                    "maxLength": 80
                },
                "qualification": {
                    "type": "string",
                    "maxLength": 200
                },
                "remarks": {
                    "type": "string",
                    "maxLength": 2000
                },
                "session": {
                    "type": "string",
                    "maxLength": 40
                },
                "stream": {
                    "type": "string",
                    "maxLength": 80
                },
                "studentEmail": {
                    "type": "string"
                },
                "studentName": {
                    "type": "string",
                    "maxLength": 120,
                    "minLength": 2
                },
                "studentPhone": {
                    "type": "string",
                    "maxLength": 40
                }
            }
        },
        "dto.CollegeRequest": {
            "description": "CollegeRequest is used for create and update",
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "code": {
                    "type": "string",
                    "maxLength": 20
                },
                "description": {
                    "type": "string",
                    "maxLength": 5000
                },
                "establishedYear": {
                    "type": "integer",
                    "maximum": 2100,
                    "minimum": 1800
                },
                "location": {
                    "type": "string",
                    "maxLength": 200
                },
                "name": {
                    "type": "string",
                    "maxLength": 200,
                    "minLength": 2
                },
                "ranking": {
                    "type": "integer",
                    "minimum": 1
                },
                "status": {
                    "$ref": "#/definitions/models.AccountStatus"
                },
                "website": {
                    "type": "string"
                }
            }
        },
        "dto.CourseRequest": {
            "description": "CourseRequest is used for create and update",
            "type": "object",
            "required": [
                "collegeId",
                "name"
            ],
            "properties": {
                "collegeId": {
                    "type": "string"
                },
                "duration": {
                    "type": "string",
                    "maxLength": 60
                },
                "eligibility": {
                    "type": "string",
                    "maxLength": 2000
                },
                "fee": {
                    "type": "number",
                    "minimum": 0
                },
                "level": {
                    "type": "string",
                    "maxLength": 60
                },
                "name": {
                    "type": "string",
                    "maxLength": 200,
                    "minLength": 2
                },
                "sessions": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "status": {
                    "$ref": "#/definitions/models.AccountStatus"
                },
                "streams": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "dto.CreateAgencyRequest": {
            "description": "CreateAgencyRequest represents agency data submitted by an admin",
            "type": "object",
            "required": [
                "email",
                "name"
            ],
            "properties": {
                "address": {
                    "type": "string",
                    "maxLength": 500
                },
                "city": {
                    "type": "string",
                    "maxLength": 120
                },
                "commissionRate": {
                    "type": "number",
                    "maximum": 100,
                    "minimum": 0
                },
                "contactPerson": {
                    "type": "string",
                    "maxLength": 120
                },
                "country": {
                    "type": "string",
                    "maxLength": 120
                },
                "email": {
                    "type": "string"
                },
                "name": {
                    "type": "string",
                    "maxLength": 200,
                    "minLength": 2
                },
                "phone": {
                    "type": "string",
                    "maxLength": 40
                },
                "status": {
                    "$ref": "#/definitions/models.AccountStatus"
                }
            }
        },
        "dto.CreateUserRequest": {
            "description": "CreateUserRequest is an admin creating a user. For role agency without an agencyId, an inline agency may be supplied and is created alongside.",
            "type": "object",
            "required": [
                "email",
                "name",
                "password",
                "role"
            ],
            "properties": {
                "agency": {
                    "$ref": "#/definitions/dto.CreateAgencyRequest"
                },
                "agencyId": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "name": {
                    "type": "string",
                    "maxLength": 120,
                    "minLength": 2
                },
                "password": {
                    "type": "string",
                    "minLength": 8
                },
                "role": {
                    "$ref": "#/definitions/models.Role"
                },
                "status": {
                    "$ref": "#/definitions/models.AccountStatus"
                }
            }
        },
        "dto.ErrorCode": {
            "type": "string",
            "enum": [
                "AUTH_001",
                "AUTH_005",
                "AUTH_006",
                "AUTH_008",
                "AUTH_009",
                "AUTH_010",
                "RES_001",
                "RES_002",
                "RES_003",
                "RES_004",
                "VAL_001",
                "VAL_002",
                "VAL_003",
                "SRV_001",
                "SRV_002"
            ],
            "x-enum-varnames": [
                "ErrorCodeInvalidCredentials",
                "ErrorCodeInvalidToken",
                "ErrorCodeExpiredToken",
                "ErrorCodeUnauthorized",
                "ErrorCodeAccountDisabled",
                "ErrorCodeForbidden",
                "ErrorCodeResourceNotFound",
                "ErrorCodeResourceAlreadyExists",
                "ErrorCodeResourceInvalid",
                "ErrorCodeConflict",
                "ErrorCodeValidationFailed",
                "ErrorCodeBadRequest",
                "ErrorCodePayloadTooLarge",
                "ErrorCodeInternalServer",
                "ErrorCodeDatabaseError"
            ]
        },
        "dto.ErrorDetail": {
            "description": "ErrorDetail represents detailed error information",
            "type": "object",
            "properties": {
                "code": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/dto.ErrorCode"
                        }
                    ],
                    "example": "RES_001"
                },
                "details": {},
                "field": {
                    "type": "string",
                    "example": "email"
                },
                "message": {
                    "type": "string",
                    "example": "Application not found"
                }
            }
        },
        "dto.ErrorResponse": {
            "description": "ErrorResponse represents the standard error response structure",
            "type": "object",
            "properties": {
                "error": {
                    "$ref": "#/definitions/dto.ErrorDetail"
                },
                "success": {
                    "type": "boolean",
                    "example": false
                },
                "timestamp": {
                    "type": "string",
                    "example": "2025-04-23T12:01:05.123Z"
                }
            }
        },
        "dto.LoginRequest": {
            "description": "LoginRequest represents login credentials",
            "type": "object",
            "required": [
                "email",
                "password"
            ],
            "properties": {
                "email": {
                    "type": "string",
                    "example": "admin@agencyportal.local"
                },
                "password": {
                    "type": "string",
                    "example": "changeme123"
                }
            }
        },
        "dto.RegisterAgencyRequest": {
            "description": "RegisterAgencyRequest is an agency self-signup. The agency and its user start as pending.",
            "type": "object",
            "required": [
                "agencyName",
                "contactPerson",
                "email",
                "password"
            ],
            "properties": {
                "address": {
                    "type": "string",
                    "maxLength": 500
                },
                "agencyName": {
                    "type": "string",
                    "maxLength": 200,
                    "minLength": 2
                },
                "city": {
                    "type": "string",
                    "maxLength": 120
                },
                "contactPerson": {
                    "type": "string",
                    "maxLength": 120
                },
                "country": {
                    "type": "string",
                    "maxLength": 120
                },
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string",
                    "minLength": 8
                },
                "phone": {
                    "type": "string",
                    "maxLength": 40
                }
            }
        },
        "dto.ReviewOfflinePaymentRequest": {
            "description": "ReviewOfflinePaymentRequest verifies or rejects a submitted proof",
            "type": "object",
            "required": [
                "status"
            ],
            "properties": {
                "remarks": {
                    "type": "string",
                    "maxLength": 2000
                },
                "status": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.OfflinePaymentStatus"
                        }
                    ],
                    "example": "verified"
                }
            }
        },
        "dto.SessionResponse": {
            "description": "SessionResponse is returned by login and session lookups",
            "type": "object",
            "properties": {
                "expiresAt": {
                    "type": "string"
                },
                "user": {
                    "$ref": "#/definitions/dto.SessionUser"
                }
            }
        },
        "dto.SessionUser": {
            "description": "SessionUser is the identity carried in the session cookie",
            "type": "object",
            "properties": {
                "agencyId": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "role": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.Role"
                        }
                    ],
                    "example": "agency"
                }
            }
        },
        "dto.UpdateAgencyProfileRequest": {
            "description": "UpdateAgencyProfileRequest is what an agency may change about itself",
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "address": {
                    "type": "string",
                    "maxLength": 500
                },
                "city": {
                    "type": "string",
                    "maxLength": 120
                },
                "contactPerson": {
                    "type": "string",
                    "maxLength": 120
                },
                "country": {
                    "type": "string",
                    "maxLength": 120
                },
                "name": {
                    "type": "string",
                    "maxLength": 200,
                    "minLength": 2
                },
                "phone": {
                    "type": "string",
                    "maxLength": 40
                }
            }
        },
        "dto.UpdateApplicationStatusRequest": {
            "description": "UpdateApplicationStatusRequest is an admin decision on an application",
            "type": "object",
            "required": [
                "status"
            ],
            "properties": {
                "remarks": {
                    "type": "string",
                    "maxLength": 2000
                },
                "status": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.ApplicationStatus"
                        }
                    ],
                    "example": "approved"
                }
            }
        },
        "dto.UpdateDocumentStatusRequest": {
            "description": "UpdateDocumentStatusRequest is an admin review of a document",
            "type": "object",
            "required": [
                "status"
            ],
            "properties": {
                "remarks": {
                    "type": "string",
                    "maxLength": 2000
                },
                "status": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.DocumentStatus"
                        }
                    ],
                    "example": "approved"
                }
            }
        },
        "dto.UpdateLeadStatusRequest": {
            "description": "UpdateLeadStatusRequest moves the agency pipeline stage",
            "type": "object",
            "required": [
                "leadStatus"
            ],
            "properties": {
                "leadStatus": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.LeadStatus"
                        }
                    ],
                    "example": "contacted"
                }
            }
        },
        "dto.UpdatePaymentRequest": {
            "description": "UpdatePaymentRequest is an admin edit; nil fields are left unchanged",
            "type": "object",
            "properties": {
                "amountPaid": {
                    "type": "number",
                    "minimum": 0
                },
                "notes": {
                    "type": "string",
                    "maxLength": 2000
                },
                "paymentStatus": {
                    "$ref": "#/definitions/models.PaymentStatus"
                }
            }
        },
        "dto.UpdatePaymentStatusRequest": {
            "description": "UpdatePaymentStatusRequest sets the payment status directly",
            "type": "object",
            "required": [
                "paymentStatus"
            ],
            "properties": {
                "paymentStatus": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.PaymentStatus"
                        }
                    ],
                    "example": "paid"
                }
            }
        },
        "dto.UpdateSettingsRequest": {
            "description": "UpdateSettingsRequest replaces the singleton settings",
            "type": "object",
            "properties": {
                "bankDetails": {
                    "$ref": "#/definitions/models.BankDetails"
                },
                "escalationMatrix": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.EscalationContact"
                    }
                },
                "paymentGateway": {
                    "$ref": "#/definitions/models.PaymentGateway"
                }
            }
        },
        "dto.UpdateStatusRequest": {
            "description": "UpdateStatusRequest carries an account status change for users and agencies",
            "type": "object",
            "required": [
                "status"
            ],
            "properties": {
                "status": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.AccountStatus"
                        }
                    ],
                    "example": "active"
                }
            }
        },
        "dto.UpdateUserRequest": {
            "description": "UpdateUserRequest updates user details; an empty password keeps the current one",
            "type": "object",
            "required": [
                "email",
                "name"
            ],
            "properties": {
                "agencyId": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "name": {
                    "type": "string",
                    "maxLength": 120,
                    "minLength": 2
                },
                "password": {
                    "type": "string",
                    "minLength": 8
                },
                "role": {
                    "$ref": "#/definitions/models.Role"
                }
            }
        },
        "dto.UploadDocumentRequest": {
            "description": "UploadDocumentRequest carries a file as base64, optionally as a data: URL",
            "type": "object",
            "required": [
                "data",
                "fileName",
                "name"
            ],
            "properties": {
                "data": {
                    "type": "string"
                },
                "fileName": {
                    "type": "string",
                    "maxLength": 255,
                    "example": "marksheet.pdf"
                },
                "mimeType": {
                    "type": "string",
                    "maxLength": 100,
                    "example": "application/pdf"
                },
                "name": {
                    "type": "string",
                    "maxLength": 200,
                    "example": "10th Marksheet"
                },
                "type": {
                    "type": "string",
                    "maxLength": 100,
                    "example": "10th marksheet"
                }
            }
        },
        "models.AccountStatus": {
            "type": "string",
            "enum": [
                "active",
                "inactive",
                "pending"
            ],
            "x-enum-varnames": [
                "StatusActive",
                "StatusInactive",
                "StatusPending"
            ]
        },
        "models.Agency": {
            "description": "Agency is a tenant organization submitting applications and earning commission",
            "type": "object",
            "properties": {
                "address": {
                    "type": "string"
                },
                "city": {
                    "type": "string",
                    "example": "Pune"
                },
                "commissionRate": {
                    "description": "percent, 0-100",
                    "type": "number",
                    "example": 10
                },
                "contactPerson": {
                    "type": "string"
                },
                "country": {
                    "type": "string",
                    "example": "India"
                },
                "createdAt": {
                    "type": "string"
                },
                "email": {
                    "type": "string",
                    "example": "contact@globaledu.in"
                },
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string",
                    "example": "Global Edu Consultants"
                },
                "phone": {
                    "type": "string",
                    "example": "+91 98765 43210"
                },
                "status": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.AccountStatus"
                        }
                    ],
                    "example": "active"
                },
                "updatedAt": {
                    "type": "string"
                }
            }
        },
        "models.Application": {
            "description": "Application is a student's admission submission for one college/course, filed by an agency",
            "type": "object",
            "properties": {
                "address": {
                    "type": "string"
                },
                "agencyId": {
                    "type": "string"
                },
                "agencyName": {
                    "description": "Filled by list queries through joins",
                    "type": "string"
                },
                "collegeId": {
                    "type": "string"
                },
                "collegeName": {
                    "type": "string"
                },
                "courseId": {
                    "type": "string"
                },
                "courseName": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "createdBy": {
                    "type": "string"
                },
                "dateOfBirth": {
                    "type": "string",
                    "example": "2006-04-12"
                },
                "fee": {
                    "description": "snapshot of the course fee",
                    "type": "number",
                    "example": 250000
                },
                "id": {
                    "type": "string"
                },
                "nationality": {
                    "type": "string",
                    "example": "Indian"
                },
                "qualification": {
                    "type": "string",
                    "example": "12th Science"
                },
                "remarks": {
                    "type": "string"
                },
                "session": {
                    "type": "string",
                    "example": "2025-26"
                },
                "status": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.ApplicationStatus"
                        }
                    ],
                    "example": "pending"
                },
                "stream": {
                    "type": "string",
                    "example": "Science"
                },
                "studentEmail": {
                    "type": "string",
                    "example": "rahul@example.com"
                },
                "studentName": {
                    "type": "string",
                    "example": "Rahul Verma"
                },
                "studentPhone": {
                    "type": "string"
                },
                "updatedAt": {
                    "type": "string"
                }
            }
        },
        "models.ApplicationStatus": {
            "type": "string",
            "enum": [
                "pending",
                "processing",
                "approved",
                "rejected"
            ],
            "x-enum-varnames": [
                "ApplicationPending",
                "ApplicationProcessing",
                "ApplicationApproved",
                "ApplicationRejected"
            ]
        },
        "models.BankDetails": {
            "description": "BankDetails are shown to agencies for offline transfers",
            "type": "object",
            "properties": {
                "accountName": {
                    "type": "string"
                },
                "accountNumber": {
                    "type": "string"
                },
                "bankName": {
                    "type": "string"
                },
                "branch": {
                    "type": "string"
                },
                "ifsc": {
                    "type": "string"
                },
                "swift": {
                    "type": "string"
                },
                "upiId": {
                    "type": "string"
                }
            }
        },
        "models.College": {
            "description": "College is an institution offering courses",
            "type": "object",
            "properties": {
                "code": {
                    "type": "string",
                    "example": "SIT"
                },
                "createdAt": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "establishedYear": {
                    "type": "integer",
                    "example": 2008
                },
                "id": {
                    "type": "string"
                },
                "location": {
                    "type": "string",
                    "example": "Pune, Maharashtra"
                },
                "name": {
                    "type": "string",
                    "example": "Symbiosis Institute of Technology"
                },
                "ranking": {
                    "type": "integer",
                    "example": 12
                },
                "status": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.AccountStatus"
                        }
                    ],
                    "example": "active"
                },
                "updatedAt": {
                    "type": "string"
                },
                "website": {
                    "type": "string"
                }
            }
        },
        "models.Course": {
            "description": "Course belongs to a College",
            "type": "object",
            "properties": {
                "collegeId": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "duration": {
                    "type": "string",
                    "example": "4 years"
                },
                "eligibility": {
                    "type": "string"
                },
                "fee": {
                    "type": "number",
                    "example": 250000
                },
                "id": {
                    "type": "string"
                },
                "level": {
                    "type": "string",
                    "example": "undergraduate"
                },
                "name": {
                    "type": "string",
                    "example": "B.Tech Computer Science"
                },
                "sessions": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    },
                    "example": [
                        "2025-26"
                    ]
                },
                "status": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.AccountStatus"
                        }
                    ],
                    "example": "active"
                },
                "streams": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    },
                    "example": [
                        "Science"
                    ]
                },
                "updatedAt": {
                    "type": "string"
                }
            }
        },
        "models.Document": {
            "description": "Document is an uploaded file stored inline (base64) in the documents collection",
            "type": "object",
            "properties": {
                "agencyId": {
                    "type": "string"
                },
                "applicationId": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "fileName": {
                    "type": "string",
                    "example": "marksheet.pdf"
                },
                "id": {
                    "type": "string",
                    "example": "6650f0c2a1b2c3d4e5f60718"
                },
                "mimeType": {
                    "type": "string",
                    "example": "application/pdf"
                },
                "name": {
                    "type": "string",
                    "example": "10th Marksheet"
                },
                "remarks": {
                    "type": "string"
                },
                "size": {
                    "type": "integer"
                },
                "status": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.DocumentStatus"
                        }
                    ],
                    "example": "pending"
                },
                "type": {
                    "type": "string",
                    "example": "marksheet_10th"
                },
                "updatedAt": {
                    "type": "string"
                },
                "uploadedBy": {
                    "type": "string"
                }
            }
        },
        "models.DocumentFlag": {
            "description": "DocumentFlag tracks upload/request state of one document type on a payment",
            "type": "object",
            "properties": {
                "requested": {
                    "type": "boolean"
                },
                "requestedAt": {
                    "type": "string"
                },
                "uploaded": {
                    "type": "boolean"
                },
                "uploadedAt": {
                    "type": "string"
                }
            }
        },
        "models.DocumentFlags": {
            "type": "object",
            "additionalProperties": {
                "$ref": "#/definitions/models.DocumentFlag"
            }
        },
        "models.DocumentStatus": {
            "type": "string",
            "enum": [
                "pending",
                "approved",
                "rejected"
            ],
            "x-enum-varnames": [
                "DocumentPending",
                "DocumentApproved",
                "DocumentRejected"
            ]
        },
        "models.EscalationContact": {
            "description": "EscalationContact is one tier of the support escalation matrix",
            "type": "object",
            "properties": {
                "designation": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "level": {
                    "type": "integer",
                    "example": 1
                },
                "name": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                }
            }
        },
        "models.LeadStatus": {
            "type": "string",
            "enum": [
                "applied",
                "contacted",
                "documents_pending",
                "documents_received",
                "enrolled",
                "dropped"
            ],
            "x-enum-varnames": [
                "LeadApplied",
                "LeadContacted",
                "LeadDocumentsPending",
                "LeadDocumentsReceived",
                "LeadEnrolled",
                "LeadDropped"
            ]
        },
        "models.OfflinePayment": {
            "description": "OfflinePayment is an agency-submitted bank transfer proof",
            "type": "object",
            "properties": {
                "agencyId": {
                    "type": "string"
                },
                "agencyName": {
                    "type": "string"
                },
                "amount": {
                    "type": "number",
                    "example": 50000
                },
                "bankName": {
                    "type": "string",
                    "example": "HDFC Bank"
                },
                "createdAt": {
                    "type": "string"
                },
                "currency": {
                    "type": "string",
                    "example": "INR"
                },
                "id": {
                    "type": "string"
                },
                "paymentDate": {
                    "type": "string"
                },
                "proofName": {
                    "type": "string"
                },
                "proofPath": {
                    "type": "string"
                },
                "reference": {
                    "type": "string",
                    "example": "UTR123456789"
                },
                "remarks": {
                    "type": "string"
                },
                "reviewedAt": {
                    "type": "string"
                },
                "reviewedBy": {
                    "type": "string"
                },
                "status": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.OfflinePaymentStatus"
                        }
                    ],
                    "example": "pending"
                },
                "updatedAt": {
                    "type": "string"
                }
            }
        },
        "models.OfflinePaymentStatus": {
            "type": "string",
            "enum": [
                "pending",
                "verified",
                "rejected"
            ],
            "x-enum-varnames": [
                "OfflinePaymentPending",
                "OfflinePaymentVerified",
                "OfflinePaymentRejected"
            ]
        },
        "models.Payment": {
            "description": "Payment is derived 1:1 from an Application and tracks commission settlement",
            "type": "object",
            "properties": {
                "agencyId": {
                    "type": "string"
                },
                "agencyName": {
                    "type": "string"
                },
                "amountPaid": {
                    "type": "number",
                    "example": 0
                },
                "applicationId": {
                    "type": "string"
                },
                "collegeId": {
                    "type": "string"
                },
                "commissionAmount": {
                    "type": "number",
                    "example": 25000
                },
                "commissionRate": {
                    "type": "number",
                    "example": 10
                },
                "courseId": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "documents": {
                    "$ref": "#/definitions/models.DocumentFlags"
                },
                "fee": {
                    "type": "number",
                    "example": 250000
                },
                "id": {
                    "type": "string"
                },
                "leadStatus": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.LeadStatus"
                        }
                    ],
                    "example": "applied"
                },
                "notes": {
                    "type": "string"
                },
                "paidAt": {
                    "type": "string"
                },
                "paymentStatus": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.PaymentStatus"
                        }
                    ],
                    "example": "pending"
                },
                "studentName": {
                    "type": "string"
                },
                "updatedAt": {
                    "type": "string"
                }
            }
        },
        "models.PaymentGateway": {
            "description": "PaymentGateway holds gateway configuration; it is only stored, never called",
            "type": "object",
            "properties": {
                "enabled": {
                    "type": "boolean"
                },
                "keyId": {
                    "type": "string"
                },
                "keySecret": {
                    "type": "string"
                },
                "mode": {
                    "type": "string",
                    "example": "test"
                },
                "provider": {
                    "type": "string",
                    "example": "razorpay"
                }
            }
        },
        "models.PaymentStatus": {
            "type": "string",
            "enum": [
                "pending",
                "partial",
                "paid",
                "cancelled"
            ],
            "x-enum-varnames": [
                "PaymentPending",
                "PaymentPartial",
                "PaymentPaid",
                "PaymentCancelled"
            ]
        },
        "models.Role": {
            "type": "string",
            "enum": [
                "admin",
                "agency"
            ],
            "x-enum-varnames": [
                "RoleAdmin",
                "RoleAgency"
            ]
        },
        "models.Settings": {
            "description": "Settings is the singleton portal configuration row",
            "type": "object",
            "properties": {
                "bankDetails": {
                    "$ref": "#/definitions/models.BankDetails"
                },
                "escalationMatrix": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.EscalationContact"
                    }
                },
                "paymentGateway": {
                    "$ref": "#/definitions/models.PaymentGateway"
                },
                "updatedAt": {
                    "type": "string"
                }
            }
        },
        "models.User": {
            "description": "User defines the user model based on the 'users' table",
            "type": "object",
            "properties": {
                "agencyId": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "email": {
                    "type": "string",
                    "example": "priya@globaledu.in"
                },
                "id": {
                    "type": "string",
                    "example": "6f1c1f2e-8f1e-4c55-a0d4-8a1f6f0c2b11"
                },
                "lastLoginAt": {
                    "type": "string"
                },
                "name": {
                    "type": "string",
                    "example": "Priya Sharma"
                },
                "role": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.Role"
                        }
                    ],
                    "example": "agency"
                },
                "status": {
                    "allOf": [
                        {
                            "$ref": "#/definitions/models.AccountStatus"
                        }
                    ],
                    "example": "active"
                },
                "updatedAt": {
                    "type": "string"
                }
            }
        },
        "services.PaymentSummary": {
            "description": "PaymentSummary is the dashboard view over a set of payments",
            "type": "object",
            "properties": {
                "byLeadStatus": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "integer"
                    }
                },
                "byPaymentStatus": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "integer"
                    }
                },
                "paidCommission": {
                    "type": "number"
                },
                "pendingCommission": {
                    "type": "number"
                },
                "total": {
                    "type": "integer"
                },
                "totalCommission": {
                    "type": "number"
                },
                "totalFee": {
                    "type": "number"
                }
            }
        },
        "services.SyncResult": {
            "description": "SyncResult reports one payment sync run",
            "type": "object",
            "properties": {
                "created": {
                    "type": "integer",
                    "example": 3
                },
                "failed": {
                    "type": "integer",
                    "example": 0
                },
                "scanned": {
                    "type": "integer",
                    "example": 120
                },
                "skipped": {
                    "type": "integer",
                    "example": 117
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "The same session token as 'Bearer <token>'",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        },
        "SessionCookie": {
            "description": "Session token set by POST /auth/login",
            "type": "apiKey",
            "name": "session",
            "in": "cookie"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Agency Portal API",
	Description:      "Admin and agency portal for student applications, commissions and payments",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
