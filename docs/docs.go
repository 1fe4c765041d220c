// Package docs holds the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/documents": {
            "get": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "List an owner's documents, newest first",
                "parameters": [
                    {"type": "string", "description": "owner id", "name": "userId", "in": "query"},
                    {"type": "boolean", "description": "only metadata-only documents", "name": "metadataOnly", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/envelope"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Register local file metadata without uploading content",
                "parameters": [
                    {"description": "owner and files", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/metadataRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/envelope"}}
                }
            }
        },
        "/documents/sync": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Register local files with a sync location (pc, website, both)",
                "parameters": [
                    {"description": "owner, files and syncLocation", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/metadataRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/envelope"}}
                }
            }
        },
        "/documents/upload": {
            "post": {
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Upload document content",
                "parameters": [
                    {"description": "base64 upload", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/uploadRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/envelope"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/envelope"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/envelope"}}
                }
            }
        },
        "/documents/open": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Resolve the local path of a metadata-only document",
                "parameters": [
                    {"description": "document id", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/openRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/envelope"}}
                }
            }
        },
        "/documents/user/{ownerId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "List an owner's documents, newest first",
                "parameters": [
                    {"type": "string", "description": "owner id", "name": "ownerId", "in": "path", "required": true},
                    {"type": "boolean", "description": "only metadata-only documents", "name": "metadataOnly", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/envelope"}}
                }
            }
        },
        "/documents/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Get one document with a signed download URL",
                "parameters": [
                    {"type": "string", "description": "document id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/envelope"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Partially update a document",
                "parameters": [
                    {"type": "string", "description": "document id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/envelope"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Delete a document and its stored content",
                "parameters": [
                    {"type": "string", "description": "document id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/envelope"}}
                }
            }
        }
    },
    "definitions": {
        "envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "count": {"type": "integer"},
                "data": {},
                "code": {"type": "string"},
                "error": {"type": "string"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/itemError"}},
                "request_id": {"type": "string"}
            }
        },
        "itemError": {
            "type": "object",
            "properties": {
                "fileName": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "fileMetadata": {
            "type": "object",
            "properties": {
                "fileName": {"type": "string"},
                "fileSize": {"type": "integer"},
                "fileType": {"type": "string"},
                "localPath": {"type": "string"},
                "folderName": {"type": "string"},
                "lastModified": {"type": "string", "description": "RFC 3339 or epoch milliseconds"}
            }
        },
        "metadataRequest": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "syncLocation": {"type": "string", "enum": ["pc", "website", "both"]},
                "files": {"type": "array", "items": {"$ref": "#/definitions/fileMetadata"}}
            }
        },
        "uploadRequest": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "base64Data": {"type": "string"},
                "fileName": {"type": "string"},
                "mimeType": {"type": "string"},
                "originalPath": {"type": "string"},
                "folderName": {"type": "string"},
                "syncLocation": {"type": "string", "enum": ["website", "both"]}
            }
        },
        "openRequest": {
            "type": "object",
            "properties": {
                "docId": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Document Sync API",
	Description:      "Metadata and content sync for desktop and web document clients.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
