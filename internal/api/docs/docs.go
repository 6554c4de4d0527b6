// Package docs registers the OpenAPI document served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Report liveness and the size of the loaded dataset",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.HealthResponse"}}
                }
            }
        },
        "/options": {
            "get": {
                "description": "Distinct values of every filter dimension, the age bounds, and the fields usable in aggregations",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Filter options",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/dashboard": {
            "post": {
                "description": "Filter the dataset and build the KPIs and all chart datasets",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Render dashboard",
                "parameters": [
                    {"description": "Filter selections", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.RenderRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/aggregate": {
            "post": {
                "description": "Filter the dataset and compute a grouped mean, sum, count, value count, distribution, or a scalar mean or sum",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Ad-hoc aggregation",
                "parameters": [
                    {"description": "Aggregation", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.AggregateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/load-report": {
            "get": {
                "description": "Rows read, kept and dropped while loading the dataset, with per-stage timings",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Load report",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "session_id": {"type": "string"},
                "rows": {"type": "integer"},
                "uptime": {"type": "string"}
            }
        },
        "model.FilterRequest": {
            "type": "object",
            "properties": {
                "genders": {"type": "array", "items": {"type": "string"}},
                "professions": {"type": "array", "items": {"type": "string"}},
                "locations": {"type": "array", "items": {"type": "string"}},
                "platforms": {"type": "array", "items": {"type": "string"}},
                "device_types": {"type": "array", "items": {"type": "string"}},
                "age_min": {"type": "integer", "minimum": 0},
                "age_max": {"type": "integer", "minimum": 0}
            }
        },
        "model.RenderRequest": {
            "type": "object",
            "properties": {
                "filter": {"$ref": "#/definitions/model.FilterRequest"},
                "selected_platforms": {"type": "array", "items": {"type": "string"}}
            }
        },
        "model.AggregateRequest": {
            "type": "object",
            "required": ["op"],
            "properties": {
                "filter": {"$ref": "#/definitions/model.FilterRequest"},
                "op": {"type": "string", "enum": ["mean", "sum", "count", "count_values", "distribution", "scalar_mean", "scalar_sum"]},
                "group_by": {"type": "array", "maxItems": 3, "items": {"type": "string"}},
                "measure": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Engagement Dashboard API",
	Description:      "Filter social media usage records and compute dashboard aggregates.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
