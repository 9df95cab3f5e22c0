// Package auth registers the OpenAPI document served by the Swagger UI. It
// follows the layout swag init produces and can be regenerated with it.
package auth

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/treasuremind"
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
        "/api/auth": {
            "get": {
                "security": [
                    {
                        "CookieAuth": []
                    }
                ],
                "description": "Returns the public profile for the session cookie and sets a refreshed cookie.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Auth"
                ],
                "summary": "Get the current profile",
                "responses": {
                    "200": {
                        "description": "Profile; Set-Cookie carries the refreshed session",
                        "schema": {
                            "$ref": "#/definitions/authsdk.ProfileResponse"
                        }
                    },
                    "401": {
                        "description": "No valid session",
                        "schema": {
                            "$ref": "#/definitions/authsdk.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/authsdk.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "CookieAuth": []
                    }
                ],
                "description": "Revokes the session and clears the cookie. Requests without a valid session get 401.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Auth"
                ],
                "summary": "Log out",
                "responses": {
                    "200": {
                        "description": "Session ended"
                    },
                    "401": {
                        "description": "No valid session",
                        "schema": {
                            "$ref": "#/definitions/authsdk.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/auth/create": {
            "post": {
                "description": "Stores a credential and a profile for a new email. Does not log the user in.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Auth"
                ],
                "summary": "Create an account",
                "parameters": [
                    {
                        "description": "New account",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/authsdk.RegisterRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Account created"
                    },
                    "400": {
                        "description": "Malformed body or missing field",
                        "schema": {
                            "$ref": "#/definitions/authsdk.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Email already exists",
                        "schema": {
                            "$ref": "#/definitions/authsdk.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/authsdk.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "description": "Checks email and password. On success sets the session cookie and returns the public profile.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Auth"
                ],
                "summary": "Log in",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/authsdk.LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Profile; Set-Cookie carries the session",
                        "schema": {
                            "$ref": "#/definitions/authsdk.ProfileResponse"
                        }
                    },
                    "400": {
                        "description": "Malformed body or missing field",
                        "schema": {
                            "$ref": "#/definitions/authsdk.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Invalid credentials",
                        "schema": {
                            "$ref": "#/definitions/authsdk.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/authsdk.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/livez": {
            "get": {
                "description": "Liveness probe endpoint returning basic service health status, uptime, and version information\nThis endpoint always returns 200 OK if the service is running",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Health"
                ],
                "summary": "Health Check Endpoint",
                "responses": {
                    "200": {
                        "description": "status, uptime, version",
                        "schema": {
                            "$ref": "#/definitions/authsdk.HealthResponse"
                        }
                    }
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Readiness probe endpoint returning service health status and the database check",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Health"
                ],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {
                        "description": "status, uptime, version, checks",
                        "schema": {
                            "$ref": "#/definitions/authsdk.HealthResponse"
                        }
                    },
                    "503": {
                        "description": "status, uptime, version, checks - service not ready",
                        "schema": {
                            "$ref": "#/definitions/authsdk.HealthResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "authsdk.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string",
                    "example": "invalid_request"
                },
                "error_description": {
                    "type": "string",
                    "example": "the request is malformed or missing required fields"
                }
            }
        },
        "authsdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {
                    "type": "string",
                    "example": "ok"
                }
            }
        },
        "authsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "checks": {
                    "$ref": "#/definitions/authsdk.HealthChecks"
                },
                "status": {
                    "type": "string",
                    "example": "ok"
                },
                "uptime": {
                    "type": "string",
                    "example": "1h2m3s"
                },
                "version": {
                    "type": "string",
                    "example": "0.1.0"
                }
            }
        },
        "authsdk.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string",
                    "example": "alice@example.com"
                },
                "password": {
                    "type": "string",
                    "example": "correct horse battery staple"
                }
            }
        },
        "authsdk.ProfileResponse": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string",
                    "example": "alice@example.com"
                },
                "first_name": {
                    "type": "string",
                    "example": "Alice"
                },
                "last_name": {
                    "type": "string",
                    "example": "Smith"
                }
            }
        },
        "authsdk.RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string",
                    "example": "alice@example.com"
                },
                "first_name": {
                    "type": "string",
                    "example": "Alice"
                },
                "last_name": {
                    "type": "string",
                    "example": "Smith"
                },
                "password": {
                    "type": "string",
                    "example": "correct horse battery staple"
                }
            }
        }
    },
    "securityDefinitions": {
        "CookieAuth": {
            "description": "Session token set by POST /api/auth/login.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "cookie"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Treasuremind Authentication Service API",
	Description:      "Email and password accounts with a stateless session cookie.\n\nSessions are HS256-signed tokens carried in the HttpOnly \"Authorization\" cookie and slide forward on every profile fetch.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
