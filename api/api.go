// Package api holds the OpenAPI document describing the users HTTP API.
package api

import _ "embed"

// SwaggerJSON is the OpenAPI 2.0 document served under /swagger/doc.json.
//
//go:embed swagger/users.swagger.json
var SwaggerJSON []byte
