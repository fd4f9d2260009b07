// Package common contains shared constants and sentinel errors used across
// filevault components.
package common

// AuthorizationHeaderName is the HTTP header carrying the identity token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// DefaultMimeType is served for files uploaded without a declared type.
const DefaultMimeType = "application/octet-stream"
