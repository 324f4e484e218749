package constants

import "time"

const (
	// ContextKeyCredentialID is the gin context key holding the authenticated credential ID.
	ContextKeyCredentialID = "credential_id"
	// ContextKeyUsername is the gin context key holding the authenticated username.
	ContextKeyUsername = "username"
	// ContextKeyRequestID is the gin context key holding the request ID.
	ContextKeyRequestID = "request_id"

	HeaderRequestID = "X-Request-ID"

	MinPasswordLength = 6
	DefaultTokenTTL   = 24 * time.Hour

	// FeatureDelimiter joins feature labels in the single-field form encoding.
	// No feature label may contain it.
	FeatureDelimiter = ", "

	// UploadURLPrefix is the public path prefix under which stored assets are served.
	UploadURLPrefix = "/uploads/"
	// AssetNamePrefix starts every generated asset name.
	AssetNamePrefix = "project-"

	DefaultMaxUploadSize int64 = 5 << 20
)
