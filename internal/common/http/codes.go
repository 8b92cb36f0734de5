package http

const (
	CodeUnknown              = "UNKNOWN"
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidJSON          = "INVALID_JSON"
	CodeBadRequest           = "BAD_REQUEST"
	CodeInvalidPath          = "INVALID_PATH"
	CodeInvalidIDFormat      = "INVALID_ID_FORMAT"
	CodeMissingRefreshToken  = "MISSING_REFRESH_TOKEN"
	CodeMissingAuthorization = "MISSING_AUTHORIZATION"
	CodeInvalidToken         = "INVALID_TOKEN"
	CodeRateLimited          = "RATE_LIMITED"
	CodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	CodeInternal             = "INTERNAL_ERROR"
)
