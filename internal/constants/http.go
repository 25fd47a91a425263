package constants

// HTTP Header Names
const (
	HeaderAuthorization   = "Authorization"
	HeaderXRequestID      = "X-Request-ID"
	HeaderXForwardedHost  = "X-Forwarded-Host"
	HeaderXForwardedProto = "X-Forwarded-Proto"
)

// Authorization header keywords
const (
	AuthKeywordToken  = "Token"
	AuthKeywordBearer = "Bearer"
)

// Response messages
const (
	MsgLogoutSuccess = "Logout successful"
	MsgInternalError = "Internal server error"
	MsgRateLimited   = "Request was throttled."
	MsgMalformedJSON = "JSON parse error"
)
