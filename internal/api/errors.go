package api

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeNotFound       = "NOT_FOUND"
	codeRequestTimeout = "REQUEST_TIMEOUT"
	codeConflict       = "CONFLICT"
	codeInternalError  = "INTERNAL_ERROR"
)
