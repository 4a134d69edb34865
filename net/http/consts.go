package http

import "net/http"

// HTTP methods
const (
	OPTIONS = http.MethodOptions
	GET     = http.MethodGet
	HEAD    = http.MethodHead
	POST    = http.MethodPost
	PUT     = http.MethodPut
	DELETE  = http.MethodDelete
	TRACE   = http.MethodTrace
	PATCH   = http.MethodPatch
)

// Status codes used by the server
const (
	StatusOK                  = http.StatusOK
	StatusBadRequest          = http.StatusBadRequest
	StatusNotFound            = http.StatusNotFound
	StatusMethodNotAllowed    = http.StatusMethodNotAllowed
	StatusInternalServerError = http.StatusInternalServerError
	StatusServiceUnavailable  = http.StatusServiceUnavailable
	StatusGatewayTimeout      = http.StatusGatewayTimeout
)

// Content types
const (
	ContentTypeJSON       = "application/json; charset=utf-8"
	ContentTypeJavaScript = "application/javascript; charset=utf-8"
)

// HeaderRequestID carries the journey ID between services
const HeaderRequestID = "Request-Id"
