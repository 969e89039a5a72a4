package httpmsg

// Status codes used by the server.
const (
	StatusContinue            = 100
	StatusSwitchingProtocols  = 101
	StatusOK                  = 200
	StatusCreated             = 201
	StatusAccepted            = 202
	StatusNoContent           = 204
	StatusMovedPermanently    = 301
	StatusFound               = 302
	StatusNotModified         = 304
	StatusBadRequest          = 400
	StatusUnauthorized        = 401
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusMethodNotAllowed    = 405
	StatusRequestTooLarge     = 413
	StatusInternalServerError = 500
	StatusNotImplemented      = 501
	StatusBadGateway          = 502
	StatusServiceUnavailable  = 503
)

// UnknownStatusText is the reason phrase for codes missing from the table.
const UnknownStatusText = "Unknown Status"

var statusText = map[int]string{
	StatusContinue:            "Continue",
	StatusSwitchingProtocols:  "Switching Protocols",
	StatusOK:                  "OK",
	StatusCreated:             "Created",
	StatusAccepted:            "Accepted",
	StatusNoContent:           "No Content",
	StatusMovedPermanently:    "Moved Permanently",
	StatusFound:               "Found",
	StatusNotModified:         "Not Modified",
	StatusBadRequest:          "Bad Request",
	StatusUnauthorized:        "Unauthorized",
	StatusForbidden:           "Forbidden",
	StatusNotFound:            "Not Found",
	StatusMethodNotAllowed:    "Method Not Allowed",
	StatusRequestTooLarge:     "Payload Too Large",
	StatusInternalServerError: "Internal Server Error",
	StatusNotImplemented:      "Not Implemented",
	StatusBadGateway:          "Bad Gateway",
	StatusServiceUnavailable:  "Service Unavailable",
}

// StatusText returns the reason phrase for code, or UnknownStatusText.
func StatusText(code int) string {
	if text, ok := statusText[code]; ok {
		return text
	}
	return UnknownStatusText
}
