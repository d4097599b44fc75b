package testutil

import (
	"net/http"
	"time"

	"prevplan/pkg/requestcontext"
)

// WithRequestTime pins the request-scoped clock, simulating the requesttime
// middleware. Lockout and sale-window checks read this value.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithRequestID attaches a request id as the request middleware would.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
