package main

import (
	"net/http"
	"time"
)

const timeoutBody = `{"detail":"The request timed out. Please try again later."}`

// timeoutHandler responds with a 503 Service Unavailable error when the handler does not meet the deadline.
func timeoutHandler(h http.Handler, timeout time.Duration) http.Handler {
	return http.TimeoutHandler(h, timeout, timeoutBody)
}
