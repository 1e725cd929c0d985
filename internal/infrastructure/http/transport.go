package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"perfi.com/internal/infrastructure/logger"
)

// RequestIDHeader carries the request ID to the backend and back.
const RequestIDHeader = "X-Request-ID"

// loggingTransport tags every request with an ID and logs its outcome
type loggingTransport struct {
	next   http.RoundTripper
	logger logger.Logger
}

// NewLoggingTransport wraps next; a nil next uses http.DefaultTransport.
func NewLoggingTransport(next http.RoundTripper, logger logger.Logger) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{next: next, logger: logger}
}

func (t *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	requestID := r.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
		// RoundTrippers must not modify the caller's request
		r = r.Clone(r.Context())
		r.Header.Set(RequestIDHeader, requestID)
	}
	requestLogger := t.logger.WithRequestID(requestID)

	start := time.Now()
	resp, err := t.next.RoundTrip(r)
	duration := time.Since(start)

	if err != nil {
		requestLogger.LogError(r.Context(), "Request failed", err,
			"method", r.Method,
			"url", r.URL.String(),
			"duration_ms", duration.Milliseconds())
		return nil, err
	}

	requestLogger.LogInfo(r.Context(), "Request completed",
		"method", r.Method,
		"url", r.URL.String(),
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds())
	return resp, nil
}
