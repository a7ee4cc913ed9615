package external

import (
	"net/http"
	"time"

	"todayweather.app/internal/ports"
)

// HTTPClientLoggingDecorator logs every outbound upstream request. Query strings
// are never logged since they carry service keys.
type HTTPClientLoggingDecorator struct {
	client   HTTPClient
	provider string
	logger   ports.Logger
}

// NewHTTPClientLoggingDecorator wraps client with request logging
func NewHTTPClientLoggingDecorator(client HTTPClient, provider string, logger ports.Logger) *HTTPClientLoggingDecorator {
	return &HTTPClientLoggingDecorator{
		client:   client,
		provider: provider,
		logger:   logger,
	}
}

// Do wraps the request with structured logging
func (d *HTTPClientLoggingDecorator) Do(req *http.Request) (*http.Response, error) {
	d.logger.Debug("Upstream request started",
		ports.F("provider", d.provider),
		ports.F("host", req.URL.Host),
		ports.F("path", req.URL.Path),
		ports.F("event", "request"))

	startTime := time.Now()
	resp, err := d.client.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		d.logger.Error("Upstream request failed",
			ports.F("provider", d.provider),
			ports.F("path", req.URL.Path),
			ports.F("event", "error"),
			ports.F("duration_ms", duration.Milliseconds()),
			ports.F("error", err.Error()))
		return nil, err
	}

	fields := []ports.Field{
		ports.F("provider", d.provider),
		ports.F("path", req.URL.Path),
		ports.F("event", "response"),
		ports.F("status", resp.StatusCode),
		ports.F("duration_ms", duration.Milliseconds()),
	}
	if resp.StatusCode >= 400 {
		d.logger.Warn("Upstream request returned error status", fields...)
	} else {
		d.logger.Info("Upstream request completed", fields...)
	}
	return resp, nil
}
