package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/liftedinit/custody/internal/config"
)

// LedgerClient talks to the ledger service over HTTP/JSON. Every call is a single attempt.
type LedgerClient struct {
	rest *resty.Client
}

// NewLedgerClient initializes the HTTP client for the configured ledger service.
func NewLedgerClient(cfg config.LedgerConfig) *LedgerClient {
	rest := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIURL, "/")).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{}).
		SetRetryCount(0)

	return &LedgerClient{rest: rest}
}

// FetchJSON issues one request and decodes a 2xx JSON body into out. A nil out discards the body.
func (c *LedgerClient) FetchJSON(ctx context.Context, method, path string, body, out interface{}) error {
	return c.fetch(ctx, method, path, nil, body, out)
}

func (c *LedgerClient) fetch(ctx context.Context, method, path string, pathParams map[string]string, body, out interface{}) error {
	req := c.rest.R().SetContext(ctx)
	if pathParams != nil {
		req.SetPathParams(pathParams)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	slog.Debug("Ledger request", "method", method, "path", path)
	resp, err := req.Execute(method, path)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}

	if !resp.IsSuccess() {
		rejection := &RejectionError{StatusCode: resp.StatusCode(), Message: rejectionMessage(resp.Body())}
		slog.Debug("Ledger rejected request", "method", method, "path", path, "status", rejection.StatusCode, "message", rejection.Message)
		return rejection
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}

// rejectionMessage extracts the service-provided reason, if any.
func rejectionMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...), "component", "resty")
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	slog.Warn(fmt.Sprintf(format, v...), "component", "resty")
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...), "component", "resty")
}
