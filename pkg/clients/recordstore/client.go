package recordstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/boilerdesk/internal/config"
)

// ErrNotFound is matched by APIError values carrying a 404 status.
var ErrNotFound = errors.New("record not found")

// APIError is a non-2xx answer from the record service.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("record store %s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("record store %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match 404 answers.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// apiError mirrors the error bodies the record service sends back. Both the
// message and error keys have been observed.
type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Client is a resty-backed client of the external record service. Every call is a
// single request/response: no retries and no idempotency keys.
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient builds a record store client from configuration.
func NewClient(cfg config.RecordStoreConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	return &Client{
		httpClient: restyClient,
		logger:     logger,
	}
}

// do issues one request. result may be nil for calls whose body is ignored.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	apiErr := new(apiError)

	req := c.httpClient.R().
		SetContext(ctx).
		SetError(apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Warn("record store request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("record store %s %s: %w", method, path, err)
	}

	c.logger.Debug("record store request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", resp.Time()))

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		return &APIError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode(),
			Message: message,
		}
	}

	return nil
}
