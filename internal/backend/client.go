package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
)

const maxBodyBytes = 8 << 20

// Config describes how to reach the tutoring backend.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Observer records backend call latency.
type Observer interface {
	ObserveBackendRequest(method, resource string, status int, duration time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client talks to the backend REST API using the {success, data, message} envelope.
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	observer Observer
	logger   *zap.Logger
}

// NewClient builds a Client for cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Do sends one request. body is JSON encoded when non-nil and the envelope's
// data is decoded into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build backend request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	status := http.StatusServiceUnavailable
	if resp != nil {
		status = resp.StatusCode
	}
	if c.observer != nil {
		c.observer.ObserveBackendRequest(method, resourceName(path), status, time.Since(start))
	}
	if err != nil {
		c.logger.Warn("backend request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return unavailable(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return unavailable(err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return appErrors.Wrap(fmt.Errorf("backend status %d", resp.StatusCode),
			appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, appErrors.ErrBackendUnavailable.Message)
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= http.StatusBadRequest {
				return rejected(http.StatusText(resp.StatusCode))
			}
			return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "backend returned malformed response")
		}
	}
	if (env.Success != nil && !*env.Success) || resp.StatusCode >= http.StatusBadRequest {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return rejected(msg)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "backend returned unexpected data")
	}
	return nil
}

func unavailable(err error) error {
	msg := appErrors.ErrBackendUnavailable.Message
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "backend did not respond in time"
	}
	return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, msg)
}

func rejected(message string) error {
	return appErrors.Clone(appErrors.ErrBackendRejected, message)
}

func resourceName(path string) string {
	trimmed := strings.Trim(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// Resource is the list/update/delete surface of one backend collection.
type Resource[T any] struct {
	client *Client
	path   string
}

// NewResource binds a Resource to path, for example "tutors".
func NewResource[T any](client *Client, path string) *Resource[T] {
	return &Resource[T]{client: client, path: "/" + strings.Trim(path, "/")}
}

// List fetches the whole collection.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := r.client.Do(ctx, http.MethodGet, r.path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Update sends a partial change set for id in one call.
func (r *Resource[T]) Update(ctx context.Context, id string, changes map[string]any) error {
	return r.client.Do(ctx, http.MethodPatch, r.path+"/"+url.PathEscape(id), changes, nil)
}

// Delete removes id.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.client.Do(ctx, http.MethodDelete, r.path+"/"+url.PathEscape(id), nil, nil)
}
