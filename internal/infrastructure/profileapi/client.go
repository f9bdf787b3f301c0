// Package profileapi is the HTTP adapter for the remote customer and catalog
// service.
package profileapi

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

	"github.com/rs/zerolog"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 10 << 20
	functionsKey   = "x-functions-key"
)

// Config captures the remote endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client implements ports.ProfileGateway over JSON/HTTP. Every call runs
// under its own timeout and every failure is classified as one of
// domain.ErrRemoteUnavailable, domain.ErrRemoteRejected or
// domain.ErrProfileNotFound.
type Client struct {
	base    *url.URL
	apiKey  string
	timeout time.Duration
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("profileapi: invalid base url %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base:    base,
		apiKey:  cfg.APIKey,
		timeout: timeout,
		http:    &http.Client{},
		log:     log,
	}, nil
}

func (c *Client) CreateCustomer(ctx context.Context, profile domain.Profile) (*domain.Profile, error) {
	var created customerDTO
	if err := c.do(ctx, http.MethodPost, "/api/customers", customerFromDomain(profile), &created); err != nil {
		return nil, err
	}
	out := created.toDomain()
	if out.Username == "" {
		out.Username = profile.Username
	}
	return &out, nil
}

// GetCustomerByUsername maps a 404 to domain.ErrProfileNotFound.
func (c *Client) GetCustomerByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	var dto customerDTO
	err := c.do(ctx, http.MethodGet, "/api/customers/by-username/"+url.PathEscape(username), nil, &dto)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, username)
		}
		return nil, err
	}
	profile := dto.toDomain()
	return &profile, nil
}

func (c *Client) ListCustomers(ctx context.Context) ([]domain.Profile, error) {
	var dtos []customerDTO
	if err := c.do(ctx, http.MethodGet, "/api/customers", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.Profile, len(dtos))
	for i, d := range dtos {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var dtos []productDTO
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.Product, len(dtos))
	for i, d := range dtos {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var dtos []orderDTO
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.Order, len(dtos))
	for i, d := range dtos {
		out[i] = d.toDomain()
	}
	return out, nil
}

// InitializeStorage asks the remote service to create its tables, queues and
// containers. It is idempotent on the remote side.
func (c *Client) InitializeStorage(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/storage/initialize", nil, nil)
}

// statusError carries a non-2xx response.
type statusError struct {
	method string
	path   string
	code   int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.method, e.path, e.code)
}

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.code == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode %s %s: %w", domain.ErrRemoteRejected, method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("%w: build %s %s: %w", domain.ErrRemoteUnavailable, method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(functionsKey, c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Dur("elapsed", time.Since(start)).Msg("profile api request failed")
		return fmt.Errorf("%w: %s %s: %w", domain.ErrRemoteUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("profile api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		se := &statusError{method: method, path: path, code: resp.StatusCode}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, se)
		}
		return fmt.Errorf("%w: %w", domain.ErrRemoteRejected, se)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", domain.ErrRemoteUnavailable, method, path, err)
	}
	return nil
}
