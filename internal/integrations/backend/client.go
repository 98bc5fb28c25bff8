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
)

// credentialsRequest is the body of /auth/login and /auth/register.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status string `json:"status"`
	App    string `json:"app"`
}

// errorBody is the FastAPI-style error envelope. Detail is left raw because
// validation errors return a list instead of a string.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// HTTPStatusError captures non-2xx backend responses.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	// Detail is the server-provided human readable message, empty when the
	// body was not JSON or carried no string detail.
	Detail string
	Body   string
}

func (e *HTTPStatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Detail)
	}
	return fmt.Sprintf("backend: unexpected status %d from %s", e.StatusCode, e.URL)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

func (e *HTTPStatusError) ErrorDetail() string {
	return e.Detail
}

// Client talks to the chief-of-staff REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client for baseURL. The default HTTP client has no
// timeout: a hung request stays pending until the network stack gives up.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("backend: base URL must not be empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("backend: parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend: base URL %q must be http or https", baseURL)
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return http.DefaultClient
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

// GoogleLoginURL is the full-page redirect entry point of the OAuth flow.
func (c *Client) GoogleLoginURL() string {
	return c.endpoint("/auth/google/login")
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	return c.authenticate(ctx, "/auth/login", email, password)
}

// Register creates an account and returns its access token.
func (c *Client) Register(ctx context.Context, email, password string) (string, error) {
	return c.authenticate(ctx, "/auth/register", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (string, error) {
	body, err := json.Marshal(credentialsRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("backend: marshal credentials: %w", err)
	}

	url := c.endpoint(path)
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if reqErr != nil {
		return "", fmt.Errorf("backend: create auth request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.doJSONRequest(req, url)
	if err != nil {
		return "", fmt.Errorf("backend: auth request failed: %w", err)
	}

	var payload tokenResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return "", fmt.Errorf("backend: decode auth response: %w", decErr)
	}
	if payload.AccessToken == "" {
		return "", errors.New("backend: auth response missing access_token")
	}
	return payload.AccessToken, nil
}

// Chat sends one message with bearer authorization and returns the
// assistant's reply.
func (c *Client) Chat(ctx context.Context, token, message string) (string, error) {
	body, err := json.Marshal(chatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("backend: marshal chat request: %w", err)
	}

	url := c.endpoint("/chat/")
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if reqErr != nil {
		return "", fmt.Errorf("backend: create chat request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	raw, err := c.doJSONRequest(req, url)
	if err != nil {
		return "", fmt.Errorf("backend: chat request failed: %w", err)
	}

	var payload chatResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return "", fmt.Errorf("backend: decode chat response: %w", decErr)
	}
	return payload.Response, nil
}

// Health calls the unauthenticated liveness endpoint.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	url := c.endpoint("/health")
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if reqErr != nil {
		return HealthStatus{}, fmt.Errorf("backend: create health request: %w", reqErr)
	}

	raw, err := c.doJSONRequest(req, url)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("backend: health request failed: %w", err)
	}

	var payload HealthStatus
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return HealthStatus{}, fmt.Errorf("backend: decode health response: %w", decErr)
	}
	return payload, nil
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Detail:     parseDetail(buf),
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

func parseDetail(buf []byte) string {
	var body errorBody
	if err := json.Unmarshal(buf, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return ""
	}
	return strings.TrimSpace(detail)
}
