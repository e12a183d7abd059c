// Package client is the HTTP client library for the stack service. It
// speaks the binary element encoding on push/pop and rehydrates boundary
// error codes, so callers see the same typed failures the device reports.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dshibkova/intstack/pkg/device"
)

// ErrNotPresent is returned when the stack service cannot be reached at
// all. Callers are expected to check for it before reporting operation
// failures: an absent device is not the same thing as a failed operation.
var ErrNotPresent = errors.New("stack device not present")

// Client represents a stack service client connection
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config holds configuration for the client
type Config struct {
	// Host is the server hostname or IP address (default: "localhost")
	Host string
	// Port is the server port (default: 8080)
	Port int
	// Timeout is the HTTP request timeout (default: 30s)
	Timeout time.Duration
	// APIKey authenticates requests when the server has auth enabled
	APIKey string
	// MaxIdleConns is the maximum number of idle connections (default: 10)
	MaxIdleConns int
	// MaxConnsPerHost is the maximum connections per host (default: 10)
	MaxConnsPerHost int
}

// DefaultConfig returns the default client configuration
func DefaultConfig() *Config {
	return &Config{
		Host:            "localhost",
		Port:            8080,
		Timeout:         30 * time.Second,
		MaxIdleConns:    10,
		MaxConnsPerHost: 10,
	}
}

// New creates a new stack client with the given configuration
func New(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 10
	}
	if config.MaxConnsPerHost == 0 {
		config.MaxConnsPerHost = 10
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxConnsPerHost:     config.MaxConnsPerHost,
		MaxIdleConnsPerHost: config.MaxConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL: fmt.Sprintf("http://%s:%d", config.Host, config.Port),
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
	}
}

// NewDefault creates a client with default configuration
func NewDefault() *Client {
	return New(DefaultConfig())
}

// BaseURL returns the server base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// errorEnvelope is the server's failure response shape.
type errorEnvelope struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// do performs a request and hands back the raw response. Transport-level
// failures collapse into ErrNotPresent.
func (c *Client) do(method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPresent, err)
	}
	return resp, nil
}

// decodeError turns a non-2xx response into a typed error, preferring the
// rehydrated device error when the envelope carries a known code.
func decodeError(resp *http.Response) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Code != 0 {
		if devErr := device.FromCode(env.Code); devErr != nil {
			return devErr
		}
		return fmt.Errorf("server error: %s - %s", env.Error, env.Message)
	}
	return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
}

// Ping checks that the stack service is present and healthy. It is the
// boundary's device-presence probe: callers run it before any operation.
func (c *Client) Ping() error {
	resp, err := c.do("GET", "/health", "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check returned status %d", ErrNotPresent, resp.StatusCode)
	}
	return nil
}

// Push places v on the stack. A full stack fails with device.ErrRange.
func (c *Client) Push(v int32) error {
	resp, err := c.do("POST", "/stack", "application/octet-stream",
		bytes.NewReader(device.EncodeInt32(v)))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	resp.Body.Close()
	return nil
}

// Pop removes and returns the top element. The second return value is false
// when the stack was empty; that case is not an error.
func (c *Client) Pop() (int32, bool, error) {
	resp, err := c.do("DELETE", "/stack", "", nil)
	if err != nil {
		return 0, false, err
	}

	switch resp.StatusCode {
	case http.StatusNoContent:
		resp.Body.Close()
		return 0, false, nil
	case http.StatusOK:
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return 0, false, fmt.Errorf("failed to read response body: %w", err)
		}
		v, err := device.DecodeInt32(body)
		if err != nil {
			return 0, false, fmt.Errorf("malformed pop payload: %w", err)
		}
		return v, true, nil
	default:
		return 0, false, decodeError(resp)
	}
}

// SetSize resizes the stack to n elements. Shrinking below the current
// depth silently discards the newest elements; the oldest n survive.
func (c *Client) SetSize(n int32) error {
	resp, err := c.do("PUT", "/stack/size", "application/octet-stream",
		bytes.NewReader(device.EncodeInt32(n)))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	resp.Body.Close()
	return nil
}

// Unwind pops until the stack is empty and returns the values in pop order
// (newest first).
func (c *Client) Unwind() ([]int32, error) {
	var values []int32
	for {
		v, ok, err := c.Pop()
		if err != nil {
			return values, err
		}
		if !ok {
			return values, nil
		}
		values = append(values, v)
	}
}

// Stats reports the current depth and capacity.
func (c *Client) Stats() (depth, capacity int, err error) {
	resp, err := c.do("GET", "/stack", "", nil)
	if err != nil {
		return 0, 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, 0, decodeError(resp)
	}
	defer resp.Body.Close()

	var env struct {
		OK     bool `json:"ok"`
		Result struct {
			Depth    int `json:"depth"`
			Capacity int `json:"capacity"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return 0, 0, fmt.Errorf("failed to parse stats response: %w", err)
	}
	return env.Result.Depth, env.Result.Capacity, nil
}
