// Package kiosknet provides a client for the HTTP side of an RFID reader device.
package kiosknet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abrezinsky/rfidkiosk/internal/errors"
	"github.com/abrezinsky/rfidkiosk/internal/logger"
	"github.com/abrezinsky/rfidkiosk/internal/models"
)

// DirectoryPath is the device resource holding the user directory
const DirectoryPath = "/users.json"

// Client defines the interface for device HTTP operations
type Client interface {
	// FetchDirectory retrieves the full user directory from the device.
	// An empty body yields an empty directory. Transport and status failures
	// are ErrFetch; a malformed body is ErrParse.
	FetchDirectory(ctx context.Context) ([]models.UserRecord, error)
	// BaseURL returns the configured device base URL
	BaseURL() string
}

// HTTPClient is a real HTTP client for the reader device
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a device client for baseURL (e.g. "http://192.168.4.1")
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return NewHTTPClientWithHTTPClient(baseURL, &http.Client{Timeout: 10 * time.Second}, log)
}

// NewHTTPClientWithHTTPClient creates a device client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured device base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// FetchDirectory retrieves the user directory from the device
func (c *HTTPClient) FetchDirectory(ctx context.Context) ([]models.UserRecord, error) {
	reqURL := c.baseURL + DirectoryPath

	c.log.Debug("Device request", "method", "GET", "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Fetch("failed to create request", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Fetch("failed to connect to device", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Fetch("failed to read response", err)
	}

	c.log.Debug("Device response", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Fetchf("device returned status %d", resp.StatusCode)
	}

	return ParseDirectory(body)
}

// ParseDirectory decodes a directory body. Blank input is an empty directory.
func ParseDirectory(body []byte) ([]models.UserRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []models.UserRecord{}, nil
	}

	var users []models.UserRecord
	if err := json.Unmarshal(trimmed, &users); err != nil {
		return nil, errors.Parse("failed to parse directory", err)
	}
	if users == nil {
		users = []models.UserRecord{}
	}
	return users, nil
}

// WebSocketURL derives the device WebSocket endpoint from a host or base URL.
// "192.168.4.1" and "http://192.168.4.1" both yield "ws://192.168.4.1/ws".
func WebSocketURL(host string) (string, error) {
	u, err := parseHost(host)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	return u.String(), nil
}

// HTTPURL derives the device HTTP base URL from a host or base URL
func HTTPURL(host string) (string, error) {
	u, err := parseHost(host)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "https"
	default:
		u.Scheme = "http"
	}
	u.Path = ""
	return u.String(), nil
}

func parseHost(host string) (*url.URL, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil, fmt.Errorf("device host is empty")
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid device host %q: %w", host, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid device host %q", host)
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
