// Package gateway implements backend.Client against a session gateway: a
// sidecar process that holds the authorized messaging session and exposes
// it over HTTP/JSON. The relay never speaks the messaging protocol itself.
//
// Endpoints used:
//
//	POST /v1/session/connect                  establish the session
//	GET  /v1/session                          session liveness
//	GET  /v1/sources/{source}/messages?ids=   fetch messages by ID
//	GET  /v1/files/{storage_id}               read a part (Range header)
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/backend"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/tracing"
)

// Config configures a gateway client.
type Config struct {
	// BaseURL is the gateway root, e.g. "http://127.0.0.1:8081".
	BaseURL string

	// SessionToken is the already-authorized session string.
	SessionToken string

	// Timeout bounds every call, including a single part read.
	Timeout time.Duration

	// MaxIdleConns sizes the connection pool.
	MaxIdleConns int
}

// Client talks to the session gateway over a pooled HTTP transport.
type Client struct {
	config    Config
	client    *http.Client
	connected atomic.Bool
	logger    *slog.Logger
}

var (
	_ backend.Client = (*Client)(nil)
	_ backend.Pinger = (*Client)(nil)
)

// New creates a gateway client. No network I/O happens until Connect.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 64
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     90 * time.Second,
		// Media parts are already compressed.
		DisableCompression: true,
		ForceAttemptHTTP2:  true,
	}

	return &Client{
		config: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		logger: slog.Default().With("component", "backend.gateway"),
	}
}

type connectRequest struct {
	Session string `json:"session"`
}

type sessionResponse struct {
	Connected bool `json:"connected"`
}

type messagesResponse struct {
	Messages []backend.Message `json:"messages"`
}

// Connect implements backend.Client.
func (c *Client) Connect(ctx context.Context) error {
	body, err := json.Marshal(connectRequest{Session: c.config.SessionToken})
	if err != nil {
		return fmt.Errorf("failed to marshal connect request: %w", err)
	}

	var out sessionResponse
	if err := c.doJSON(ctx, "connect", http.MethodPost, "/v1/session/connect", body, &out); err != nil {
		c.connected.Store(false)
		return err
	}
	c.connected.Store(out.Connected)
	if !out.Connected {
		return &backend.Error{Op: "connect", Message: "gateway reported session not connected"}
	}

	c.logger.Info("backend session connected", "base_url", c.config.BaseURL)
	return nil
}

// IsConnected implements backend.Client.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Ping implements backend.Pinger.
func (c *Client) Ping(ctx context.Context) error {
	var out sessionResponse
	if err := c.doJSON(ctx, "ping", http.MethodGet, "/v1/session", nil, &out); err != nil {
		c.connected.Store(false)
		return err
	}
	c.connected.Store(out.Connected)
	if !out.Connected {
		return backend.ErrNotConnected
	}
	return nil
}

// FetchMessages implements backend.Client.
func (c *Client) FetchMessages(ctx context.Context, source string, ids []int64) ([]backend.Message, error) {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	path := "/v1/sources/" + url.PathEscape(source) + "/messages?ids=" + strings.Join(parts, ",")

	var out messagesResponse
	if err := c.doJSON(ctx, "fetch_messages", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// ReadPart implements backend.Client.
func (c *Client) ReadPart(ctx context.Context, media *backend.Media, offset, limit int64) ([]byte, error) {
	q := url.Values{}
	q.Set("access_hash", strconv.FormatInt(media.AccessHash, 10))
	q.Set("file_reference", base64.RawURLEncoding.EncodeToString(media.FileReference))
	q.Set("dc", strconv.Itoa(media.DCID))
	path := "/v1/files/" + strconv.FormatInt(media.StorageID, 10) + "?" + q.Encode()

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+limit-1))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &backend.Error{Op: "read_part", Cause: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// The gateway ignored the Range header and sent the whole file.
		if offset > 0 {
			if _, err := io.CopyN(io.Discard, resp.Body, offset); err != nil {
				if errors.Is(err, io.EOF) {
					return nil, nil
				}
				return nil, &backend.Error{Op: "read_part", Message: "truncated part", Cause: err}
			}
		}
		fallthrough
	case http.StatusPartialContent:
		data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
		if err != nil {
			return nil, &backend.Error{Op: "read_part", Message: "truncated part", Cause: err}
		}
		return data, nil
	case http.StatusRequestedRangeNotSatisfiable:
		// Past the end of the file.
		return nil, nil
	default:
		return nil, c.statusError("read_part", resp)
	}
}

// Close implements backend.Client.
func (c *Client) Close() error {
	c.connected.Store(false)
	c.client.CloseIdleConnections()
	c.logger.Info("backend client closed")
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.config.BaseURL, "/")+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.config.SessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.SessionToken)
	}
	tracing.Inject(ctx, req.Header)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// doJSON performs a single request and decodes a 2xx JSON body into out.
// Retrying is left to callers.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body []byte, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	c.logger.Debug("sending request to gateway", "op", op, "method", method, "path", req.URL.Path)

	resp, err := c.client.Do(req)
	if err != nil {
		return &backend.Error{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(op, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &backend.Error{Op: op, StatusCode: resp.StatusCode, Message: "malformed response", Cause: err}
	}
	return nil
}

// statusError maps a non-2xx gateway response to a backend error. A session
// rejection also marks the client disconnected so the supervisor reconnects.
func (c *Client) statusError(op string, resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	e := &backend.Error{Op: op, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		c.connected.Store(false)
		e.Cause = backend.ErrUnauthorized
	case http.StatusServiceUnavailable:
		c.connected.Store(false)
		e.Cause = backend.ErrNotConnected
	}
	return e
}
