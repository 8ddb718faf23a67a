package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tremote/internal/config"
	"tremote/internal/logging"
)

const (
	rpcPath          = "/transmission/rpc"
	sessionHeader    = "X-Transmission-Session-Id"
	defaultTimeout   = 10 * time.Second
	maxErrorBodySize = 4096
)

type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	logger   logging.Logger

	mu        sync.RWMutex
	sessionID string
	tag       atomic.Int64
}

func New(cfg config.CoreConfig) *Client {
	c := NewWithBaseURL(cfg.DaemonURL(), cfg.Daemon.Username, cfg.Daemon.Password)
	c.http.Timeout = cfg.DaemonTimeout()
	return c
}

func NewWithBaseURL(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		username: username,
		password: password,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logging.Nop(),
	}
}

func (c *Client) SetLogger(logger logging.Logger) {
	if logger == nil {
		logger = logging.Nop()
	}
	c.logger = logger
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

type rpcRequest struct {
	Method    string `json:"method"`
	Arguments any    `json:"arguments,omitempty"`
	Tag       int64  `json:"tag"`
}

type rpcResponse struct {
	Result    string          `json:"result"`
	Arguments json.RawMessage `json:"arguments"`
	Tag       int64           `json:"tag"`
}

// call sends one RPC. A 409 answer carries a fresh session id; the request
// is retried once with it.
func (c *Client) call(ctx context.Context, method string, args any, out any) error {
	tag := c.tag.Add(1)
	body, err := json.Marshal(rpcRequest{Method: method, Arguments: args, Tag: tag})
	if err != nil {
		return err
	}
	resp, err := c.post(ctx, body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusConflict {
		id := resp.Header.Get(sessionHeader)
		drain(resp)
		if id == "" {
			return &APIError{StatusCode: resp.StatusCode, Message: "missing session id"}
		}
		c.mu.Lock()
		c.sessionID = id
		c.mu.Unlock()
		c.logger.Debug("rpc session renewed", logging.F("method", method))
		resp, err = c.post(ctx, body)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	var payload rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if payload.Result != "success" {
		return &RPCError{Method: method, Result: payload.Result}
	}
	if out == nil || len(payload.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload.Arguments, out); err != nil {
		return fmt.Errorf("%s: decode arguments: %w", method, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+rpcPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if id := c.SessionID(); id != "" {
		req.Header.Set(sessionHeader, id)
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	return c.http.Do(req)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
	_ = resp.Body.Close()
}

func decodeAPIError(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return &APIError{StatusCode: resp.StatusCode, Message: "unauthorized; check daemon username and password"}
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	msg := strings.TrimSpace(stripTags(string(data)))
	if msg == "" {
		msg = resp.Status
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

// stripTags flattens the small HTML error pages the daemon serves.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteByte(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// RPCError is returned when the daemon answers with a non-success result.
type RPCError struct {
	Method string
	Result string
}

func (e *RPCError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("rpc %s: %s", e.Method, e.Result)
}

func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

func IsUnauthorized(err error) bool {
	apiErr := AsAPIError(err)
	return apiErr != nil && apiErr.StatusCode == http.StatusUnauthorized
}
