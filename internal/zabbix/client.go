// Package zabbix implements the JSON-RPC client used to pull per-host
// CPU/memory statistics for the reporting window.
package zabbix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrAuth means login was rejected by the server.
	ErrAuth = errors.New("zabbix authentication failed")
	// ErrAPI wraps an error object returned by the Zabbix API.
	ErrAPI = errors.New("zabbix api error")
)

// Client is a minimal Zabbix JSON-RPC 2.0 client.
type Client struct {
	url   string
	httpc *http.Client
	token string
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (mainly for tests).
func WithHTTPClient(c *http.Client) Option {
	return func(z *Client) { z.httpc = c }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(z *Client) { z.httpc.Timeout = d }
}

// NewClient creates a client for the given API endpoint
// (e.g. https://zabbix.example.com/api_jsonrpc.php).
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:   url,
		httpc: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int    `json:"id"`
	Auth    string `json:"auth,omitempty"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *apiError       `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s - %s", e.Message, e.Data)
}

// call performs one JSON-RPC request and decodes the result into out.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
		Auth:    c.token,
	})
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 64<<20))
	if err != nil {
		return fmt.Errorf("%s: reading response: %w", method, err)
	}
	if httpResp.StatusCode >= 300 {
		return fmt.Errorf("%s: status %d", method, httpResp.StatusCode)
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("%s: decoding response: %w", method, err)
	}
	if resp.Error != nil {
		return fmt.Errorf("%w: %s: %v", ErrAPI, method, resp.Error)
	}
	if resp.Result == nil {
		return fmt.Errorf("%w: %s: no result in response", ErrAPI, method)
	}

	if out != nil {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("%s: decoding result: %w", method, err)
		}
	}
	return nil
}

// Login authenticates and stores the session token. Older servers take the
// account under "user", newer ones under "username"; the second form is
// tried when the first is rejected.
func (c *Client) Login(ctx context.Context, user, password string) error {
	var token string
	err := c.call(ctx, "user.login", map[string]string{"user": user, "password": password}, &token)
	if err != nil {
		err = c.call(ctx, "user.login", map[string]string{"username": user, "password": password}, &token)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}
	c.token = token
	return nil
}

// Version returns the server API version. It requires no authentication.
func (c *Client) Version(ctx context.Context) (string, error) {
	var v string
	if err := c.call(ctx, "apiinfo.version", map[string]any{}, &v); err != nil {
		return "", err
	}
	return v, nil
}

// Host is one monitored host.
type Host struct {
	ID   string `json:"hostid"`
	Name string `json:"host"`
}

// Hosts lists all monitored hosts.
func (c *Client) Hosts(ctx context.Context) ([]Host, error) {
	var hosts []Host
	err := c.call(ctx, "host.get", map[string]any{
		"output": []string{"hostid", "host"},
	}, &hosts)
	return hosts, err
}

// Item is one collected metric definition on a host.
type Item struct {
	ID        string `json:"itemid"`
	Name      string `json:"name"`
	Key       string `json:"key_"`
	ValueType int    `json:"value_type,string"`
	Units     string `json:"units"`
}

// Items returns a host's items restricted to the given keys.
func (c *Client) Items(ctx context.Context, hostID string, keys []string) ([]Item, error) {
	var items []Item
	err := c.call(ctx, "item.get", map[string]any{
		"hostids": hostID,
		"output":  []string{"itemid", "name", "key_", "value_type", "units"},
		"filter":  map[string]any{"key_": keys},
	}, &items)
	return items, err
}

// Trend is one hourly trend bucket.
type Trend struct {
	Min float64 `json:"min,string"`
	Max float64 `json:"max,string"`
	Avg float64 `json:"avg,string"`
	Num int     `json:"num,string"`
}

// Trends returns the trend buckets for an item inside the window.
func (c *Client) Trends(ctx context.Context, itemID string, from, till time.Time) ([]Trend, error) {
	var trends []Trend
	err := c.call(ctx, "trend.get", map[string]any{
		"itemids":   itemID,
		"time_from": from.Unix(),
		"time_till": till.Unix(),
		"output":    []string{"min", "max", "avg", "num"},
	}, &trends)
	return trends, err
}

type historyPoint struct {
	Value float64 `json:"value,string"`
}

// History returns raw history values for an item inside the window, oldest
// first. valueType follows item.value_type: floats are history type 0,
// everything else is queried as unsigned (type 3).
func (c *Client) History(ctx context.Context, itemID string, valueType int, from, till time.Time) ([]float64, error) {
	historyType := 3
	if valueType == 0 {
		historyType = 0
	}

	var points []historyPoint
	err := c.call(ctx, "history.get", map[string]any{
		"itemids":   itemID,
		"time_from": from.Unix(),
		"time_till": till.Unix(),
		"output":    "extend",
		"history":   historyType,
		"sortfield": "clock",
		"sortorder": "ASC",
		"limit":     10000,
	}, &points)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values, nil
}
