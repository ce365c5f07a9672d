package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/secrimpo/internal/netx"
	"github.com/dmitrijs2005/secrimpo/internal/syncapi"
)

type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient returns a client for the server at baseURL. A nil hc uses a
// fresh http.Client; per-call deadlines come from the caller's context.
func NewHTTPClient(baseURL string, hc *http.Client) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}
	if hc == nil {
		hc = &http.Client{}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), client: hc}, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, netx.BuildURL(c.baseURL, nil, "sincronizar", "teste"), nil, nil)
}

func (c *HTTPClient) Sync(ctx context.Context, env *syncapi.Envelope) (*syncapi.Response, error) {
	var resp syncapi.Response
	if err := c.do(ctx, http.MethodPost, netx.BuildURL(c.baseURL, nil, "sincronizar"), env, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Status(ctx context.Context, user string) (*syncapi.Status, error) {
	var st syncapi.Status
	if err := c.do(ctx, http.MethodGet, netx.BuildURL(c.baseURL, nil, "sincronizar", "status", user), nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *HTTPClient) History(ctx context.Context, user string, limit int) ([]syncapi.HistoryEntry, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}

	var entries []syncapi.HistoryEntry
	if err := c.do(ctx, http.MethodGet, netx.BuildURL(c.baseURL, q, "sincronizar", "historico", user), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, rawURL string, body, out any) error {
	req, err := netx.NewJSONRequest(ctx, method, rawURL, body)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return mapError(err)
	}
	defer resp.Body.Close()

	payload, err := netx.ReadBody(resp.Body)
	if err != nil {
		return mapError(err)
	}

	if !netx.IsSuccess(resp.StatusCode) {
		var eb syncapi.ErrorBody
		_ = json.Unmarshal(payload, &eb)
		return &ServerError{StatusCode: resp.StatusCode, Message: eb.Message()}
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// mapError classifies a failed round trip. Anything that kept us from
// getting an HTTP answer means the server is unavailable.
func mapError(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
