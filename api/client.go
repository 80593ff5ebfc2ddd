package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-session/core"
)

// Session is the part of core.Service the client depends on.
type Session interface {
	Config() core.Config
	Execute(ctx context.Context, req core.RequestDescriptor) (core.Response, error)
	Logout(ctx context.Context) error
	ExtractImageURLs(response any) []string
}

type Client struct {
	session   Session
	transport core.Transport
	config    core.Config
}

// NewClient binds the client to a session. transport serves the public
// endpoints (registration, activation, password reset, catalog).
func NewClient(session Session, transport core.Transport) (*Client, error) {
	if session == nil {
		return nil, core.NewBadInputError("api: session is required", nil)
	}
	if transport == nil {
		return nil, core.NewBadInputError("api: transport is required", nil)
	}
	return &Client{
		session:   session,
		transport: transport,
		config:    session.Config(),
	}, nil
}

func (c *Client) endpoint(path string, segments ...string) string {
	resolved := c.config.ResolveURL(path)
	for _, segment := range segments {
		segment = strings.Trim(strings.TrimSpace(segment), "/")
		if segment == "" {
			continue
		}
		resolved = strings.TrimRight(resolved, "/") + "/" + url.PathEscape(segment) + "/"
	}
	return resolved
}

func (c *Client) public(ctx context.Context, operation string, method string, endpoint string, query map[string]string, payload any) (core.Response, error) {
	req, err := buildRequest(method, endpoint, query, payload, c.config)
	if err != nil {
		return core.Response{}, err
	}
	res, err := c.transport.Do(ctx, req)
	if err != nil {
		return core.Response{}, err
	}
	if !res.Success() {
		return res, responseError(operation, res)
	}
	return res, nil
}

func (c *Client) authenticated(ctx context.Context, operation string, method string, endpoint string, query map[string]string, payload any) (core.Response, error) {
	req, err := buildRequest(method, endpoint, query, payload, c.config)
	if err != nil {
		return core.Response{}, err
	}
	res, err := c.session.Execute(ctx, req)
	if err != nil {
		return core.Response{}, err
	}
	if !res.Success() {
		return res, responseError(operation, res)
	}
	return res, nil
}

func buildRequest(method string, endpoint string, query map[string]string, payload any, cfg core.Config) (core.RequestDescriptor, error) {
	req := core.RequestDescriptor{
		Method:  method,
		URL:     endpoint,
		Query:   query,
		Timeout: cfg.RequestTimeout,
	}
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return core.RequestDescriptor{}, core.NewBadInputError("api: encode request body: "+err.Error(), nil)
		}
		req.Body = encoded
		req.Headers = map[string]string{core.HeaderContentType: core.ContentTypeJSON}
	}
	return req, nil
}

func decodeObject(operation string, body []byte) (map[string]any, error) {
	decoded := map[string]any{}
	if len(strings.TrimSpace(string(body))) == 0 {
		return decoded, nil
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, core.NewOperationFailedError("api: "+operation+" returned an unreadable body", http.StatusBadGateway, map[string]any{
			"operation": operation,
		})
	}
	return decoded, nil
}

// decodeList accepts a bare JSON array or a paginated {"results": [...]}
// envelope.
func decodeList(operation string, body []byte) ([]map[string]any, error) {
	var decoded any
	if len(strings.TrimSpace(string(body))) == 0 {
		return []map[string]any{}, nil
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, core.NewOperationFailedError("api: "+operation+" returned an unreadable body", http.StatusBadGateway, map[string]any{
			"operation": operation,
		})
	}
	var items []any
	switch typed := decoded.(type) {
	case []any:
		items = typed
	case map[string]any:
		for _, key := range []string{"results", "data", "items"} {
			if list, ok := typed[key].([]any); ok {
				items = list
				break
			}
		}
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if object, ok := item.(map[string]any); ok {
			out = append(out, object)
		}
	}
	return out, nil
}

func withExtra(payload map[string]any, extra map[string]any) map[string]any {
	for key, value := range extra {
		if _, exists := payload[key]; exists {
			continue
		}
		payload[key] = value
	}
	return payload
}
