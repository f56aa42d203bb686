package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kvmtools/pastekey/apitypes"
)

// Client provides a high-level interface to the pastekey API, handling
// request formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a high-level API client using the internal low-level Transport.
// The addr parameter specifies the TCP address (host:port) of the API server.
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithPassword constructs a client that authenticates with the given password.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport implementation.
// This is primarily useful for testing or when advanced transport configuration is needed.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the version and identity of the pastekey server.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

// PingCtx is the context-aware version of Ping.
func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	const path = "ping"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PingResponse](raw)
}

// Paste sends text to be replayed as keystrokes on the remote target. The
// text must already be layout-translated to US characters; language records
// the layout it was typed in.
func (c *Client) Paste(text, language string) (*apitypes.PasteResponse, error) {
	return c.PasteCtx(context.Background(), text, language)
}

func (c *Client) PasteCtx(ctx context.Context, text, language string) (*apitypes.PasteResponse, error) {
	const path = "paste"
	req := apitypes.PasteRequest{Text: text, Language: language}
	payloadBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal paste request: %w", err)
	}
	raw, err := c.transport.DoCtx(ctx, path, string(payloadBytes), nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PasteResponse](raw)
}

// LayoutsList retrieves all supported input languages.
func (c *Client) LayoutsList() (*apitypes.LayoutsListResponse, error) {
	return c.LayoutsListCtx(context.Background())
}

func (c *Client) LayoutsListCtx(ctx context.Context) (*apitypes.LayoutsListResponse, error) {
	const path = "layouts/list"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.LayoutsListResponse](raw)
}

// LayoutGet resolves a single language by its code.
func (c *Client) LayoutGet(language string) (*apitypes.LayoutInfo, error) {
	return c.LayoutGetCtx(context.Background(), language)
}

func (c *Client) LayoutGetCtx(ctx context.Context, language string) (*apitypes.LayoutInfo, error) {
	pathParams := map[string]string{"language": language}
	const path = "layouts/{language}"
	raw, err := c.transport.DoCtx(ctx, path, nil, pathParams)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.LayoutInfo](raw)
}

// CaptureSet enables or disables forwarding of raw console keystrokes to the
// remote target. Dialogs disable capture while open so typed text stays
// local.
func (c *Client) CaptureSet(enabled bool) (*apitypes.CaptureResponse, error) {
	return c.CaptureSetCtx(context.Background(), enabled)
}

func (c *Client) CaptureSetCtx(ctx context.Context, enabled bool) (*apitypes.CaptureResponse, error) {
	path := "capture/disable"
	if enabled {
		path = "capture/enable"
	}
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.CaptureResponse](raw)
}

// CaptureStatus reports whether raw keyboard capture is currently enabled.
func (c *Client) CaptureStatus() (*apitypes.CaptureResponse, error) {
	return c.CaptureStatusCtx(context.Background())
}

func (c *Client) CaptureStatusCtx(ctx context.Context) (*apitypes.CaptureResponse, error) {
	const path = "capture/status"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.CaptureResponse](raw)
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	// Error responses always carry both status and title; PasteResponse
	// reuses "status" for its domain result, so title alone disambiguates.
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && problem.Title != "" {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
