// Package gluetun is a thin client for the gluetun control server.
// It answers two questions: which port is currently forwarded, and
// whether the VPN tunnel is up.
package gluetun

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/slsksticky/slsksticky/internal/config"
	"github.com/slsksticky/slsksticky/internal/pkg/logger"
)

// ErrUnreachable indicates a transient failure talking to gluetun:
// connection failure, timeout, or a 5xx response. Callers retry on the
// next tick.
var ErrUnreachable = errors.New("gluetun unreachable")

// TunnelStatus is the reported state of the VPN tunnel
type TunnelStatus string

const (
	TunnelUp      TunnelStatus = "up"
	TunnelDown    TunnelStatus = "down"
	TunnelUnknown TunnelStatus = "unknown"
)

// Client queries the gluetun control server. It holds no state beyond
// the configured HTTP client; every call reflects live remote state.
type Client struct {
	http *resty.Client
	log  *logger.Logger
}

// NewClient creates a gluetun client from configuration
func NewClient(cfg *config.GluetunConfig, log *logger.Logger) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL()).
		SetTimeout(cfg.Timeout())

	switch cfg.AuthType {
	case "basic":
		http.SetBasicAuth(cfg.Username, cfg.Password)
	default:
		http.SetHeader("X-API-Key", cfg.APIKey)
	}

	return &Client{
		http: http,
		log:  log.Component("gluetun"),
	}
}

// ForwardedPort returns the currently forwarded port, or 0 if port
// forwarding is not active. The zero case covers both a 2xx response
// without a port and the 400/404 responses gluetun serves while
// forwarding is not (yet) established; neither is an error.
func (c *Client) ForwardedPort(ctx context.Context) (int, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/v1/portforward")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		var body struct {
			Port int `json:"port"`
		}
		if err := json.Unmarshal(resp.Body(), &body); err != nil {
			return 0, fmt.Errorf("%w: parsing portforward response: %v", ErrUnreachable, err)
		}
		return body.Port, nil
	case status == http.StatusBadRequest || status == http.StatusNotFound:
		// Not forwarding yet, e.g. during VPN reconnection
		c.log.Debug("no forwarded port advertised", "status", status)
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: HTTP %d", ErrUnreachable, status)
	}
}

// TunnelStatus reports whether the VPN tunnel is up
func (c *Client) TunnelStatus(ctx context.Context) (TunnelStatus, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/v1/vpn/status")
	if err != nil {
		return TunnelUnknown, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return TunnelUnknown, fmt.Errorf("%w: HTTP %d", ErrUnreachable, resp.StatusCode())
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return TunnelUnknown, fmt.Errorf("%w: parsing vpn status response: %v", ErrUnreachable, err)
	}

	switch body.Status {
	case "running":
		return TunnelUp, nil
	case "stopped":
		return TunnelDown, nil
	default:
		return TunnelUnknown, nil
	}
}
