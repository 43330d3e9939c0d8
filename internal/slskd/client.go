// Package slskd is a client for the slskd administrative API, covering
// the subset this daemon needs: reading and updating the persisted
// options document, and triggering a Soulseek server reconnect.
package slskd

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"gopkg.in/yaml.v3"

	"github.com/slsksticky/slsksticky/internal/config"
	"github.com/slsksticky/slsksticky/internal/pkg/logger"
)

var (
	// ErrUnreachable indicates a transient failure: connection error,
	// timeout, or 5xx. Retried on the next tick.
	ErrUnreachable = errors.New("slskd unreachable")

	// ErrAuth indicates a 401/403 response. The API key is missing the
	// Administrator role or SLSKD_REMOTE_CONFIGURATION is not enabled;
	// this does not self-heal by retrying, though retries continue in
	// case credentials are fixed externally.
	ErrAuth = errors.New("slskd authorization failed")

	// ErrConfig indicates the options document was malformed or missing
	// the expected soulseek.listen_port field.
	ErrConfig = errors.New("slskd options document malformed")
)

const (
	optionsPath = "/api/v0/options/yaml"
	serverPath  = "/api/v0/server"
)

// Client talks to a single slskd instance
type Client struct {
	http *resty.Client
	log  *logger.Logger
}

// NewClient creates an slskd client from configuration
func NewClient(cfg *config.SlskdConfig, log *logger.Logger) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL()).
		SetTimeout(cfg.Timeout()).
		SetHeader("X-API-Key", cfg.APIKey)

	if cfg.HTTPS && !cfg.VerifySSL {
		http.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	return &Client{
		http: http,
		log:  log.Component("slskd"),
	}
}

// ListenPort reads the currently configured Soulseek listen port
func (c *Client) ListenPort(ctx context.Context) (int, error) {
	doc, err := c.fetchOptions(ctx)
	if err != nil {
		return 0, err
	}
	return documentListenPort(doc)
}

// SetListenPort writes port into the persisted options document. The
// full document is read, only soulseek.listen_port is replaced, and the
// whole document is written back; no other field is altered. The
// read-modify-write is not atomic against concurrent administrative
// writers, which is an accepted limitation.
func (c *Client) SetListenPort(ctx context.Context, port int) error {
	if port < 1024 || port > 65535 {
		return fmt.Errorf("invalid listen port %d: must be 1024-65535", port)
	}

	doc, err := c.fetchOptions(ctx)
	if err != nil {
		return err
	}
	if err := setDocumentListenPort(doc, port); err != nil {
		return err
	}
	updated, err := renderDocument(doc)
	if err != nil {
		return err
	}

	// The options endpoint transports the YAML document as a
	// JSON-encoded string.
	body, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("encoding options document: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(optionsPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	switch status := resp.StatusCode(); {
	case status >= 200 && status < 300:
		c.log.Debug("options document updated", "listen_port", port)
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d on options update", ErrAuth, status)
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w: slskd rejected options update: %s", ErrConfig, resp.Body())
	default:
		return fmt.Errorf("%w: HTTP %d on options update", ErrUnreachable, status)
	}
}

// Reconnect triggers slskd to reconnect to the Soulseek network so the
// newly persisted listen port takes effect. slskd answers 200 or 205.
func (c *Client) Reconnect(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Put(serverPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	switch status := resp.StatusCode(); status {
	case http.StatusOK, http.StatusResetContent:
		c.log.Debug("server reconnect triggered")
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d on reconnect", ErrAuth, status)
	default:
		return fmt.Errorf("%w: HTTP %d on reconnect", ErrUnreachable, status)
	}
}

// fetchOptions retrieves and parses the current options document
func (c *Client) fetchOptions(ctx context.Context) (*yaml.Node, error) {
	resp, err := c.http.R().SetContext(ctx).Get(optionsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	switch status := resp.StatusCode(); {
	case status >= 200 && status < 300:
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d reading options", ErrAuth, status)
	default:
		return nil, fmt.Errorf("%w: HTTP %d reading options", ErrUnreachable, status)
	}

	var raw string
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("%w: options response is not a JSON string: %v", ErrConfig, err)
	}
	return parseDocument(raw)
}
