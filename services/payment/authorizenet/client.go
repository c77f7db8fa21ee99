package authorizenet

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

const (
	SandboxEndpoint    = "https://apitest.authorize.net/xml/v1/request.api"
	ProductionEndpoint = "https://api.authorize.net/xml/v1/request.api"
	RequestTimeout     = 30 * time.Second
)

// Config is the read-only client configuration.
type Config struct {
	LoginID        string
	TransactionKey string
	// Debug sends requests to the sandbox endpoint.
	Debug bool
	// DelimChar separates directResponse fields unless a transaction
	// names its own delimiter.
	DelimChar string
	Timeout   time.Duration
	// Endpoint overrides the sandbox/production choice.
	Endpoint string
}

// Client submits CIM requests. It holds no per-request state and may be
// shared between goroutines.
type Client struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(config Config, opts ...Option) *Client {
	if config.Timeout <= 0 {
		config.Timeout = RequestTimeout
	}
	if config.DelimChar == "" {
		config.DelimChar = DefaultDelimiter
	}

	c := &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint is the URL requests are posted to.
func (c *Client) Endpoint() string {
	if c.config.Endpoint != "" {
		return c.config.Endpoint
	}
	if c.config.Debug {
		return SandboxEndpoint
	}
	return ProductionEndpoint
}

func (c *Client) credentials() Credentials {
	return Credentials{
		LoginID:        c.config.LoginID,
		TransactionKey: c.config.TransactionKey,
	}
}

// Execute builds op, submits it and extracts the result. It is the single
// round trip behind every top-level method.
func (c *Client) Execute(ctx context.Context, op Operation) (*Result, error) {
	doc, err := Build(op, c.credentials())
	if err != nil {
		return nil, err
	}

	root, err := c.submit(ctx, op.Action, doc)
	if err != nil {
		return nil, err
	}

	result, err := Extract(op, root)
	if err != nil {
		c.logger.Error("Unexpected authorize.net response", zap.String("action", string(op.Action)), zap.Error(err))
		return nil, err
	}

	if result.Truncated {
		c.logger.Warn("Short directResponse, check the delimiter",
			zap.String("action", string(op.Action)),
			zap.Int("fields", len(result.TransactionFields)),
		)
	}

	c.logger.Info("Authorize.net request completed",
		zap.String("action", string(op.Action)),
		zap.String("result", result.Status.ResultCode),
		zap.String("code", result.Status.Code),
	)
	return result, nil
}

// submit posts doc and parses the reply into its root element.
func (c *Client) submit(ctx context.Context, action Action, doc *etree.Document) (*etree.Element, error) {
	startTime := time.Now()
	endpoint := c.Endpoint()

	payload, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("error serializing %s: %w", action, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error creating %s request: %w", action, err)
	}
	httpReq.Header.Set("Content-Type", "text/xml")

	c.logger.Debug("Sending request to authorize.net", zap.String("action", string(action)), zap.String("endpoint", endpoint))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("Authorize.net request failed", zap.String("action", string(action)), zap.Error(err))
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected HTTP status %s", resp.Status),
		}
	}

	c.logger.Debug("Authorize.net response received",
		zap.String("action", string(action)),
		zap.Duration("elapsed", time.Since(startTime)),
		zap.Int("body_length", len(body)),
	)

	// The gateway prefixes its XML with a UTF-8 BOM.
	clean := bytes.TrimPrefix(body, []byte("\ufeff"))

	response := etree.NewDocument()
	if err := response.ReadFromBytes(clean); err != nil {
		return nil, &ParseError{Body: body, Err: err}
	}
	root := response.Root()
	if root == nil {
		return nil, &ParseError{Body: body, Err: fmt.Errorf("no root element")}
	}
	return root, nil
}
