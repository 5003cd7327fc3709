package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aleanon/Tempered/domain"
)

// ErrSendFailed wraps any delivery failure reported by the mail API.
var ErrSendFailed = errors.New("email send failed")

const (
	defaultBaseURL = "https://api.postmarkapp.com"
	defaultTimeout = 10 * time.Second

	serverTokenHeader = "X-Postmark-Server-Token"
	messageStream     = "outbound"
)

type sendRequest struct {
	From          string `json:"From"`
	To            string `json:"To"`
	Subject       string `json:"Subject"`
	TextBody      string `json:"TextBody"`
	MessageStream string `json:"MessageStream"`
}

// HTTPClient sends mail through the Postmark server API. Failures are
// returned to the caller without retry; the engine surfaces them as
// backend errors.
type HTTPClient struct {
	baseURL string
	token   string
	sender  domain.Email
	client  *http.Client
}

// HTTPOption adjusts an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithBaseURL points the client at a different API host. Used by tests
// and by Postmark-compatible services.
func WithBaseURL(url string) HTTPOption {
	return func(c *HTTPClient) {
		c.baseURL = url
	}
}

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient builds a mail client sending from the given address,
// authenticated by the server token.
func NewHTTPClient(sender domain.Email, token string, opts ...HTTPOption) (*HTTPClient, error) {
	if token == "" {
		return nil, errors.New("server token required")
	}

	c := &HTTPClient{
		baseURL: defaultBaseURL,
		token:   token,
		sender:  sender,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) SendEmail(ctx context.Context, recipient domain.Email, subject, content string) error {
	body, err := json.Marshal(sendRequest{
		From:          c.sender.String(),
		To:            recipient.String(),
		Subject:       subject,
		TextBody:      content,
		MessageStream: messageStream,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(serverTokenHeader, c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrSendFailed, resp.StatusCode, detail)
	}
	return nil
}
