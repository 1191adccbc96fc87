package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "atendezap/pkg/errors"
)

// SessionState is what the bridge reports for a session.
type SessionState struct {
	Status string `json:"status"`
	QRCode string `json:"qrcode"`
}

// Bridge is the opaque WhatsApp integration (WPPConnect / Evolution style).
// Every call except token generation fails fast; repeated start/close calls
// are not safely idempotent against the bridge's internal session lock.
type Bridge interface {
	GenerateToken(ctx context.Context, sessionName string) (string, error)
	StartSession(ctx context.Context, sessionName, token string) (SessionState, error)
	QRCode(ctx context.Context, sessionName, token string) (SessionState, error)
	CheckConnection(ctx context.Context, sessionName, token string) (bool, error)
	CloseSession(ctx context.Context, sessionName, token string) error
	SendMessage(ctx context.Context, sessionName, token, phone, body string) error
}

// Client talks to a WPPConnect-style HTTP bridge, bearer-token authenticated
// per session.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) GenerateToken(ctx context.Context, sessionName string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	url := fmt.Sprintf("%s/api/%s/%s/generate-token", c.baseURL, sessionName, c.secretKey)
	if err := c.do(ctx, http.MethodPost, url, "", nil, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("bridge returned empty token for %s", sessionName)
	}
	return out.Token, nil
}

func (c *Client) StartSession(ctx context.Context, sessionName, token string) (SessionState, error) {
	var out SessionState
	url := fmt.Sprintf("%s/api/%s/start-session", c.baseURL, sessionName)
	body := map[string]interface{}{"waitQrCode": true}
	if err := c.do(ctx, http.MethodPost, url, token, body, &out); err != nil {
		return SessionState{}, err
	}
	return out, nil
}

func (c *Client) QRCode(ctx context.Context, sessionName, token string) (SessionState, error) {
	var out SessionState
	url := fmt.Sprintf("%s/api/%s/qrcode-session", c.baseURL, sessionName)
	if err := c.do(ctx, http.MethodGet, url, token, nil, &out); err != nil {
		return SessionState{}, err
	}
	return out, nil
}

func (c *Client) CheckConnection(ctx context.Context, sessionName, token string) (bool, error) {
	var out struct {
		Status bool `json:"status"`
	}
	url := fmt.Sprintf("%s/api/%s/check-connection-session", c.baseURL, sessionName)
	if err := c.do(ctx, http.MethodGet, url, token, nil, &out); err != nil {
		return false, err
	}
	return out.Status, nil
}

func (c *Client) CloseSession(ctx context.Context, sessionName, token string) error {
	url := fmt.Sprintf("%s/api/%s/close-session", c.baseURL, sessionName)
	return c.do(ctx, http.MethodPost, url, token, nil, nil)
}

func (c *Client) SendMessage(ctx context.Context, sessionName, token, phone, body string) error {
	url := fmt.Sprintf("%s/api/%s/send-message", c.baseURL, sessionName)
	payload := map[string]interface{}{"phone": phone, "message": body}
	return c.do(ctx, http.MethodPost, url, token, payload, nil)
}

func (c *Client) do(ctx context.Context, method, url, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrBridgeUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("bridge %s %s: status %d: %s", method, url, resp.StatusCode, string(raw))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
