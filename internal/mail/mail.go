// Package mail delivers generated reports to customers through the
// SendGrid v3 mail send API.
package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.sendgrid.com"

// Config holds SendGrid connection settings.
type Config struct {
	APIKey     string
	BaseURL    string
	FromEmail  string
	FromName   string
	Timeout    time.Duration
	MaxRetries int
}

// Client sends report mail. The zero retry/timeout values get defaults.
type Client struct {
	cfg        Config
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient validates cfg and returns a SendGrid client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("sendgrid API key is required")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		backoff:    time.Second,
	}, nil
}

// SendGrid v3 wire format.
type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type attachment struct {
	Content     string `json:"content"`
	Type        string `json:"type,omitempty"`
	Filename    string `json:"filename"`
	Disposition string `json:"disposition,omitempty"`
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
	Attachments      []attachment      `json:"attachments,omitempty"`
}

// SendArtifact mails the report at path to recipient with a short notice
// body. It satisfies the batch orchestrator's Mailer contract.
func (c *Client) SendArtifact(ctx context.Context, recipient, customerName, path string) error {
	if strings.TrimSpace(recipient) == "" {
		return fmt.Errorf("recipient address is required")
	}
	pdf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read report for mailing: %w", err)
	}

	req := sendRequest{
		Personalizations: []personalization{{To: []emailAddress{{Email: recipient, Name: customerName}}}},
		From:             emailAddress{Email: c.cfg.FromEmail, Name: c.cfg.FromName},
		Subject:          fmt.Sprintf("%s님의 사주 리포트가 도착했습니다", customerName),
		Content: []mailContent{{
			Type:  "text/plain",
			Value: fmt.Sprintf("%s님, 주문하신 사주 리포트를 첨부파일로 보내드립니다.\n첨부된 PDF 파일을 확인해 주세요.", customerName),
		}},
		Attachments: []attachment{{
			Content:     base64.StdEncoding.EncodeToString(pdf),
			Type:        "application/pdf",
			Filename:    filepath.Base(path),
			Disposition: "attachment",
		}},
	}
	return c.send(ctx, req)
}

func (c *Client) send(ctx context.Context, req sendRequest) error {
	backoff := c.backoff
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		status, body, err := c.post(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		if status >= 200 && status < 300 {
			return nil
		}
		lastErr = fmt.Errorf("sendgrid returned status %d: %s", status, truncate(body, 500))
		// Client errors other than rate limiting will not improve on retry.
		if status >= 400 && status < 500 && status != http.StatusTooManyRequests {
			return lastErr
		}
	}
	return fmt.Errorf("mail send failed after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

func (c *Client) post(ctx context.Context, body sendRequest) (int, string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, "", fmt.Errorf("failed to encode mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v3/mail/send", &buf)
	if err != nil {
		return 0, "", fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(raw), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
