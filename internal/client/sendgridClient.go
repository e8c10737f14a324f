package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Aazukvid2000/Pyxolotl/internal/config"
	"github.com/rs/zerolog"
)

type MailClient interface {
	Send(ctx context.Context, toEmail, subject, htmlBody string) error
}

type sendgridClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	apiKey     string
	fromEmail  string
	fromName   string
	logger     zerolog.Logger
}

type sendgridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendgridPersonalization struct {
	To []sendgridAddress `json:"to"`
}

type sendgridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendgridMailRequest struct {
	Personalizations []sendgridPersonalization `json:"personalizations"`
	From             sendgridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendgridContent         `json:"content"`
}

func NewSendgridClient(sendgridCfg *config.SendGrid, logger zerolog.Logger) MailClient {
	return &sendgridClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: sendgridCfg.BaseApiURL,
		apiKey:     sendgridCfg.APIKey,
		fromEmail:  sendgridCfg.FromEmail,
		fromName:   sendgridCfg.FromName,
		logger:     logger,
	}
}

func (c *sendgridClientImpl) Send(ctx context.Context, toEmail, subject, htmlBody string) error {
	// no API key means local development, log the mail instead of sending
	if c.apiKey == "" {
		c.logger.Info().
			Str("to", toEmail).
			Str("subject", subject).
			Msg("mail simulation, no sendgrid api key configured")
		return nil
	}

	payload := sendgridMailRequest{
		Personalizations: []sendgridPersonalization{
			{To: []sendgridAddress{{Email: toEmail}}},
		},
		From:    sendgridAddress{Email: c.fromEmail, Name: c.fromName},
		Subject: subject,
		Content: []sendgridContent{
			{Type: "text/html", Value: htmlBody},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseApiURL+"/v3/mail/send",
		bytes.NewBuffer(body),
	)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sendgrid error %d: %s", resp.StatusCode, string(b))
	}

	return nil
}
