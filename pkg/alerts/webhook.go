package alerts

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// maxResponseBody caps how much of an endpoint's reply is kept for logging.
const maxResponseBody = 4096

// WebhookChannel posts reports to a generic HTTP endpoint with a bearer token.
type WebhookChannel struct {
	url    string
	secret string
	client *http.Client
	now    func() time.Time
}

// NewWebhookChannel creates a webhook channel.
// If secret is non-empty, request bodies are signed with HMAC-SHA256.
func NewWebhookChannel(url, secret string) *WebhookChannel {
	return &WebhookChannel{
		url:    url,
		secret: secret,
		client: &http.Client{},
		now:    time.Now,
	}
}

func (w *WebhookChannel) Name() string { return "webhook" }

func (w *WebhookChannel) Send(ctx context.Context, message, credential string) (int, string, error) {
	payload := webhookPayload{
		Event:     "disk_alert",
		Timestamp: w.now().UTC().Format(time.RFC3339),
		Message:   message,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Disk-Guardian/1.0")
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("X-Request-ID", uuid.New().String())

	if w.secret != "" {
		sig := computeHMAC(body, []byte(w.secret))
		req.Header.Set("X-Signature-256", "sha256="+sig)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	return resp.StatusCode, string(respBody), nil
}

type webhookPayload struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

func computeHMAC(message, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
