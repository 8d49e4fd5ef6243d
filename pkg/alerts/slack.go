package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultSlackAPIURL is Slack's chat.postMessage endpoint.
const DefaultSlackAPIURL = "https://slack.com/api/chat.postMessage"

// SlackChannel posts reports through the Slack Web API using a bot token.
type SlackChannel struct {
	apiURL  string
	channel string
	client  *http.Client
}

// NewSlackChannel creates a Slack channel. An empty apiURL uses DefaultSlackAPIURL.
func NewSlackChannel(apiURL, channel string) *SlackChannel {
	if apiURL == "" {
		apiURL = DefaultSlackAPIURL
	}
	return &SlackChannel{
		apiURL:  apiURL,
		channel: channel,
		client:  &http.Client{},
	}
}

func (s *SlackChannel) Name() string { return "slack" }

// Send posts the message. Slack answers 200 even for rejected tokens, so an
// auth error in the body is reported as 401.
func (s *SlackChannel) Send(ctx context.Context, message, credential string) (int, string, error) {
	payload := slackPayload{
		Channel: s.channel,
		Text:    "```\n" + message + "```",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("send slack message: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, string(raw), nil
	}

	var result slackResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return http.StatusBadGateway, string(raw), nil
	}
	if !result.OK {
		switch result.Error {
		case "not_authed", "invalid_auth", "account_inactive", "token_revoked", "token_expired":
			return http.StatusUnauthorized, result.Error, nil
		case "ratelimited":
			return http.StatusTooManyRequests, result.Error, nil
		default:
			return http.StatusBadGateway, result.Error, nil
		}
	}
	return http.StatusOK, string(raw), nil
}

type slackPayload struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

type slackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
