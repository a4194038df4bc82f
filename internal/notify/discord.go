// Package notify implements the outbound messaging channel for alerts.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const discordAPIBase = "https://discord.com/api/v10"

// DiscordChannel posts messages to a Discord channel through the bot API
type DiscordChannel struct {
	token      string
	channelID  string
	baseURL    string
	httpClient *http.Client
}

// NewDiscordChannel creates a new Discord channel client
func NewDiscordChannel(token, channelID string) *DiscordChannel {
	return &DiscordChannel{
		token:     token,
		channelID: channelID,
		baseURL:   discordAPIBase,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send posts a message. When Discord throttles the bot it answers 429
// with a retry_after in seconds; that is surfaced as a duration so the
// caller owns the backoff.
func (c *DiscordChannel) Send(ctx context.Context, text string) (time.Duration, error) {
	body, err := json.Marshal(map[string]string{"content": text})
	if err != nil {
		return 0, fmt.Errorf("failed to encode message: %w", err)
	}

	url := fmt.Sprintf("%s/channels/%s/messages", c.baseURL, c.channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build message request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		var throttle struct {
			RetryAfter float64 `json:"retry_after"`
		}
		retryAfter := 5 * time.Second
		if err := json.NewDecoder(resp.Body).Decode(&throttle); err == nil && throttle.RetryAfter > 0 {
			retryAfter = time.Duration(throttle.RetryAfter * float64(time.Second))
		}
		return retryAfter, nil
	}

	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("discord returned status %d", resp.StatusCode)
	}

	return 0, nil
}
