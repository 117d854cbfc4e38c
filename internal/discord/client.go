package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const defaultBaseURL = "https://discord.com/api/v10"

// EmbedField is a single name/value pair rendered inside an embed
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Embed is a rich message posted to a channel
type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// Client is a minimal Discord REST API client. It speaks exactly two
// endpoints: create a DM channel and post an embed into a channel.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client credentialed with a bot token
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "discord request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("discord: unexpected status %s", resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(err, "failed to decode discord response")
		}
	}
	return nil
}

// CreateDM opens (or returns the existing) DM channel with the given user
// and returns the channel id.
func (c *Client) CreateDM(ctx context.Context, recipientID string) (string, error) {
	var channel struct {
		ID string `json:"id"`
	}
	err := c.post(ctx, "/users/@me/channels", map[string]string{
		"recipient_id": recipientID,
	}, &channel)
	if err != nil {
		return "", err
	}
	return channel.ID, nil
}

// SendEmbed posts an embed message into a channel
func (c *Client) SendEmbed(ctx context.Context, channelID string, embed Embed) error {
	return c.post(ctx, "/channels/"+channelID+"/messages", map[string]interface{}{
		"embeds": []Embed{embed},
	}, nil)
}
