package relay

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIKeyHeader carries the static relay credential.
const APIKeyHeader = "X-YoAI-API-Key"

// Client talks to the chat relay's HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Update is one pending inbound message. Text is base64 encoded on the wire.
type Update struct {
	ChatID string `json:"chatId"`
	Text   string `json:"text"`
}

var textEncodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodedText returns the UTF-8 message body. Padded, unpadded and URL-safe
// payloads are all accepted.
func (u Update) DecodedText() (string, error) {
	text := strings.TrimSpace(u.Text)
	var err error
	for _, enc := range textEncodings {
		var raw []byte
		if raw, err = enc.DecodeString(text); err == nil {
			return string(raw), nil
		}
	}
	return "", fmt.Errorf("relay: decode message from %s: %w", u.ChatID, err)
}

// Command is a bot command advertised to relay users.
type Command struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// DefaultCommands are registered once at startup.
var DefaultCommands = []Command{
	{Command: "start", Description: "Starts the bot"},
	{Command: "help", Description: "Shows available commands"},
	{Command: "hi", Description: "Greets the user"},
}

// NewClient returns a relay client. A zero timeout leaves calls bounded only by ctx.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// SendMessage delivers text to a chat.
func (c *Client) SendMessage(ctx context.Context, to, text string) error {
	payload := map[string]string{"to": to, "text": text}
	return c.post(ctx, "/sendMessage", payload, nil)
}

// SetCommands replaces the command list shown to users.
func (c *Client) SetCommands(ctx context.Context, commands []Command) error {
	payload := map[string]any{"commands": commands}
	return c.post(ctx, "/setCommands", payload, nil)
}

// GetUpdates fetches the pending inbound messages in relay order.
func (c *Client) GetUpdates(ctx context.Context) ([]Update, error) {
	var res struct {
		Data []Update `json:"data"`
	}
	if err := c.post(ctx, "/getUpdates", struct{}{}, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("relay %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("relay %s: http status %s: %s", path, resp.Status, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("relay %s: decode response: %w", path, err)
	}
	return nil
}
