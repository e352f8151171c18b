// Package telegram is a minimal Bot API client: send, edit and callback answers.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const DefaultAPIURL = "https://api.telegram.org"

// ErrNotConfigured is returned when no bot token or chat id is known.
var ErrNotConfigured = errors.New("telegram credentials not configured")

type Credentials struct {
	BotToken string
	ChatID   string
}

func (c Credentials) Valid() bool {
	return c.BotToken != "" && c.ChatID != ""
}

// CredentialsFunc is consulted on every call so credentials edited at runtime apply immediately.
type CredentialsFunc func(ctx context.Context) (Credentials, error)

// StaticCredentials returns a CredentialsFunc that always yields creds.
func StaticCredentials(creds Credentials) CredentialsFunc {
	return func(context.Context) (Credentials, error) { return creds, nil }
}

// Messenger is what the notification bridge needs from a chat backend.
// A nil keyboard sends no buttons; on Edit it removes any existing ones.
type Messenger interface {
	Send(ctx context.Context, text string, keyboard *InlineKeyboard) (string, error)
	Edit(ctx context.Context, ref string, text string, keyboard *InlineKeyboard) error
	AnswerCallback(ctx context.Context, callbackID string, text string) error
}

type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials CredentialsFunc
}

func NewClient(baseURL string, credentials CredentialsFunc) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		credentials: credentials,
	}
}

type sendMessageRequest struct {
	ChatID      string          `json:"chat_id"`
	Text        string          `json:"text"`
	ReplyMarkup *InlineKeyboard `json:"reply_markup,omitempty"`
}

type editMessageRequest struct {
	ChatID      string          `json:"chat_id"`
	MessageID   int64           `json:"message_id"`
	Text        string          `json:"text"`
	ReplyMarkup *InlineKeyboard `json:"reply_markup,omitempty"`
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type message struct {
	MessageID int64 `json:"message_id"`
}

// Send posts a new chat message and returns its message id as the reference.
func (c *Client) Send(ctx context.Context, text string, keyboard *InlineKeyboard) (string, error) {
	creds, err := c.resolve(ctx)
	if err != nil {
		return "", err
	}
	result, err := c.call(ctx, creds, "sendMessage", sendMessageRequest{ChatID: creds.ChatID, Text: text, ReplyMarkup: keyboard})
	if err != nil {
		return "", err
	}
	var msg message
	if err := json.Unmarshal(result, &msg); err != nil {
		return "", fmt.Errorf("decode sendMessage result: %w", err)
	}
	return strconv.FormatInt(msg.MessageID, 10), nil
}

// Edit replaces the text of a message previously returned by Send.
func (c *Client) Edit(ctx context.Context, ref string, text string, keyboard *InlineKeyboard) error {
	messageID, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid message ref %q: %w", ref, err)
	}
	creds, err := c.resolve(ctx)
	if err != nil {
		return err
	}
	_, err = c.call(ctx, creds, "editMessageText", editMessageRequest{
		ChatID:      creds.ChatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: keyboard,
	})
	return err
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID string, text string) error {
	creds, err := c.resolve(ctx)
	if err != nil {
		return err
	}
	_, err = c.call(ctx, creds, "answerCallbackQuery", answerCallbackRequest{CallbackQueryID: callbackID, Text: text})
	return err
}

func (c *Client) resolve(ctx context.Context) (Credentials, error) {
	creds, err := c.credentials(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("load telegram credentials: %w", err)
	}
	if !creds.Valid() {
		return Credentials{}, ErrNotConfigured
	}
	return creds, nil
}

func (c *Client) call(ctx context.Context, creds Credentials, method string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", method, err)
	}
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, creds.BotToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: unexpected response (HTTP %d): %w", method, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !out.OK {
		return nil, fmt.Errorf("%s failed (HTTP %d): %s", method, resp.StatusCode, out.Description)
	}
	return out.Result, nil
}
