package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	e "nuclight.org/reply-tg-bot/pkg/entities"
	"nuclight.org/reply-tg-bot/pkg/logger"
)

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Endpoints are full method URLs, token included
type Endpoints struct {
	GetUpdates  string
	SendMessage string
	SendSticker string
	SendVenue   string
}

// DefaultEndpoints builds method URLs from an api endpoint format such as
// tgbotapi.APIEndpoint
func DefaultEndpoints(apiEndpoint, token string) Endpoints {
	return Endpoints{
		GetUpdates:  fmt.Sprintf(apiEndpoint, token, "getUpdates"),
		SendMessage: fmt.Sprintf(apiEndpoint, token, "sendMessage"),
		SendSticker: fmt.Sprintf(apiEndpoint, token, "sendSticker"),
		SendVenue:   fmt.Sprintf(apiEndpoint, token, "sendVenue"),
	}
}

// Client talks to the bot api over plain HTTP. Responses with ok=false are
// returned as *tgbotapi.Error.
type Client struct {
	Log        logger.Logger
	Endpoints  Endpoints
	HTTPClient HTTPClient
}

func (c *Client) GetUpdates(ctx context.Context, offset, timeout int) ([]tgbotapi.Update, error) {
	u, err := url.Parse(c.Endpoints.GetUpdates)
	if err != nil {
		return nil, fmt.Errorf("parsing get updates url: %w", err)
	}

	query := u.Query()
	query.Set("offset", strconv.Itoa(offset))
	query.Set("timeout", strconv.Itoa(timeout))
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var updates []tgbotapi.Update
	err = c.do(req, &updates)
	if err != nil {
		return nil, err
	}

	return updates, nil
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)
	params.AddNonEmpty("text", text)

	return c.send(ctx, c.Endpoints.SendMessage, params)
}

func (c *Client) SendSticker(ctx context.Context, chatID int64, sticker string) error {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)
	params.AddNonEmpty("sticker", sticker)

	return c.send(ctx, c.Endpoints.SendSticker, params)
}

func (c *Client) SendVenue(ctx context.Context, chatID int64, venue e.Venue) error {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)
	params.AddNonEmpty("title", venue.Title)
	params.AddNonEmpty("address", venue.Address)
	params["latitude"] = strconv.FormatFloat(venue.Latitude, 'f', -1, 64)
	params["longitude"] = strconv.FormatFloat(venue.Longitude, 'f', -1, 64)

	return c.send(ctx, c.Endpoints.SendVenue, params)
}

func (c *Client) send(ctx context.Context, endpoint string, params tgbotapi.Params) error {
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var msg tgbotapi.Message
	err = c.do(req, &msg)
	if err != nil {
		return err
	}

	c.Log.Debug("message sent", "tg_chat_id", params["chat_id"], "tg_message_id", msg.MessageID)
	return nil
}

func (c *Client) do(req *http.Request, result any) error {
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("doing request: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	var apiResp tgbotapi.APIResponse
	if err = json.Unmarshal(body, &apiResp); err != nil {
		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code: %d: %s", res.StatusCode, body)
		}
		return fmt.Errorf("decoding response: %w", err)
	}

	if !apiResp.Ok {
		return &tgbotapi.Error{
			Code:    apiResp.ErrorCode,
			Message: apiResp.Description,
		}
	}

	if len(apiResp.Result) == 0 || result == nil {
		return nil
	}

	if err = json.Unmarshal(apiResp.Result, result); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}

	return nil
}
