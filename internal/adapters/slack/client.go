package slack

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/slack-go/slack"
)

// Client implements ports.Messenger via the Slack Web API.
type Client struct {
	api *slack.Client
}

// NewClient builds a Web API client. apiURL overrides https://slack.com/api/.
func NewClient(httpClient *http.Client, token, apiURL string) *Client {
	opts := []slack.Option{slack.OptionHTTPClient(httpClient)}
	if apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(strings.TrimRight(apiURL, "/")+"/"))
	}
	return &Client{api: slack.New(token, opts...)}
}

func (c *Client) PostMessage(ctx context.Context, channelID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("post message to %s: %w", channelID, err)
	}
	return nil
}
