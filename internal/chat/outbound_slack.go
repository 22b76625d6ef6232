package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

// SlackOutbound posts replies through the Slack Web API.
type SlackOutbound struct {
	client *slack.Client
}

// NewSlackOutbound authenticates with an xoxb bot token. baseURL points the
// client at a Web API root such as https://slack.com/api.
func NewSlackOutbound(baseURL, token string) *SlackOutbound {
	return &SlackOutbound{
		client: slack.New(token,
			slack.OptionAPIURL(strings.TrimRight(baseURL, "/")+"/"),
			slack.OptionHTTPClient(&http.Client{Timeout: 10 * time.Second}),
		),
	}
}

func (c *SlackOutbound) PostMessage(ctx context.Context, channel string, text string) error {
	if _, _, err := c.client.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("slack chat.postMessage: %w", err)
	}
	return nil
}
