package slackbot

import (
	"context"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
)

// Notifier posts plain messages to one Slack channel.
type Notifier struct {
	api     *slack.Client
	channel string
	users   userCache
}

func NewNotifier(token, channel string, httpClient *http.Client, opts ...slack.Option) *Notifier {
	if httpClient != nil {
		opts = append([]slack.Option{slack.OptionHTTPClient(httpClient)}, opts...)
	}
	return &Notifier{api: slack.New(token, opts...), channel: channel}
}

func (n *Notifier) Post(ctx context.Context, text string) error {
	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		return fmt.Errorf("slack post to %s: %w", n.channel, err)
	}
	return nil
}
