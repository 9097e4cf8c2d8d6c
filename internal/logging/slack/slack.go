package slack

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	slackapi "github.com/slack-go/slack"
)

const defaultTimeout = 10 * time.Second

// Notifier posts batches as chat messages through the Slack Web API.
type Notifier struct {
	client *slackapi.Client
}

// NewNotifier builds a client for token. Extra options are applied after
// the HTTP client, so callers can point it at another API URL.
func NewNotifier(token string, timeout time.Duration, opts ...slackapi.Option) *Notifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	options := append([]slackapi.Option{
		slackapi.OptionHTTPClient(&http.Client{Timeout: timeout}),
	}, opts...)
	return &Notifier{client: slackapi.New(token, options...)}
}

// Post sends text to channel with a single chat.postMessage call.
func (n *Notifier) Post(ctx context.Context, channel, text string) error {
	_, _, err := n.client.PostMessageContext(ctx, channel, slackapi.MsgOptionText(text, false))
	if err == nil {
		return nil
	}

	var rateLimited *slackapi.RateLimitedError
	if errors.As(err, &rateLimited) {
		return errors.Wrapf(err, "slack rate limited posting to %s (retry after %s)", channel, rateLimited.RetryAfter)
	}
	return errors.Wrapf(err, "failed to post to slack channel %s", channel)
}
