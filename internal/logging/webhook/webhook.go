package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const defaultTimeout = 5 * time.Second

// Notifier posts batches to an incoming-webhook URL (Slack, Mattermost and
// Rocket.Chat all accept this payload).
type Notifier struct {
	url        string
	httpClient *http.Client
}

type Payload struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

func NewNotifier(url string, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Notifier{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Post makes a single request; failed posts are not retried.
func (n *Notifier) Post(ctx context.Context, destination, text string) error {
	body, err := json.Marshal(Payload{Channel: destination, Text: text})
	if err != nil {
		return errors.Wrap(err, "failed to marshal payload")
	}
	return n.sendRequest(ctx, body)
}

func (n *Notifier) sendRequest(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.Errorf("webhook returned status %d: %s", resp.StatusCode, string(responseBody))
	}

	return nil
}
