package slack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Notifier) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/chat.postMessage", handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server, NewNotifier("xoxb-test", time.Second, slackapi.OptionAPIURL(server.URL+"/"))
}

func TestNotifier_Post(t *testing.T) {
	calls := 0
	_, notifier := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "C123", r.FormValue("channel"))
		assert.Equal(t, "aaa\nbbb", r.FormValue("text"))
		assert.True(t, r.FormValue("token") == "xoxb-test" ||
			r.Header.Get("Authorization") == "Bearer xoxb-test")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1503435956.000247"}`))
	})

	err := notifier.Post(context.Background(), "C123", "aaa\nbbb")
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestNotifier_Post_APIError(t *testing.T) {
	calls := 0
	_, notifier := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	})

	err := notifier.Post(context.Background(), "C404", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
	assert.Contains(t, err.Error(), "C404")
	assert.Equal(t, 1, calls)
}

func TestNotifier_Post_RateLimited(t *testing.T) {
	_, notifier := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	err := notifier.Post(context.Background(), "C123", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Contains(t, err.Error(), "3s")

	var rateLimited *slackapi.RateLimitedError
	assert.ErrorAs(t, err, &rateLimited)
}
