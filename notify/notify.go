// Package notify delivers best-effort event notifications (e-mail relay
// webhook). Delivery is fire-and-forget: a failed notification is logged and
// never fails the write that triggered it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Event names a state transition worth telling the couple about.
type Event string

const (
	EventRSVPSubmitted  Event = "rsvp.submitted"
	EventAddressUpdated Event = "address.updated"
)

// Notifier is the outbound notification contract.
type Notifier interface {
	Notify(ctx context.Context, event Event, payload map[string]interface{}) error
}

const dispatchTimeout = 10 * time.Second

// Dispatch fires a notification on its own goroutine. Errors are logged and
// swallowed; callers must never block on or roll back over a failed notify.
func Dispatch(n Notifier, log zerolog.Logger, event Event, payload map[string]interface{}) {
	if n == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := n.Notify(ctx, event, payload); err != nil {
			log.Error().Err(err).Str("event", string(event)).Msg("notification failed")
			return
		}
		log.Debug().Str("event", string(event)).Msg("notification sent")
	}()
}

// Webhook posts events as JSON to an external relay that renders and sends
// the actual e-mail. Rendering/delivery is the relay's problem.
type Webhook struct {
	url    string
	apiKey string
	client *http.Client
}

// NewWebhook builds a webhook notifier. url comes from configuration; apiKey
// may be empty if the relay is unauthenticated.
func NewWebhook(url, apiKey string) *Webhook {
	return &Webhook{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: dispatchTimeout},
	}
}

type webhookBody struct {
	Event   Event                  `json:"event"`
	Payload map[string]interface{} `json:"payload"`
	SentAt  time.Time              `json:"sent_at"`
}

func (w *Webhook) Notify(ctx context.Context, event Event, payload map[string]interface{}) error {
	body, err := json.Marshal(webhookBody{Event: event, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("notification relay returned %d", resp.StatusCode)
	}
	return nil
}

// LogOnly is used when no relay URL is configured: events are logged at info
// level and nothing leaves the process.
type LogOnly struct {
	Log zerolog.Logger
}

func (l LogOnly) Notify(_ context.Context, event Event, payload map[string]interface{}) error {
	l.Log.Info().Str("event", string(event)).Interface("payload", payload).Msg("notification (relay disabled)")
	return nil
}
