package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"kaiginote/internal/model"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"

	embedColor = 3447003
)

// Discord posts event notifications to a configured webhook URL.
// An empty URL disables the client; Send becomes a no-op.
type Discord struct {
	webhookURL string
	client     *http.Client
	log        *zerolog.Logger
}

func NewDiscord(webhookURL string, log *zerolog.Logger) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (d *Discord) Enabled() bool {
	return d.webhookURL != ""
}

type webhookMessage struct {
	Username string  `json:"username"`
	Embeds   []embed `json:"embeds"`
}

type embed struct {
	Title  string       `json:"title"`
	Color  int          `json:"color"`
	Fields []embedField `json:"fields"`
	Footer embedFooter  `json:"footer"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

func buildMessage(event *model.Event, action string) webhookMessage {
	var title string
	switch action {
	case ActionCreated:
		title = "🎉 New Event Created"
	case ActionUpdated:
		title = "📝 Event Updated"
	default:
		title = "📅 Event Notification"
	}

	content := event.Content
	if content == "" {
		content = "No description provided"
	}

	return webhookMessage{
		Username: "KaigiNote Bot",
		Embeds: []embed{{
			Title: title,
			Color: embedColor,
			Fields: []embedField{
				{Name: "Event", Value: fmt.Sprintf("ID: %d", event.ID), Inline: true},
				{Name: "Date", Value: event.StartTime.Format("2006-01-02 15:04"), Inline: true},
				{Name: "Place", Value: event.Place, Inline: true},
				{Name: "Content", Value: content, Inline: false},
				{Name: "Status", Value: event.Status, Inline: true},
			},
			Footer: embedFooter{Text: "KaigiNote"},
		}},
	}
}

// Send delivers a single event notification. It is best effort: the caller
// only ever logs the returned error.
func (d *Discord) Send(ctx context.Context, event *model.Event, action string) error {
	if !d.Enabled() {
		d.log.Debug().Msg("discord webhook not configured, skipping notification")
		return nil
	}

	payload, err := json.Marshal(buildMessage(event, action))
	if err != nil {
		return fmt.Errorf("marshal discord message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send discord notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook returned status %d", resp.StatusCode)
	}

	d.log.Info().Int("event_id", event.ID).Str("action", action).Msg("discord notification sent")
	return nil
}
