package workflows

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrSlackNotConfigured is returned when no webhook URL is set
var ErrSlackNotConfigured = errors.New("slack webhook URL is not set")

type SlackPayload struct {
	Text string `json:"text"`
}

// SlackNotifier posts pipeline failures to a Slack incoming webhook.
// A notifier with an empty webhook URL reports ErrSlackNotConfigured.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
	now        func() time.Time
}

func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		now:        time.Now,
	}
}

// ReportError posts an error message to the alerts channel.
func (n *SlackNotifier) ReportError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if n == nil || n.webhookURL == "" {
		return ErrSlackNotConfigured
	}

	message := fmt.Sprintf(
		":rotating_light: *Tracking Pipeline Error*\n"+
			"*Time:* %s\n"+
			"*Error:* ```%s```",
		n.now().UTC().Format(time.RFC3339),
		err.Error(),
	)

	body, err := json.Marshal(SlackPayload{Text: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// ReportPipelineFailure reports a failed pipeline run with the brand it was working on.
func (n *SlackNotifier) ReportPipelineFailure(ctx context.Context, pipeline, brandID, brandName, reason string, err error) error {
	if err == nil {
		return nil
	}

	if brandName == "" {
		brandName = "unknown"
	}
	if pipeline == "" {
		pipeline = "unknown"
	}
	if reason == "" {
		reason = "unknown"
	}

	reportErr := fmt.Errorf(
		"pipeline failed: pipeline=%s reason=%s brand_id=%s brand_name=%s error=%v",
		pipeline,
		reason,
		brandID,
		brandName,
		err,
	)

	return n.ReportError(ctx, reportErr)
}
