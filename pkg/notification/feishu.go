package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"surveyor/pkg/logger"
)

// FeishuNotifier sends notifications to Feishu (Lark)
type FeishuNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewFeishuNotifier creates a new Feishu notifier
func NewFeishuNotifier(webhookURL string) *FeishuNotifier {
	return &FeishuNotifier{
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ExperimentFinished an experiment whose work units all reached a terminal state
type ExperimentFinished struct {
	ExperimentID int64
	Number       int
	Name         string
	Complete     int64
	Failed       int64
	FinishedAt   time.Time
}

// SendExperimentFinished posts an experiment finished card
func (f *FeishuNotifier) SendExperimentFinished(ctx context.Context, n *ExperimentFinished) error {
	if f.webhookURL == "" {
		return nil
	}

	payload, err := json.Marshal(f.buildExperimentFinishedMessage(n))
	if err != nil {
		return fmt.Errorf("failed to marshal Feishu message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Feishu notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Feishu API returned status code: %d", resp.StatusCode)
	}

	logger.InfoCtx(ctx, "Feishu notification sent for experiment %d", n.ExperimentID)
	return nil
}

// buildExperimentFinishedMessage builds the message card; orange when any unit failed
func (f *FeishuNotifier) buildExperimentFinishedMessage(n *ExperimentFinished) map[string]interface{} {
	template := "green"
	if n.Failed > 0 {
		template = "orange"
	}

	field := func(title string, value interface{}) map[string]interface{} {
		return map[string]interface{}{
			"is_short": true,
			"text": map[string]interface{}{
				"content": fmt.Sprintf("**%s**\n%v", title, value),
				"tag":     "lark_md",
			},
		}
	}

	return map[string]interface{}{
		"msg_type": "interactive",
		"card": map[string]interface{}{
			"header": map[string]interface{}{
				"template": template,
				"title": map[string]interface{}{
					"content": fmt.Sprintf("Experiment #%d finished", n.Number),
					"tag":     "plain_text",
				},
			},
			"elements": []interface{}{
				map[string]interface{}{
					"tag": "div",
					"text": map[string]interface{}{
						"content": fmt.Sprintf("**Experiment**: %s (id %d)", n.Name, n.ExperimentID),
						"tag":     "lark_md",
					},
				},
				map[string]interface{}{
					"tag": "hr",
				},
				map[string]interface{}{
					"tag": "div",
					"fields": []interface{}{
						field("Complete", n.Complete),
						field("Failed", n.Failed),
					},
				},
				map[string]interface{}{
					"tag": "div",
					"text": map[string]interface{}{
						"content": fmt.Sprintf("**Finished At**: %s", n.FinishedAt.Format("2006-01-02 15:04:05")),
						"tag":     "lark_md",
					},
				},
			},
		},
	}
}
