// internal/workers/deals/refresh-daily-deals/notifier.go
package refreshdailydeals

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"deal-hunter/internal/common/aws"
)

type refreshedMessage struct {
	Event       string    `json:"event"`
	Count       int       `json:"count"`
	Query       string    `json:"query"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// Notifier announces a completed refresh on an SNS topic.
type Notifier struct {
	client   aws.SNSAPI
	topicARN string
}

// NewNotifier returns nil when no topic is configured; a nil Notifier is a no-op.
func NewNotifier(client aws.SNSAPI, topicARN string) *Notifier {
	if client == nil || topicARN == "" {
		return nil
	}
	return &Notifier{client: client, topicARN: topicARN}
}

func (n *Notifier) Publish(ctx context.Context, count int, query string) error {
	if n == nil {
		return nil
	}
	body, err := json.Marshal(refreshedMessage{
		Event:       "daily_deals.refreshed",
		Count:       count,
		Query:       query,
		RefreshedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: sdkaws.String(n.topicARN),
		Subject:  sdkaws.String("Daily deals refreshed"),
		Message:  sdkaws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", n.topicARN, err)
	}
	return nil
}
