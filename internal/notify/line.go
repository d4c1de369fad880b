package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

type LineChannel struct {
	api *messaging_api.MessagingApiAPI
}

func NewLineChannel(channelAccessToken string) (*LineChannel, error) {
	api, err := messaging_api.NewMessagingApiAPI(channelAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE client: %w", err)
	}
	return &LineChannel{api: api}, nil
}

// Push sends a text push message. LINE answers 409 when a request with the
// same retry key was already accepted, which counts as delivered.
func (c *LineChannel) Push(ctx context.Context, m Message) error {
	retryKey := ""
	if m.DedupKey != "" {
		retryKey = RetryKey(m.DedupKey)
	}

	resp, _, err := c.api.WithContext(ctx).PushMessageWithHttpInfo(&messaging_api.PushMessageRequest{
		To: m.To,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: m.Text},
		},
	}, retryKey)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return nil
		}
		return fmt.Errorf("line push failed: %w", err)
	}
	return nil
}

// RetryKey maps a dedup key onto the UUID format LINE requires for
// X-Line-Retry-Key.
func RetryKey(dedupKey string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("salonbook:"+dedupKey)).String()
}
