package google

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/harrisonrobin/mailtask/pkg/model"
	gmail "google.golang.org/api/gmail/v1"
)

const gmailUser = "me"

// MailClient fetches status-report messages from one Gmail label.
type MailClient struct {
	srv     *gmail.Service
	labelID string
}

// FetchMessages returns decoded messages received between start and end,
// inclusive. With excludeAfter5pm set, messages received at 17:00 local
// time or later are dropped; end-of-day reports describe the next cycle.
func (c *MailClient) FetchMessages(ctx context.Context, start, end model.Day, excludeAfter5pm bool) ([]model.Message, error) {
	// The query bounds are epoch seconds so the server-side filter is
	// timezone-exact; received dates are still re-checked below.
	query := fmt.Sprintf("after:%d before:%d", start.Unix(), end.AddDate(0, 0, 1).Unix())

	var messages []model.Message
	pageToken := ""
	for {
		call := c.srv.Users.Messages.List(gmailUser).LabelIds(c.labelID).Q(query).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("unable to list messages: %w", err)
		}

		for _, stub := range page.Messages {
			msg, err := c.srv.Users.Messages.Get(gmailUser, stub.Id).Format("full").Context(ctx).Do()
			if err != nil {
				return nil, fmt.Errorf("unable to fetch message %s: %w", stub.Id, err)
			}

			received := time.UnixMilli(msg.InternalDate).Local()
			day := model.DayOf(received)
			if day.Before(start.Time) || day.After(end.Time) {
				continue
			}
			if excludeAfter5pm && received.Hour() >= 17 {
				continue
			}

			messages = append(messages, model.Message{
				ID:      msg.Id,
				Subject: headerValue(msg.Payload, "Subject"),
				Body:    extractBody(msg.Payload),
				Date:    day,
				Time:    received.Format("15:04"),
			})
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return messages, nil
}

func headerValue(payload *gmail.MessagePart, name string) string {
	if payload == nil {
		return ""
	}
	for _, h := range payload.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

// extractBody picks the text/plain part when one exists, otherwise the
// text/html part; the parser strips tags from HTML bodies itself.
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}
	if body := findPart(payload, "text/plain"); body != "" {
		return body
	}
	if body := findPart(payload, "text/html"); body != "" {
		return body
	}
	return decodePartData(payload)
}

func findPart(part *gmail.MessagePart, mimeType string) string {
	if part.MimeType == mimeType {
		if body := decodePartData(part); body != "" {
			return body
		}
	}
	for _, child := range part.Parts {
		if body := findPart(child, mimeType); body != "" {
			return body
		}
	}
	return ""
}

func decodePartData(part *gmail.MessagePart) string {
	if part.Body == nil || part.Body.Data == "" {
		return ""
	}
	data, err := base64.RawURLEncoding.DecodeString(part.Body.Data)
	if err != nil {
		data, err = base64.URLEncoding.DecodeString(part.Body.Data)
	}
	if err != nil {
		return ""
	}
	return string(data)
}
