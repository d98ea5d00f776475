package gmailclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"
)

// EmailInterval is the minimum gap between two sends
const EmailInterval = 3 * time.Second

// SendEmail sends a plain-text email, throttled to respect Gmail API rate limits
func (c *Client) SendEmail(ctx context.Context, to, subject, body string) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if !c.lastSendTime.IsZero() {
		if wait := c.interval - time.Since(c.lastSendTime); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(buildMessage(c.sender, to, subject, body)),
	}

	if _, err := c.service.Users.Messages.Send(c.userID, msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.lastSendTime = time.Now()
	return nil
}

// SendShareLink emails the read-only link of a group
func (c *Client) SendShareLink(ctx context.Context, to, groupName, link string) error {
	subject := fmt.Sprintf("You're invited to follow %s on Ayuuto", groupName)
	body := fmt.Sprintf(
		"Hello,\n\nYou can follow the savings group %q here:\n\n%s\n\nThis link is read-only.\n",
		groupName, link,
	)
	return c.SendEmail(ctx, to, subject, body)
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
