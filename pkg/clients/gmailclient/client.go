package gmailclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Client wraps the Gmail API client
type Client struct {
	service *gmail.Service
	userID  string
	sender  string

	sendMutex    sync.Mutex
	lastSendTime time.Time
	interval     time.Duration
}

// NewClient creates a Gmail client on top of an already authorized HTTP
// client. userID is usually "me"; sender, when set, fills the From header.
func NewClient(ctx context.Context, httpClient *http.Client, userID, sender string, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	if userID == "" {
		userID = "me"
	}

	return &Client{
		service:  service,
		userID:   userID,
		sender:   sender,
		interval: EmailInterval,
	}, nil
}
