package storeclient

import (
	"context"
	"time"
)

// NewUnreadBadge wires the unread-count endpoint to a badge callback.
// The store UIs poll this every 5-30 seconds.
func NewUnreadBadge(c *Client, interval time.Duration, onCount func(int64)) *Poller[int64] {
	return NewPoller(interval, c.UnreadCount, onCount)
}

// NewNotificationFeed keeps a notification list fresh.
func NewNotificationFeed(c *Client, interval time.Duration, opts ListOptions, onList func([]Notification)) *Poller[[]Notification] {
	return NewPoller(interval, func(ctx context.Context) ([]Notification, error) {
		return c.Notifications(ctx, opts)
	}, onList)
}
