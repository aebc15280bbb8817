package storeclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Notification struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Priority    string            `json:"priority"`
	Title       string            `json:"title"`
	TitleBn     string            `json:"titleBn"`
	Message     string            `json:"message"`
	MessageBn   string            `json:"messageBn"`
	IsImportant bool              `json:"isImportant"`
	IsRead      bool              `json:"isRead"`
	ReadAt      *time.Time        `json:"readAt,omitempty"`
	OrderID     string            `json:"relatedOrderId,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type ListOptions struct {
	UnreadOnly    bool
	ImportantOnly bool
	Limit         int
}

func (c *Client) Notifications(ctx context.Context, opts ListOptions) ([]Notification, error) {
	q := url.Values{}
	if opts.UnreadOnly {
		q.Set("unread_only", "true")
	}
	if opts.ImportantOnly {
		q.Set("important_only", "true")
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	path := "/notifications"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Notifications, nil
}

func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	if err := c.getJSON(ctx, "/notifications/unread-count", &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodPut, "/notifications/"+id+"/read", nil, nil)
}

func (c *Client) MarkAllRead(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	if err := c.sendJSON(ctx, http.MethodPut, "/notifications/read-all", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/notifications/"+id, nil, nil)
}

func (c *Client) ClearNotifications(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	if err := c.sendJSON(ctx, http.MethodDelete, "/notifications", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}
