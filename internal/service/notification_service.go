package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"topup-orders-service/internal/model"
	"topup-orders-service/internal/repository"
)

type NotificationRepository interface {
	InsertMany(ctx context.Context, ns []*model.Notification) error
	FindByAudience(ctx context.Context, aud model.Audience, f repository.NotificationFilter) ([]*model.Notification, error)
	CountUnread(ctx context.Context, aud model.Audience) (int64, error)
	MarkRead(ctx context.Context, aud model.Audience, id string) error
	MarkAllRead(ctx context.Context, aud model.Audience) (int64, error)
	Delete(ctx context.Context, aud model.Audience, id string) error
	DeleteByAudience(ctx context.Context, aud model.Audience) (int64, error)
}

// unreadCache keeps badge counts warm between polls; nil-safe via noopCache.
type unreadCache interface {
	Get(ctx context.Context, aud model.Audience) (int64, bool)
	Set(ctx context.Context, aud model.Audience, count int64)
	Invalidate(ctx context.Context, aud model.Audience)
}

// eventPublisher hands persisted notifications to downstream delivery workers
// (email/SMS live outside this service). At-least-once; the notification id
// is the dedup key.
type eventPublisher interface {
	PublishNotification(ctx context.Context, n *model.Notification) error
}

type NotificationService struct {
	repo      NotificationRepository
	cache     unreadCache
	publisher eventPublisher
}

func NewNotificationService(repo NotificationRepository, cache unreadCache, publisher eventPublisher) *NotificationService {
	if cache == nil {
		cache = noopCache{}
	}
	return &NotificationService{repo: repo, cache: cache, publisher: publisher}
}

// Push persists fan-out intents: assigns ids and timestamps, writes the rows,
// drops the affected badge counts and emits events for delivery workers.
func (s *NotificationService) Push(ctx context.Context, intents []*model.Notification) error {
	if len(intents) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, n := range intents {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		n.IsRead = false
		n.ReadAt = nil
		n.CreatedAt = now
	}

	if err := s.repo.InsertMany(ctx, intents); err != nil {
		return err
	}

	for _, n := range intents {
		s.cache.Invalidate(ctx, audienceOf(n))

		if s.publisher == nil {
			continue
		}
		if err := s.publisher.PublishNotification(ctx, n); err != nil {
			// Already persisted; polling consumers will still see the row.
			zlog.Logger.Warn().Err(err).Str("notification_id", n.ID).Msg("failed to publish notification event")
		}
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, aud model.Audience, f repository.NotificationFilter) ([]*model.Notification, error) {
	return s.repo.FindByAudience(ctx, aud, f)
}

func (s *NotificationService) UnreadCount(ctx context.Context, aud model.Audience) (int64, error) {
	if n, ok := s.cache.Get(ctx, aud); ok {
		return n, nil
	}

	n, err := s.repo.CountUnread(ctx, aud)
	if err != nil {
		return 0, err
	}
	s.cache.Set(ctx, aud, n)
	return n, nil
}

// MarkRead is idempotent: re-marking an already-read notification neither
// errors nor moves read_at.
func (s *NotificationService) MarkRead(ctx context.Context, aud model.Audience, id string) error {
	if err := s.repo.MarkRead(ctx, aud, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, aud)
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, aud model.Audience) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, aud)
	if err != nil {
		return 0, err
	}
	s.cache.Invalidate(ctx, aud)
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, aud model.Audience, id string) error {
	if err := s.repo.Delete(ctx, aud, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, aud)
	return nil
}

func (s *NotificationService) ClearAll(ctx context.Context, aud model.Audience) (int64, error) {
	n, err := s.repo.DeleteByAudience(ctx, aud)
	if err != nil {
		return 0, err
	}
	s.cache.Invalidate(ctx, aud)
	return n, nil
}

// NotifyAdmins is the explicit broadcast path for system alerts, next to the
// transition-driven fan-out.
func (s *NotificationService) NotifyAdmins(ctx context.Context, title, titleBn, message, messageBn string, priority model.Priority, important bool) (*model.Notification, error) {
	if priority == "" {
		priority = model.PriorityNormal
	}

	n := &model.Notification{
		Recipient:   model.RecipientAdmin,
		Type:        model.NotifSystem,
		Priority:    priority,
		Title:       title,
		TitleBn:     titleBn,
		Message:     message,
		MessageBn:   messageBn,
		IsImportant: important,
	}
	if err := s.Push(ctx, []*model.Notification{n}); err != nil {
		return nil, err
	}
	return n, nil
}

func audienceOf(n *model.Notification) model.Audience {
	if n.Recipient == model.RecipientAdmin {
		return model.AdminAudience()
	}
	return model.UserAudience(n.UserID)
}

type noopCache struct{}

func (noopCache) Get(context.Context, model.Audience) (int64, bool) { return 0, false }
func (noopCache) Set(context.Context, model.Audience, int64)       {}
func (noopCache) Invalidate(context.Context, model.Audience)       {}
