package notificationservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	repo "github.com/Leopold1975/stackit/internal/stackit/repository/notificationrepo"
	"github.com/Leopold1975/stackit/internal/stackit/services"
	"github.com/google/uuid"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type NotificationService struct {
	notificationRepo Repository
}

type Repository interface {
	CreateNotification(context.Context, models.Notification) error
	ListNotifications(context.Context, repo.ListRequest) ([]models.Notification, error)
	GetNotification(context.Context, string) (models.Notification, error)
	UnreadCount(context.Context, string) (int, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(context.Context, string) (int64, error)
	DeleteNotification(ctx context.Context, id, recipientID string) error
}

type ListRequest struct {
	Skip       int
	Limit      int
	UnreadOnly bool
}

func New(notificationRepo Repository) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
	}
}

// Notify stores n for its recipient, filling id and timestamp.
func (ns *NotificationService) Notify(ctx context.Context, n models.Notification) error {
	n.ID = uuid.NewString()
	n.Read = false
	n.CreatedAt = time.Now().UTC()

	if err := ns.notificationRepo.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("create notification error: %w", err)
	}

	return nil
}

func (ns *NotificationService) List(ctx context.Context, u models.User, req ListRequest) ([]models.Notification, error) {
	if req.Skip < 0 {
		return nil, services.Fail(services.ErrBadRequest, "skip must not be negative")
	}

	switch {
	case req.Limit == 0:
		req.Limit = defaultLimit
	case req.Limit < 0 || req.Limit > maxLimit:
		return nil, services.Fail(services.ErrBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxLimit))
	}

	list, err := ns.notificationRepo.ListNotifications(ctx, repo.ListRequest{
		RecipientID: u.ID,
		UnreadOnly:  req.UnreadOnly,
		Offset:      req.Skip,
		Limit:       req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list notifications error: %w", err)
	}

	return list, nil
}

func (ns *NotificationService) UnreadCount(ctx context.Context, u models.User) (int, error) {
	n, err := ns.notificationRepo.UnreadCount(ctx, u.ID)
	if err != nil {
		return 0, fmt.Errorf("unread count error: %w", err)
	}

	return n, nil
}

func (ns *NotificationService) MarkRead(ctx context.Context, u models.User, id string) error {
	if err := ns.notificationRepo.MarkRead(ctx, id, u.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return services.Fail(services.ErrNotFound, "Notification not found")
		}

		return fmt.Errorf("mark read error: %w", err)
	}

	return nil
}

func (ns *NotificationService) MarkAllRead(ctx context.Context, u models.User) (int64, error) {
	n, err := ns.notificationRepo.MarkAllRead(ctx, u.ID)
	if err != nil {
		return 0, fmt.Errorf("mark all read error: %w", err)
	}

	return n, nil
}

func (ns *NotificationService) Delete(ctx context.Context, u models.User, id string) error {
	if err := ns.notificationRepo.DeleteNotification(ctx, id, u.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return services.Fail(services.ErrNotFound, "Notification not found")
		}

		return fmt.Errorf("delete notification error: %w", err)
	}

	return nil
}
