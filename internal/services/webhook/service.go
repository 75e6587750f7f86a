// Package webhook manages outbound notification subscriptions. Registrations
// are metadata only; delivery is a separate concern.
package webhook

import (
	"context"
	"errors"
	"fmt"

	"aurapay/internal/models"
	"aurapay/internal/repositories"
	"aurapay/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service errors
var (
	ErrInvalidURL      = errors.New("webhook url must be an absolute https url")
	ErrWebhookNotFound = errors.New("webhook subscription not found")
)

// SubscribeInput is the registration request.
type SubscribeInput struct {
	URL string `json:"url" validate:"required"`
}

type Service interface {
	Subscribe(ctx context.Context, createdBy uint, in SubscribeInput) (*models.WebhookSubscription, error)
	List(ctx context.Context) ([]models.WebhookSubscription, error)
	Unsubscribe(ctx context.Context, id string) error
}

type service struct {
	webhooks repositories.WebhookRepository
	logger   *zap.Logger
}

func NewService(webhooks repositories.WebhookRepository, logger *zap.Logger) Service {
	return &service{webhooks: webhooks, logger: logger}
}

func (s *service) Subscribe(ctx context.Context, createdBy uint, in SubscribeInput) (*models.WebhookSubscription, error) {
	if !validation.IsHTTPSURL(in.URL) {
		return nil, ErrInvalidURL
	}

	sub := &models.WebhookSubscription{
		ID:        uuid.NewString(),
		URL:       in.URL,
		CreatedBy: createdBy,
	}
	if err := s.webhooks.Create(sub); err != nil {
		return nil, fmt.Errorf("creating webhook subscription: %w", err)
	}

	s.logger.Info("webhook subscribed",
		zap.String("id", sub.ID), zap.Uint("created_by", createdBy))
	return sub, nil
}

func (s *service) List(ctx context.Context) ([]models.WebhookSubscription, error) {
	return s.webhooks.List()
}

func (s *service) Unsubscribe(ctx context.Context, id string) error {
	if err := s.webhooks.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrWebhookNotFound) {
			return ErrWebhookNotFound
		}
		return err
	}
	s.logger.Info("webhook unsubscribed", zap.String("id", id))
	return nil
}
