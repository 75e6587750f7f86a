package webhook

import (
	"context"
	"testing"

	"aurapay/internal/models"
	"aurapay/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockWebhookRepo struct {
	mock.Mock
}

func (m *mockWebhookRepo) Create(sub *models.WebhookSubscription) error {
	return m.Called(sub).Error(0)
}

func (m *mockWebhookRepo) List() ([]models.WebhookSubscription, error) {
	args := m.Called()
	return args.Get(0).([]models.WebhookSubscription), args.Error(1)
}

func (m *mockWebhookRepo) GetByID(id string) (*models.WebhookSubscription, error) {
	args := m.Called(id)
	if s, ok := args.Get(0).(*models.WebhookSubscription); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWebhookRepo) Delete(id string) error {
	return m.Called(id).Error(0)
}

func TestSubscribeAssignsID(t *testing.T) {
	repo := new(mockWebhookRepo)
	svc := NewService(repo, zap.NewNop())

	repo.On("Create", mock.AnythingOfType("*models.WebhookSubscription")).Return(nil)

	sub, err := svc.Subscribe(context.Background(), 7, SubscribeInput{URL: "https://hooks.example.com/pay"})
	require.NoError(t, err)

	assert.Len(t, sub.ID, 36, "uuid primary key")
	assert.Equal(t, uint(7), sub.CreatedBy)
}

func TestSubscribeRejectsNonHTTPS(t *testing.T) {
	svc := NewService(new(mockWebhookRepo), zap.NewNop())

	for _, raw := range []string{"http://insecure.example.com", "not-a-url", "", "ftp://x.example.com"} {
		_, err := svc.Subscribe(context.Background(), 7, SubscribeInput{URL: raw})
		assert.ErrorIs(t, err, ErrInvalidURL, "url %q", raw)
	}
}

func TestUnsubscribeUnknownID(t *testing.T) {
	repo := new(mockWebhookRepo)
	svc := NewService(repo, zap.NewNop())

	repo.On("Delete", "missing").Return(repositories.ErrWebhookNotFound)

	err := svc.Unsubscribe(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrWebhookNotFound)
}
