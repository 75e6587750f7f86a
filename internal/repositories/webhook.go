package repositories

import (
	"errors"

	"aurapay/internal/models"

	"gorm.io/gorm"
)

// WebhookRepository stores outbound notification URL registrations.
type WebhookRepository interface {
	Create(sub *models.WebhookSubscription) error
	List() ([]models.WebhookSubscription, error)
	GetByID(id string) (*models.WebhookSubscription, error)
	Delete(id string) error
}

type webhookRepository struct {
	db *gorm.DB
}

func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

func (r *webhookRepository) Create(sub *models.WebhookSubscription) error {
	return r.db.Create(sub).Error
}

func (r *webhookRepository) List() ([]models.WebhookSubscription, error) {
	var subs []models.WebhookSubscription
	err := r.db.Order("created_at DESC").Find(&subs).Error
	return subs, err
}

func (r *webhookRepository) GetByID(id string) (*models.WebhookSubscription, error) {
	var sub models.WebhookSubscription
	if err := r.db.First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWebhookNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *webhookRepository) Delete(id string) error {
	res := r.db.Delete(&models.WebhookSubscription{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrWebhookNotFound
	}
	return nil
}
