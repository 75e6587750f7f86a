package repositories

import (
	"errors"

	"aurapay/internal/models"

	"gorm.io/gorm"
)

// CardRepository handles the local mirror of provider-issued cards and the
// per-provider cardholder records.
type CardRepository interface {
	CreateCard(card *models.Card) error
	GetCardByProviderID(providerID string) (*models.Card, error)
	GetCardsByUser(userID uint) ([]models.Card, error)
	UpdateCard(card *models.Card) error
	GetCardsPaginated(limit, offset int) ([]models.Card, int64, error)

	CreateCardholder(holder *models.Cardholder) error
	GetCardholder(userID uint, provider string) (*models.Cardholder, error)
}

type cardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) CreateCard(card *models.Card) error {
	return r.db.Create(card).Error
}

func (r *cardRepository) GetCardByProviderID(providerID string) (*models.Card, error) {
	var card models.Card
	if err := r.db.Where("provider_id = ?", providerID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return &card, nil
}

func (r *cardRepository) GetCardsByUser(userID uint) ([]models.Card, error) {
	var cards []models.Card
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&cards).Error
	return cards, err
}

func (r *cardRepository) UpdateCard(card *models.Card) error {
	return r.db.Save(card).Error
}

func (r *cardRepository) GetCardsPaginated(limit, offset int) ([]models.Card, int64, error) {
	var cards []models.Card
	var total int64

	if err := r.db.Model(&models.Card{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Limit(limit).Offset(offset).Order("id").Find(&cards).Error
	return cards, total, err
}

func (r *cardRepository) CreateCardholder(holder *models.Cardholder) error {
	return r.db.Create(holder).Error
}

func (r *cardRepository) GetCardholder(userID uint, provider string) (*models.Cardholder, error) {
	var holder models.Cardholder
	err := r.db.Where("user_id = ? AND provider = ?", userID, provider).First(&holder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardholderNotFound
		}
		return nil, err
	}
	return &holder, nil
}
