package cart

import (
	"context"

	"trustlist_backend/models"

	"gorm.io/gorm"
)

// GormStore persists cart rows in the relational store.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Items(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at asc").
		Find(&items).Error
	return items, err
}

func (s *GormStore) Save(ctx context.Context, item *models.CartItem) error {
	return s.DB.WithContext(ctx).Save(item).Error
}

func (s *GormStore) Delete(ctx context.Context, userID, productID uint) error {
	return s.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
}

func (s *GormStore) Clear(ctx context.Context, userID uint) error {
	return s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}
