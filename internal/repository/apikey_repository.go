package repository

import (
	"context"
	"moderation-api/internal/models"
	"moderation-api/internal/pkg/errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type APIKeyRepository interface {
	Create(ctx context.Context, apiKey *models.APIKey) error
	GetByKey(ctx context.Context, key string) (*models.APIKey, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.APIKey, error)
	List(ctx context.Context, limit, offset int) ([]models.APIKey, error)
	Update(ctx context.Context, apiKey *models.APIKey) error
	// AdmitRequest atomically checks the key, performs a lazy daily
	// reset when due, and counts the request. On ErrQuotaExceeded the
	// loaded key is still returned so callers can build the rate limit
	// headers.
	AdmitRequest(ctx context.Context, rawKey string, now time.Time, dailyLimit func(models.APIKeyTier) int) (*models.APIKey, error)
}

type apiKeyRepository struct {
	db *gorm.DB
}

func NewAPIKeyRepository(db *gorm.DB) APIKeyRepository {
	return &apiKeyRepository{db: db}
}

func (r *apiKeyRepository) Create(ctx context.Context, apiKey *models.APIKey) error {
	result := r.db.WithContext(ctx).Create(apiKey)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to create API key")
	}
	return nil
}

func (r *apiKeyRepository) GetByKey(ctx context.Context, key string) (*models.APIKey, error) {
	var apiKey models.APIKey
	result := r.db.WithContext(ctx).First(&apiKey, "key = ?", key)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(result.Error, "failed to get API key by key")
	}

	return &apiKey, nil
}

func (r *apiKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.APIKey, error) {
	var apiKey models.APIKey
	result := r.db.WithContext(ctx).First(&apiKey, "id = ?", id)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(result.Error, "failed to get API key by ID")
	}

	return &apiKey, nil
}

func (r *apiKeyRepository) List(ctx context.Context, limit, offset int) ([]models.APIKey, error) {
	var keys []models.APIKey
	result := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&keys)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to list API keys")
	}

	return keys, nil
}

func (r *apiKeyRepository) Update(ctx context.Context, apiKey *models.APIKey) error {
	result := r.db.WithContext(ctx).Model(apiKey).Updates(map[string]interface{}{
		"name":        apiKey.Name,
		"tier":        apiKey.Tier,
		"webhook_url": apiKey.WebhookURL,
		"active":      apiKey.Active,
		"updated_at":  time.Now(),
	})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update API key")
	}

	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}

	return nil
}

func (r *apiKeyRepository) AdmitRequest(ctx context.Context, rawKey string, now time.Time, dailyLimit func(models.APIKeyTier) int) (*models.APIKey, error) {
	var apiKey models.APIKey

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the row so two concurrent requests on the same key
		// cannot both pass the limit check or race the daily reset.
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&apiKey, "key = ? AND active = ?", rawKey, true)
		if result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				return errors.ErrInvalidAPIKey
			}
			return errors.Wrap(result.Error, "failed to load API key")
		}

		limit := dailyLimit(apiKey.Tier)
		if !apiKey.CanMakeRequest(now, limit) {
			return errors.ErrQuotaExceeded
		}

		apiKey.RegisterRequest(now)
		update := tx.Model(&apiKey).Updates(map[string]interface{}{
			"requests_today": apiKey.RequestsToday,
			"last_reset_at":  apiKey.LastResetAt,
			"last_used_at":   apiKey.LastUsedAt,
			"updated_at":     now,
		})
		if update.Error != nil {
			return errors.Wrap(update.Error, "failed to record API key usage")
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, errors.ErrQuotaExceeded) {
			return &apiKey, err
		}
		return nil, err
	}

	return &apiKey, nil
}
