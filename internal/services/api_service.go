package services

import (
	"context"
	"fmt"
	"moderation-api/internal/config"
	"moderation-api/internal/models"
	"moderation-api/internal/pkg/errors"
	"moderation-api/internal/repository"

	"github.com/google/uuid"
)

type IssueKeyInput struct {
	Email      string
	Name       string
	Tier       models.APIKeyTier
	WebhookURL string
}

type UpdateKeyInput struct {
	Tier   *models.APIKeyTier
	Active *bool
	// WebhookURL distinguishes unset from empty so admins can clear it.
	WebhookURL *string
}

type APIKeyService interface {
	GenerateAPIKey() string
	IssueKey(ctx context.Context, input IssueKeyInput) (*models.APIKey, error)
	GetAPIKeyByKey(ctx context.Context, key string) (*models.APIKey, error)
	List(ctx context.Context, limit, offset int) ([]models.APIKey, error)
	UpdateKey(ctx context.Context, id uuid.UUID, input UpdateKeyInput) (*models.APIKey, error)
}

type apiKeyService struct {
	apiKeyRepo repository.APIKeyRepository
	userRepo   repository.UserRepository
	tiers      *config.TierConfig
}

func NewAPIKeyService(apiKeyRepo repository.APIKeyRepository, userRepo repository.UserRepository, tiers *config.TierConfig) APIKeyService {
	return &apiKeyService{
		apiKeyRepo: apiKeyRepo,
		userRepo:   userRepo,
		tiers:      tiers,
	}
}

func (s *apiKeyService) GenerateAPIKey() string {
	return generateSecureToken(24)
}

// IssueKey provisions a key for the account behind email, creating the
// account when necessary.
func (s *apiKeyService) IssueKey(ctx context.Context, input IssueKeyInput) (*models.APIKey, error) {
	if input.Email == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "email is required")
	}
	if input.Tier == "" {
		input.Tier = models.TierFree
	}
	if !s.tiers.IsValidTier(input.Tier) {
		return nil, errors.Wrap(errors.ErrInvalidInput, fmt.Sprintf("unknown tier %q", input.Tier))
	}

	user, err := s.userRepo.FirstOrCreateByEmail(ctx, input.Email, input.Name)
	if err != nil {
		return nil, err
	}

	apiKey := &models.APIKey{
		ID:          uuid.New(),
		UserID:      user.ID,
		Key:         s.GenerateAPIKey(),
		Name:        input.Name,
		Tier:        input.Tier,
		WebhookURL:  input.WebhookURL,
		LastResetAt: nowFunc().UTC(),
		Active:      true,
	}

	if err := s.apiKeyRepo.Create(ctx, apiKey); err != nil {
		return nil, err
	}

	return apiKey, nil
}

func (s *apiKeyService) GetAPIKeyByKey(ctx context.Context, key string) (*models.APIKey, error) {
	apiKey, err := s.apiKeyRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return apiKey, nil
}

func (s *apiKeyService) List(ctx context.Context, limit, offset int) ([]models.APIKey, error) {
	return s.apiKeyRepo.List(ctx, limit, offset)
}

// UpdateKey applies a partial admin update. A tier change takes effect
// on the key's next request, the daily counter is left alone.
func (s *apiKeyService) UpdateKey(ctx context.Context, id uuid.UUID, input UpdateKeyInput) (*models.APIKey, error) {
	apiKey, err := s.apiKeyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Tier != nil {
		if !s.tiers.IsValidTier(*input.Tier) {
			return nil, errors.Wrap(errors.ErrInvalidInput, fmt.Sprintf("unknown tier %q", *input.Tier))
		}
		apiKey.Tier = *input.Tier
	}
	if input.Active != nil {
		apiKey.Active = *input.Active
	}
	if input.WebhookURL != nil {
		apiKey.WebhookURL = *input.WebhookURL
	}

	if err := s.apiKeyRepo.Update(ctx, apiKey); err != nil {
		return nil, err
	}

	return apiKey, nil
}
