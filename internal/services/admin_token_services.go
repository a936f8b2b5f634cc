package services

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log"
	"moderation-api/internal/repository"
	"time"

	"gorm.io/gorm"
)

// AdminTokenService manages the rotating ops token. A token is valid
// for 24 hours, after which the next lookup mints a replacement.
type AdminTokenService struct {
	repo repository.AdminTokenRepository
}

func NewAdminTokenService(repo repository.AdminTokenRepository) *AdminTokenService {
	return &AdminTokenService{repo: repo}
}

func (s *AdminTokenService) GetOrCreateAdminToken() (string, error) {
	token, err := s.repo.GetLatestToken()
	if err == gorm.ErrRecordNotFound || (err == nil && time.Since(token.CreatedAt) > 24*time.Hour) {
		newToken := generateSecureToken(32)
		if err := s.repo.CreateToken(newToken); err != nil {
			return "", err
		}
		if err := s.repo.DeleteOldTokens(); err != nil {
			log.Printf("Error deleting old tokens: %v", err)
		}
		return newToken, nil
	} else if err != nil {
		return "", err
	}
	return token.Token, nil
}

// ValidateToken reports whether the presented token matches the current
// unexpired ops token.
func (s *AdminTokenService) ValidateToken(presented string) bool {
	token, err := s.repo.GetLatestToken()
	if err != nil {
		return false
	}
	if time.Since(token.CreatedAt) > 24*time.Hour {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token.Token), []byte(presented)) == 1
}

func generateSecureToken(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return hex.EncodeToString(b)
}
