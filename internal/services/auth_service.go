package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"moderation-api/internal/models"
)

type contextKey string

const (
	APIKeyContextKey contextKey = "api_key"
	AdminContextKey  contextKey = "admin"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrUnauthorized = errors.New("caller is not authorized as admin")
)

// AdminIdentity describes who is acting on an admin endpoint. Callers
// using the rotating ops token have no personal identity and carry a
// nil ID.
type AdminIdentity struct {
	ID   uuid.UUID
	Role string
}

type AdminAuthService interface {
	VerifyAdminToken(token string) (*AdminIdentity, error)
	VerifyOpsToken(token string) (*AdminIdentity, error)
}

type adminAuthService struct {
	jwtSecret   string
	adminTokens *AdminTokenService
}

func NewAdminAuthService(jwtSecret string, adminTokens *AdminTokenService) AdminAuthService {
	return &adminAuthService{
		jwtSecret:   jwtSecret,
		adminTokens: adminTokens,
	}
}

// VerifyAdminToken checks a personal admin JWT and extracts the
// reviewer identity from its claims.
func (s *adminAuthService) VerifyAdminToken(tokenString string) (*AdminIdentity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	if role != "admin" && role != "super_admin" {
		return nil, ErrUnauthorized
	}

	rawID, _ := claims["admin_id"].(string)
	adminID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &AdminIdentity{ID: adminID, Role: role}, nil
}

// VerifyOpsToken checks the rotating operations token. The resulting
// identity has no reviewer ID, so it can inspect but not review.
func (s *adminAuthService) VerifyOpsToken(token string) (*AdminIdentity, error) {
	if s.adminTokens == nil || !s.adminTokens.ValidateToken(token) {
		return nil, ErrInvalidToken
	}
	return &AdminIdentity{ID: uuid.Nil, Role: "ops"}, nil
}

// Helper function to add the admitted API key to context
func WithAPIKeyContext(ctx context.Context, apiKey *models.APIKey) context.Context {
	return context.WithValue(ctx, APIKeyContextKey, apiKey)
}

// Helper function to get the admitted API key from context
func APIKeyFromContext(ctx context.Context) (*models.APIKey, bool) {
	apiKey, ok := ctx.Value(APIKeyContextKey).(*models.APIKey)
	return apiKey, ok
}

// Helper function to add the admin identity to context
func WithAdminContext(ctx context.Context, admin *AdminIdentity) context.Context {
	return context.WithValue(ctx, AdminContextKey, admin)
}

// Helper function to get the admin identity from context
func AdminFromContext(ctx context.Context) (*AdminIdentity, bool) {
	admin, ok := ctx.Value(AdminContextKey).(*AdminIdentity)
	return admin, ok
}

// MintAdminToken issues a personal admin JWT. Used by operators when
// onboarding reviewers, the API itself has no login flow.
func MintAdminToken(secret string, adminID uuid.UUID, role string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin_id": adminID.String(),
		"role":     role,
		"exp":      time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}
