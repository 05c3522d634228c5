package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/classsync-api/internal/models"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
)

// AuthConfig defines configuration for anonymous sessions.
type AuthConfig struct {
	Secret string
	Expiry time.Duration
	AppID  string
}

// AuthService issues and validates anonymous staff tokens. Identity only gates writes; nothing
// else depends on who the caller is.
type AuthService struct {
	logger *zap.Logger
	config AuthConfig
	now    func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Expiry <= 0 {
		config.Expiry = 30 * 24 * time.Hour
	}
	return &AuthService{logger: logger, config: config, now: time.Now}
}

// SignInAnonymously issues a token for a fresh random subject.
func (s *AuthService) SignInAnonymously() (*models.AnonymousSession, error) {
	issuedAt := s.now().UTC()
	subject := uuid.NewString()
	claims := &models.AnonymousClaims{
		AppID: s.config.AppID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.AppID,
			Subject:   subject,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.Expiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Debug("anonymous session issued", zap.String("subject", subject))
	return &models.AnonymousSession{
		Subject:     subject,
		AccessToken: signed,
		ExpiresIn:   int64(s.config.Expiry.Seconds()),
		IssuedAt:    issuedAt,
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.AnonymousClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AnonymousClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.AnonymousClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.AppID != s.config.AppID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token issued for another application")
	}
	return claims, nil
}
