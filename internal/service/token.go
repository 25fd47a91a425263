package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"gorm.io/gorm"
)

// keyAttempts bounds retries when a freshly generated key already exists.
const keyAttempts = 3

// TokenManager issues, checks and rotates opaque auth tokens.
type TokenManager struct {
	repo   *repository.TokenRepository
	ttl    time.Duration
	now    func() time.Time
	keyGen func() (string, error)
}

func NewTokenManager(repo *repository.TokenRepository, ttl time.Duration) *TokenManager {
	return &TokenManager{
		repo:   repo,
		ttl:    ttl,
		now:    time.Now,
		keyGen: GenerateTokenKey,
	}
}

// WithClock replaces the time source.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

// WithKeyGenerator replaces the key source.
func (m *TokenManager) WithKeyGenerator(gen func() (string, error)) *TokenManager {
	m.keyGen = gen
	return m
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// GenerateTokenKey returns 40 hex characters from a CSPRNG.
func GenerateTokenKey() (string, error) {
	b := make([]byte, constants.TokenKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (m *TokenManager) stamp() time.Time {
	return m.now().UTC().Truncate(time.Microsecond)
}

// IsExpired reports whether more than the TTL has elapsed since the token
// was created. A token exactly TTL old is still valid.
func (m *TokenManager) IsExpired(token *model.Token) bool {
	elapsed := m.now().Sub(token.Created)
	return m.ttl-elapsed < 0
}

// Evaluate checks token expiry. With isLogin set the token is always
// replaced by a new one for the same user and reported as not expired.
func (m *TokenManager) Evaluate(ctx context.Context, token *model.Token, isLogin bool) (bool, *model.Token, error) {
	if !isLogin {
		return m.IsExpired(token), token, nil
	}

	rotated, err := m.rotate(ctx, token)
	if err != nil {
		return false, nil, err
	}
	return false, rotated, nil
}

func (m *TokenManager) rotate(ctx context.Context, old *model.Token) (*model.Token, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "TokenManager.rotate")

	var fresh *model.Token
	err := m.repo.Transaction(ctx, func(repo *repository.TokenRepository) error {
		if err := repo.Delete(ctx, old.Key); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		token, err := m.create(ctx, repo, old.UserID)
		if err != nil {
			return err
		}
		fresh = token
		return nil
	})
	if repository.IsDuplicate(err, "user_id") {
		// a concurrent login rotated the same token first
		fresh, err = m.repo.GetByUserID(ctx, old.UserID)
	}
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to rotate token").
			Uint("user_id", old.UserID).
			Err(err).
			Log()
		return nil, err
	}

	fresh.User = old.User
	logger.InfoWithContext(ctx, "Token rotated").
		Uint("user_id", old.UserID).
		Log()
	return fresh, nil
}

func (m *TokenManager) create(ctx context.Context, repo *repository.TokenRepository, userID uint) (*model.Token, error) {
	var lastErr error
	for attempt := 0; attempt < keyAttempts; attempt++ {
		key, err := m.keyGen()
		if err != nil {
			return nil, err
		}
		token := &model.Token{Key: key, UserID: userID, Created: m.stamp()}
		err = repo.Create(ctx, token)
		if err == nil {
			return token, nil
		}
		if !repository.IsDuplicate(err, "key") {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("could not generate a unique token key: %w", lastErr)
}

// GetOrCreate returns the user's token, creating one when none exists.
func (m *TokenManager) GetOrCreate(ctx context.Context, userID uint) (*model.Token, error) {
	token, err := m.repo.GetByUserID(ctx, userID)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	token, err = m.create(ctx, m.repo, userID)
	if repository.IsDuplicate(err, "user_id") {
		// a concurrent login created it first
		return m.repo.GetByUserID(ctx, userID)
	}
	return token, err
}

// Authenticate resolves a presented key to a live token and its user.
func (m *TokenManager) Authenticate(ctx context.Context, key string) (*model.Token, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "TokenManager.Authenticate")

	token, err := m.repo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !token.User.IsActive {
		return nil, apperrors.ErrUserInactive
	}

	expired, _, err := m.Evaluate(ctx, token, false)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if expired {
		logger.InfoWithContext(ctx, "Expired token presented").
			Uint("user_id", token.UserID).
			Log()
		return nil, apperrors.ErrTokenExpired
	}
	return token, nil
}

// Revoke deletes the token with key.
func (m *TokenManager) Revoke(ctx context.Context, key string) error {
	err := m.repo.Delete(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrInvalidToken
	}
	return err
}
