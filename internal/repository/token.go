package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/model"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRepository is the token store. The store's unique indexes on key and
// user_id are the authoritative guard against duplicates.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) WithTx(tx *gorm.DB) *TokenRepository {
	return &TokenRepository{db: tx}
}

// Transaction runs fn with a repository bound to a single transaction.
func (r *TokenRepository) Transaction(ctx context.Context, fn func(repo *TokenRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// GetByKey loads a token together with its owner.
func (r *TokenRepository) GetByKey(ctx context.Context, key string) (*model.Token, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "TokenRepository.GetByKey")

	var token model.Token
	err := r.db.WithContext(ctx).Preload("User").Where(keyEquals(key)).First(&token).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.ErrorWithContext(ctx, "Failed to get token").
				Err(err).
				Log()
		}
		return nil, err
	}
	return &token, nil
}

func (r *TokenRepository) GetByUserID(ctx context.Context, userID uint) (*model.Token, error) {
	var token model.Token
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *TokenRepository) Create(ctx context.Context, token *model.Token) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "TokenRepository.Create")

	start := time.Now()
	err := classify(r.db.WithContext(ctx).Omit("User").Create(token).Error)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to create token").
			Uint("user_id", token.UserID).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return err
	}

	logger.DebugWithContext(ctx, "Token created").
		Uint("user_id", token.UserID).
		Duration(time.Since(start)).
		Log()
	return nil
}

// Delete removes the token with key. A missing token yields
// gorm.ErrRecordNotFound.
func (r *TokenRepository) Delete(ctx context.Context, key string) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "TokenRepository.Delete")

	result := r.db.WithContext(ctx).Where(keyEquals(key)).Delete(&model.Token{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete token").
			Err(result.Error).
			Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// key is a keyword in several SQL dialects, so the column is always quoted.
func keyEquals(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}
