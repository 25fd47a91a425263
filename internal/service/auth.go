package service

import (
	"context"
	"errors"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/Payphone-Digital/customer-service/pkg/validation"
	"gorm.io/gorm"
)

type AuthService struct {
	users     *repository.UserRepository
	tokens    *TokenManager
	hasher    PasswordHasher
	validator *validation.Validator
	now       func() time.Time
}

func NewAuthService(users *repository.UserRepository, tokens *TokenManager, hasher PasswordHasher) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		hasher:    hasher,
		validator: validation.Default(),
		now:       time.Now,
	}
}

func toUserPublic(u *model.User) dto.UserPublicResponse {
	return dto.UserPublicResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// Login checks credentials and hands out a freshly rotated token.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "AuthService.Login")

	if fields := s.validator.Struct(req); fields != nil {
		return nil, apperrors.FromFields(fields)
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.LogAuth(0, "login", false)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !user.IsActive || !s.hasher.Compare(user.Password, req.Password) {
		logger.LogAuth(user.ID, "login", false)
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.GetOrCreate(ctx, user.ID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	_, token, err = s.tokens.Evaluate(ctx, token, true)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		logger.WarnWithContext(ctx, "Failed to update last login").
			Uint("user_id", user.ID).
			Err(err).
			Log()
	}

	logger.LogAuth(user.ID, "login", true)
	return &dto.LoginResponse{
		Token: token.Key,
		User:  toUserPublic(user),
	}, nil
}

// Logout deletes exactly the token that authenticated the request.
func (s *AuthService) Logout(ctx context.Context, token *model.Token) error {
	ctx = ctxutil.WithFunction(ctx, "service", "AuthService.Logout")

	if err := s.tokens.Revoke(ctx, token.Key); err != nil {
		if apperrors.IsDomainError(err) {
			return err
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.LogAuth(token.UserID, "logout", true)
	return nil
}

// Register validates in two stages. Field checks are all collected; the
// cross-field checks only run once those pass and stop at the first
// failure.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserPublicResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "AuthService.Register")

	verr := apperrors.NewValidationError().Merge(s.validator.Struct(req))

	if _, bad := verr.Fields["username"]; !bad {
		exists, err := s.users.ExistsByUsername(ctx, req.Username)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		if exists {
			verr.Add("username", constants.MsgUsernameExists)
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}

	if req.Password != req.PasswordConfirmed {
		return nil, apperrors.NewValidationError().Set("passwords", constants.MsgPasswordsMismatch)
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if exists {
		return nil, apperrors.NewValidationError().Set("email", constants.MsgEmailExists)
	}

	user, err := s.createUser(ctx, req.Username, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}

	resp := toUserPublic(user)
	return &resp, nil
}

// CreateUser provisions an API user outside the HTTP flow.
func (s *AuthService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*model.User, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "AuthService.CreateUser")

	if fields := s.validator.Struct(req); fields != nil {
		return nil, apperrors.FromFields(fields)
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if exists {
		return nil, apperrors.NewValidationError().Set("email", constants.MsgEmailExists)
	}

	return s.createUser(ctx, req.Username, req.Email, req.Password, req.FirstName, req.LastName)
}

func (s *AuthService) createUser(ctx context.Context, username, email, password, firstName, lastName string) (*model.User, error) {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Username:   username,
		Email:      email,
		Password:   hashed,
		FirstName:  firstName,
		LastName:   lastName,
		IsActive:   true,
		DateJoined: s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsDuplicate(err, "username") {
			return nil, apperrors.NewValidationError().Add("username", constants.MsgUsernameExists)
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return user, nil
}
