package service

import (
	"context"
	"testing"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	"github.com/Payphone-Digital/customer-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newAuthFixture(t *testing.T) (*gorm.DB, *AuthService) {
	t.Helper()
	db := testutil.NewDB(t)
	tokens := NewTokenManager(repository.NewTokenRepository(db), 24*time.Hour)
	svc := NewAuthService(repository.NewUserRepository(db), tokens, NewBcryptHasher(bcrypt.MinCost))
	return db, svc
}

func validRegister() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Username:          "alice",
		Password:          "secret1",
		PasswordConfirmed: "secret1",
		Email:             "alice@example.com",
		FirstName:         "Alice",
		LastName:          "Liddell",
	}
}

func fieldsOf(t *testing.T, err error) map[string]any {
	t.Helper()
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestRegister(t *testing.T) {
	db, svc := newAuthFixture(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)
	assert.Equal(t, dto.UserPublicResponse{
		Username: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Liddell",
	}, *resp)

	var stored model.User
	require.NoError(t, db.Where("username = ?", "alice").First(&stored).Error)
	assert.NotEqual(t, "secret1", stored.Password)
	assert.True(t, svc.hasher.Compare(stored.Password, "secret1"))
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.RegisterRequest)
		want   map[string]any
	}{
		{
			name:   "passwords differ",
			mutate: func(r *dto.RegisterRequest) {
				r.Username = "bob"
				r.Email = "bob@example.com"
				r.PasswordConfirmed = "secret2"
			},
			want: map[string]any{"passwords": "Does not match"},
		},
		{
			name:   "email taken",
			mutate: func(r *dto.RegisterRequest) { r.Username = "someone" },
			want:   map[string]any{"email": "already exists"},
		},
		{
			name:   "username taken",
			mutate: func(r *dto.RegisterRequest) { r.Email = "other@example.com" },
			want:   map[string]any{"username": []string{"A user with that username already exists."}},
		},
		{
			name:   "field errors collected before object checks",
			mutate: func(r *dto.RegisterRequest) {
				r.Username = "carol"
				r.Email = "not-an-email"
				r.PasswordConfirmed = "123"
			},
			want: map[string]any{
				"email":              []string{"Enter a valid email address."},
				"password_confirmed": []string{"Ensure this field has at least 6 characters."},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc := newAuthFixture(t)
			ctx := context.Background()
			_, err := svc.Register(ctx, validRegister())
			require.NoError(t, err)

			req := validRegister()
			tt.mutate(req)
			_, err = svc.Register(ctx, req)
			assert.Equal(t, tt.want, fieldsOf(t, err))
		})
	}
}

func TestRegister_MissingFields(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{})
	fields := fieldsOf(t, err)

	for _, f := range []string{"username", "password", "password_confirmed", "email", "first_name", "last_name"} {
		assert.Equal(t, []string{"This field is required."}, fields[f], f)
	}
}

func TestLogin(t *testing.T) {
	db, svc := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)

	first, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Len(t, first.Token, 40)
	assert.Equal(t, "alice@example.com", first.User.Email)

	second, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token, "every login rotates the token")

	var user model.User
	require.NoError(t, db.Where("username = ?", "alice").First(&user).Error)
	assert.NotNil(t, user.LastLogin)
}

func TestLogin_Rejections(t *testing.T) {
	db, svc := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, db.Model(&model.User{}).Where("username = ?", "alice").Update("is_active", false).Error)
	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{})
	fields := fieldsOf(t, err)
	assert.Equal(t, []string{"This field is required."}, fields["username"])
	assert.Equal(t, []string{"This field is required."}, fields["password"])
}

func TestLogout(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)
	login, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	token, err := svc.tokens.Authenticate(ctx, login.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.tokens.Authenticate(ctx, login.Token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestCreateUser(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, &dto.CreateUserRequest{Username: "ops", Email: "ops@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)

	_, err = svc.CreateUser(ctx, &dto.CreateUserRequest{Username: "ops", Email: "ops2@example.com", Password: "hunter22"})
	assert.Equal(t, map[string]any{"username": []string{"A user with that username already exists."}}, fieldsOf(t, err))
}
