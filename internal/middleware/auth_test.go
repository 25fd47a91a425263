package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	"github.com/Payphone-Digital/customer-service/internal/service"
	"github.com/Payphone-Digital/customer-service/internal/testutil"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseAuthorization(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"token keyword", "Token abc123", "abc123", nil},
		{"bearer keyword", "Bearer abc123", "abc123", nil},
		{"keyword is case insensitive", "token abc123", "abc123", nil},
		{"empty header", "", "", apperrors.ErrNotAuthenticated},
		{"other scheme", "Basic dXNlcjpwYXNz", "", apperrors.ErrNotAuthenticated},
		{"keyword only", "Token", "", apperrors.ErrInvalidTokenHeader},
		{"key with spaces", "Token abc 123", "", apperrors.ErrInvalidTokenSpaces},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAuthorization(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type authFixture struct {
	engine *gin.Engine
	key    string
	user   *model.User
	db     *gorm.DB
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db := testutil.NewDB(t)
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	user := &model.User{Username: "alice", Email: "alice@example.com", Password: "x", IsActive: true}
	require.NoError(t, users.Create(ctx, user))

	tokens := service.NewTokenManager(repository.NewTokenRepository(db), 24*time.Hour)
	token, err := tokens.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)

	engine := gin.New()
	engine.GET("/me", NewTokenAuthMiddleware(tokens).RequireAuth(), func(c *gin.Context) {
		u, ok := AuthUser(c)
		require.True(t, ok)
		tok, ok := AuthToken(c)
		require.True(t, ok)
		ctxUserID, _ := ctxutil.GetUserID(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"username": u.Username, "key": tok.Key, "ctx_user_id": ctxUserID})
	})

	return &authFixture{engine: engine, key: token.Key, user: user, db: db}
}

func (f *authFixture) get(header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequireAuth_ValidToken(t *testing.T) {
	f := newAuthFixture(t)

	for _, scheme := range []string{"Token", "Bearer", "token"} {
		w := f.get(scheme + " " + f.key)
		require.Equal(t, http.StatusOK, w.Code, scheme)

		body := decode(t, w)
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, f.key, body["key"])
		assert.Equal(t, float64(f.user.ID), body["ctx_user_id"])
	}
}

func TestRequireAuth_Rejections(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name   string
		header string
		detail string
	}{
		{"missing header", "", "Authentication credentials were not provided."},
		{"keyword only", "Token", "Invalid token header. No credentials provided."},
		{"spaces", "Token a b", "Invalid token header. Token string should not contain spaces."},
		{"unknown key", "Token deadbeef", "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.get(tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Token", w.Header().Get("WWW-Authenticate"))
			assert.Equal(t, tt.detail, decode(t, w)["detail"])
		})
	}
}

func TestRequireAuth_InactiveUser(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.db.Model(&model.User{}).Where("id = ?", f.user.ID).Update("is_active", false).Error)

	w := f.get("Token " + f.key)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User inactive or deleted", decode(t, w)["detail"])
}
