package service

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	"github.com/Payphone-Digital/customer-service/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T { return &v }

func newCustomerFixture(t *testing.T) (*gorm.DB, *CustomerService) {
	t.Helper()
	db := testutil.NewDB(t)
	return db, NewCustomerService(repository.NewCustomerRepository(db), nil)
}

func createReq(dni int64, email string) *dto.CreateCustomerRequest {
	return &dto.CreateCustomerRequest{
		SexTape:   ptr("Female"),
		DNI:       ptr(dni),
		BirthDate: ptr("1990-05-17"),
		User: &dto.CustomerUserRequest{
			Email:    ptr(email),
			Name:     ptr("Jane"),
			LastName: ptr("Doe"),
		},
	}
}

func TestCustomerCreate(t *testing.T) {
	_, svc := newCustomerFixture(t)
	now := time.Date(2024, 6, 1, 9, 30, 0, 123456000, time.UTC)
	svc.WithClock(func() time.Time { return now })

	resp, err := svc.Create(context.Background(), createReq(12345678, "jane@example.com"))
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.NotEqual(t, uuid.Nil, resp.WalletID)
	assert.Equal(t, "1990-05-17T00:00:00Z", resp.BirthDate)
	assert.Equal(t, "2024-06-01T09:30:00.123456Z", resp.CreatedAt)
	assert.Equal(t, dto.CustomerUserResponse{Email: "jane@example.com", Name: "Jane", LastName: "Doe"}, resp.User)
}

func TestCustomerCreate_MissingFields(t *testing.T) {
	_, svc := newCustomerFixture(t)

	_, err := svc.Create(context.Background(), &dto.CreateCustomerRequest{})
	fields := fieldsOf(t, err)

	for _, f := range []string{"sex_tape", "dni", "birth_date", "user"} {
		assert.Equal(t, []string{"This field is required."}, fields[f], f)
	}
}

func TestCustomerCreate_DuplicateDNI(t *testing.T) {
	db, svc := newCustomerFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, createReq(1, "a@example.com"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, createReq(1, "b@example.com"))
	assert.Equal(t, map[string]any{"dni": []string{"customer with this dni already exists."}}, fieldsOf(t, err))

	var customers, users int64
	require.NoError(t, db.Model(&model.Customer{}).Where("dni = ?", 1).Count(&customers).Error)
	require.NoError(t, db.Model(&model.CustomerUser{}).Count(&users).Error)
	assert.Equal(t, int64(1), customers)
	assert.Equal(t, int64(1), users, "no orphan user is left behind")
}

func TestCustomerCreate_DuplicateEmailAndDNICollected(t *testing.T) {
	_, svc := newCustomerFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, createReq(1, "a@example.com"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, createReq(1, "a@example.com"))
	assert.Equal(t, map[string]any{
		"dni":  []string{"customer with this dni already exists."},
		"user": map[string]any{"email": "User with this email already exists."},
	}, fieldsOf(t, err))
}

func TestCustomerCreate_WalletIDCollisionRegenerates(t *testing.T) {
	_, svc := newCustomerFixture(t)
	ctx := context.Background()

	taken := uuid.MustParse("11111111-1111-4111-8111-111111111111")
	fresh := uuid.MustParse("22222222-2222-4222-8222-222222222222")
	ids := []uuid.UUID{taken, taken, fresh}
	svc.WithWalletIDGenerator(func() uuid.UUID {
		id := ids[0]
		ids = ids[1:]
		return id
	})

	first, err := svc.Create(ctx, createReq(1, "a@example.com"))
	require.NoError(t, err)
	assert.Equal(t, taken, first.WalletID)

	second, err := svc.Create(ctx, createReq(2, "b@example.com"))
	require.NoError(t, err)
	assert.Equal(t, fresh, second.WalletID)
}

func TestCustomerCreate_WalletIDExhausted(t *testing.T) {
	_, svc := newCustomerFixture(t)
	ctx := context.Background()

	taken := uuid.New()
	svc.WithWalletIDGenerator(func() uuid.UUID { return taken })

	_, err := svc.Create(ctx, createReq(1, "a@example.com"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, createReq(2, "b@example.com"))
	assert.ErrorIs(t, err, apperrors.ErrInternal)
}

func TestCustomerGet(t *testing.T) {
	_, svc := newCustomerFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq(1, "a@example.com"))
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = svc.Get(ctx, created.ID+100)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCustomerUpdate_NoOpOwnEmail(t *testing.T) {
	_, svc := newCustomerFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq(1, "a@example.com"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &dto.UpdateCustomerRequest{
		DNI:  ptr(int64(1)),
		User: &dto.UpdateCustomerUserRequest{Email: ptr("a@example.com")},
	})
	require.NoError(t, err)
	assert.Equal(t, created, updated)
}

func TestCustomerUpdate_CollisionsLeaveRecordUntouched(t *testing.T) {
	_, svc := newCustomerFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, createReq(1, "a@example.com"))
	require.NoError(t, err)
	b, err := svc.Create(ctx, createReq(2, "b@example.com"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, b.ID, &dto.UpdateCustomerRequest{
		SexTape: ptr("Male"),
		User:    &dto.UpdateCustomerUserRequest{Email: ptr("a@example.com")},
	})
	assert.Equal(t, map[string]any{"user": map[string]any{"email": "User with this email already exists."}}, fieldsOf(t, err))

	_, err = svc.Update(ctx, b.ID, &dto.UpdateCustomerRequest{DNI: ptr(int64(1))})
	assert.Equal(t, map[string]any{"dni": []string{"customer with this dni already exists."}}, fieldsOf(t, err))

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Female", got.SexTape, "a failed nested check must not write the customer")
	assert.Equal(t, int64(2), got.DNI)
}

func TestCustomerUpdate_Partial(t *testing.T) {
	_, svc := newCustomerFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq(1, "a@example.com"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &dto.UpdateCustomerRequest{
		BirthDate: ptr("1985-12-31T10:00:00Z"),
		User:      &dto.UpdateCustomerUserRequest{Name: ptr("Janet")},
	})
	require.NoError(t, err)

	assert.Equal(t, "1985-12-31T10:00:00Z", updated.BirthDate)
	assert.Equal(t, "Janet", updated.User.Name)
	assert.Equal(t, "Doe", updated.User.LastName)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt, "created_at is immutable")
	assert.Equal(t, created.WalletID, updated.WalletID)
}

func TestCustomerUpdate_Invalid(t *testing.T) {
	_, svc := newCustomerFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq(1, "a@example.com"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, &dto.UpdateCustomerRequest{
		SexTape: ptr("Other"),
		User:    &dto.UpdateCustomerUserRequest{Email: ptr("broken")},
	})
	fields := fieldsOf(t, err)
	assert.Equal(t, []string{`"Other" is not a valid choice.`}, fields["sex_tape"])
	assert.Equal(t, map[string]any{"email": []string{"Enter a valid email address."}}, fields["user"])

	_, err = svc.Update(ctx, created.ID+1, &dto.UpdateCustomerRequest{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCustomerDelete(t *testing.T) {
	db, svc := newCustomerFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq(1, "a@example.com"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	var users int64
	require.NoError(t, db.Model(&model.CustomerUser{}).Count(&users).Error)
	assert.Zero(t, users)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), apperrors.ErrNotFound)
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCustomerList_WalletIDsUnique(t *testing.T) {
	_, svc := newCustomerFixture(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := svc.Create(ctx, createReq(int64(i), fmt.Sprintf("u%d@example.com", i)))
		require.NoError(t, err)
	}

	results, total, err := svc.List(ctx, dto.CustomerListQuery{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)

	seen := map[uuid.UUID]bool{}
	for _, r := range results {
		assert.False(t, seen[r.WalletID])
		seen[r.WalletID] = true
	}
}

func TestParseCustomerOrder(t *testing.T) {
	tests := []struct {
		query string
		want  []dto.OrderField
	}{
		{"", []dto.OrderField{{Field: "created_at"}}},
		{"sortBy=-dni", []dto.OrderField{{Field: "dni", Descending: true}}},
		{"ordering=user__email,-id", []dto.OrderField{{Field: "user__email"}, {Field: "id", Descending: true}}},
		{"sortBy=password", []dto.OrderField{{Field: "created_at"}}},
		{"sortBy=dni&ordering=id", []dto.OrderField{{Field: "dni"}}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ParseCustomerOrder(values))
		})
	}
}

func TestParseCustomerFilter(t *testing.T) {
	values := url.Values{
		"sex_tape":        {"Male"},
		"dni":             {"42"},
		"user__email":     {"a@example.com"},
		"birth_date__gte": {"1990-01-01"},
	}
	f, err := ParseCustomerFilter(values)
	require.NoError(t, err)
	assert.Equal(t, "Male", *f.SexTape)
	assert.Equal(t, int64(42), *f.DNI)
	assert.Equal(t, "a@example.com", *f.UserEmail)
	assert.True(t, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC).Equal(*f.BirthDateGTE))
	assert.Nil(t, f.CreatedAt)

	_, err = ParseCustomerFilter(url.Values{
		"dni":       {"abc"},
		"wallet_id": {"nope"},
		"sex_tape":  {"Other"},
	})
	fields := fieldsOf(t, err)
	assert.Equal(t, []string{"Enter a number."}, fields["dni"])
	assert.Equal(t, []string{"Enter a valid UUID."}, fields["wallet_id"])
	assert.Contains(t, fields, "sex_tape")
}
