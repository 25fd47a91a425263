package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/Payphone-Digital/customer-service/pkg/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// errWalletIDExhausted is returned when every generated wallet id collided.
var errWalletIDExhausted = errors.New("could not generate a unique wallet id")

type CustomerService struct {
	repo        *repository.CustomerRepository
	cache       *CacheService
	validator   *validation.Validator
	now         func() time.Time
	newWalletID func() uuid.UUID
}

func NewCustomerService(repo *repository.CustomerRepository, cache *CacheService) *CustomerService {
	if cache == nil {
		cache = NewCacheService(nil, 0)
	}
	return &CustomerService{
		repo:        repo,
		cache:       cache,
		validator:   validation.Default(),
		now:         time.Now,
		newWalletID: uuid.New,
	}
}

// WithClock replaces the time source used for created_at.
func (s *CustomerService) WithClock(now func() time.Time) *CustomerService {
	s.now = now
	return s
}

// WithWalletIDGenerator replaces uuid.New as the wallet id source.
func (s *CustomerService) WithWalletIDGenerator(gen func() uuid.UUID) *CustomerService {
	s.newWalletID = gen
	return s
}

func toCustomerResponse(c *model.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:        c.ID,
		WalletID:  c.WalletID,
		SexTape:   c.SexTape,
		DNI:       c.DNI,
		BirthDate: c.BirthDate.UTC().Format(dto.BirthDateLayout),
		CreatedAt: c.CreatedAt.UTC().Format(dto.CreatedAtLayout),
		User: dto.CustomerUserResponse{
			Email:    c.User.Email,
			Name:     c.User.Name,
			LastName: c.User.LastName,
		},
	}
}

func hasField(verr *apperrors.ValidationError, parent string, field ...string) bool {
	v, ok := verr.Fields[parent]
	if !ok || len(field) == 0 {
		return ok
	}
	nested, isMap := v.(map[string]any)
	if !isMap {
		return false
	}
	_, ok = nested[field[0]]
	return ok
}

// checkUnique adds dni and nested email collisions to verr. Fields that
// already failed validation are not checked again. selfID and selfUserID
// exclude the record being updated (0 on create).
func (s *CustomerService) checkUnique(ctx context.Context, verr *apperrors.ValidationError, dni *int64, email *string, selfID, selfUserID uint) error {
	if dni != nil && !hasField(verr, "dni") {
		exists, err := s.repo.ExistsByDNI(ctx, *dni, selfID)
		if err != nil {
			return err
		}
		if exists {
			verr.Add("dni", constants.MsgDNIExists)
		}
	}

	if email != nil && !hasField(verr, "user", "email") {
		used, err := s.repo.EmailInUse(ctx, *email, selfUserID)
		if err != nil {
			return err
		}
		if used {
			verr.Nested("user", "email", constants.MsgCustomerEmailUsed)
		}
	}
	return nil
}

// duplicateToValidation maps a store level unique violation onto the same
// field errors the pre-checks produce.
func duplicateToValidation(err error) error {
	switch {
	case repository.IsDuplicate(err, "dni"):
		return apperrors.NewValidationError().Add("dni", constants.MsgDNIExists)
	case repository.IsDuplicate(err, "email"):
		return apperrors.NewValidationError().Nested("user", "email", constants.MsgCustomerEmailUsed)
	case repository.IsDuplicate(err, "wallet_id"):
		return apperrors.NewValidationError().Add("wallet_id", constants.MsgWalletIDExists)
	}
	return nil
}

func (s *CustomerService) generateWalletID(ctx context.Context) (uuid.UUID, error) {
	for attempt := 0; attempt < constants.WalletIDMaxAttempts; attempt++ {
		id := s.newWalletID()
		exists, err := s.repo.ExistsByWalletID(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		if !exists {
			return id, nil
		}
		logger.WarnWithContext(ctx, "Wallet id collision, regenerating").
			Int("attempt", attempt+1).
			Log()
	}
	return uuid.Nil, errWalletIDExhausted
}

// Create validates the request, then inserts the customer user and the
// customer in one transaction.
func (s *CustomerService) Create(ctx context.Context, req *dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "CustomerService.Create")

	verr := apperrors.NewValidationError().Merge(s.validator.Struct(req))

	var email *string
	if req.User != nil {
		email = req.User.Email
	}
	if err := s.checkUnique(ctx, verr, req.DNI, email, 0, 0); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if verr.HasErrors() {
		logger.InfoWithContext(ctx, "Customer create rejected").
			String("error", verr.Error()).
			Log()
		return nil, verr
	}

	birthDate, err := validation.ParseDateTime(*req.BirthDate)
	if err != nil {
		return nil, apperrors.NewValidationError().Add("birth_date", validation.DefaultISO8601Message)
	}

	var customer *model.Customer
	for attempt := 0; attempt < constants.WalletIDMaxAttempts; attempt++ {
		walletID, err := s.generateWalletID(ctx)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}

		now := s.now().UTC().Truncate(time.Microsecond)
		candidate := &model.Customer{
			WalletID:  walletID,
			SexTape:   *req.SexTape,
			DNI:       *req.DNI,
			BirthDate: birthDate,
			CreatedAt: now,
			User: model.CustomerUser{
				Email:      *req.User.Email,
				Name:       *req.User.Name,
				LastName:   *req.User.LastName,
				IsActive:   true,
				DateJoined: now,
			},
		}

		err = s.repo.Transaction(ctx, func(repo *repository.CustomerRepository) error {
			if err := repo.CreateUser(ctx, &candidate.User); err != nil {
				return err
			}
			candidate.UserID = candidate.User.ID
			return repo.Create(ctx, candidate)
		})
		if err == nil {
			customer = candidate
			break
		}

		if repository.IsDuplicate(err, "wallet_id") {
			// lost a race with a concurrent insert; try a fresh id
			continue
		}
		if mapped := duplicateToValidation(err); mapped != nil {
			return nil, mapped
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if customer == nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, errWalletIDExhausted)
	}

	resp := toCustomerResponse(customer)
	s.cache.SetCustomer(ctx, resp)

	logger.InfoWithContext(ctx, "Customer created successfully").
		Uint("customer_id", customer.ID).
		Log()
	return resp, nil
}

func (s *CustomerService) load(ctx context.Context, id uint) (*model.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return customer, nil
}

// Get returns one customer, consulting the cache first.
func (s *CustomerService) Get(ctx context.Context, id uint) (*dto.CustomerResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "CustomerService.Get")

	if cached, ok := s.cache.GetCustomer(ctx, id); ok {
		return cached, nil
	}

	customer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := toCustomerResponse(customer)
	s.cache.SetCustomer(ctx, resp)
	return resp, nil
}

func (s *CustomerService) List(ctx context.Context, query dto.CustomerListQuery) ([]dto.CustomerResponse, int64, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "CustomerService.List")

	if len(query.Order) == 0 {
		query.Order = defaultCustomerOrder
	}

	customers, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	results := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		results = append(results, *toCustomerResponse(&customers[i]))
	}
	return results, total, nil
}

// Update applies the fields present in req. Every check runs before the
// first write, and both rows are written in one transaction. The stored
// state is re-read for the response.
func (s *CustomerService) Update(ctx context.Context, id uint, req *dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "CustomerService.Update")

	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := apperrors.NewValidationError().Merge(s.validator.Struct(req))

	var email *string
	if req.User != nil {
		email = req.User.Email
	}
	if err := s.checkUnique(ctx, verr, req.DNI, email, existing.ID, existing.UserID); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if verr.HasErrors() {
		logger.InfoWithContext(ctx, "Customer update rejected").
			Uint("customer_id", id).
			String("error", verr.Error()).
			Log()
		return nil, verr
	}

	customerChanges := map[string]interface{}{}
	if req.SexTape != nil {
		customerChanges["sex_tape"] = *req.SexTape
	}
	if req.DNI != nil {
		customerChanges["dni"] = *req.DNI
	}
	if req.BirthDate != nil {
		birthDate, err := validation.ParseDateTime(*req.BirthDate)
		if err != nil {
			return nil, apperrors.NewValidationError().Add("birth_date", validation.DefaultISO8601Message)
		}
		customerChanges["birth_date"] = birthDate
	}

	userChanges := map[string]interface{}{}
	if req.User != nil {
		if req.User.Email != nil {
			userChanges["email"] = *req.User.Email
		}
		if req.User.Name != nil {
			userChanges["name"] = *req.User.Name
		}
		if req.User.LastName != nil {
			userChanges["last_name"] = *req.User.LastName
		}
	}

	err = s.repo.Transaction(ctx, func(repo *repository.CustomerRepository) error {
		if err := repo.UpdateUser(ctx, existing.UserID, userChanges); err != nil {
			return err
		}
		return repo.Update(ctx, existing.ID, customerChanges)
	})
	if err != nil {
		if mapped := duplicateToValidation(err); mapped != nil {
			return nil, mapped
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.cache.InvalidateCustomer(ctx, id)

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "Customer updated successfully").
		Uint("customer_id", id).
		Int("customer_fields", len(customerChanges)).
		Int("user_fields", len(userChanges)).
		Log()
	return toCustomerResponse(updated), nil
}

// Delete removes the customer and its user together.
func (s *CustomerService) Delete(ctx context.Context, id uint) error {
	ctx = ctxutil.WithFunction(ctx, "service", "CustomerService.Delete")

	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(repo *repository.CustomerRepository) error {
		return repo.Delete(ctx, existing)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, fmt.Errorf("delete customer %d: %w", id, err))
	}

	s.cache.InvalidateCustomer(ctx, id)
	return nil
}
