package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/dto"
	"github.com/Payphone-Digital/customer-service/internal/model"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const joinCustomerUsers = "JOIN customer_users ON customer_users.id = customers.user_id"

var (
	colCustomerID        = clause.Column{Table: "customers", Name: "id"}
	colCustomerWalletID  = clause.Column{Table: "customers", Name: "wallet_id"}
	colCustomerSexTape   = clause.Column{Table: "customers", Name: "sex_tape"}
	colCustomerDNI       = clause.Column{Table: "customers", Name: "dni"}
	colCustomerBirthDate = clause.Column{Table: "customers", Name: "birth_date"}
	colCustomerCreatedAt = clause.Column{Table: "customers", Name: "created_at"}
	colUserEmail         = clause.Column{Table: "customer_users", Name: "email"}
	colUserName          = clause.Column{Table: "customer_users", Name: "name"}
	colUserLastName      = clause.Column{Table: "customer_users", Name: "last_name"}
)

// customerOrderColumns is the ordering whitelist, keyed by the public field
// name used in sortBy/ordering.
var customerOrderColumns = map[string]clause.Column{
	"id":              colCustomerID,
	"wallet_id":       colCustomerWalletID,
	"sex_tape":        colCustomerSexTape,
	"dni":             colCustomerDNI,
	"birth_date":      colCustomerBirthDate,
	"created_at":      colCustomerCreatedAt,
	"user__email":     colUserEmail,
	"user__name":      colUserName,
	"user__last_name": colUserLastName,
}

// IsCustomerOrderField reports whether field may be used to order the list.
func IsCustomerOrderField(field string) bool {
	_, ok := customerOrderColumns[field]
	return ok
}

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) WithTx(tx *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: tx}
}

// Transaction runs fn with a repository bound to a single transaction.
// Either every write made through that repository commits or none does.
func (r *CustomerRepository) Transaction(ctx context.Context, fn func(repo *CustomerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// GetByID loads a customer with its user.
func (r *CustomerRepository) GetByID(ctx context.Context, id uint) (*model.Customer, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "CustomerRepository.GetByID")

	logger.DebugWithContext(ctx, "Getting customer by ID").
		Uint("customer_id", id).
		Log()

	if err := ctx.Err(); err != nil {
		logger.WarnWithContext(ctx, "Context cancelled before query").
			Err(err).
			Log()
		return nil, err
	}

	start := time.Now()
	var customer model.Customer
	err := r.db.WithContext(ctx).Preload("User").First(&customer, id).Error
	duration := time.Since(start)

	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.ErrorWithContext(ctx, "Failed to get customer by ID").
				Uint("customer_id", id).
				Duration(duration).
				Err(err).
				Log()
		}
		return nil, err
	}

	logger.DebugWithContext(ctx, "Customer retrieved successfully").
		Uint("customer_id", id).
		Duration(duration).
		Log()
	return &customer, nil
}

func (r *CustomerRepository) filtered(ctx context.Context, f dto.CustomerFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Customer{}).Joins(joinCustomerUsers)

	eq := func(col clause.Column, v interface{}) {
		q = q.Where(clause.Eq{Column: col, Value: v})
	}

	if f.WalletID != nil {
		eq(colCustomerWalletID, *f.WalletID)
	}
	if f.SexTape != nil {
		eq(colCustomerSexTape, *f.SexTape)
	}
	if f.DNI != nil {
		eq(colCustomerDNI, *f.DNI)
	}
	if f.UserEmail != nil {
		eq(colUserEmail, *f.UserEmail)
	}
	if f.UserName != nil {
		eq(colUserName, *f.UserName)
	}
	if f.UserLastName != nil {
		eq(colUserLastName, *f.UserLastName)
	}
	if f.BirthDate != nil {
		eq(colCustomerBirthDate, *f.BirthDate)
	}
	if f.BirthDateGTE != nil {
		q = q.Where(clause.Gte{Column: colCustomerBirthDate, Value: *f.BirthDateGTE})
	}
	if f.BirthDateLTE != nil {
		q = q.Where(clause.Lte{Column: colCustomerBirthDate, Value: *f.BirthDateLTE})
	}
	if f.CreatedAt != nil {
		eq(colCustomerCreatedAt, *f.CreatedAt)
	}
	if f.CreatedAtGTE != nil {
		q = q.Where(clause.Gte{Column: colCustomerCreatedAt, Value: *f.CreatedAtGTE})
	}
	if f.CreatedAtLTE != nil {
		q = q.Where(clause.Lte{Column: colCustomerCreatedAt, Value: *f.CreatedAtLTE})
	}
	return q
}

// List returns one page of customers and the total number matching the
// filter. Unknown order fields are ignored; id is always the last
// tie-breaker so pages are stable.
func (r *CustomerRepository) List(ctx context.Context, query dto.CustomerListQuery) ([]model.Customer, int64, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "CustomerRepository.List")

	logger.DebugWithContext(ctx, "Listing customers").
		Int("limit", query.Limit).
		Int("offset", query.Offset).
		Int("order_fields", len(query.Order)).
		Log()

	if err := ctx.Err(); err != nil {
		logger.WarnWithContext(ctx, "Context cancelled before query").
			Err(err).
			Log()
		return nil, 0, err
	}

	start := time.Now()
	var total int64
	if err := r.filtered(ctx, query.Filter).Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count customers").
			Err(err).
			Log()
		return nil, 0, err
	}

	q := r.filtered(ctx, query.Filter).Preload("User")
	orderedByID := false
	for _, o := range query.Order {
		col, ok := customerOrderColumns[o.Field]
		if !ok {
			continue
		}
		q = q.Order(clause.OrderByColumn{Column: col, Desc: o.Descending})
		if o.Field == "id" {
			orderedByID = true
		}
	}
	if !orderedByID {
		q = q.Order(clause.OrderByColumn{Column: colCustomerID})
	}

	var customers []model.Customer
	if err := q.Limit(query.Limit).Offset(query.Offset).Find(&customers).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch customers").
			Int("limit", query.Limit).
			Int("offset", query.Offset).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, 0, err
	}

	logger.InfoWithContext(ctx, "Customers retrieved successfully").
		Int64("total", total).
		Int("returned_count", len(customers)).
		Duration(time.Since(start)).
		Log()
	return customers, total, nil
}

// ExistsByDNI checks dni against every customer except excludeID (0 for none).
func (r *CustomerRepository) ExistsByDNI(ctx context.Context, dni int64, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Customer{}).Where("dni = ?", dni)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *CustomerRepository) ExistsByWalletID(ctx context.Context, walletID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Customer{}).Where("wallet_id = ?", walletID).Count(&count).Error
	return count > 0, err
}

// EmailInUse checks a customer user email against every customer user
// except excludeUserID (0 for none).
func (r *CustomerRepository) EmailInUse(ctx context.Context, email string, excludeUserID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.CustomerUser{}).Where("email = ?", email)
	if excludeUserID != 0 {
		q = q.Where("id <> ?", excludeUserID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *CustomerRepository) CreateUser(ctx context.Context, user *model.CustomerUser) error {
	return classify(r.db.WithContext(ctx).Create(user).Error)
}

// Create inserts the customer row only; the user must already exist.
func (r *CustomerRepository) Create(ctx context.Context, customer *model.Customer) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "CustomerRepository.Create")

	start := time.Now()
	err := classify(r.db.WithContext(ctx).Omit("User").Create(customer).Error)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to create customer").
			Duration(time.Since(start)).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Customer created").
		Uint("customer_id", customer.ID).
		String("wallet_id", customer.WalletID.String()).
		Duration(time.Since(start)).
		Log()
	return nil
}

// UpdateUser writes the given columns of a customer user.
func (r *CustomerRepository) UpdateUser(ctx context.Context, id uint, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&model.CustomerUser{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Update writes the given columns of a customer.
func (r *CustomerRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&model.Customer{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the customer and its user.
func (r *CustomerRepository) Delete(ctx context.Context, customer *model.Customer) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "CustomerRepository.Delete")

	result := r.db.WithContext(ctx).Delete(&model.Customer{}, customer.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	if err := r.db.WithContext(ctx).Delete(&model.CustomerUser{}, customer.UserID).Error; err != nil {
		return err
	}

	logger.InfoWithContext(ctx, "Customer deleted").
		Uint("customer_id", customer.ID).
		Log()
	return nil
}
