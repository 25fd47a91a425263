package service

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	"github.com/Payphone-Digital/customer-service/pkg/validation"
	"github.com/google/uuid"
)

const (
	msgInvalidUUID     = "Enter a valid UUID."
	msgInvalidNumber   = "Enter a number."
	msgInvalidDateTime = "Enter a valid date/time."
	msgInvalidChoice   = "Select a valid choice. That choice is not one of the available choices."
)

// defaultCustomerOrder applies when the request names no usable field.
var defaultCustomerOrder = []dto.OrderField{{Field: "created_at"}}

// ParseCustomerOrder reads sortBy, falling back to ordering. Fields are
// comma separated, "-" marks descending and unknown names are dropped.
func ParseCustomerOrder(values url.Values) []dto.OrderField {
	raw := values.Get(constants.QueryParamSortBy)
	if raw == "" {
		raw = values.Get(constants.QueryParamOrdering)
	}

	var order []dto.OrderField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		if !repository.IsCustomerOrderField(name) {
			continue
		}
		order = append(order, dto.OrderField{Field: name, Descending: desc})
	}

	if len(order) == 0 {
		return defaultCustomerOrder
	}
	return order
}

// ParseCustomerFilter reads the whitelisted filters. Empty values are
// ignored; malformed ones are reported per parameter.
func ParseCustomerFilter(values url.Values) (dto.CustomerFilter, error) {
	var f dto.CustomerFilter
	verr := apperrors.NewValidationError()

	str := func(key string) *string {
		if v := values.Get(key); v != "" {
			return &v
		}
		return nil
	}
	when := func(key string) *time.Time {
		v := values.Get(key)
		if v == "" {
			return nil
		}
		t, err := validation.ParseDateTime(v)
		if err != nil {
			verr.Add(key, msgInvalidDateTime)
			return nil
		}
		return &t
	}

	if v := values.Get("wallet_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			verr.Add("wallet_id", msgInvalidUUID)
		} else {
			f.WalletID = &id
		}
	}
	if v := str("sex_tape"); v != nil {
		if *v != constants.SexMale && *v != constants.SexFemale {
			verr.Add("sex_tape", msgInvalidChoice)
		} else {
			f.SexTape = v
		}
	}
	if v := values.Get("dni"); v != "" {
		dni, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			verr.Add("dni", msgInvalidNumber)
		} else {
			f.DNI = &dni
		}
	}

	f.UserEmail = str("user__email")
	f.UserName = str("user__name")
	f.UserLastName = str("user__last_name")

	f.BirthDate = when("birth_date")
	f.BirthDateGTE = when("birth_date__gte")
	f.BirthDateLTE = when("birth_date__lte")
	f.CreatedAt = when("created_at")
	f.CreatedAtGTE = when("created_at__gte")
	f.CreatedAtLTE = when("created_at__lte")

	if verr.HasErrors() {
		return dto.CustomerFilter{}, verr
	}
	return f, nil
}
