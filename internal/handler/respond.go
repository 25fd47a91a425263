package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/Payphone-Digital/customer-service/pkg/validation"
	"github.com/gin-gonic/gin"
)

// respondError writes err using the status and body mapped by apperrors.
func respondError(ctx context.Context, c *gin.Context, err error) {
	status := apperrors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorWithContext(ctx, "Request failed").
			String("path", c.Request.URL.Path).
			Err(err).
			Log()
	}
	c.JSON(status, apperrors.ToResponse(err))
}

// bindBody decodes the JSON body into obj. Type mismatches come back as
// field errors, unparseable input as a parse error.
func bindBody(c *gin.Context, obj interface{}) error {
	fields, err := validation.Decode(c.Request.Body, obj)
	if err != nil {
		var syntaxErr *validation.SyntaxError
		if errors.As(err, &syntaxErr) {
			return apperrors.WrapError(apperrors.ErrMalformedRequest, syntaxErr.Err)
		}
		return err
	}
	if verr := apperrors.FromFields(fields); verr != nil {
		return verr
	}
	return nil
}

// pathID parses the :id parameter. Anything but a positive integer is
// reported as not found.
func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ErrNotFound
	}
	return uint(id), nil
}
