package constants

// Standard Response Field Keys
const (
	// Pagination fields
	ResponseFieldCount    = "count"
	ResponseFieldNext     = "next"
	ResponseFieldPrevious = "previous"
	ResponseFieldResults  = "results"

	// Common response fields
	ResponseFieldMessage        = "message"
	ResponseFieldDetail         = "detail"
	ResponseFieldNonFieldErrors = "non_field_errors"
)

// Response Format Functions
func BuildListResponse(count int64, next, previous *string, results any) map[string]any {
	return map[string]any{
		ResponseFieldCount:    count,
		ResponseFieldNext:     next,
		ResponseFieldPrevious: previous,
		ResponseFieldResults:  results,
	}
}

func BuildErrorResponse(detail string) map[string]any {
	return map[string]any{
		ResponseFieldDetail: detail,
	}
}

func BuildNonFieldErrorResponse(messages ...string) map[string]any {
	return map[string]any{
		ResponseFieldNonFieldErrors: messages,
	}
}

func BuildSuccessResponse(message string) map[string]any {
	return map[string]any{
		ResponseFieldMessage: message,
	}
}
