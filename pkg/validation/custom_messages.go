package validation

// CustomMessage returns the per-field overrides of DefaultMessage, keyed by tag.
func CustomMessage(field string) map[string]string {
	var customValidationMessages = map[string]map[string]string{
		"username": {
			TagUsername: "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.",
		},
	}
	return customValidationMessages[field]
}
