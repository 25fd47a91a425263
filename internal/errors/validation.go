package errors

import (
	"sort"
	"strings"
)

// ValidationError carries field-keyed messages returned with a 400.
// Values are either []string or, for nested objects, map[string]any whose
// values are []string or string.
type ValidationError struct {
	Fields map[string]any
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]any)}
}

// FromFields wraps an existing field map, returning nil when it is empty.
func FromFields(fields map[string]any) *ValidationError {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// Add appends msg to the list kept for field.
func (e *ValidationError) Add(field, msg string) *ValidationError {
	list, _ := e.Fields[field].([]string)
	e.Fields[field] = append(list, msg)
	return e
}

// Set stores a single string message for field, replacing anything there.
func (e *ValidationError) Set(field, msg string) *ValidationError {
	e.Fields[field] = msg
	return e
}

// Nested stores msg as a plain string under parent.field.
func (e *ValidationError) Nested(parent, field, msg string) *ValidationError {
	child, ok := e.Fields[parent].(map[string]any)
	if !ok {
		child = make(map[string]any)
		e.Fields[parent] = child
	}
	child[field] = msg
	return e
}

// Merge copies fields into e. Nested maps are merged one level deep.
func (e *ValidationError) Merge(fields map[string]any) *ValidationError {
	for k, v := range fields {
		src, srcIsMap := v.(map[string]any)
		dst, dstIsMap := e.Fields[k].(map[string]any)
		if srcIsMap && dstIsMap {
			for nk, nv := range src {
				dst[nk] = nv
			}
			continue
		}
		e.Fields[k] = v
	}
	return e
}

func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}
