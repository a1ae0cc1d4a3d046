package apiutil

import (
	"fmt"
	"net/http"
	"strings"
)

// PathValue returns a required, trimmed path parameter.
func PathValue(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(r.PathValue(name))
	if value == "" {
		return "", FieldError{Field: name, Reason: "is required"}
	}
	return value, nil
}

// QueryValue returns a trimmed query parameter, empty when absent.
func QueryValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

// QueryEnum returns the query parameter when it is one of allowed, or empty
// when absent.
func QueryEnum(r *http.Request, name string, allowed ...string) (string, error) {
	value := QueryValue(r, name)
	if value == "" {
		return "", nil
	}
	for _, candidate := range allowed {
		if value == candidate {
			return value, nil
		}
	}
	return "", FieldError{Field: name, Reason: fmt.Sprintf("must be one of %s", strings.Join(allowed, ", "))}
}
