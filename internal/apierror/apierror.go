// Package apierror holds the JSON error envelopes returned by the API.
// Handlers never write database or driver errors to the client.
package apierror

// APIError is the envelope of every 4xx/5xx response.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError maps each invalid JSON field to the rule it failed.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// NewCampo is a single-field validation error.
func NewCampo(campo, regla string) *ValidationError {
	return NewValidation(map[string]string{campo: regla})
}
