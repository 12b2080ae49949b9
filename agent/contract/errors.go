package contract

import "errors"

var (
	ErrModelInvoke      = errors.New("model invoke failed")
	ErrSchemaViolation  = errors.New("model response violates schema")
	ErrValidation       = errors.New("validation failed")
	ErrBudgetExhausted  = errors.New("dispatch step budget exhausted")
	ErrIdentityRequired = errors.New("resolved customer identity is required")
)
