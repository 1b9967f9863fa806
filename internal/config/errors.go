// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownConfigField classifies strict YAML parse failures caused by unknown keys.
	// Use errors.Is(err, ErrUnknownConfigField) instead of string matching.
	ErrUnknownConfigField = errors.New("unknown config field")
	// ErrInvalidConfig classifies Validate failures.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// FieldError describes one invalid setting.
type FieldError struct {
	Field  string
	Reason string
	Value  any
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Reason, e.Value)
}

// ValidationErrors collects every FieldError found by Validate.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(parts, "; "))
}

func (v ValidationErrors) Unwrap() error { return ErrInvalidConfig }

func (v *ValidationErrors) add(field, reason string, value any) {
	*v = append(*v, FieldError{Field: field, Reason: reason, Value: value})
}
