/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package risk

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a profile field cannot be scored.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDomainViolation is returned when a ten-year percentage is outside [0, MaxRiskPercent].
	ErrDomainViolation = errors.New("risk percentage outside domain")
)

// InputError describes which field made an estimate impossible.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalidInput(field, reason string) error {
	return &InputError{Field: field, Reason: reason}
}

func domainViolation(name string, value float64) error {
	return fmt.Errorf("%w: %s=%v, want [0, %.1f]", ErrDomainViolation, name, value, MaxRiskPercent)
}
