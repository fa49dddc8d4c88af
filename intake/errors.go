/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package intake

import (
	"errors"
	"strings"
)

var (
	ErrInvalidForm = errors.New("invalid form")
	ErrUnknownStep = errors.New("unknown step")
)

// FieldError is a single rejected form field, keyed by its form name.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects the rejected fields of a form submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+" "+f.Message)
	}

	return ErrInvalidForm.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidForm
}

// Messages returns the field messages keyed by form name.
func (e *ValidationError) Messages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}

	return out
}
