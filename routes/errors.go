/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import "errors"

var (
	errUnknownStep       = errors.New("unknown wizard step")
	errHistoryDisabled   = errors.New("assessment history is disabled")
	errResultUnavailable = errors.New("result unavailable")
)
