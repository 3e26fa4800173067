// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"errors"
	"strings"
)

// ErrDuplicate is returned when an insert or update violates a UNIQUE constraint.
var ErrDuplicate = errors.New("duplicate value")

// mapConstraintErr converts driver-specific unique violations into ErrDuplicate.
// Both SQLite drivers in use report them with the same message text.
func mapConstraintErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}
