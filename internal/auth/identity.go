// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"github.com/olegiv/oblog/internal/store"
)

// Identity is the viewer of a request: either an Authenticated user or
// Anonymous. The set of implementations is closed.
type Identity interface {
	// ID returns the user id and true, or 0 and false for anonymous viewers.
	ID() (int64, bool)
	IsAuthenticated() bool
	IsAdmin() bool
	// User returns the stored account, or nil for anonymous viewers.
	User() *store.User

	identity()
}

// Authenticated is a viewer bound to a stored user.
type Authenticated struct {
	Account store.User
}

func (a Authenticated) ID() (int64, bool)     { return a.Account.ID, true }
func (a Authenticated) IsAuthenticated() bool { return true }
func (a Authenticated) IsAdmin() bool         { return a.Account.IsAdmin() }
func (a Authenticated) User() *store.User     { u := a.Account; return &u }
func (Authenticated) identity()               {}

// Anonymous is a visitor without a session.
type Anonymous struct{}

func (Anonymous) ID() (int64, bool)     { return 0, false }
func (Anonymous) IsAuthenticated() bool { return false }
func (Anonymous) IsAdmin() bool         { return false }
func (Anonymous) User() *store.User     { return nil }
func (Anonymous) identity()             {}

// Decision is the outcome of an authorization check.
type Decision int

const (
	Allowed Decision = iota
	DeniedAnonymous
	DeniedNotAdmin
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case DeniedAnonymous:
		return "denied: anonymous"
	case DeniedNotAdmin:
		return "denied: not admin"
	default:
		return "unknown"
	}
}

// AuthorizeAdmin decides whether id may use administrator-only actions.
func AuthorizeAdmin(id Identity) Decision {
	if id == nil || !id.IsAuthenticated() {
		return DeniedAnonymous
	}
	if !id.IsAdmin() {
		return DeniedNotAdmin
	}
	return Allowed
}

// AuthorizeUser decides whether id may use actions that need any account.
func AuthorizeUser(id Identity) Decision {
	if id == nil || !id.IsAuthenticated() {
		return DeniedAnonymous
	}
	return Allowed
}
